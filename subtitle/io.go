package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/media"
)

// Load reads and parses a subtitle file. An unreadable file is an error, an unparsable one is not:
// it simply yields no cues.
func Load(path string) ([]*Cue, error) {
	if !media.IsSubtitle(path) {
		return nil, fmt.Errorf("not a subtitle file: %s", path)
	}

	data, err := filesystem.API().ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subtitles: %w", err)
	}

	return Parse(string(data)), nil
}

// Write serializes cues as SubRip. Cues without an ID are numbered by position.
func Write(w io.Writer, cues []*Cue) error {
	bw := bufio.NewWriter(w)

	for i, c := range cues {
		id := c.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}

		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintf(bw, "%s\n%s --> %s\n%s\n", id, FormatTimestamp(c.Start), FormatTimestamp(c.End), c.Text); err != nil {
			return err
		}
	}

	return bw.Flush()
}
