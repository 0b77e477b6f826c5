// Package subtitle parses SubRip captions and resolves the cue under the play-head.
package subtitle

import (
	"regexp"
	"strings"

	"github.com/reel-player/reel/log"
	"github.com/sirupsen/logrus"
)

// Cue is a time-bounded caption. Start and End are inclusive, in seconds.
type Cue struct {
	ID    string  `json:"id" jsonschema:"description=Index line of the source block"`
	Start float64 `json:"startTime" jsonschema:"description=Start time in seconds (inclusive)"`
	End   float64 `json:"endTime" jsonschema:"description=End time in seconds (inclusive)"`
	Text  string  `json:"text"`
}

// Contains reports whether t falls within the cue.
func (c *Cue) Contains(t float64) bool {
	return t >= c.Start && t <= c.End
}

var blankLines = regexp.MustCompile(`\n\s*\n`)

// Parse splits raw SubRip text into cues, in block order.
//
// A block needs an index line, a `<start> --> <end>` line and at least one text line.
// Blocks that are too short, have unparsable timestamps or do not satisfy start < end
// are skipped; the rest of the input is still parsed.
func Parse(raw string) []*Cue {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
	if raw == "" {
		return nil
	}

	var cues []*Cue
	for i, block := range blankLines.Split(raw, -1) {
		cue, err := parseBlock(block)
		if err != nil {
			log.WithFields(logrus.Fields{"block": i + 1}).Debugf("skipping subtitle block: %v", err)
			continue
		}
		cues = append(cues, cue)
	}

	return cues
}

func parseBlock(block string) (*Cue, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return nil, &ParseError{Reason: "block has fewer than 3 lines"}
	}

	start, end, err := parseTiming(strings.TrimSpace(lines[1]))
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, &ParseError{Reason: "start time is not before end time"}
	}

	return &Cue{
		ID:    strings.TrimSpace(lines[0]),
		Start: start,
		End:   end,
		Text:  strings.TrimSpace(strings.Join(lines[2:], "\n")),
	}, nil
}

func parseTiming(line string) (start, end float64, err error) {
	left, right, found := strings.Cut(line, "-->")
	if !found {
		return 0, 0, &ParseError{Reason: "missing timing arrow"}
	}

	// positional hints may follow the end time
	fields := strings.Fields(right)
	if len(fields) == 0 {
		return 0, 0, &ParseError{Reason: "missing end time"}
	}

	if start, err = ParseTimestamp(strings.TrimSpace(left)); err != nil {
		return 0, 0, err
	}
	if end, err = ParseTimestamp(fields[0]); err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ActiveCue returns the first cue, in sequence order, whose span contains t. It returns nil when t
// falls in a gap.
func ActiveCue(cues []*Cue, t float64) *Cue {
	for _, c := range cues {
		if c.Contains(t) {
			return c
		}
	}
	return nil
}
