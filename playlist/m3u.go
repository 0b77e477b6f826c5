package playlist

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
)

const m3uHeader = "#EXTM3U"

// WriteM3U writes refs as an extended M3U playlist, titled by file name.
func WriteM3U(w io.Writer, refs []media.Ref) error {
	buf := &bytes.Buffer{}
	buf.WriteString(m3uHeader + "\n")
	for _, ref := range refs {
		fmt.Fprintf(buf, "#EXTINF:-1,%s\n", ref.Name())
		buf.WriteString(ref.String() + "\n")
	}
	_, err := io.Copy(w, buf)
	return err
}

// ReadM3U reads the entries of an M3U playlist. Directives and comments are ignored, plain paths
// are converted to file URIs and entries that fail path validation are skipped.
func ReadM3U(r io.Reader) ([]media.Ref, error) {
	return readM3U(r, "")
}

// readM3U resolves relative entries against base when it is set.
func readM3U(r io.Reader, base string) ([]media.Ref, error) {
	var refs []media.Ref

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !strings.Contains(line, "://") {
			if err := media.ValidatePath(line); err != nil {
				log.Warnf("m3u: skipping entry: %v", err)
				continue
			}
			if base != "" && !filepath.IsAbs(line) {
				line = filepath.Join(base, line)
			}
		}

		refs = append(refs, media.ToRef(line))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read M3U: %w", err)
	}
	return refs, nil
}

// ExportFile writes the current list to path. The file is replaced atomically and durably.
func (n *Navigator) ExportFile(path string) error {
	pendingFile, err := renameio.NewPendingFile(path)
	if err != nil {
		return fmt.Errorf("create pending M3U file: %w", err)
	}
	defer func() {
		if err := pendingFile.Cleanup(); err != nil {
			log.Debugf("cleanup pending M3U file: %v", err)
		}
	}()

	if err := WriteM3U(pendingFile, n.Items()); err != nil {
		return fmt.Errorf("write M3U data: %w", err)
	}

	if err := pendingFile.CloseAtomicallyReplace(); err != nil {
		return fmt.Errorf("atomically replace M3U file: %w", err)
	}
	return nil
}

// Import appends every entry of an M3U playlist and returns how many were added.
func (n *Navigator) Import(r io.Reader) (int, error) {
	return n.importFrom(r, "")
}

// ImportFile appends the entries of the M3U file at path. Relative entries are taken relative to
// the directory of the file.
func (n *Navigator) ImportFile(path string) (int, error) {
	f, err := filesystem.API().Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	return n.importFrom(f, filepath.Dir(path))
}

func (n *Navigator) importFrom(r io.Reader, base string) (int, error) {
	refs, err := readM3U(r, base)
	if err != nil {
		return 0, err
	}
	for _, ref := range refs {
		n.Add(ref)
	}
	return len(refs), nil
}
