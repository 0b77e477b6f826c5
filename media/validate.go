package media

import (
	"fmt"
	"strings"
)

// InvalidPathError reports a candidate media path rejected before it reaches the playlist.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid media path %q: %s", e.Path, e.Reason)
}

// forbidden are characters that are never legal in a local media path.
const forbidden = `<>"|?*`

// ValidatePath rejects traversal sequences, characters illegal in Windows file names, control characters
// and leading dashes that a player would parse as a flag. Paths are never coerced into a valid form.
func ValidatePath(path string) error {
	trimmed := strings.TrimSpace(path)
	switch {
	case trimmed == "":
		return &InvalidPathError{Path: path, Reason: "empty path"}
	case strings.Contains(path, ".."):
		return &InvalidPathError{Path: path, Reason: "parent directory traversal"}
	case strings.ContainsAny(path, forbidden):
		return &InvalidPathError{Path: path, Reason: "forbidden character"}
	case strings.ContainsAny(path, "\x00\n\r\t"):
		return &InvalidPathError{Path: path, Reason: "control character"}
	case strings.HasPrefix(trimmed, "-"):
		return &InvalidPathError{Path: path, Reason: "looks like a flag"}
	}
	return nil
}
