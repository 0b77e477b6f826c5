// Package media defines the opaque media reference used across the engine and the helpers that classify,
// validate and name local video files.
package media

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/reel-player/reel/constant"
	"github.com/samber/lo"
)

// Ref is an opaque, stable identifier of a playable item, usually a file:/// URI.
// Equality is string identity.
type Ref string

// String implements fmt.Stringer.
func (r Ref) String() string {
	return string(r)
}

// Extension returns the lower-cased final dot-delimited segment of path, or "" if there is none.
func Extension(path string) string {
	base := path[strings.LastIndexAny(path, `/\`)+1:]
	idx := strings.LastIndex(base, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(base[idx+1:])
}

// IsVideo reports whether path has one of the recognised video extensions.
func IsVideo(path string) bool {
	return lo.Contains(constant.VideoExtensions, Extension(path))
}

// IsSubtitle reports whether path looks like a SubRip caption file.
func IsSubtitle(path string) bool {
	return Extension(path) == constant.SubtitleExtension
}

// FileName extracts the last path element of a Windows or Unix path or URI. Network URLs are
// percent-decoded when possible. Local paths and file references hold literal names.
func FileName(path string) string {
	name := path[strings.LastIndexAny(path, `/\`)+1:]
	if name == "" {
		return path
	}
	if !isNetwork(path) {
		return name
	}
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func isNetwork(path string) bool {
	return strings.Contains(path, "://") && !strings.HasPrefix(path, fileScheme)
}

// Stem returns FileName without its extension.
func Stem(path string) string {
	name := FileName(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		return name[:idx]
	}
	return name
}

const fileScheme = "file:///"

// ToRef converts a local path into a file:/// reference with forward slashes. The path is kept
// verbatim, so Path returns it unchanged. Paths that already carry a scheme are returned unchanged.
func ToRef(path string) Ref {
	if strings.Contains(path, "://") {
		return Ref(path)
	}
	normalized := strings.ReplaceAll(path, `\`, "/")
	return Ref(fileScheme + strings.TrimLeft(normalized, "/"))
}

// Path converts a file:/// reference back to a local path usable by a player.
// Non-file references are returned as-is.
func (r Ref) Path() string {
	s := string(r)
	rest, ok := strings.CutPrefix(s, fileScheme)
	if !ok {
		return s
	}
	// Windows drive letters ("C:/...") stay relative to the drive, everything else is rooted.
	if len(rest) >= 2 && rest[1] == ':' {
		return filepath.FromSlash(rest)
	}
	return filepath.FromSlash("/" + rest)
}

// Name is the display name of the item behind r.
func (r Ref) Name() string {
	return FileName(string(r))
}

var screenshotStem = regexp.MustCompile(`\.[^/.]+$`)

// ScreenshotName builds "<stem>_<HH-MM-SS>_<YYYY-MM-DD>.png" for a frame captured at t seconds.
func ScreenshotName(ref Ref, t float64, now time.Time) string {
	stem := screenshotStem.ReplaceAllString(FileName(string(ref)), "")
	if stem == "" {
		stem = "video"
	}

	total := int(t)
	if total < 0 {
		total = 0
	}
	stamp := fmt.Sprintf("%02d-%02d-%02d", total/3600, (total%3600)/60, total%60)

	return fmt.Sprintf("%s_%s_%s.png", stem, stamp, now.Format("2006-01-02"))
}
