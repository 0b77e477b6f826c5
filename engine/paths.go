package engine

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/samber/lo"
)

// Resolve turns command line arguments into playable references.
//
// Local paths are validated, made absolute and must exist. A directory contributes the video files
// directly inside it in name order. http and https URLs are taken as they are. Every rejected
// argument is reported in the joined error; the accepted ones are still returned.
func Resolve(paths ...string) ([]media.Ref, error) {
	var (
		refs []media.Ref
		errs []error
	)

	for _, p := range paths {
		resolved, err := resolve(p)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		refs = append(refs, resolved...)
	}

	return refs, errors.Join(errs...)
}

func resolve(path string) ([]media.Ref, error) {
	if u, err := url.Parse(path); err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return []media.Ref{media.Ref(path)}, nil
	}

	if err := media.ValidatePath(path); err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	fs := filesystem.API()
	info, err := fs.Stat(abs)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		if !media.IsVideo(abs) {
			return nil, &media.InvalidPathError{Path: path, Reason: "not a video file"}
		}
		return []media.Ref{media.ToRef(abs)}, nil
	}

	entries, err := fs.ReadDir(abs)
	if err != nil {
		return nil, err
	}

	refs := lo.FilterMap(entries, func(entry os.FileInfo, _ int) (media.Ref, bool) {
		if entry.IsDir() || !media.IsVideo(entry.Name()) {
			return "", false
		}
		return media.ToRef(filepath.Join(abs, entry.Name())), true
	})
	if len(refs) == 0 {
		log.Warnf("no videos in %s", abs)
	}
	return refs, nil
}

// AddPaths resolves paths and appends the results to the playlist. It returns how many entries were
// added along with the rejected arguments.
func (s *State) AddPaths(paths ...string) (int, error) {
	refs, err := Resolve(paths...)
	for _, ref := range refs {
		s.Playlist.Add(ref)
	}
	return len(refs), err
}
