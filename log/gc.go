package log

import (
	"os"
	"path/filepath"
	"time"

	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/where"
)

// MaxAge is how long a daily log file is kept.
const MaxAge = 30 * 24 * time.Hour

// CollectGarbage removes daily log files older than MaxAge and returns how many were removed.
func CollectGarbage() int {
	return collect(where.Logs(), time.Now().Add(-MaxAge))
}

func collect(dir string, cutoff time.Time) (removed int) {
	_ = filesystem.API().Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() || filepath.Ext(path) != ".log" {
			return nil
		}

		if info.ModTime().Before(cutoff) {
			if err := filesystem.API().Remove(path); err == nil {
				removed++
			}
		}
		return nil
	})

	if removed > 0 {
		Debugf("removed %d expired log files", removed)
	}
	return
}
