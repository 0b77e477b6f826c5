package history

import (
	"fmt"
	"time"

	"github.com/reel-player/reel/media"
)

// Record is the last known playback state of a media item.
type Record struct {
	Position    float64 `json:"position" jsonschema:"description=Last play-head position in seconds, 0 once completed"`
	Duration    float64 `json:"duration" jsonschema:"description=Duration in seconds"`
	LastWatched int64   `json:"lastWatched" jsonschema:"description=Unix time in milliseconds of the last write"`
	Completed   bool    `json:"completed"`
}

// Watched returns LastWatched as a time.
func (r Record) Watched() time.Time {
	return time.UnixMilli(r.LastWatched)
}

// Progress returns position/duration as a percentage in [0, 100].
func (r Record) Progress() float64 {
	if r.Duration <= 0 {
		return 0
	}
	return max(0, min(100, r.Position/r.Duration*100))
}

func (r Record) String() string {
	if r.Completed {
		return "completed"
	}
	return fmt.Sprintf("%.0f%%", r.Progress())
}

// Entry pairs a record with the media it belongs to.
type Entry struct {
	Ref    media.Ref
	Record Record
}
