// Package player abstracts the external media-playback primitive.
// The primary implementation drives mpv through its JSON-IPC interface.
package player

import (
	"context"
	"fmt"
	"time"

	"github.com/reel-player/reel/media"
)

// Kind identifies a notification emitted by a media primitive.
type Kind int

const (
	LoadStart Kind = iota
	LoadedMetadata
	CanPlay
	TimeUpdate
	Paused
	Ended
	Error
)

func (k Kind) String() string {
	switch k {
	case LoadStart:
		return "load-start"
	case LoadedMetadata:
		return "loaded-metadata"
	case CanPlay:
		return "can-play"
	case TimeUpdate:
		return "time-update"
	case Paused:
		return "paused"
	case Ended:
		return "ended"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Entry identifies one file handed to the primitive by Load. Zero means the primitive did not say
// which file a report belongs to.
type Entry int64

// Notification is a single event reported by the media primitive.
type Notification struct {
	Kind Kind

	// Entry is the file the report belongs to.
	Entry Entry

	// Seconds carries the duration for LoadedMetadata and the play-head for TimeUpdate.
	Seconds float64

	// Paused is set for Paused notifications.
	Paused bool

	// Reason is set for Error notifications.
	Reason string
}

func (n Notification) String() string {
	switch n.Kind {
	case LoadedMetadata, TimeUpdate:
		return fmt.Sprintf("%s(%.3f)", n.Kind, n.Seconds)
	case Paused:
		return fmt.Sprintf("%s(%t)", n.Kind, n.Paused)
	case Error:
		return fmt.Sprintf("%s(%s)", n.Kind, n.Reason)
	default:
		return n.Kind.String()
	}
}

// Media is the playback primitive the engine drives.
type Media interface {
	// Load replaces whatever is playing with ref and returns the entry its reports will carry.
	Load(ctx context.Context, ref media.Ref) (Entry, error)

	Play() error
	Pause() error

	// Seek moves the play-head to an absolute position in seconds.
	Seek(seconds float64) error

	// SetVolume takes a level in [0, 1].
	SetVolume(level float64) error
	SetMuted(muted bool) error
	SetPlaybackRate(rate float64) error

	// Notifications is closed when the primitive shuts down.
	Notifications() <-chan Notification

	Close() error
}

// TextOverlay is implemented by primitives able to draw text over the video, used for subtitle cues.
type TextOverlay interface {
	ShowText(text string, d time.Duration) error
}

// Screenshotter is implemented by primitives able to save the current frame.
type Screenshotter interface {
	Screenshot(path string) error
}
