// Package playertest provides an in-memory media primitive for tests.
package playertest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/player"
)

// Fake records every call and lets tests push notifications.
// Every successful Load gets a new entry and emits its LoadStart. Emit tags untagged notifications
// with the entry loaded last, EmitFor with an explicit one.
type Fake struct {
	mu sync.Mutex

	Calls       []string
	Loaded      []media.Ref
	Seeks       []float64
	Volume      float64
	Muted       bool
	Rate        float64
	Paused      bool
	Overlay     []string
	Screenshots []string

	// LoadErr, when set, is returned by the next Load.
	LoadErr error
	// CommandErr, when set, is returned by every control call.
	CommandErr error

	entry         player.Entry
	notifications chan player.Notification
	closeOnce     sync.Once
}

var _ player.Media = (*Fake)(nil)
var _ player.TextOverlay = (*Fake)(nil)
var _ player.Screenshotter = (*Fake)(nil)

func New() *Fake {
	return &Fake{notifications: make(chan player.Notification, 256)}
}

func (f *Fake) record(format string, args ...any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, fmt.Sprintf(format, args...))
	return f.CommandErr
}

func (f *Fake) Load(_ context.Context, ref media.Ref) (player.Entry, error) {
	f.mu.Lock()
	err := f.LoadErr
	f.LoadErr = nil
	f.Calls = append(f.Calls, "load "+ref.String())
	if err != nil {
		f.mu.Unlock()
		return 0, err
	}
	f.Loaded = append(f.Loaded, ref)
	f.entry++
	entry := f.entry
	f.mu.Unlock()

	f.EmitFor(entry, player.Notification{Kind: player.LoadStart})
	return entry, nil
}

// Entry returns the entry handed out by the last successful Load.
func (f *Fake) Entry() player.Entry {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entry
}

func (f *Fake) Play() error {
	f.mu.Lock()
	f.Paused = false
	f.mu.Unlock()
	return f.record("play")
}

func (f *Fake) Pause() error {
	f.mu.Lock()
	f.Paused = true
	f.mu.Unlock()
	return f.record("pause")
}

func (f *Fake) Seek(seconds float64) error {
	f.mu.Lock()
	f.Seeks = append(f.Seeks, seconds)
	f.mu.Unlock()
	return f.record("seek %.2f", seconds)
}

func (f *Fake) SetVolume(level float64) error {
	f.mu.Lock()
	f.Volume = level
	f.mu.Unlock()
	return f.record("volume %.2f", level)
}

func (f *Fake) SetMuted(muted bool) error {
	f.mu.Lock()
	f.Muted = muted
	f.mu.Unlock()
	return f.record("mute %t", muted)
}

func (f *Fake) SetPlaybackRate(rate float64) error {
	f.mu.Lock()
	f.Rate = rate
	f.mu.Unlock()
	return f.record("rate %.2f", rate)
}

func (f *Fake) ShowText(text string, _ time.Duration) error {
	f.mu.Lock()
	f.Overlay = append(f.Overlay, text)
	f.mu.Unlock()
	return nil
}

func (f *Fake) Screenshot(path string) error {
	f.mu.Lock()
	f.Screenshots = append(f.Screenshots, path)
	f.mu.Unlock()
	return f.record("screenshot %s", path)
}

func (f *Fake) Notifications() <-chan player.Notification {
	return f.notifications
}

// Emit queues a notification as if the primitive had reported it for the file loaded last.
func (f *Fake) Emit(n player.Notification) {
	if n.Entry == 0 {
		n.Entry = f.Entry()
	}
	f.EmitFor(n.Entry, n)
}

// EmitFor queues a notification reported for entry.
func (f *Fake) EmitFor(entry player.Entry, n player.Notification) {
	n.Entry = entry
	defer func() {
		// emitting after Close is a no-op
		_ = recover()
	}()
	f.notifications <- n
}

// Drain discards queued notifications and returns them.
func (f *Fake) Drain() []player.Notification {
	var out []player.Notification
	for {
		select {
		case n, ok := <-f.notifications:
			if !ok {
				return out
			}
			out = append(out, n)
		default:
			return out
		}
	}
}

// Snapshot returns copies of the recorded calls, safe to inspect while the fake is in use.
func (f *Fake) Snapshot() (calls []string, loaded []media.Ref, seeks []float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Calls...), append([]media.Ref(nil), f.Loaded...), append([]float64(nil), f.Seeks...)
}

// OverlayText returns a copy of every text drawn through ShowText.
func (f *Fake) OverlayText() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.Overlay...)
}

func (f *Fake) Close() error {
	f.closeOnce.Do(func() {
		close(f.notifications)
	})
	return nil
}

var ErrBoom = errors.New("playertest: boom")
