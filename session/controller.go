// Package session drives a single active media item: load, metadata, play-head updates, subtitle
// cues, A/B loops, watch-position snapshots and the hand-off to the playlist when the item ends.
package session

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/reel-player/reel/history"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/player"
	"github.com/reel-player/reel/playlist"
	"github.com/reel-player/reel/subtitle"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
)

const DefaultSnapshotInterval = 5 * time.Second

var (
	ErrNoItem      = errors.New("session: no item loaded")
	ErrNotReady    = errors.New("session: item is not ready")
	ErrNoDuration  = errors.New("session: duration unknown")
	ErrNoCues      = errors.New("session: no subtitle cues found")
	ErrUnsupported = errors.New("session: not supported by the media player")
	ErrStale       = errors.New("session: item was replaced")
)

// Ticket identifies one LoadItem call. Notifications carrying an older ticket are stale.
type Ticket uint64

// Event is a notification from the media primitive tagged with the load it belongs to.
type Event struct {
	Ticket       Ticket
	Notification player.Notification
}

// Advance is the outcome of an item ending: the playlist index to play next, and whether to play
// it at all.
type Advance struct {
	Index    int
	Continue bool
}

// Snapshot is a copy of the controller state.
type Snapshot struct {
	Ticket   Ticket
	Ref      media.Ref
	State    State
	Reason   string
	Duration mo.Option[float64]
	Position float64
	Playing  bool
	Loop     Loop
	Cue      *subtitle.Cue
	Cues     int
}

// Controller is the playback state machine for the active item.
//
// It is driven by discrete calls: LoadItem and the user controls from the caller, Notify or Dispatch
// from the media primitive. Listeners run while the controller is locked and must not call back
// into it.
type Controller struct {
	media  player.Media
	ledger *history.Ledger
	nav    *playlist.Navigator
	prefs  *Preferences

	now              func() time.Time
	snapshotInterval time.Duration
	resume           bool
	onCue            func(*subtitle.Cue)
	onState          func(from, to State, s Snapshot)

	mu        sync.Mutex
	ticket    Ticket
	entry     player.Entry
	reporting Ticket
	ref       media.Ref
	state     State
	reason    string
	duration  mo.Option[float64]
	position  float64
	playing   bool
	loop      Loop
	cues      []*subtitle.Cue
	cue       *subtitle.Cue

	lastTick      time.Time
	sinceSnapshot time.Duration
}

// Option configures a Controller.
type Option func(*Controller)

// WithClock replaces the wall clock used to pace position snapshots.
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// WithSnapshotInterval sets how much playing wall time passes between position snapshots.
func WithSnapshotInterval(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.snapshotInterval = d
		}
	}
}

// WithResume controls whether a stored position is restored when metadata arrives.
func WithResume(resume bool) Option {
	return func(c *Controller) {
		c.resume = resume
	}
}

// WithCueListener is called whenever the active cue changes, with nil when no cue is active.
func WithCueListener(fn func(*subtitle.Cue)) Option {
	return func(c *Controller) {
		c.onCue = fn
	}
}

// WithStateListener is called on every state transition.
func WithStateListener(fn func(from, to State, s Snapshot)) Option {
	return func(c *Controller) {
		c.onState = fn
	}
}

func New(m player.Media, ledger *history.Ledger, nav *playlist.Navigator, prefs *Preferences, opts ...Option) *Controller {
	c := &Controller{
		media:            m,
		ledger:           ledger,
		nav:              nav,
		prefs:            prefs,
		now:              time.Now,
		snapshotInterval: DefaultSnapshotInterval,
		resume:           true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) logger() *logrus.Entry {
	return log.WithFields(logrus.Fields{"ref": c.ref, "ticket": c.ticket, "state": c.state})
}

func (c *Controller) transition(to State) {
	from := c.state
	c.state = to
	if from != to && c.onState != nil {
		c.onState(from, to, c.snapshot())
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() Snapshot {
	return Snapshot{
		Ticket:   c.ticket,
		Ref:      c.ref,
		State:    c.state,
		Reason:   c.reason,
		Duration: c.duration,
		Position: c.position,
		Playing:  c.playing,
		Loop:     c.loop,
		Cue:      c.cue,
		Cues:     len(c.cues),
	}
}

// Err returns the playback failure of the active item, if any.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state != Error {
		return nil
	}
	return &StateError{Ref: c.ref.String(), Reason: c.reason}
}

// LoadItem makes ref the active item and asks the media primitive to load it.
//
// Loop points, cues and any error of the previous item are discarded, and everything the
// primitive still reports about the previous item is ignored from now on. A synchronous load
// failure moves straight to Error.
func (c *Controller) LoadItem(ctx context.Context, ref media.Ref) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.checkpoint()
	c.reset()

	c.ticket++
	c.ref = ref
	c.transition(Loading)
	c.logger().Info("loading")

	entry, err := c.media.Load(ctx, ref)
	c.entry = entry
	if err != nil {
		c.fail(err.Error())
		return c.ticket
	}

	c.applyPreferences()
	return c.ticket
}

// Stop leaves the active item and returns to Idle.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == Idle {
		return
	}

	c.checkpoint()
	if c.state == Ready {
		if err := c.media.Pause(); err != nil {
			c.logger().Debugf("pause on stop: %v", err)
		}
	}

	c.reset()
	c.ticket++
	c.entry = 0
	c.ref = ""
	c.transition(Idle)
}

// reset clears the per-item state.
func (c *Controller) reset() {
	c.reason = ""
	c.duration = mo.None[float64]()
	c.position = 0
	c.playing = false
	c.loop = Loop{}
	c.cues = nil
	c.setCue(nil)
	c.lastTick = time.Time{}
	c.sinceSnapshot = 0
}

// checkpoint records the position of an item that is being left mid-playback.
func (c *Controller) checkpoint() {
	if c.state != Ready || c.position <= 0 {
		return
	}
	if d, ok := c.duration.Get(); ok {
		c.ledger.RecordPosition(c.ref, c.position, d)
	}
}

// applyPreferences also unpauses, since mpv keeps the pause flag across files.
func (c *Controller) applyPreferences() {
	v := c.prefs.Values()
	c.apply("play", c.media.Play)
	c.apply("volume", func() error { return c.media.SetVolume(v.Volume) })
	c.apply("mute", func() error { return c.media.SetMuted(v.Muted) })
	c.apply("rate", func() error { return c.media.SetPlaybackRate(v.Rate) })
}

// Notify tags a raw notification with the load it belongs to and dispatches it.
func (c *Controller) Notify(n player.Notification) mo.Option[Advance] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dispatch(Event{Ticket: c.owner(n), Notification: n})
}

// owner maps a report onto a ticket. When both the load and the report name an entry, the report
// belongs to the active load only if the entries match. Otherwise it belongs to the load whose
// LoadStart was reported last.
func (c *Controller) owner(n player.Notification) Ticket {
	tagged := n.Entry != 0 && c.entry != 0
	if tagged && n.Entry != c.entry {
		// no load is ever issued ticket zero
		return 0
	}
	if n.Kind == player.LoadStart {
		c.reporting = c.ticket
	}
	if tagged {
		return c.ticket
	}
	return c.reporting
}

// Dispatch routes a tagged notification. Stale events are dropped. The result is set when the item
// ended and the playlist was consulted.
func (c *Controller) Dispatch(ev Event) mo.Option[Advance] {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.dispatch(ev)
}

func (c *Controller) dispatch(ev Event) mo.Option[Advance] {
	n := ev.Notification

	if ev.Ticket != c.ticket || c.state == Idle {
		c.logger().Tracef("dropping stale %s for ticket %d", n, ev.Ticket)
		return mo.None[Advance]()
	}

	switch n.Kind {
	case player.LoadStart, player.CanPlay:
		c.logger().Debugf("%s", n)
	case player.LoadedMetadata:
		c.onMetadataReady(n.Seconds)
	case player.TimeUpdate:
		c.onTimeUpdate(n.Seconds)
	case player.Paused:
		c.onPaused(n.Paused)
	case player.Ended:
		if adv, ok := c.onEnded(); ok {
			return mo.Some(adv)
		}
	case player.Error:
		c.onError(n.Reason)
	}

	return mo.None[Advance]()
}

// OnMetadataReady records the duration, restores a stored position and moves to Ready.
func (c *Controller) OnMetadataReady(duration float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onMetadataReady(duration)
}

func (c *Controller) onMetadataReady(duration float64) {
	if c.state != Loading && c.state != Ready {
		return
	}
	if duration <= 0 {
		return
	}

	c.duration = mo.Some(duration)
	if c.state == Ready {
		return
	}

	if pos, ok := c.ledger.ResumePosition(c.ref); ok && c.resume {
		if err := c.media.Seek(pos); err != nil {
			c.logger().Warnf("resume at %.1f: %v", pos, err)
		} else {
			c.position = pos
			c.logger().Infof("resuming at %s", subtitle.FormatTimestamp(pos))
		}
	}

	c.playing = true
	c.transition(Ready)
}

// OnTimeUpdate moves the play-head. Past B of an active loop the play-head is sent back to A and A
// is used as the time of this tick.
func (c *Controller) OnTimeUpdate(t float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onTimeUpdate(t)
}

func (c *Controller) onTimeUpdate(t float64) {
	if c.state != Ready {
		return
	}

	if c.loop.Active() {
		a, b := c.loop.A.MustGet(), c.loop.B.MustGet()
		if t >= b {
			if err := c.media.Seek(a); err != nil {
				c.logger().Warnf("loop back to %.2f: %v", a, err)
			}
			t = a
		}
	}

	c.position = t
	c.setCue(subtitle.ActiveCue(c.cues, t))

	if c.playing {
		c.accumulate()
	}
}

// accumulate counts playing wall time and records a position snapshot every interval.
func (c *Controller) accumulate() {
	now := c.now()
	if !c.lastTick.IsZero() {
		if elapsed := now.Sub(c.lastTick); elapsed > 0 {
			c.sinceSnapshot += min(elapsed, c.snapshotInterval)
		}
	}
	c.lastTick = now

	if c.sinceSnapshot < c.snapshotInterval {
		return
	}
	c.sinceSnapshot = 0

	if d, ok := c.duration.Get(); ok {
		c.ledger.RecordPosition(c.ref, c.position, d)
	}
}

func (c *Controller) onPaused(paused bool) {
	if c.state != Ready {
		return
	}

	c.playing = !paused
	c.lastTick = time.Time{}

	if paused {
		c.checkpoint()
	}
}

// OnEnded marks the item completed and asks the playlist what comes next.
func (c *Controller) OnEnded() (Advance, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.onEnded()
}

func (c *Controller) onEnded() (Advance, bool) {
	if c.state != Ready && c.state != Loading {
		return Advance{}, false
	}

	duration := c.duration.OrElse(c.position)
	c.position = duration
	c.playing = false
	c.setCue(nil)
	c.transition(Ended)

	c.ledger.MarkCompleted(c.ref, duration)

	index, more := c.nav.OnItemEnded()
	c.logger().Infof("ended, next index %d (continue: %t)", index, more)

	return Advance{Index: index, Continue: more}, true
}

// OnError moves the item to Error. Nothing is retried and the playlist is not advanced.
func (c *Controller) OnError(reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onError(reason)
}

func (c *Controller) onError(reason string) {
	if c.state != Loading && c.state != Ready {
		return
	}
	c.fail(reason)
}

func (c *Controller) fail(reason string) {
	c.reason = reason
	c.playing = false
	c.transition(Error)
	c.logger().Errorf("playback failed: %s", reason)
}

// SetLoopA places loop point A at the play-head.
func (c *Controller) SetLoopA() (Loop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireDuration(); err != nil {
		return c.loop, err
	}
	c.loop = c.loop.SetA(c.position)
	return c.loop, nil
}

// SetLoopB places loop point B at the play-head, or A when B would not lie past A.
func (c *Controller) SetLoopB() (Loop, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireDuration(); err != nil {
		return c.loop, err
	}
	c.loop = c.loop.SetB(c.position)
	return c.loop, nil
}

// ResetLoop clears both loop points.
func (c *Controller) ResetLoop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loop = Loop{}
}

func (c *Controller) requireDuration() error {
	if c.state != Ready || c.duration.IsAbsent() {
		return ErrNoDuration
	}
	return nil
}

func (c *Controller) requireReady() error {
	switch c.state {
	case Idle:
		return ErrNoItem
	case Ready:
		return nil
	default:
		return ErrNotReady
	}
}

// SetCues replaces the cue set of the active item. An empty set is rejected and the existing cues
// stay in place.
func (c *Controller) SetCues(cues []*subtitle.Cue) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setCues(cues)
}

// SetCuesFor is SetCues for the item loaded under ticket. It fails with ErrStale once that item was
// replaced or stopped.
func (c *Controller) SetCuesFor(ticket Ticket, cues []*subtitle.Cue) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ticket != c.ticket {
		return ErrStale
	}
	return c.setCues(cues)
}

func (c *Controller) setCues(cues []*subtitle.Cue) error {
	if c.state == Idle {
		return ErrNoItem
	}
	if len(cues) == 0 {
		return ErrNoCues
	}

	c.cues = cues
	c.setCue(subtitle.ActiveCue(c.cues, c.position))
	c.logger().Infof("loaded %d subtitle cues", len(cues))
	return nil
}

// SetSubtitles parses raw SubRip text into the cue set of the active item.
func (c *Controller) SetSubtitles(raw string) error {
	return c.SetCues(subtitle.Parse(raw))
}

// LoadSubtitleFile reads a SubRip file into the cue set. On failure the existing cues stay.
func (c *Controller) LoadSubtitleFile(path string) error {
	cues, err := subtitle.Load(path)
	if err != nil {
		return err
	}
	if err := c.SetCues(cues); err != nil {
		return fmt.Errorf("%s: %w", filepath.Base(path), err)
	}
	return nil
}

func (c *Controller) setCue(cue *subtitle.Cue) {
	if cue == c.cue {
		return
	}
	c.cue = cue
	if c.onCue != nil {
		c.onCue(cue)
	}
}

// TogglePlay pauses or resumes the active item and returns whether it is now playing.
func (c *Controller) TogglePlay() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return false, err
	}

	var err error
	if c.playing {
		err = c.media.Pause()
	} else {
		err = c.media.Play()
	}
	if err != nil {
		return c.playing, err
	}

	c.onPaused(c.playing)
	return c.playing, nil
}

// Seek moves the play-head to t, clamped to the item.
func (c *Controller) Seek(t float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seek(t)
}

// SeekRelative moves the play-head by delta seconds, clamped to the item.
func (c *Controller) SeekRelative(delta float64) (float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.seek(c.position + delta)
}

func (c *Controller) seek(t float64) (float64, error) {
	if err := c.requireReady(); err != nil {
		return c.position, err
	}

	t = max(0, min(c.duration.OrEmpty(), t))
	if err := c.media.Seek(t); err != nil {
		return c.position, err
	}

	c.position = t
	c.setCue(subtitle.ActiveCue(c.cues, t))
	return t, nil
}

// VolumeUp raises the volume by step and applies it.
func (c *Controller) VolumeUp(step float64) Values {
	return c.SetVolume(c.prefs.Values().Volume + step)
}

// VolumeDown lowers the volume by step and applies it.
func (c *Controller) VolumeDown(step float64) Values {
	return c.SetVolume(c.prefs.Values().Volume - step)
}

func (c *Controller) SetVolume(v float64) Values {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := c.prefs.SetVolume(v)
	c.apply("volume", func() error { return c.media.SetVolume(values.Volume) })
	c.apply("mute", func() error { return c.media.SetMuted(values.Muted) })
	return values
}

func (c *Controller) ToggleMute() Values {
	c.mu.Lock()
	defer c.mu.Unlock()

	values := c.prefs.SetMuted(!c.prefs.Values().Muted)
	c.apply("mute", func() error { return c.media.SetMuted(values.Muted) })
	return values
}

// CycleSpeed switches to the next playback speed.
func (c *Controller) CycleSpeed() Values {
	c.mu.Lock()
	defer c.mu.Unlock()

	values, _ := c.prefs.SetRate(c.prefs.NextRate())
	c.apply("rate", func() error { return c.media.SetPlaybackRate(values.Rate) })
	return values
}

// apply forwards a preference change to the primitive while an item is loaded.
func (c *Controller) apply(name string, fn func() error) {
	if c.state == Idle {
		return
	}
	if err := fn(); err != nil {
		c.logger().Warnf("apply %s: %v", name, err)
	}
}

// Screenshot saves the current frame into dir and returns the file path.
func (c *Controller) Screenshot(dir string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.requireReady(); err != nil {
		return "", err
	}

	shooter, ok := c.media.(player.Screenshotter)
	if !ok {
		return "", ErrUnsupported
	}

	path := filepath.Join(dir, media.ScreenshotName(c.ref, c.position, c.now()))
	if err := shooter.Screenshot(path); err != nil {
		return "", err
	}
	return path, nil
}
