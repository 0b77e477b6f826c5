package engine

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"

	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/filesystem"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/reel-player/reel/notify"
	"github.com/reel-player/reel/player"
	"github.com/reel-player/reel/playlist"
	"github.com/reel-player/reel/session"
	"github.com/reel-player/reel/subtitle"
	"github.com/samber/mo"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

var (
	ErrEmptyPlaylist = errors.New("engine: playlist is empty")
	ErrNoNext        = errors.New("engine: no item in that direction")
)

// Engine plays the persisted playlist through a media player.
type Engine struct {
	*State

	opts       Options
	media      player.Media
	controller *session.Controller

	overlay chan string

	mu         sync.Mutex
	watcher    *subtitle.Watcher
	seekOnLoad mo.Option[float64]

	closeOnce sync.Once
	closeErr  error
}

// Open restores the persisted state and prepares the player. The player process itself starts with
// the first loaded item.
func Open(ctx context.Context, opts Options) (*Engine, error) {
	state, err := OpenState(ctx, opts.Store)
	if err != nil {
		return nil, err
	}

	m := opts.Media
	if m == nil {
		binary := opts.Player
		if binary == "" {
			binary = constant.MPV
		}
		m = player.NewMPV(binary)
	}

	e := &Engine{
		State:   state,
		opts:    opts,
		media:   m,
		overlay: make(chan string, 1),
	}

	e.controller = session.New(m, state.History, state.Playlist, state.Preferences,
		session.WithSnapshotInterval(opts.SnapshotInterval),
		session.WithResume(opts.Resume),
		session.WithCueListener(e.onCue),
		session.WithStateListener(e.onState),
	)

	return e, nil
}

// Controller exposes the session controller for user controls.
func (e *Engine) Controller() *session.Controller {
	return e.controller
}

// onCue runs under the controller lock, so drawing is left to Run.
func (e *Engine) onCue(cue *subtitle.Cue) {
	var text string
	if cue != nil {
		text = cue.Text
	}

	select {
	case <-e.overlay:
	default:
	}
	select {
	case e.overlay <- text:
	default:
	}
}

func (e *Engine) onState(from, to session.State, s session.Snapshot) {
	switch {
	case from == session.Loading && to == session.Ready:
		index, total := e.Playlist.Cursor(), e.Playlist.Len()
		go notify.NowPlaying(s.Ref, index, total)
	case to == session.Error:
		go notify.Failed(s.Ref, s.Reason)
	}
}

// SeekOnLoad moves the play-head of the next item to t once its metadata is known.
func (e *Engine) SeekOnLoad(t float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.seekOnLoad = mo.Some(t)
}

// Play loads the selected playlist entry, selecting the first one when nothing is selected.
func (e *Engine) Play(ctx context.Context) error {
	if e.Playlist.Len() == 0 {
		return ErrEmptyPlaylist
	}
	if e.Playlist.Cursor() == playlist.NoSelection {
		if err := e.Playlist.SelectAt(0); err != nil {
			return err
		}
	}
	return e.playCurrent(ctx)
}

// PlayIndex selects and loads the entry at index.
func (e *Engine) PlayIndex(ctx context.Context, index int) error {
	if err := e.Playlist.SelectAt(index); err != nil {
		return err
	}
	return e.playCurrent(ctx)
}

// Next loads the following entry, honoring loop and shuffle.
func (e *Engine) Next(ctx context.Context) error {
	return e.step(ctx, playlist.Next)
}

// Prev loads the preceding entry, honoring loop and shuffle.
func (e *Engine) Prev(ctx context.Context) error {
	return e.step(ctx, playlist.Prev)
}

func (e *Engine) step(ctx context.Context, dir playlist.Direction) error {
	if e.Playlist.Len() == 0 {
		return ErrEmptyPlaylist
	}

	before := e.Playlist.Cursor()
	if after := e.Playlist.Advance(dir); after == before && !e.Playlist.Looping() {
		return ErrNoNext
	}
	return e.playCurrent(ctx)
}

func (e *Engine) playCurrent(ctx context.Context) error {
	ref, ok := e.Playlist.Current()
	if !ok {
		return ErrEmptyPlaylist
	}

	e.detachSubtitles()

	ticket := e.controller.LoadItem(ctx, ref)
	if err := e.controller.Err(); err != nil {
		return err
	}

	if e.opts.SiblingSubtitles {
		if path, ok := siblingSubtitles(ref); ok {
			if err := e.loadSubtitles(ticket, path); err != nil {
				log.Warnf("sibling subtitles: %v", err)
			}
		}
	}
	return nil
}

// siblingSubtitles returns "<stem>.srt" next to a local item when that file exists.
func siblingSubtitles(ref media.Ref) (string, bool) {
	if !strings.HasPrefix(string(ref), "file:///") {
		return "", false
	}

	path := ref.Path()
	candidate := strings.TrimSuffix(path, filepath.Ext(path)) + "." + constant.SubtitleExtension
	exists, err := filesystem.API().Exists(candidate)
	return candidate, err == nil && exists
}

// LoadSubtitles attaches a SubRip file to the active item. With subtitle watching enabled the cues
// follow later edits of the file until another item is loaded.
func (e *Engine) LoadSubtitles(path string) error {
	return e.loadSubtitles(e.controller.Snapshot().Ticket, path)
}

func (e *Engine) loadSubtitles(ticket session.Ticket, path string) error {
	cues, err := subtitle.Load(path)
	if err != nil {
		return err
	}
	if err := e.controller.SetCuesFor(ticket, cues); err != nil {
		return err
	}

	if e.opts.WatchSubtitles {
		e.watchSubtitles(ticket, path)
	}
	return nil
}

func (e *Engine) watchSubtitles(ticket session.Ticket, path string) {
	w, err := subtitle.Watch(path)
	if err != nil {
		log.Warnf("watch %s: %v", path, err)
		return
	}

	e.mu.Lock()
	previous := e.watcher
	e.watcher = w
	e.mu.Unlock()

	if previous != nil {
		_ = previous.Close()
	}

	go func() {
		for cues := range w.Updates() {
			if err := e.controller.SetCuesFor(ticket, cues); err != nil {
				log.Debugf("reloaded subtitles ignored: %v", err)
			}
		}
	}()
}

func (e *Engine) detachSubtitles() {
	e.mu.Lock()
	w := e.watcher
	e.watcher = nil
	e.mu.Unlock()

	if w != nil {
		_ = w.Close()
	}
}

// Screenshot saves the current frame into dir.
func (e *Engine) Screenshot(dir string) (string, error) {
	return e.controller.Screenshot(dir)
}

// Run pumps player notifications through the controller until ctx is done, the player exits or,
// unless StayOpen is set, the playlist stops after its last item.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return e.pump(ctx)
	})

	g.Go(func() error {
		e.drawOverlay(ctx)
		return nil
	})

	return g.Wait()
}

func (e *Engine) pump(ctx context.Context) error {
	notifications := e.media.Notifications()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n, ok := <-notifications:
			if !ok {
				log.Info("player exited")
				return nil
			}

			adv, ended := e.controller.Notify(n).Get()
			if n.Kind == player.LoadedMetadata {
				e.applySeekOnLoad()
			}
			if !ended {
				continue
			}

			if finished := e.advance(ctx, adv); finished && !e.opts.StayOpen {
				return nil
			}
		}
	}
}

func (e *Engine) applySeekOnLoad() {
	if e.controller.Snapshot().State != session.Ready {
		return
	}

	e.mu.Lock()
	t, ok := e.seekOnLoad.Get()
	e.seekOnLoad = mo.None[float64]()
	e.mu.Unlock()

	if !ok {
		return
	}
	if _, err := e.controller.Seek(t); err != nil {
		log.Warnf("seek to %.1f: %v", t, err)
	}
}

// advance hands the end of an item over to the playlist. It reports whether playback finished.
func (e *Engine) advance(ctx context.Context, adv session.Advance) bool {
	entry := log.WithFields(logrus.Fields{"index": adv.Index, "continue": adv.Continue})

	if !adv.Continue {
		entry.Info("playlist finished")
		e.controller.Stop()
		notify.Finished(e.Playlist.Len())
		return true
	}

	if err := e.playCurrent(ctx); err != nil {
		entry.Errorf("load next item: %v", err)
	}
	return false
}

func (e *Engine) drawOverlay(ctx context.Context) {
	overlay, ok := e.media.(player.TextOverlay)

	for {
		select {
		case <-ctx.Done():
			return
		case text := <-e.overlay:
			if !ok {
				continue
			}
			if err := overlay.ShowText(text, e.opts.OverlayDuration); err != nil {
				log.Debugf("draw cue: %v", err)
			}
		}
	}
}

// Close records the position of the active item, shuts the player down and flushes the store.
func (e *Engine) Close() error {
	e.closeOnce.Do(func() {
		e.detachSubtitles()
		e.controller.Stop()

		var errs []error
		if err := e.media.Close(); err != nil {
			errs = append(errs, err)
		}
		if err := e.State.Close(); err != nil {
			errs = append(errs, err)
		}
		e.closeErr = errors.Join(errs...)
	})
	return e.closeErr
}
