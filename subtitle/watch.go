package subtitle

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/reel-player/reel/log"
	"github.com/sirupsen/logrus"
)

const settleDelay = 150 * time.Millisecond

// Watcher reloads a subtitle file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself, so editors that save through
// rename are still picked up. Reloads that yield no cues are not delivered.
type Watcher struct {
	path    string
	fs      *fsnotify.Watcher
	updates chan []*Cue

	closeOnce sync.Once
	done      chan struct{}
	stopped   chan struct{}
}

// Watch starts watching path.
func Watch(path string) (*Watcher, error) {
	path = filepath.Clean(path)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    path,
		fs:      fsw,
		updates: make(chan []*Cue, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}

	go w.loop()
	return w, nil
}

// Updates delivers freshly parsed cue sets. Only the newest pending set is kept.
func (w *Watcher) Updates() <-chan []*Cue {
	return w.updates
}

// Close stops watching. Updates is closed once the watcher goroutine exits.
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		<-w.stopped
	})
	return err
}

func (w *Watcher) loop() {
	defer close(w.stopped)
	defer close(w.updates)

	settle := time.NewTimer(settleDelay)
	settle.Stop()
	defer settle.Stop()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				settle.Reset(settleDelay)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.WithFields(logrus.Fields{"path": w.path}).Warnf("subtitle watcher: %v", err)
		case <-settle.C:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cues, err := Load(w.path)
	if err != nil {
		log.WithFields(logrus.Fields{"path": w.path}).Warnf("reload subtitles: %v", err)
		return
	}
	if len(cues) == 0 {
		return
	}

	// replace a set nobody has picked up yet
	select {
	case <-w.updates:
	default:
	}

	select {
	case w.updates <- cues:
	case <-w.done:
	}
}
