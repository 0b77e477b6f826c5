// Package engine wires persistence, the playlist, watch history and the session controller to a
// media player, and pumps the player's notifications through the controller.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/reel-player/reel/history"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/playlist"
	"github.com/reel-player/reel/session"
)

const flushTimeout = 5 * time.Second

// State is the persisted part of the engine. It is usable without a player, e.g. to edit the
// playlist from the command line.
type State struct {
	store *kv.Queue

	History     *history.Ledger
	Playlist    *playlist.Navigator
	Preferences *session.Preferences
}

// OpenState opens the configured store and restores playlist, history and preferences from it.
func OpenState(ctx context.Context, opts kv.Options) (*State, error) {
	store, err := kv.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	queue := kv.NewQueue(store)
	return &State{
		store:       queue,
		History:     history.New(ctx, queue),
		Playlist:    playlist.New(ctx, queue),
		Preferences: session.NewPreferences(ctx, queue),
	}, nil
}

// Flush waits until every pending write reached the store.
func (s *State) Flush(ctx context.Context) error {
	return s.store.Flush(ctx)
}

// ClearWatched drops every playlist entry whose history record is completed.
func (s *State) ClearWatched() int {
	return s.Playlist.RemoveWhere(s.History.IsCompleted)
}

// Close flushes pending writes and closes the store.
func (s *State) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	var errs []error
	if err := s.store.Flush(ctx); err != nil {
		log.Warnf("flush store: %v", err)
		errs = append(errs, err)
	}
	if err := s.store.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
