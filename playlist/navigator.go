// Package playlist owns the ordered list of media references, the selection cursor and the
// loop/shuffle policy used to pick the next item.
package playlist

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/log"
	"github.com/reel-player/reel/media"
	"github.com/samber/lo"
)

// NoSelection is the cursor value when nothing is selected.
const NoSelection = -1

var ErrIndexOutOfRange = errors.New("playlist: index out of range")

// Direction of a cursor move.
type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	switch d {
	case Next:
		return "next"
	case Prev:
		return "prev"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// State is the persisted shape of a navigator.
type State struct {
	Items     []media.Ref `json:"items"`
	Cursor    int         `json:"cursor"`
	Looping   bool        `json:"looping"`
	Shuffling bool        `json:"shuffling"`
}

// Navigator is an ordered, duplicate-tolerant list of media references with a cursor.
// Every mutation is written through to the store.
type Navigator struct {
	store kv.Store
	intn  func(n int) int

	mu        sync.RWMutex
	items     []media.Ref
	cursor    int
	looping   bool
	shuffling bool
}

// Option configures a Navigator.
type Option func(*Navigator)

// WithRand replaces the random index source used by shuffle. intn must return a value in [0, n).
func WithRand(intn func(n int) int) Option {
	return func(n *Navigator) {
		n.intn = intn
	}
}

// New restores a navigator from store. Absent or malformed keys fall back to an empty,
// unselected list with both modes off; an out of range cursor is reset to NoSelection.
func New(ctx context.Context, store kv.Store, opts ...Option) *Navigator {
	n := &Navigator{
		store: store,
		intn:  rand.IntN,
	}
	for _, opt := range opts {
		opt(n)
	}

	n.items = kv.Load(ctx, store, constant.StoragePlaylist, []media.Ref{})
	n.cursor = kv.Load(ctx, store, constant.StorageCurrentIndex, NoSelection)
	n.looping = kv.Load(ctx, store, constant.StorageIsLooping, false)
	n.shuffling = kv.Load(ctx, store, constant.StorageIsShuffling, false)

	if n.items == nil {
		n.items = []media.Ref{}
	}
	if !n.valid(n.cursor) {
		if n.cursor != NoSelection {
			log.Warnf("playlist: discarding persisted cursor %d for %d items", n.cursor, len(n.items))
		}
		n.cursor = NoSelection
	}

	return n
}

func (n *Navigator) valid(index int) bool {
	return index >= 0 && index < len(n.items)
}

// persist writes the full state. Callers hold n.mu.
func (n *Navigator) persist() {
	ctx := context.Background()
	kv.SaveQuietly(ctx, n.store, constant.StoragePlaylist, lo.Ternary(n.items == nil, []media.Ref{}, n.items))
	kv.SaveQuietly(ctx, n.store, constant.StorageCurrentIndex, n.cursor)
	kv.SaveQuietly(ctx, n.store, constant.StorageIsLooping, n.looping)
	kv.SaveQuietly(ctx, n.store, constant.StorageIsShuffling, n.shuffling)
}

// Add appends ref and returns its index. The new item is selected only when nothing was selected.
func (n *Navigator) Add(ref media.Ref) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = append(n.items, ref)
	index := len(n.items) - 1
	if n.cursor == NoSelection {
		n.cursor = index
	}

	n.persist()
	return index
}

// Remove deletes the item at index. Removing the selected item clears the selection.
func (n *Navigator) Remove(index int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.valid(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	n.items = append(n.items[:index:index], n.items[index+1:]...)

	switch {
	case n.cursor == index:
		n.cursor = NoSelection
	case n.cursor > index:
		n.cursor--
	}

	n.persist()
	return nil
}

// Clear empties the list.
func (n *Navigator) Clear() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.items = []media.Ref{}
	n.cursor = NoSelection
	n.persist()
}

// RemoveWhere drops every item matching pred and returns how many were removed.
//
// If the selected item is dropped the selection moves to the first remaining item; otherwise it
// keeps pointing at the same entry at its new index.
func (n *Navigator) RemoveWhere(pred func(media.Ref) bool) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	kept := make([]media.Ref, 0, len(n.items))
	cursor := NoSelection
	selectedRemoved := false

	for i, ref := range n.items {
		if pred(ref) {
			if i == n.cursor {
				selectedRemoved = true
			}
			continue
		}
		if i == n.cursor {
			cursor = len(kept)
		}
		kept = append(kept, ref)
	}

	removed := len(n.items) - len(kept)
	if removed == 0 {
		return 0
	}

	if selectedRemoved {
		cursor = lo.Ternary(len(kept) > 0, 0, NoSelection)
	}

	n.items = kept
	n.cursor = cursor
	n.persist()
	return removed
}

// SelectAt moves the cursor to index. NoSelection deselects.
func (n *Navigator) SelectAt(index int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if index != NoSelection && !n.valid(index) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, index)
	}

	n.cursor = index
	n.persist()
	return nil
}

// Move reorders the item at from to position to. The selection follows the selected entry.
func (n *Navigator) Move(from, to int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.valid(from) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, from)
	}
	if !n.valid(to) {
		return fmt.Errorf("%w: %d", ErrIndexOutOfRange, to)
	}
	if from == to {
		return nil
	}

	ref := n.items[from]
	items := append(n.items[:from:from], n.items[from+1:]...)
	items = append(items[:to:to], append([]media.Ref{ref}, items[to:]...)...)
	n.items = items

	switch {
	case n.cursor == from:
		n.cursor = to
	case from < n.cursor && n.cursor <= to:
		n.cursor--
	case to <= n.cursor && n.cursor < from:
		n.cursor++
	}

	n.persist()
	return nil
}

// Advance moves the cursor one step in dir under the current modes and returns the new cursor.
//
// Shuffle picks a uniformly random index other than the current one, and does nothing with fewer
// than two items. Otherwise the cursor steps by one; past either end it wraps when looping and
// stays on the boundary item when not.
func (n *Navigator) Advance(dir Direction) int {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.advance(dir)
}

func (n *Navigator) advance(dir Direction) int {
	count := len(n.items)
	if count == 0 {
		return n.cursor
	}

	var next int
	if n.shuffling {
		if count <= 1 {
			return n.cursor
		}
		next = n.shuffleIndex(count)
	} else {
		step := lo.Ternary(dir == Prev, -1, 1)
		next = n.cursor + step

		switch {
		case next >= count:
			next = lo.Ternary(n.looping, 0, count-1)
		case next < 0:
			next = lo.Ternary(n.looping, count-1, 0)
		}
	}

	if next != n.cursor {
		n.cursor = next
		n.persist()
	}
	return n.cursor
}

// shuffleIndex draws from the indices other than the cursor.
func (n *Navigator) shuffleIndex(count int) int {
	if !n.valid(n.cursor) {
		return n.intn(count)
	}

	i := n.intn(count - 1)
	if i >= n.cursor {
		i++
	}
	return i
}

// OnItemEnded advances after the selected item finished playing.
// It reports false when playback should stop: the cursor did not move and looping is off.
// A lone item with looping on is restarted.
func (n *Navigator) OnItemEnded() (int, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if len(n.items) == 0 {
		return n.cursor, false
	}

	before := n.cursor
	after := n.advance(Next)

	if after != before {
		return after, true
	}
	return after, n.looping && n.valid(after)
}

// ToggleLoop flips looping and returns the new value.
func (n *Navigator) ToggleLoop() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.looping = !n.looping
	n.persist()
	return n.looping
}

// ToggleShuffle flips shuffling and returns the new value.
func (n *Navigator) ToggleShuffle() bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.shuffling = !n.shuffling
	n.persist()
	return n.shuffling
}

func (n *Navigator) SetLooping(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.looping = on
	n.persist()
}

func (n *Navigator) SetShuffling(on bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.shuffling = on
	n.persist()
}

func (n *Navigator) Looping() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.looping
}

func (n *Navigator) Shuffling() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shuffling
}

// Cursor returns the selected index or NoSelection.
func (n *Navigator) Cursor() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.cursor
}

func (n *Navigator) Len() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return len(n.items)
}

// At returns the item at index.
func (n *Navigator) At(index int) (media.Ref, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.valid(index) {
		return "", false
	}
	return n.items[index], true
}

// Current returns the selected item.
func (n *Navigator) Current() (media.Ref, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if !n.valid(n.cursor) {
		return "", false
	}
	return n.items[n.cursor], true
}

// Items returns a copy of the list.
func (n *Navigator) Items() []media.Ref {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return append([]media.Ref{}, n.items...)
}

// State returns a copy of the full navigator state.
func (n *Navigator) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()

	return State{
		Items:     append([]media.Ref{}, n.items...),
		Cursor:    n.cursor,
		Looping:   n.looping,
		Shuffling: n.shuffling,
	}
}
