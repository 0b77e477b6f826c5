// Package history keeps the watch-history ledger: last known position, duration and completion per
// media reference.
package history

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/reel-player/reel/constant"
	"github.com/reel-player/reel/kv"
	"github.com/reel-player/reel/media"
	"github.com/samber/lo"
)

// Ledger is the watch-history map. Every mutation persists the whole map under
// constant.StorageWatchHistory.
type Ledger struct {
	store kv.Store
	now   func() time.Time

	mu      sync.RWMutex
	records map[media.Ref]Record
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithClock replaces time.Now, used to stamp lastWatched.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		l.now = now
	}
}

// New loads the ledger from store. A missing or malformed map starts empty.
func New(ctx context.Context, store kv.Store, opts ...Option) *Ledger {
	l := &Ledger{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}

	l.records = kv.Load(ctx, store, constant.StorageWatchHistory, map[media.Ref]Record{})
	if l.records == nil {
		l.records = make(map[media.Ref]Record)
	}

	return l
}

// IsComplete applies the completion rule: position at or beyond 95% of duration.
func IsComplete(position, duration float64) bool {
	return position >= duration*constant.CompletionThreshold
}

// RecordPosition stores a position snapshot. Completed items are stored with position 0.
func (l *Ledger) RecordPosition(ref media.Ref, position, duration float64) Record {
	completed := IsComplete(position, duration)
	if completed {
		position = 0
	}

	return l.put(ref, Record{
		Position:  position,
		Duration:  duration,
		Completed: completed,
	})
}

// MarkCompleted records a natural end of playback, regardless of the last reported position.
func (l *Ledger) MarkCompleted(ref media.Ref, duration float64) Record {
	return l.put(ref, Record{
		Position:  0,
		Duration:  duration,
		Completed: true,
	})
}

func (l *Ledger) put(ref media.Ref, r Record) Record {
	r.LastWatched = l.now().UnixMilli()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.records[ref] = r
	l.persist()
	return r
}

// Get returns the record for ref.
func (l *Ledger) Get(ref media.Ref) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.records[ref]
	return r, ok
}

// ProgressPercent returns the watched percentage of ref, 0 when unknown or without a duration.
func (l *Ledger) ProgressPercent(ref media.Ref) float64 {
	r, ok := l.Get(ref)
	if !ok {
		return 0
	}
	return r.Progress()
}

// IsCompleted reports whether ref has a completed record.
func (l *Ledger) IsCompleted(ref media.Ref) bool {
	r, ok := l.Get(ref)
	return ok && r.Completed
}

// ResumePosition returns the position playback should restart from, if any.
func (l *Ledger) ResumePosition(ref media.Ref) (float64, bool) {
	r, ok := l.Get(ref)
	if !ok || r.Completed || r.Position <= 0 {
		return 0, false
	}
	return r.Position, true
}

// All returns every record, most recently watched first.
func (l *Ledger) All() []Entry {
	l.mu.RLock()
	entries := lo.MapToSlice(l.records, func(ref media.Ref, r Record) Entry {
		return Entry{Ref: ref, Record: r}
	})
	l.mu.RUnlock()

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Record.LastWatched != entries[j].Record.LastWatched {
			return entries[i].Record.LastWatched > entries[j].Record.LastWatched
		}
		return entries[i].Ref < entries[j].Ref
	})

	return entries
}

// Remove deletes the record for ref. It reports whether a record existed.
func (l *Ledger) Remove(ref media.Ref) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	_, ok := l.records[ref]
	if ok {
		delete(l.records, ref)
		l.persist()
	}
	return ok
}

// Clear deletes every record.
func (l *Ledger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = make(map[media.Ref]Record)
	l.persist()
}

// Len returns the number of records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// persist writes the whole map. Callers hold l.mu for writing, so saves land in mutation order.
func (l *Ledger) persist() {
	kv.SaveQuietly(context.Background(), l.store, constant.StorageWatchHistory, l.records)
}
