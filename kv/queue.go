package kv

import (
	"context"
	"sync"
	"time"

	"github.com/reel-player/reel/log"
	"github.com/sirupsen/logrus"
)

const writeTimeout = 5 * time.Second

type pendingWrite struct {
	gen    uint64
	value  []byte
	delete bool
}

// Queue wraps a Store and moves writes off the caller's path.
//
// Writes to the same key coalesce: only the newest pending value reaches the backend, and a
// value is never committed after a newer one for the same key. Reads see pending writes first.
type Queue struct {
	store Store

	mu        sync.Mutex
	pending   map[string]pendingWrite
	inflight  map[string]pendingWrite
	committed map[string]uint64
	gen       uint64
	idle      chan struct{}
	closed    bool

	wake    chan struct{}
	stop    chan struct{}
	stopped chan struct{}
}

// NewQueue starts the background writer for store.
func NewQueue(store Store) *Queue {
	idle := make(chan struct{})
	close(idle)

	q := &Queue{
		store:     store,
		pending:   make(map[string]pendingWrite),
		committed: make(map[string]uint64),
		idle:      idle,
		wake:      make(chan struct{}, 1),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}

	go q.run()
	return q
}

func (q *Queue) enqueue(key string, w pendingWrite) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}

	q.gen++
	w.gen = q.gen
	q.pending[key] = w

	select {
	case <-q.idle:
		q.idle = make(chan struct{})
	default:
	}
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return nil
}

func (q *Queue) Put(_ context.Context, key string, value []byte) error {
	return q.enqueue(key, pendingWrite{value: clone(value)})
}

func (q *Queue) Delete(_ context.Context, key string) error {
	return q.enqueue(key, pendingWrite{delete: true})
}

func (q *Queue) Get(ctx context.Context, key string) ([]byte, bool, error) {
	q.mu.Lock()
	w, ok := q.pending[key]
	if !ok {
		w, ok = q.inflight[key]
	}
	q.mu.Unlock()

	if ok {
		if w.delete {
			return nil, false, nil
		}
		return clone(w.value), true, nil
	}

	return q.store.Get(ctx, key)
}

// Flush blocks until every write accepted so far has reached the backend or ctx is done.
func (q *Queue) Flush(ctx context.Context) error {
	q.mu.Lock()
	idle := q.idle
	q.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close drains pending writes, stops the writer and closes the backend.
func (q *Queue) Close() error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return nil
	}
	q.closed = true
	q.mu.Unlock()

	close(q.stop)
	<-q.stopped

	return q.store.Close()
}

func (q *Queue) run() {
	defer close(q.stopped)

	for {
		select {
		case <-q.wake:
			q.drain()
		case <-q.stop:
			q.drain()
			return
		}
	}
}

func (q *Queue) drain() {
	for {
		q.mu.Lock()
		if len(q.pending) == 0 {
			q.inflight = nil
			select {
			case <-q.idle:
			default:
				close(q.idle)
			}
			q.mu.Unlock()
			return
		}
		batch := q.pending
		q.pending = make(map[string]pendingWrite)
		q.inflight = batch
		q.mu.Unlock()

		for key, w := range batch {
			q.commit(key, w)
		}
	}
}

func (q *Queue) commit(key string, w pendingWrite) {
	q.mu.Lock()
	stale := w.gen <= q.committed[key]
	q.mu.Unlock()
	if stale {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	var err error
	if w.delete {
		err = q.store.Delete(ctx, key)
	} else {
		err = q.store.Put(ctx, key, w.value)
	}

	if err != nil {
		log.WithFields(logrus.Fields{"key": key}).Warnf("persist failed: %v", err)
		return
	}

	q.mu.Lock()
	q.committed[key] = w.gen
	q.mu.Unlock()
}
