// Package kv is the key-value persistence boundary of the engine.
//
// Every piece of engine state is a JSON document stored under a fixed key. Backends only need to
// honour get/put/delete with all-or-nothing semantics per key; reading a typed value never fails
// loudly, it degrades to the caller's default.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/reel-player/reel/log"
	"github.com/sirupsen/logrus"
)

// ErrClosed is returned by operations on a store that has been closed.
var ErrClosed = errors.New("kv: store closed")

// Store is a persistent key-value capability holding JSON documents.
type Store interface {
	// Get returns the raw document stored under key. ok is false if the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)

	// Put replaces the document stored under key. A failed Put leaves the previous document intact.
	Put(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases the resources held by the backend.
	Close() error
}

// PersistenceError wraps a backend failure for a single key.
type PersistenceError struct {
	Op  string
	Key string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("kv: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Load decodes the document under key into a T. Absent keys, backend failures and malformed
// documents all yield def; failures are logged and never reach the caller.
func Load[T any](ctx context.Context, s Store, key string, def T) T {
	raw, ok, err := s.Get(ctx, key)
	if err != nil {
		log.WithFields(logrus.Fields{"key": key}).Warnf("falling back to default: %v", &PersistenceError{Op: "get", Key: key, Err: err})
		return def
	}
	if !ok || isNull(raw) {
		return def
	}

	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		log.WithFields(logrus.Fields{"key": key}).Warnf("malformed document, falling back to default: %v", err)
		return def
	}
	return v
}

// Save encodes v and writes it under key. Encoding happens before the backend is touched.
func Save[T any](ctx context.Context, s Store, key string, v T) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return &PersistenceError{Op: "encode", Key: key, Err: err}
	}
	if err := s.Put(ctx, key, raw); err != nil {
		return &PersistenceError{Op: "put", Key: key, Err: err}
	}
	return nil
}

// SaveQuietly writes v under key and logs instead of returning the error.
// It is the write-through used after every engine mutation.
func SaveQuietly[T any](ctx context.Context, s Store, key string, v T) {
	if err := Save(ctx, s, key, v); err != nil {
		log.Warnf("%v", err)
	}
}

func isNull(raw []byte) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
