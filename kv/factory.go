package kv

import (
	"fmt"
	"path/filepath"
)

// Backend identifiers accepted by Open.
const (
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendSqlite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
)

// Backends lists the accepted backend identifiers.
func Backends() []string {
	return []string{BackendFile, BackendMemory, BackendSqlite, BackendBadger, BackendRedis}
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Dir     string
	Redis   RedisConfig
}

// Open creates a store for the configured backend. An empty backend means file; file, sqlite and
// badger degrade to memory when no directory is given.
func Open(opts Options) (Store, error) {
	backend := opts.Backend
	if backend == "" {
		backend = BackendFile
	}

	switch backend {
	case BackendFile:
		if opts.Dir == "" {
			return NewMemoryStore(), nil
		}
		return NewFileStore(opts.Dir)
	case BackendMemory:
		return NewMemoryStore(), nil
	case BackendSqlite:
		if opts.Dir == "" {
			return NewMemoryStore(), nil
		}
		return NewSqliteStore(filepath.Join(opts.Dir, "state.sqlite"))
	case BackendBadger:
		if opts.Dir == "" {
			return NewMemoryStore(), nil
		}
		return NewBadgerStore(filepath.Join(opts.Dir, "badger"))
	case BackendRedis:
		return NewRedisStore(opts.Redis)
	default:
		return nil, fmt.Errorf("unknown store backend: %s (supported: file, memory, sqlite, badger, redis)", backend)
	}
}
