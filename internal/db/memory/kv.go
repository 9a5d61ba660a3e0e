// Package memory is an in-process result-cache backend.
package memory

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/kailas-cloud/stockdex/internal/db"
)

// DefaultSize is used when a non-positive size is requested.
const DefaultSize = 1024

// Compile-time check: Store implements db.KVStore.
var _ db.KVStore = (*Store)(nil)

type entry struct {
	value   []byte
	expires time.Time // zero means no expiry
}

// Store is a size-bounded LRU with per-entry expiry.
type Store struct {
	cache *lru.Cache[string, entry]
	now   func() time.Time
}

// NewStore creates an LRU store holding at most size entries.
func NewStore(size int) *Store {
	if size <= 0 {
		size = DefaultSize
	}
	cache, _ := lru.New[string, entry](size)
	return &Store{cache: cache, now: time.Now}
}

// Get returns a live value or db.ErrKeyNotFound. Expired entries are evicted on read.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := s.cache.Get(key)
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	if !e.expires.IsZero() && !s.now().Before(e.expires) {
		s.cache.Remove(key)
		return nil, db.ErrKeyNotFound
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, nil
}

// SetWithTTL stores a copy of value. A non-positive ttl never expires.
func (s *Store) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expires = s.now().Add(ttl)
	}
	s.cache.Add(key, e)
	return nil
}

// Len returns the number of entries, expired ones included.
func (s *Store) Len() int { return s.cache.Len() }

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Close drops every entry.
func (s *Store) Close() { s.cache.Purge() }
