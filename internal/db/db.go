package db

import (
	"context"
	"time"

	"github.com/kailas-cloud/stockdex/internal/domain/catalog"
)

// Store is the catalog database facade.
type Store interface {
	Pinger
	CatalogReader
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CatalogReader runs read-only catalog selects.
type CatalogReader interface {
	SelectCatalog(ctx context.Context, q *SelectQuery) ([]catalog.Item, error)
}

// KVStore provides simple key-value operations for caches.
type KVStore interface {
	Pinger
	Get(ctx context.Context, key string) ([]byte, error)
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close()
}
