package rescache

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
)

type mockSearcher struct {
	searchFn func(ctx context.Context, in intent.Intent) (*result.Envelope, error)
	calls    int
}

func (m *mockSearcher) Search(ctx context.Context, in intent.Intent) (*result.Envelope, error) {
	m.calls++
	if m.searchFn != nil {
		return m.searchFn(ctx, in)
	}
	domain.TraceFromContext(ctx).RecordCandidates(3, true)
	return &result.Envelope{
		Version:              in.Version,
		QueryText:            in.QueryText,
		CategoryCodeUsed:     in.CategoryCode,
		Count:                1,
		CategoryDistribution: map[string]int{"s": 3},
		Results:              []result.Item{{Name: "قلم", CategoryCode: "s", Score: 95}},
	}, nil
}

// mockKVStore implements the consumer interface for tests.
type mockKVStore struct {
	getFn func(ctx context.Context, key string) ([]byte, error)
	setFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

func (m *mockKVStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockKVStore) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, key, value, ttl)
	}
	return nil
}

type mockAliases struct {
	generation uint64
}

func (m *mockAliases) Status() brand.Status {
	return brand.Status{Generation: m.generation}
}

func newTestCachedSearcher(t *testing.T, inner *mockSearcher, s store, aliases *mockAliases) *CachedSearcher {
	t.Helper()
	return New(inner, s, aliases, Options{TTL: time.Minute}, nil, zap.NewNop())
}
