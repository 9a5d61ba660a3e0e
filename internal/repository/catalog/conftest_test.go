package catalog

import (
	"context"
	"testing"

	"github.com/kailas-cloud/stockdex/internal/db"
	domcat "github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	selectFn func(ctx context.Context, q *db.SelectQuery) ([]domcat.Item, error)
	queries  []*db.SelectQuery
}

func (m *mockStore) SelectCatalog(ctx context.Context, q *db.SelectQuery) ([]domcat.Item, error) {
	m.queries = append(m.queries, q)
	if m.selectFn != nil {
		return m.selectFn(ctx, q)
	}
	return nil, nil
}

func testSchema() db.Schema {
	cols := make(map[predicate.Field]string, len(predicate.DisplayFields))
	for _, f := range predicate.DisplayFields {
		cols[f] = "c_" + string(f)
	}
	return db.Schema{Table: "products", Columns: cols}
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, testSchema()), ms
}
