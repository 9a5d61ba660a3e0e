package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/kailas-cloud/stockdex/internal/db"
	"github.com/kailas-cloud/stockdex/internal/domain"
	domcat "github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/domain/search/predicate"
)

func TestFetch_Success(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.selectFn = func(_ context.Context, _ *db.SelectQuery) ([]domcat.Item, error) {
		return []domcat.Item{{Name: "a"}, {Name: "b"}}, nil
	}

	p := predicate.New(predicate.AnyOf(predicate.Contains(predicate.FieldName, "قلم")))
	items, err := repo.Fetch(context.Background(), p, 1200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	if len(ms.queries) != 1 {
		t.Fatalf("expected one query, got %d", len(ms.queries))
	}
	q := ms.queries[0]
	if !strings.Contains(q.SQL, `"c_name" LIKE ?`) || !strings.Contains(q.SQL, "LIMIT") {
		t.Errorf("unexpected SQL: %s", q.SQL)
	}
}

func TestFetch_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		storeErr error
		want     error
	}{
		{"timeout", &db.Error{Op: db.OpSelect, Err: fmt.Errorf("%w: slow", db.ErrTimeout)}, domain.ErrStoreTimeout},
		{"schema", &db.Error{Op: db.OpSelect, Err: db.ErrSchemaMismatch}, domain.ErrConfiguration},
		{"missing file", &db.Error{Op: db.OpSelect, Err: db.ErrNotFound}, domain.ErrConfiguration},
		{"io", errors.New("disk I/O error"), domain.ErrConfiguration},
		{"canceled", context.Canceled, context.Canceled},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo, ms := newTestRepo(t)
			ms.selectFn = func(_ context.Context, _ *db.SelectQuery) ([]domcat.Item, error) {
				return nil, tc.storeErr
			}

			_, err := repo.Fetch(context.Background(), predicate.Predicate{}, 10)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestFetch_UnmappedSchema(t *testing.T) {
	ms := &mockStore{}
	repo := New(ms, db.Schema{Table: "products"})

	_, err := repo.Fetch(context.Background(), predicate.Predicate{}, 10)
	if !errors.Is(err, domain.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(ms.queries) != 0 {
		t.Error("store must not be called with an unbuildable query")
	}
}

func TestExplain(t *testing.T) {
	repo, ms := newTestRepo(t)

	p := predicate.New(predicate.AnyOf(predicate.In(predicate.FieldCategory, "s", "l")))
	sql, args, err := repo.Explain(p, 2500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(sql, `"c_category_code" IN (?, ?)`) {
		t.Errorf("unexpected SQL: %s", sql)
	}
	if len(args) < 2 || args[0] != "s" || args[1] != "l" {
		t.Errorf("unexpected args: %v", args)
	}
	if len(ms.queries) != 0 {
		t.Error("Explain must not hit the store")
	}
}
