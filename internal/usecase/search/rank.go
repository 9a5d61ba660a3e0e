package search

import (
	"sort"

	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	"github.com/kailas-cloud/stockdex/internal/domain/search/sorting"
)

// rank orders items in place. Every strategy is stable. Relevance is always
// descending; price and qty honor dir and put absent values last either way.
func rank(items []result.Item, key sorting.Key, dir sorting.Direction) {
	switch key {
	case sorting.Price:
		sortOptional(items, func(it *result.Item) *int64 { return it.Price }, dir)
	case sorting.Qty:
		sortOptional(items, func(it *result.Item) *int64 { return it.Qty }, dir)
	default:
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].Score > items[j].Score
		})
	}
}

func sortOptional(items []result.Item, value func(*result.Item) *int64, dir sorting.Direction) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := value(&items[i]), value(&items[j])
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		case dir == sorting.Asc:
			return *a < *b
		default:
			return *a > *b
		}
	})
}

func truncate(items []result.Item, limit int) []result.Item {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
