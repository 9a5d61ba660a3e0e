package search

import (
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
)

// postFilter drops rows outside the price range and, when requested, rows
// known to be out of stock. A row without a parsable price fails any range;
// a row without a parsable quantity is never dropped for stock.
func postFilter(items []result.Item, f intent.Filters) []result.Item {
	if !f.Price.IsSet() && !f.Stock.Enabled() {
		return items
	}
	kept := items[:0]
	for _, it := range items {
		if f.Price.IsSet() && (it.Price == nil || !f.Price.Contains(*it.Price)) {
			continue
		}
		if f.Stock.Enabled() && it.Qty != nil && *it.Qty <= 0 {
			continue
		}
		kept = append(kept, it)
	}
	return kept
}

// distribution counts rows per folded category code.
func distribution(items []result.Item) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[it.CategoryCode]++
	}
	return out
}
