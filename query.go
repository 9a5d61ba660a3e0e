package stockdex

import (
	"context"

	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
)

// Query is a fluent builder over an Intent.
type Query struct {
	client *Client
	in     Intent
}

// Text sets the free-text query.
func (q *Query) Text(s string) *Query {
	q.in.QueryText = s
	return q
}

// Category restricts results to one code, or to any of several.
func (q *Query) Category(codes ...string) *Query {
	if len(codes) == 1 {
		q.in.CategoryCode = intent.SingleCategory(codes[0])
	} else {
		q.in.CategoryCode = intent.Categories(codes...)
	}
	return q
}

// Name requires the product name to contain the term. Repeated calls AND together.
func (q *Query) Name(terms ...string) *Query {
	q.in.Filters.Name.Include = append(q.in.Filters.Name.Include, terms...)
	return q
}

// ExcludeName drops products whose name contains any of terms.
func (q *Query) ExcludeName(terms ...string) *Query {
	q.in.Filters.Name.Exclude = append(q.in.Filters.Name.Exclude, terms...)
	return q
}

// Author filters on the author, product type or age column.
func (q *Query) Author(terms ...string) *Query {
	q.in.Filters.Author.Include = append(q.in.Filters.Author.Include, terms...)
	return q
}

// Publisher filters on publisher or brand; terms expand through brand aliases.
func (q *Query) Publisher(terms ...string) *Query {
	q.in.Filters.Publisher.Include = append(q.in.Filters.Publisher.Include, terms...)
	return q
}

// ExcludePublisher drops the given publishers or brands and their aliases.
func (q *Query) ExcludePublisher(terms ...string) *Query {
	q.in.Filters.Publisher.Exclude = append(q.in.Filters.Publisher.Exclude, terms...)
	return q
}

// Group filters on the main product group.
func (q *Query) Group(terms ...string) *Query {
	q.in.Filters.Group.Include = append(q.in.Filters.Group.Include, terms...)
	return q
}

// Tags requires every tag.
func (q *Query) Tags(tags ...string) *Query {
	q.in.Filters.GroupFamily.IncludeAll = append(q.in.Filters.GroupFamily.IncludeAll, tags...)
	return q
}

// AnyTag requires at least one tag.
func (q *Query) AnyTag(tags ...string) *Query {
	q.in.Filters.GroupFamily.IncludeAny = append(q.in.Filters.GroupFamily.IncludeAny, tags...)
	return q
}

// ExcludeTags drops items carrying any tag.
func (q *Query) ExcludeTags(tags ...string) *Query {
	q.in.Filters.GroupFamily.Exclude = append(q.in.Filters.GroupFamily.Exclude, tags...)
	return q
}

// PriceBetween keeps items priced within [lo, hi]. Items without a price are dropped.
func (q *Query) PriceBetween(lo, hi int64) *Query {
	q.in.Filters.Price.Min = &lo
	q.in.Filters.Price.Max = &hi
	return q
}

// MaxPrice keeps items priced at most hi.
func (q *Query) MaxPrice(hi int64) *Query {
	q.in.Filters.Price.Max = &hi
	return q
}

// MinPrice keeps items priced at least lo.
func (q *Query) MinPrice(lo int64) *Query {
	q.in.Filters.Price.Min = &lo
	return q
}

// InStock drops items known to be out of stock.
func (q *Query) InStock() *Query {
	yes := true
	q.in.Filters.Stock.InStockOnly = &yes
	return q
}

// IncludeUnuploaded also returns rows without storefront tags.
func (q *Query) IncludeUnuploaded() *Query {
	q.in.UploadedOnly = false
	return q
}

// SortBy sets the ranking strategy. Direction applies to price and qty only.
func (q *Query) SortBy(key SortKey, dir Direction) *Query {
	q.in.Sort = intent.Sort{By: key, Direction: dir}
	return q
}

// Limit caps the result count; values outside [1, 50] are clamped.
func (q *Query) Limit(n int) *Query {
	q.in.Limit = n
	return q
}

// Debug attaches the compiled query and fallback report to the response.
func (q *Query) Debug() *Query {
	q.in.Debug = true
	return q
}

// Intent returns the built intent.
func (q *Query) Intent() Intent {
	return q.in
}

// Do runs the query.
func (q *Query) Do(ctx context.Context) (*Envelope, error) {
	return q.client.Search(ctx, q.in)
}

// Explain compiles the query without running it.
func (q *Query) Explain(ctx context.Context) (*Explanation, error) {
	return q.client.Explain(ctx, q.in)
}
