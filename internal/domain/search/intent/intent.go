package intent

import (
	"github.com/kailas-cloud/stockdex/internal/domain/search/sorting"
)

// Intent limits.
const (
	// MaxQueryLength is the maximum allowed query_text length in characters.
	MaxQueryLength = 4096
	DefaultLimit   = 10
	MinLimit       = 1
	MaxLimit       = 50
	// MaxTerms caps every include/exclude/tag list and the category list.
	MaxTerms       = 32
	DefaultVersion = "1.0"
)

// Intent is a caller's structured search request.
type Intent struct {
	Version      string           `json:"version" validate:"max=32"`
	CategoryCode CategorySelector `json:"category_code"`
	UploadedOnly bool             `json:"uploaded_only"`
	QueryText    string           `json:"query_text" validate:"max=4096"`
	Filters      Filters          `json:"filters"`
	Sort         Sort             `json:"sort"`
	Limit        int              `json:"limit"`
	UI           UI               `json:"ui"`
	Debug        bool             `json:"debug"`
}

// Filters groups the structured filters of an intent.
type Filters struct {
	Name        TextFilter      `json:"name"`
	Author      TextFilter      `json:"author_or_type_or_age"`
	Translator  TextFilter      `json:"translator_or_playtime"`
	Publisher   TextFilter      `json:"publisher_or_brand"`
	Group       TextFilter      `json:"group_main"`
	GroupFamily GroupFamilyTags `json:"groupfamily_tags"`
	Price       PriceFilter     `json:"price"`
	Stock       StockFilter     `json:"stock"`
}

// TextFilter holds OR-matched include terms and AND-negated exclude terms.
type TextFilter struct {
	Include []string `json:"include" validate:"max=32,dive,max=256"`
	Exclude []string `json:"exclude" validate:"max=32,dive,max=256"`
}

// IsEmpty reports whether the filter has no terms.
func (f TextFilter) IsEmpty() bool {
	return len(f.Include) == 0 && len(f.Exclude) == 0
}

// GroupFamilyTags filters the comma-joined groupfamily tag string.
type GroupFamilyTags struct {
	IncludeAll []string `json:"include_all" validate:"max=32,dive,max=256"`
	IncludeAny []string `json:"include_any" validate:"max=32,dive,max=256"`
	Exclude    []string `json:"exclude" validate:"max=32,dive,max=256"`
}

// IsEmpty reports whether no tag filter is set.
func (g GroupFamilyTags) IsEmpty() bool {
	return len(g.IncludeAll) == 0 && len(g.IncludeAny) == 0 && len(g.Exclude) == 0
}

// PriceFilter is an inclusive price range; nil bounds are open.
type PriceFilter struct {
	Min *int64 `json:"min" validate:"omitempty,gte=0"`
	Max *int64 `json:"max" validate:"omitempty,gte=0"`
}

// IsSet reports whether any bound is present.
func (p PriceFilter) IsSet() bool {
	return p.Min != nil || p.Max != nil
}

// Contains reports whether price lies within the bounds.
func (p PriceFilter) Contains(price int64) bool {
	if p.Min != nil && price < *p.Min {
		return false
	}
	if p.Max != nil && price > *p.Max {
		return false
	}
	return true
}

// StockFilter restricts results to items with stock on hand.
type StockFilter struct {
	InStockOnly *bool `json:"in_stock_only"`
}

// Enabled reports whether the in-stock restriction applies.
func (s StockFilter) Enabled() bool {
	return s.InStockOnly != nil && *s.InStockOnly
}

// Sort selects the ranking strategy.
type Sort struct {
	By        sorting.Key       `json:"by" validate:"omitempty,oneof=relevance price qty"`
	Direction sorting.Direction `json:"direction" validate:"omitempty,oneof=asc desc"`
}

// UI carries upstream clarification hints; echoed, never interpreted.
type UI struct {
	NeedClarification     bool    `json:"need_clarification"`
	ClarificationQuestion *string `json:"clarification_question"`
}

// IsZero reports whether the block carries nothing worth echoing.
func (u UI) IsZero() bool {
	return !u.NeedClarification && u.ClarificationQuestion == nil
}

// Default returns an intent with every field at its documented default.
// Decoding into it leaves absent fields at their defaults.
func Default() Intent {
	return Intent{
		Version:      DefaultVersion,
		UploadedOnly: true,
		Sort:         Sort{By: sorting.Relevance, Direction: sorting.Desc},
		Limit:        DefaultLimit,
	}
}

// HasStructuredFilter reports whether the caller supplied any category or
// per-field/tag filter. Price and stock do not count.
func (in Intent) HasStructuredFilter() bool {
	f := in.Filters
	return in.CategoryCode.IsSet() ||
		!f.Name.IsEmpty() ||
		!f.Author.IsEmpty() ||
		!f.Translator.IsEmpty() ||
		!f.Publisher.IsEmpty() ||
		!f.Group.IsEmpty() ||
		!f.GroupFamily.IsEmpty()
}

// EffectiveLimit clamps the requested limit to [MinLimit, MaxLimit].
func (in Intent) EffectiveLimit() int {
	switch {
	case in.Limit < MinLimit:
		return MinLimit
	case in.Limit > MaxLimit:
		return MaxLimit
	default:
		return in.Limit
	}
}

// SortKey returns the sort key, defaulting to relevance.
func (in Intent) SortKey() sorting.Key {
	if in.Sort.By == "" {
		return sorting.Relevance
	}
	return in.Sort.By
}

// SortDirection returns the sort direction, defaulting to descending.
func (in Intent) SortDirection() sorting.Direction {
	if in.Sort.Direction == "" {
		return sorting.Desc
	}
	return in.Sort.Direction
}
