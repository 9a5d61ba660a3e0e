package intent

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// CategorySelector is the category_code field: absent, one code, or a list.
type CategorySelector struct {
	codes []string
	list  bool
	set   bool
}

// SingleCategory selects one category code.
func SingleCategory(code string) CategorySelector {
	return CategorySelector{codes: []string{code}, set: true}
}

// Categories selects a list of category codes.
func Categories(codes ...string) CategorySelector {
	return CategorySelector{codes: append([]string(nil), codes...), list: true, set: true}
}

// IsSet reports whether the caller supplied category_code at all.
func (c CategorySelector) IsSet() bool { return c.set }

// IsList reports whether category_code was supplied as a list.
func (c CategorySelector) IsList() bool { return c.list }

// Codes returns the codes as supplied.
func (c CategorySelector) Codes() []string { return c.codes }

// Resolved returns the folded codes with blanks dropped and duplicates
// removed, in first-seen order.
func (c CategorySelector) Resolved() []string {
	if !c.set {
		return nil
	}
	out := make([]string, 0, len(c.codes))
	seen := make(map[string]struct{}, len(c.codes))
	for _, raw := range c.codes {
		code := textnorm.Fold(raw)
		if code == "" {
			continue
		}
		if _, dup := seen[code]; dup {
			continue
		}
		seen[code] = struct{}{}
		out = append(out, code)
	}
	return out
}

// UnmarshalJSON accepts null, a string, or an array of strings.
func (c *CategorySelector) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*c = CategorySelector{}
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("category_code: %w", err)
		}
		*c = SingleCategory(s)
		return nil
	case len(data) > 0 && data[0] == '[':
		var list []string
		if err := json.Unmarshal(data, &list); err != nil {
			return fmt.Errorf("category_code must be a list of strings: %w", err)
		}
		*c = Categories(list...)
		return nil
	default:
		return fmt.Errorf("category_code must be a string, a list of strings or null")
	}
}

// MarshalJSON echoes the selector in the shape it was supplied.
func (c CategorySelector) MarshalJSON() ([]byte, error) {
	switch {
	case !c.set:
		return []byte("null"), nil
	case c.list:
		codes := c.codes
		if codes == nil {
			codes = []string{}
		}
		return json.Marshal(codes)
	default:
		return json.Marshal(c.codes[0])
	}
}
