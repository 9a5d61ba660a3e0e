package result

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/kailas-cloud/stockdex/internal/domain/catalog"
	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// Item is the per-request display copy of a catalog row.
type Item struct {
	Name         string `json:"name"`
	Qty          *int64 `json:"qty"`
	Price        *int64 `json:"price"`
	CategoryCode string `json:"category_code"`
	Author       string `json:"author_or_type_or_age"`
	Translator   string `json:"translator_or_playtime"`
	Publisher    string `json:"publisher_or_brand"`
	Group        string `json:"group_main"`
	GroupFamily  string `json:"groupfamily"`
	SystemCode   string `json:"system_code"`
	Score        int    `json:"score"`
}

// FromCatalog normalizes display fields, folds the category code and parses
// price and quantity. Unparsable numbers become nil.
func FromCatalog(row catalog.Item) Item {
	it := Item{
		Name:         textnorm.Normalize(row.Name),
		CategoryCode: textnorm.Fold(row.Category),
		Author:       textnorm.Normalize(row.Author),
		Translator:   textnorm.Normalize(row.Translator),
		Publisher:    textnorm.Normalize(row.Publisher),
		Group:        textnorm.Normalize(row.Group),
		GroupFamily:  textnorm.Normalize(row.GroupFamily),
		SystemCode:   strings.TrimSpace(row.SystemCode),
	}
	if v, ok := ParsePrice(row.Price); ok {
		it.Price = &v
	}
	if v, ok := ParseQuantity(row.Qty); ok {
		it.Qty = &v
	}
	return it
}

// priceNoise are thousands separators and spacing dropped before parsing.
func priceNoise(r rune) bool {
	return r == ',' || r == '٬' || r == '،' || unicode.IsSpace(r)
}

// ParsePrice extracts the leading digit run of a raw price after mapping
// Persian digits and dropping separators: "12,500 تومان" -> 12500.
func ParsePrice(raw string) (int64, bool) {
	s := strings.Map(func(r rune) rune {
		if priceNoise(r) {
			return -1
		}
		return r
	}, textnorm.ASCIIDigits(raw))

	start := strings.IndexFunc(s, isASCIIDigit)
	if start < 0 {
		return 0, false
	}
	end := start
	for end < len(s) && isASCIIDigit(rune(s[end])) {
		end++
	}
	v, err := strconv.ParseInt(s[start:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// ParseQuantity parses an integer quantity. Integral decimals such as "3.0"
// are accepted; anything else is absent.
func ParseQuantity(raw string) (int64, bool) {
	s := strings.TrimSpace(textnorm.ASCIIDigits(raw))
	if s == "" {
		return 0, false
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int64(f)) {
		return 0, false
	}
	return int64(f), true
}

func isASCIIDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
