// Package catalog holds the read-only product rows served by the store.
package catalog

// Item is one catalog row as stored. Values are raw text; NULL reads as "".
type Item struct {
	Name        string `db:"name"`
	Qty         string `db:"qty"`
	Price       string `db:"price"`
	Category    string `db:"category_code"`
	Author      string `db:"author_or_type_or_age"`
	Translator  string `db:"translator_or_playtime"`
	Publisher   string `db:"publisher_or_brand"`
	Group       string `db:"group_main"`
	SystemCode  string `db:"system_code"`
	GroupFamily string `db:"groupfamily"`
}
