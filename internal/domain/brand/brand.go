// Package brand expands publisher/brand terms into their alias groups.
package brand

import (
	"github.com/kailas-cloud/stockdex/internal/textnorm"
)

// Group is one canonical brand with its interchangeable spellings.
type Group struct {
	Canonical string
	Aliases   []string
}

// Terms returns the canonical form followed by its aliases.
func (g Group) Terms() []string {
	out := make([]string, 0, len(g.Aliases)+1)
	out = append(out, g.Canonical)
	return append(out, g.Aliases...)
}

// AliasMap is an immutable, symmetric brand lookup.
type AliasMap struct {
	groups []Group
	index  map[string]int // folded term -> group
}

// NewAliasMap indexes groups in order. When a folded term appears in more
// than one group the earlier group wins.
func NewAliasMap(groups []Group) *AliasMap {
	m := &AliasMap{
		groups: make([]Group, 0, len(groups)),
		index:  make(map[string]int),
	}
	for _, g := range groups {
		g = Group{Canonical: g.Canonical, Aliases: append([]string(nil), g.Aliases...)}
		idx := len(m.groups)
		m.groups = append(m.groups, g)
		for _, term := range g.Terms() {
			key := textnorm.Fold(term)
			if key == "" {
				continue
			}
			if _, taken := m.index[key]; !taken {
				m.index[key] = idx
			}
		}
	}
	return m
}

// Expand returns the full group containing term, or a singleton of term.
// Querying the canonical form or any alias yields the same group.
func (m *AliasMap) Expand(term string) []string {
	if m != nil {
		if idx, ok := m.index[textnorm.Fold(term)]; ok {
			return m.groups[idx].Terms()
		}
	}
	return []string{term}
}

// Lookup returns the group containing term.
func (m *AliasMap) Lookup(term string) (Group, bool) {
	if m == nil {
		return Group{}, false
	}
	idx, ok := m.index[textnorm.Fold(term)]
	if !ok {
		return Group{}, false
	}
	return m.groups[idx], true
}

// Len returns the number of groups.
func (m *AliasMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.groups)
}
