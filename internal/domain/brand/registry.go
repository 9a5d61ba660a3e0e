package brand

import (
	"sync/atomic"
	"time"
)

// Status describes the active alias map.
type Status struct {
	Loaded     bool      `json:"loaded"`
	Source     string    `json:"source"`
	Groups     int       `json:"groups"`
	LoadedAt   time.Time `json:"loaded_at"`
	Generation uint64    `json:"generation"`
}

type snapshot struct {
	aliases *AliasMap
	status  Status
}

// Registry holds the current alias map. Readers always see a whole map;
// Replace swaps it atomically.
type Registry struct {
	cur atomic.Pointer[snapshot]
}

// NewRegistry creates a registry serving m. A nil map serves singletons.
func NewRegistry(m *AliasMap, source string) *Registry {
	r := &Registry{}
	r.store(m, source, 0)
	return r
}

// Current returns the active alias map.
func (r *Registry) Current() *AliasMap {
	return r.cur.Load().aliases
}

// Replace installs m as the active map, bumps the generation and returns the
// installed status. Concurrent replacements each get a distinct generation.
func (r *Registry) Replace(m *AliasMap, source string) Status {
	for {
		old := r.cur.Load()
		next := newSnapshot(m, source, old.status.Generation+1)
		if r.cur.CompareAndSwap(old, next) {
			return next.status
		}
	}
}

// Status returns load metadata of the active map.
func (r *Registry) Status() Status {
	return r.cur.Load().status
}

// Expand delegates to the active map.
func (r *Registry) Expand(term string) []string {
	return r.Current().Expand(term)
}

func (r *Registry) store(m *AliasMap, source string, gen uint64) {
	r.cur.Store(newSnapshot(m, source, gen))
}

func newSnapshot(m *AliasMap, source string, gen uint64) *snapshot {
	return &snapshot{
		aliases: m,
		status: Status{
			Loaded:     m.Len() > 0,
			Source:     source,
			Groups:     m.Len(),
			LoadedAt:   time.Now().UTC(),
			Generation: gen,
		},
	}
}
