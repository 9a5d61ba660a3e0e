package domain

import "context"

type searchTraceKey struct{}

// SearchTrace collects pipeline facts for a single HTTP request.
// The handler puts a mutable pointer into the context before calling the service;
// the service records stage outcomes; the handler reads it for response headers.
type SearchTrace struct {
	Candidates int
	Fallback   bool
	CacheHit   bool
}

// NewContextWithTrace returns a context with an embedded trace collector.
func NewContextWithTrace(ctx context.Context) (context.Context, *SearchTrace) {
	t := &SearchTrace{}
	return context.WithValue(ctx, searchTraceKey{}, t), t
}

// TraceFromContext extracts the trace collector from context. Returns nil if not set.
func TraceFromContext(ctx context.Context) *SearchTrace {
	t, _ := ctx.Value(searchTraceKey{}).(*SearchTrace)
	return t
}

// RecordCandidates stores the candidate count that reached post-filtering.
func (t *SearchTrace) RecordCandidates(n int, fallback bool) {
	if t != nil {
		t.Candidates = n
		t.Fallback = fallback
	}
}

// MarkCacheHit flags a response served from the result cache.
func (t *SearchTrace) MarkCacheHit() {
	if t != nil {
		t.CacheHit = true
	}
}
