package domain

import (
	"context"
	"errors"
	"testing"
)

func TestFieldError_UnwrapsValidation(t *testing.T) {
	err := NewFieldError("sort.by", "unknown key")

	if !errors.Is(err, ErrValidation) {
		t.Fatal("expected errors.Is(err, ErrValidation)")
	}
	want := "validation failed: sort.by: unknown key"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestSearchTrace_Context(t *testing.T) {
	if TraceFromContext(context.Background()) != nil {
		t.Fatal("expected nil trace on bare context")
	}

	ctx, tr := NewContextWithTrace(context.Background())
	TraceFromContext(ctx).RecordCandidates(42, true)
	TraceFromContext(ctx).MarkCacheHit()

	if tr.Candidates != 42 || !tr.Fallback || !tr.CacheHit {
		t.Errorf("trace = %+v", *tr)
	}
}

func TestSearchTrace_NilSafe(t *testing.T) {
	var tr *SearchTrace
	tr.RecordCandidates(1, false)
	tr.MarkCacheHit()
}
