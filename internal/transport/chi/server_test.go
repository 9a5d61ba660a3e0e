package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/stockdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
)

// --- Mocks ---

type mockSearcher struct {
	searchFn func(ctx context.Context, in intent.Intent) (*result.Envelope, error)
	last     intent.Intent
}

func (m *mockSearcher) Search(ctx context.Context, in intent.Intent) (*result.Envelope, error) {
	m.last = in
	if m.searchFn != nil {
		return m.searchFn(ctx, in)
	}
	domain.TraceFromContext(ctx).RecordCandidates(7, true)
	return &result.Envelope{
		Version:              in.Version,
		QueryText:            in.QueryText,
		CategoryCodeUsed:     in.CategoryCode,
		UploadedOnly:         in.UploadedOnly,
		Count:                1,
		CategoryDistribution: map[string]int{"s": 1},
		Results:              []result.Item{{Name: "خودکار", CategoryCode: "s", Score: 95}},
	}, nil
}

type mockExplainer struct{}

func (mockExplainer) Explain(_ context.Context, in intent.Intent) (*searchuc.Explanation, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return &searchuc.Explanation{QueryText: in.QueryText, SQL: "SELECT 1"}, nil
}

type mockReloader struct {
	registry *brand.Registry
	err      error
}

func (m *mockReloader) Reload(context.Context) (brand.Status, error) {
	if m.err != nil {
		return m.registry.Status(), m.err
	}
	m.registry.Replace(brand.NewAliasMap([]brand.Group{{Canonical: "parker"}}), "aliases.json")
	return m.registry.Status(), nil
}

func (m *mockReloader) Registry() *brand.Registry { return m.registry }

type mockPinger struct {
	err error
}

func (m *mockPinger) Ping(context.Context) error { return m.err }

type testEnv struct {
	router   http.Handler
	searcher *mockSearcher
	reloader *mockReloader
	pinger   *mockPinger
}

func newTestEnv(t *testing.T, apiKeys ...string) *testEnv {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "InStock.db")
	if err := os.WriteFile(dbPath, nil, 0o600); err != nil {
		t.Fatalf("write db: %v", err)
	}

	env := &testEnv{
		searcher: &mockSearcher{},
		reloader: &mockReloader{registry: brand.NewRegistry(nil, "")},
		pinger:   &mockPinger{},
	}
	health := healthuc.New(env.pinger, env.reloader.registry, nil, false)
	srv := NewServer(env.searcher, mockExplainer{}, env.reloader, health,
		CatalogInfo{Path: dbPath, Table: "products"}, zap.NewNop())

	r := chi.NewRouter()
	if len(apiKeys) > 0 {
		r.Use(BearerAuthMiddleware(apiKeys))
	}
	srv.Register(r)
	env.router = r
	return env
}

func (e *testEnv) do(method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return resp
}

// --- Tests ---

func TestSearch_OK(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodPost, "/search", `{"query_text": "خودکار", "category_code": ["s"], "limit": 3}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	if rr.Header().Get("X-Search-Candidates") != "7" || rr.Header().Get("X-Search-Fallback") != "true" {
		t.Errorf("trace headers = %v", rr.Header())
	}
	if rr.Header().Get("X-Search-Cache") != "miss" {
		t.Errorf("X-Search-Cache = %q", rr.Header().Get("X-Search-Cache"))
	}
	if env.searcher.last.Limit != 3 || !env.searcher.last.UploadedOnly {
		t.Errorf("decoded intent = %+v", env.searcher.last)
	}

	var body map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, key := range []string{"version", "query_text", "category_code_used", "uploaded_only", "count", "category_distribution", "results"} {
		if _, ok := body[key]; !ok {
			t.Errorf("missing %q in envelope", key)
		}
	}
	if _, ok := body["debug"]; ok {
		t.Error("debug must be omitted")
	}
	if used, ok := body["category_code_used"].([]any); !ok || len(used) != 1 {
		t.Errorf("category_code_used = %v, want list echo", body["category_code_used"])
	}
}

func TestSearch_ValidationFailed(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"bad sort", `{"sort": {"by": "popularity"}}`, "sort.by"},
		{"unknown field", `{"colour": "red"}`, "body"},
		{"malformed", `{"query_text": `, "body"},
		{"inverted price", `{"filters": {"price": {"min": 9, "max": 1}}}`, "filters.price"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := newTestEnv(t).do(http.MethodPost, "/search", tc.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rr.Code)
			}
			resp := decodeError(t, rr)
			if resp.Code != ErrorCodeValidationFailed || resp.Field != tc.field {
				t.Errorf("error = %+v, want field %q", resp, tc.field)
			}
		})
	}
}

func TestSearch_ErrorMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   ErrorCode
	}{
		{fmt.Errorf("fetch: %w", domain.ErrConfiguration), http.StatusServiceUnavailable, ErrorCodeConfigurationError},
		{fmt.Errorf("fetch: %w", domain.ErrStoreTimeout), http.StatusGatewayTimeout, ErrorCodeStoreTimeout},
		{errors.New("disk on fire"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tc := range tests {
		env := newTestEnv(t)
		env.searcher.searchFn = func(context.Context, intent.Intent) (*result.Envelope, error) {
			return nil, tc.err
		}
		rr := env.do(http.MethodPost, "/search", `{}`)
		if rr.Code != tc.status {
			t.Errorf("%v: status = %d, want %d", tc.err, rr.Code, tc.status)
			continue
		}
		resp := decodeError(t, rr)
		if resp.Code != tc.code {
			t.Errorf("%v: code = %q, want %q", tc.err, resp.Code, tc.code)
		}
		if strings.Contains(resp.Message, "disk on fire") || strings.Contains(resp.Message, "fetch") {
			t.Errorf("message leaks internals: %q", resp.Message)
		}
	}
}

func TestExplain(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodPost, "/search/explain", `{"query_text": "قلم"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rr.Code, rr.Body)
	}
	var ex map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&ex); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if ex["sql"] != "SELECT 1" || ex["query_text"] != "قلم" {
		t.Errorf("explanation = %v", ex)
	}
}

func TestPing(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodGet, "/ping", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var body pingResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || !body.DBExists || body.Table != "products" || body.AliasesLoaded {
		t.Errorf("ping = %+v", body)
	}
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	if rr := env.do(http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("healthy: status = %d, body = %s", rr.Code, rr.Body)
	}

	env.pinger.err = errors.New("unable to open database file")
	rr := env.do(http.MethodGet, "/health", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("catalog down: status = %d", rr.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Checks["catalog"] != healthuc.CheckError {
		t.Errorf("checks = %v", body.Checks)
	}
}

func TestReloadAliases(t *testing.T) {
	env := newTestEnv(t)
	rr := env.do(http.MethodPost, "/admin/aliases/reload", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var st brand.Status
	if err := json.NewDecoder(rr.Body).Decode(&st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !st.Loaded || st.Generation != 1 {
		t.Errorf("status = %+v", st)
	}

	env.reloader.err = errors.New("parse aliases.json: unexpected EOF")
	rr = env.do(http.MethodPost, "/admin/aliases/reload", "")
	if rr.Code != http.StatusUnprocessableEntity {
		t.Errorf("failed reload: status = %d", rr.Code)
	}
	if env.reloader.registry.Status().Generation != 1 {
		t.Error("failed reload must keep the active table")
	}
}

func TestMetrics(t *testing.T) {
	rr := newTestEnv(t).do(http.MethodGet, "/metrics", "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d", rr.Code)
	}
}

func TestSearch_MethodNotAllowed(t *testing.T) {
	rr := newTestEnv(t).do(http.MethodGet, "/search", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rr.Code)
	}
}

func TestRoutes_PingOpenWhenAuthEnabled(t *testing.T) {
	env := newTestEnv(t, "secret")

	rr := env.do(http.MethodGet, "/ping", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("ping status = %d, body = %s", rr.Code, rr.Body)
	}
	var resp map[string]any
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp["db_exists"] != true {
		t.Errorf("ping = %v", resp)
	}
}

func TestRoutes_ProtectedWhenAuthEnabled(t *testing.T) {
	env := newTestEnv(t, "secret")

	if rr := env.do(http.MethodPost, "/search", `{}`); rr.Code != http.StatusUnauthorized {
		t.Errorf("search without token = %d, want 401", rr.Code)
	}
	if rr := env.do(http.MethodPost, "/admin/aliases/reload", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("reload without token = %d, want 401", rr.Code)
	}
	if gen := env.reloader.registry.Status().Generation; gen != 0 {
		t.Errorf("unauthorized reload ran: generation = %d", gen)
	}

	req := httptest.NewRequest(http.MethodPost, "/search", strings.NewReader(`{}`))
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("search with token = %d, body = %s", rr.Code, rr.Body)
	}
}
