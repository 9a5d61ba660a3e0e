package chi

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/stockdex/internal/domain"
	"github.com/kailas-cloud/stockdex/internal/domain/brand"
	"github.com/kailas-cloud/stockdex/internal/domain/search/intent"
	"github.com/kailas-cloud/stockdex/internal/domain/search/result"
	healthuc "github.com/kailas-cloud/stockdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/stockdex/internal/usecase/search"
)

// maxBodyBytes caps a search intent body.
const maxBodyBytes = 1 << 20

// Searcher runs a search intent. Satisfied by the search service and its cache decorator.
type Searcher interface {
	Search(ctx context.Context, in intent.Intent) (*result.Envelope, error)
}

// Explainer compiles an intent without running it.
type Explainer interface {
	Explain(ctx context.Context, in intent.Intent) (*searchuc.Explanation, error)
}

// AliasReloader swaps the alias table from its source file.
type AliasReloader interface {
	Reload(ctx context.Context) (brand.Status, error)
	Registry() *brand.Registry
}

// CatalogInfo identifies the catalog for the ping payload.
type CatalogInfo struct {
	Path  string
	Table string
}

// Server serves the search HTTP API.
type Server struct {
	search        Searcher
	explain       Explainer
	aliases       AliasReloader
	health        *healthuc.Service
	catalog       CatalogInfo
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	search Searcher,
	explain Explainer,
	aliases AliasReloader,
	health *healthuc.Service,
	catalog CatalogInfo,
	logger *zap.Logger,
) *Server {
	s := &Server{
		search:  search,
		explain: explain,
		aliases: aliases,
		health:  health,
		catalog: catalog,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		validationHandler,
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, ErrorCodeValidationFailed),
		sentinelHandler(domain.ErrStoreTimeout, http.StatusGatewayTimeout, ErrorCodeStoreTimeout),
		sentinelHandler(domain.ErrConfiguration, http.StatusServiceUnavailable, ErrorCodeConfigurationError),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/search", s.Search)
	r.Post("/search/explain", s.Explain)
	r.Get("/ping", s.Ping)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
	r.Post("/admin/aliases/reload", s.ReloadAliases)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	in, err := intent.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ctx, trace := domain.NewContextWithTrace(r.Context())
	env, err := s.search.Search(ctx, in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setSearchHeaders(w, trace)
	writeJSON(w, http.StatusOK, env)
}

// Explain handles POST /search/explain.
func (s *Server) Explain(w http.ResponseWriter, r *http.Request) {
	in, err := intent.Decode(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	ex, err := s.explain.Explain(r.Context(), in)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ex)
}

// pingResponse is the liveness payload.
type pingResponse struct {
	Status        string `json:"status"`
	DBExists      bool   `json:"db_exists"`
	DBPath        string `json:"db_path"`
	AliasesLoaded bool   `json:"aliases_loaded"`
	AliasesPath   string `json:"aliases_path"`
	Table         string `json:"table"`
}

// Ping handles GET /ping.
func (s *Server) Ping(w http.ResponseWriter, _ *http.Request) {
	_, statErr := os.Stat(s.catalog.Path)
	st := s.aliases.Registry().Status()

	writeJSON(w, http.StatusOK, pingResponse{
		Status:        "ok",
		DBExists:      statErr == nil,
		DBPath:        s.catalog.Path,
		AliasesLoaded: st.Loaded,
		AliasesPath:   st.Source,
		Table:         s.catalog.Table,
	})
}

// healthResponse is the readiness payload.
type healthResponse struct {
	Status  healthuc.Status                 `json:"status"`
	Checks  map[string]healthuc.CheckResult `json:"checks"`
	Aliases brand.Status                    `json:"aliases"`
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  report.Status,
		Checks:  report.Checks,
		Aliases: report.Aliases,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ReloadAliases handles POST /admin/aliases/reload. A failed reload keeps
// the previous table and reports it.
func (s *Server) ReloadAliases(w http.ResponseWriter, r *http.Request) {
	st, err := s.aliases.Reload(r.Context())
	if err != nil {
		s.logger.Warn("Alias reload failed", zap.Error(err))
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"code":    ErrorCodeReloadFailed,
			"message": err.Error(),
			"active":  st,
		})
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func setSearchHeaders(w http.ResponseWriter, trace *domain.SearchTrace) {
	w.Header().Set("X-Search-Candidates", strconv.Itoa(trace.Candidates))
	w.Header().Set("X-Search-Fallback", strconv.FormatBool(trace.Fallback))
	if trace.CacheHit {
		w.Header().Set("X-Search-Cache", "hit")
	} else {
		w.Header().Set("X-Search-Cache", "miss")
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	if !errors.Is(err, domain.ErrValidation) {
		s.logger.Warn("domain error", zap.Error(err))
	}
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
