package health

import (
	"context"

	"github.com/kailas-cloud/stockdex/internal/domain/brand"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the catalog is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
	// CheckSkipped marks an optional component that is not configured.
	CheckSkipped CheckResult = "skipped"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Aliases brand.Status
}

// Service coordinates health checks.
type Service struct {
	catalog         DBPinger
	aliases         AliasStatus
	cache           DBPinger
	aliasesRequired bool
}

// New creates a Service. cache can be nil. An unloaded alias table only
// counts as a failure when aliasesRequired is set.
func New(catalog DBPinger, aliases AliasStatus, cache DBPinger, aliasesRequired bool) *Service {
	return &Service{catalog: catalog, aliases: aliases, cache: cache, aliasesRequired: aliasesRequired}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	report := Report{Checks: checks}

	if err := s.catalog.Ping(ctx); err != nil {
		checks["catalog"] = CheckError
	} else {
		checks["catalog"] = CheckOK
	}

	report.Aliases = s.aliases.Status()
	switch {
	case report.Aliases.Loaded:
		checks["aliases"] = CheckOK
	case s.aliasesRequired:
		checks["aliases"] = CheckError
	default:
		checks["aliases"] = CheckSkipped
	}

	if s.cache != nil {
		if err := s.cache.Ping(ctx); err != nil {
			checks["cache"] = CheckError
		} else {
			checks["cache"] = CheckOK
		}
	}

	report.Status = Healthy
	switch {
	case checks["catalog"] == CheckError:
		report.Status = Unhealthy
	case checks["aliases"] == CheckError, checks["cache"] == CheckError:
		report.Status = Degraded
	}
	return report
}
