package health

import (
	"context"
	"errors"

	"github.com/kailas-cloud/cinematch/internal/domain"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates recommendations are served with placeholder metadata.
	Degraded Status = "degraded"
	// Unhealthy indicates recommendations cannot be served.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckDisabled indicates a component that is intentionally not configured.
	CheckDisabled CheckResult = "disabled"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	catalog  CatalogSizer
	metadata MetadataChecker
}

// New creates a Service. metadata can be nil.
func New(catalog CatalogSizer, metadata MetadataChecker) *Service {
	return &Service{catalog: catalog, metadata: metadata}
}

// Check runs health checks against all components.
// Metadata problems only degrade the service; an empty catalog makes it unhealthy.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.catalog == nil || s.catalog.Len() == 0 {
		checks["catalog"] = CheckError
		status = Unhealthy
	} else {
		checks["catalog"] = CheckOK
	}

	if s.metadata != nil {
		err := s.metadata.HealthCheck(ctx)
		switch {
		case err == nil:
			checks["metadata"] = CheckOK
		case errors.Is(err, domain.ErrMetadataDisabled):
			checks["metadata"] = CheckDisabled
		default:
			checks["metadata"] = CheckError
		}
		if err != nil && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}
