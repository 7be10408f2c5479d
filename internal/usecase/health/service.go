package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates the engine itself is failing.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status  Status
	Checks  map[string]CheckResult
	Filters int
}

// Service coordinates health checks.
type Service struct {
	engine  EngineChecker
	filters FilterLister
	store   Pinger
}

// New creates a Service. filters can be nil.
func New(engine EngineChecker, filters FilterLister) *Service {
	return &Service{engine: engine, filters: filters}
}

// WithStore adds a connectivity check for the filter store.
func (s *Service) WithStore(p Pinger) *Service {
	s.store = p
	return s
}

// Check runs the engine canary and, when configured, lists filters.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if err := s.engine.HealthCheck(ctx); err != nil {
		checks["engine"] = CheckError
		status = Unhealthy
	} else {
		checks["engine"] = CheckOK
	}

	count := 0
	if s.filters != nil {
		list, err := s.filters.Filters(ctx)
		if err != nil {
			checks["filters"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["filters"] = CheckOK
			count = len(list)
		}
	}

	if s.store != nil {
		if err := s.store.Ping(ctx); err != nil {
			checks["storage"] = CheckError
			if status == Healthy {
				status = Degraded
			}
		} else {
			checks["storage"] = CheckOK
		}
	}

	return Report{Status: status, Checks: checks, Filters: count}
}
