// Package health aggregates component checks. A failing vendor store makes the service
// unhealthy; a failing provider only degrades it, since sourcing falls back to hard filters.
package health

import (
	"context"
	"time"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates sourcing works without preference ranking.
	Degraded Status = "degraded"
	// Unhealthy indicates sourcing cannot run.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
	// CheckOpen reports a provider whose circuit breaker is open.
	CheckOpen CheckResult = "circuit_open"
)

// Component names.
const (
	ComponentStore    = "vendor_store"
	ComponentProvider = "understanding"
)

// DefaultCheckTimeout bounds each component check.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	store    StorePinger
	provider ProviderChecker
	timeout  time.Duration
}

// New creates a Service. provider can be nil.
func New(store StorePinger, provider ProviderChecker) *Service {
	return &Service{store: store, provider: provider, timeout: DefaultCheckTimeout}
}

// Check runs health checks against all components.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult, 2)
	status := Healthy

	if err := s.run(ctx, s.store.Ping); err != nil {
		checks[ComponentStore] = CheckError
		status = Unhealthy
	} else {
		checks[ComponentStore] = CheckOK
	}

	if s.provider != nil {
		switch {
		case s.provider.CircuitOpen():
			checks[ComponentProvider] = CheckOpen
		case s.run(ctx, s.provider.HealthCheck) != nil:
			checks[ComponentProvider] = CheckError
		default:
			checks[ComponentProvider] = CheckOK
		}
		if checks[ComponentProvider] != CheckOK && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) run(ctx context.Context, check func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return check(ctx)
}
