package health

import "context"

// StorePinger checks vendor store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks text-understanding provider availability and its circuit state.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
	CircuitOpen() bool
}
