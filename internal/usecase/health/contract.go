package health

import (
	"context"

	"github.com/kailas-cloud/mailbot/internal/usecase/startup"
)

// DBPinger checks vector store availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// ProviderChecker checks embedding provider availability.
type ProviderChecker interface {
	HealthCheck(ctx context.Context) error
}

// StateReporter reports the initialization state.
type StateReporter interface {
	State() startup.State
}
