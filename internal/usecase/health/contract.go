package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// SemanticChecker checks semantic ranking provider availability.
type SemanticChecker interface {
	HealthCheck(ctx context.Context) error
}
