package postgres

import "context"

// HealthChecker reports PostgreSQL connectivity for readiness probes.
type HealthChecker struct {
	pool Pool
}

// NewHealthChecker creates a health checker over the connection pool.
func NewHealthChecker(pool Pool) *HealthChecker {
	return &HealthChecker{pool: pool}
}

// Ping verifies database connectivity.
func (h *HealthChecker) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// Name identifies the dependency in health reports.
func (h *HealthChecker) Name() string {
	return "postgres"
}
