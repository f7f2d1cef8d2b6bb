package ports

import "context"

// HealthChecker is one dependency reported by GET /health. A nil Ping
// means the bank can serve traffic through it.
type HealthChecker interface {
	Ping(ctx context.Context) error
	Name() string
}
