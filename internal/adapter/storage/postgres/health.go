package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const healthTimeout = 2 * time.Second

// HealthCheck reports the database reachable only when the settlement
// tables exist. A reachable server with no schema cannot take payments.
type HealthCheck struct {
	pool Pool
}

// NewHealthCheck creates a PostgreSQL health checker.
func NewHealthCheck(pool Pool) *HealthCheck {
	return &HealthCheck{pool: pool}
}

// Ping checks connectivity and the presence of the payments schema.
func (h *HealthCheck) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	var ready bool
	err := h.pool.QueryRow(ctx,
		`SELECT to_regclass('payments') IS NOT NULL AND to_regclass('capital_accounts') IS NOT NULL`,
	).Scan(&ready)
	if err != nil {
		return fmt.Errorf("postgres ping: %w", err)
	}
	if !ready {
		return errors.New("settlement schema missing")
	}
	return nil
}

func (h *HealthCheck) Name() string {
	return "postgresql"
}
