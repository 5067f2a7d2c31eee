package nats

import (
	"context"
	"errors"
)

// ErrNotConnected is reported when the NATS connection is down.
var ErrNotConnected = errors.New("nats connection is not established")

// HealthCheck implements ports.HealthChecker for NATS.
type HealthCheck struct {
	publisher *Publisher
}

// NewHealthCheck creates a NATS health checker.
func NewHealthCheck(p *Publisher) *HealthCheck {
	return &HealthCheck{publisher: p}
}

// Ping checks NATS connectivity.
func (h *HealthCheck) Ping(_ context.Context) error {
	if h.publisher.conn == nil || !h.publisher.conn.IsConnected() {
		return ErrNotConnected
	}
	return nil
}

// Name returns the dependency name.
func (h *HealthCheck) Name() string {
	return "nats"
}
