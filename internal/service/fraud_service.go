package service

import (
	"context"
	"time"

	"loyalty-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	scanSignalWindow       = time.Hour
	redemptionSignalWindow = time.Hour

	// Counts above these within a window get flagged in the logs for review.
	scanVelocityThreshold      = 30
	redemptionFailureThreshold = 5
)

// fraudSignalService implements ports.FraudSignalService on windowed Redis
// counters. Signals are advisory: they flag velocity anomalies in the logs,
// they never block a committed operation.
type fraudSignalService struct {
	counter ports.SignalCounter
	log     zerolog.Logger
}

// NewFraudSignalService creates a new fraud signal service.
func NewFraudSignalService(counter ports.SignalCounter, log zerolog.Logger) ports.FraudSignalService {
	return &fraudSignalService{counter: counter, log: log}
}

// TrackScan records one device scan and flags abnormal per-device velocity.
func (s *fraudSignalService) TrackScan(ctx context.Context, tenantID uuid.UUID, deviceID *uuid.UUID, customerID uuid.UUID) {
	key := "scan:" + tenantID.String() + ":"
	if deviceID != nil {
		key += deviceID.String()
	} else {
		key += customerID.String()
	}

	count, err := s.counter.Increment(ctx, key, scanSignalWindow)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("scan signal increment failed")
		return
	}
	if count > scanVelocityThreshold {
		s.log.Warn().
			Str("tenant_id", tenantID.String()).
			Str("customer_id", customerID.String()).
			Int64("scans_in_window", count).
			Msg("scan velocity above threshold")
	}
}

// TrackRedemption records a redemption outcome; repeated failures for one
// customer suggest probing for a balance race.
func (s *fraudSignalService) TrackRedemption(ctx context.Context, tenantID, customerID uuid.UUID, success bool) {
	outcome := "ok"
	if !success {
		outcome = "failed"
	}
	key := "redemption:" + outcome + ":" + tenantID.String() + ":" + customerID.String()

	count, err := s.counter.Increment(ctx, key, redemptionSignalWindow)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("redemption signal increment failed")
		return
	}
	if !success && count > redemptionFailureThreshold {
		s.log.Warn().
			Str("tenant_id", tenantID.String()).
			Str("customer_id", customerID.String()).
			Int64("failures_in_window", count).
			Msg("redemption failure rate above threshold")
	}
}
