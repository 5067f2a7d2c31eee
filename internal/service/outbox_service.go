package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxServiceImpl implements ports.OutboxService.
type OutboxServiceImpl struct {
	outboxRepo ports.OutboxRepository
}

// NewOutboxService creates a new OutboxServiceImpl.
func NewOutboxService(outboxRepo ports.OutboxRepository) *OutboxServiceImpl {
	return &OutboxServiceImpl{outboxRepo: outboxRepo}
}

// WriteEvent stores a PENDING event in the caller's transaction. The tx must
// be the one carrying the ledger write the event reports on; that shared
// commit is the entire outbox guarantee.
func (s *OutboxServiceImpl) WriteEvent(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, eventType string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("marshal outbox payload: %w", err))
	}

	event := &domain.OutboxEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventType: eventType,
		Payload:   raw,
		Status:    domain.OutboxStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := s.outboxRepo.Create(ctx, tx, event); err != nil {
		return apperror.InternalError(fmt.Errorf("write outbox event: %w", err))
	}
	return nil
}
