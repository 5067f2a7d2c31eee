package postgres

import (
	"context"
	"fmt"
	"time"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// OutboxRepo implements ports.OutboxRepository. Create participates in the
// caller's ledger transaction; the dispatcher-facing methods run on the pool.
type OutboxRepo struct {
	pool Pool
}

// NewOutboxRepo creates a new OutboxRepo.
func NewOutboxRepo(pool Pool) *OutboxRepo {
	return &OutboxRepo{pool: pool}
}

// Create inserts a PENDING outbox event within a database transaction. Writing
// it in the same transaction as the ledger entry is what makes the outbox
// pattern atomic: either both commit or neither does.
func (r *OutboxRepo) Create(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error {
	query := `INSERT INTO outbox_events
		(id, tenant_id, event_type, payload, status, retry_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		event.ID, event.TenantID, event.EventType, []byte(event.Payload),
		event.Status, event.RetryCount, event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert outbox event: %w", err)
	}
	return nil
}

// FetchPending returns up to limit PENDING events, oldest first, so delivery
// order roughly follows creation order.
func (r *OutboxRepo) FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error) {
	query := `SELECT id, tenant_id, event_type, payload, status, retry_count, created_at, published_at
		FROM outbox_events WHERE status = $1
		ORDER BY created_at ASC LIMIT $2`

	rows, err := r.pool.Query(ctx, query, domain.OutboxStatusPending, limit)
	if err != nil {
		return nil, fmt.Errorf("fetch pending outbox events: %w", err)
	}
	defer rows.Close()

	var events []domain.OutboxEvent
	for rows.Next() {
		e := domain.OutboxEvent{}
		var payload []byte
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.EventType, &payload,
			&e.Status, &e.RetryCount, &e.CreatedAt, &e.PublishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan outbox event: %w", err)
		}
		e.Payload = payload
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outbox events: %w", err)
	}
	return events, nil
}

// MarkPublished transitions an event to PUBLISHED and stamps the publish time.
func (r *OutboxRepo) MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error {
	query := `UPDATE outbox_events SET status = $1, published_at = $2 WHERE id = $3`

	if _, err := r.pool.Exec(ctx, query, domain.OutboxStatusPublished, publishedAt, id); err != nil {
		return fmt.Errorf("mark outbox event published: %w", err)
	}
	return nil
}

// IncrementRetry records a failed publish attempt, leaving the event PENDING
// so the next poll cycle retries it.
func (r *OutboxRepo) IncrementRetry(ctx context.Context, id uuid.UUID, retryCount int) error {
	query := `UPDATE outbox_events SET retry_count = $1 WHERE id = $2`

	if _, err := r.pool.Exec(ctx, query, retryCount, id); err != nil {
		return fmt.Errorf("increment outbox retry count: %w", err)
	}
	return nil
}

// MarkFailed transitions an event to FAILED once the retry budget is spent.
// FAILED events are never retried automatically; they wait for operator action.
func (r *OutboxRepo) MarkFailed(ctx context.Context, id uuid.UUID, retryCount int) error {
	query := `UPDATE outbox_events SET status = $1, retry_count = $2 WHERE id = $3`

	if _, err := r.pool.Exec(ctx, query, domain.OutboxStatusFailed, retryCount, id); err != nil {
		return fmt.Errorf("mark outbox event failed: %w", err)
	}
	return nil
}
