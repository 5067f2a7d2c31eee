package postgres

import (
	"context"
	"testing"
	"time"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOutboxEvent(tenantID uuid.UUID) *domain.OutboxEvent {
	return &domain.OutboxEvent{
		ID:        uuid.New(),
		TenantID:  tenantID,
		EventType: domain.EventTypePointsIssued,
		Payload:   []byte(`{"schema_version":1,"amount":50}`),
		Status:    domain.OutboxStatusPending,
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

func outboxTestColumns() []string {
	return []string{"id", "tenant_id", "event_type", "payload", "status", "retry_count", "created_at", "published_at"}
}

func TestOutboxRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)
	e := newTestOutboxEvent(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO outbox_events").
		WithArgs(e.ID, e.TenantID, e.EventType, []byte(e.Payload),
			e.Status, e.RetryCount, e.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), tx, e)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_FetchPending(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)
	older := newTestOutboxEvent(uuid.New())
	older.CreatedAt = older.CreatedAt.Add(-time.Minute)
	newer := newTestOutboxEvent(older.TenantID)

	mock.ExpectQuery("SELECT .+ FROM outbox_events WHERE status .+ ORDER BY created_at ASC").
		WithArgs(domain.OutboxStatusPending, 100).
		WillReturnRows(pgxmock.NewRows(outboxTestColumns()).
			AddRow(older.ID, older.TenantID, older.EventType, []byte(older.Payload),
				older.Status, older.RetryCount, older.CreatedAt, nil).
			AddRow(newer.ID, newer.TenantID, newer.EventType, []byte(newer.Payload),
				newer.Status, newer.RetryCount, newer.CreatedAt, nil))

	events, err := repo.FetchPending(context.Background(), 100)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, older.ID, events[0].ID)
	assert.Equal(t, newer.ID, events[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_FetchPending_Empty(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)

	mock.ExpectQuery("SELECT .+ FROM outbox_events WHERE status").
		WithArgs(domain.OutboxStatusPending, 100).
		WillReturnRows(pgxmock.NewRows(outboxTestColumns()))

	events, err := repo.FetchPending(context.Background(), 100)
	require.NoError(t, err)
	assert.Empty(t, events)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_MarkPublished(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)
	id := uuid.New()
	publishedAt := time.Now().UTC().Truncate(time.Microsecond)

	mock.ExpectExec("UPDATE outbox_events SET status").
		WithArgs(domain.OutboxStatusPublished, publishedAt, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkPublished(context.Background(), id, publishedAt)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_IncrementRetry(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE outbox_events SET retry_count").
		WithArgs(2, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.IncrementRetry(context.Background(), id, 2)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestOutboxRepo_MarkFailed(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewOutboxRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE outbox_events SET status").
		WithArgs(domain.OutboxStatusFailed, 3, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.MarkFailed(context.Background(), id, 3)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
