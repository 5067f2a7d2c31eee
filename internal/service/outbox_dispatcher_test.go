package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"loyalty-ledger/config"
	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func dispatcherConfig() config.OutboxConfig {
	return config.OutboxConfig{
		PollInterval: 5 * time.Second,
		BatchSize:    100,
		MaxRetries:   3,
	}
}

func pendingEvent(retryCount int) domain.OutboxEvent {
	return domain.OutboxEvent{
		ID:         uuid.New(),
		TenantID:   uuid.New(),
		EventType:  domain.EventTypePointsIssued,
		Payload:    []byte(`{"schema_version":1}`),
		Status:     domain.OutboxStatusPending,
		RetryCount: retryCount,
		CreatedAt:  time.Now().UTC(),
	}
}

func TestOutboxDispatcher_PublishesAndMarks(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(repo, pub, dispatcherConfig(), zerolog.Nop())

	e1 := pendingEvent(0)
	e2 := pendingEvent(0)

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return([]domain.OutboxEvent{e1, e2}, nil)
	pub.EXPECT().Publish(gomock.Any(), "loyalty.points.issued", []byte(e1.Payload)).Return(nil)
	repo.EXPECT().MarkPublished(gomock.Any(), e1.ID, gomock.Any()).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), "loyalty.points.issued", []byte(e2.Payload)).Return(nil)
	repo.EXPECT().MarkPublished(gomock.Any(), e2.ID, gomock.Any()).Return(nil)

	d.DispatchBatch(context.Background())
}

func TestOutboxDispatcher_TransientFailureStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(repo, pub, dispatcherConfig(), zerolog.Nop())

	e := pendingEvent(0)

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return([]domain.OutboxEvent{e}, nil)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))
	repo.EXPECT().IncrementRetry(gomock.Any(), e.ID, 1).Return(nil)

	d.DispatchBatch(context.Background())
}

func TestOutboxDispatcher_ExhaustedRetriesMarksFailed(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(repo, pub, dispatcherConfig(), zerolog.Nop())

	// Third attempt after two recorded failures crosses MaxRetries=3.
	e := pendingEvent(2)

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return([]domain.OutboxEvent{e}, nil)
	pub.EXPECT().Publish(gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable"))
	repo.EXPECT().MarkFailed(gomock.Any(), e.ID, 3).Return(nil)

	d.DispatchBatch(context.Background())
}

func TestOutboxDispatcher_OneFailureDoesNotBlockBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(repo, pub, dispatcherConfig(), zerolog.Nop())

	bad := pendingEvent(0)
	good := pendingEvent(0)
	good.EventType = domain.EventTypePointsRedeemed

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return([]domain.OutboxEvent{bad, good}, nil)
	pub.EXPECT().Publish(gomock.Any(), "loyalty.points.issued", gomock.Any()).Return(errors.New("broker unavailable"))
	repo.EXPECT().IncrementRetry(gomock.Any(), bad.ID, 1).Return(nil)
	pub.EXPECT().Publish(gomock.Any(), "loyalty.points.redeemed", gomock.Any()).Return(nil)
	repo.EXPECT().MarkPublished(gomock.Any(), good.ID, gomock.Any()).Return(nil)

	d.DispatchBatch(context.Background())
}

func TestOutboxDispatcher_EmptyBatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	d := NewOutboxDispatcher(repo, pub, dispatcherConfig(), zerolog.Nop())

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return(nil, nil)

	d.DispatchBatch(context.Background())
}

func TestOutboxDispatcher_RunStopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mocks.NewMockOutboxRepository(ctrl)
	pub := mocks.NewMockEventPublisher(ctrl)
	cfg := dispatcherConfig()
	cfg.PollInterval = 10 * time.Millisecond
	d := NewOutboxDispatcher(repo, pub, cfg, zerolog.Nop())

	repo.EXPECT().FetchPending(gomock.Any(), 100).Return(nil, nil).AnyTimes()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		d.Run(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop after context cancellation")
	}
	assert.Error(t, ctx.Err())
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "loyalty.points.issued", Subject(domain.EventTypePointsIssued))
	assert.Equal(t, "loyalty.points.redeemed", Subject(domain.EventTypePointsRedeemed))
}
