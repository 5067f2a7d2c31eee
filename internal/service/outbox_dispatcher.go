package service

import (
	"context"
	"time"

	"loyalty-ledger/config"
	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// OutboxDispatcher is the single background loop that moves committed outbox
// events onto the message bus. It polls on a fixed interval, publishes each
// PENDING event to "loyalty.<eventType>", and drives the event state machine:
// PENDING -> PUBLISHED on success, PENDING -> PENDING (retry_count++) on a
// transient failure, PENDING -> FAILED once the retry budget is exhausted.
type OutboxDispatcher struct {
	outboxRepo ports.OutboxRepository
	publisher  ports.EventPublisher
	cfg        config.OutboxConfig
	log        zerolog.Logger
}

// NewOutboxDispatcher creates a new OutboxDispatcher.
func NewOutboxDispatcher(
	outboxRepo ports.OutboxRepository,
	publisher ports.EventPublisher,
	cfg config.OutboxConfig,
	log zerolog.Logger,
) *OutboxDispatcher {
	return &OutboxDispatcher{
		outboxRepo: outboxRepo,
		publisher:  publisher,
		cfg:        cfg,
		log:        log,
	}
}

// Subject returns the bus subject for an event type.
func Subject(eventType string) string {
	return "loyalty." + eventType
}

// Run polls until ctx is cancelled. It is meant to be started once, in its own
// goroutine, next to the HTTP server.
func (d *OutboxDispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.cfg.PollInterval)
	defer ticker.Stop()

	d.log.Info().
		Dur("poll_interval", d.cfg.PollInterval).
		Int("batch_size", d.cfg.BatchSize).
		Int("max_retries", d.cfg.MaxRetries).
		Msg("outbox dispatcher started")

	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("outbox dispatcher stopped")
			return
		case <-ticker.C:
			d.DispatchBatch(ctx)
		}
	}
}

// DispatchBatch processes one poll cycle: fetch up to BatchSize PENDING events
// oldest first and publish each. Failures are isolated per event; one broken
// event never blocks the rest of the batch.
func (d *OutboxDispatcher) DispatchBatch(ctx context.Context) {
	events, err := d.outboxRepo.FetchPending(ctx, d.cfg.BatchSize)
	if err != nil {
		d.log.Error().Err(err).Msg("fetching pending outbox events")
		return
	}
	if len(events) == 0 {
		return
	}

	published := 0
	for i := range events {
		if ctx.Err() != nil {
			return
		}
		if d.dispatchOne(ctx, &events[i]) {
			published++
		}
	}

	d.log.Debug().
		Int("fetched", len(events)).
		Int("published", published).
		Msg("outbox batch dispatched")
}

func (d *OutboxDispatcher) dispatchOne(ctx context.Context, event *domain.OutboxEvent) bool {
	err := d.publisher.Publish(ctx, Subject(event.EventType), event.Payload)
	if err == nil {
		if merr := d.outboxRepo.MarkPublished(ctx, event.ID, time.Now().UTC()); merr != nil {
			// The event stays PENDING and will be republished next cycle;
			// consumers must tolerate duplicate delivery anyway.
			d.log.Error().Err(merr).Str("event_id", event.ID.String()).Msg("marking outbox event published")
			return false
		}
		return true
	}

	retries := event.RetryCount + 1
	if retries >= d.cfg.MaxRetries {
		d.log.Error().Err(err).
			Str("event_id", event.ID.String()).
			Str("event_type", event.EventType).
			Int("retry_count", retries).
			Msg("outbox event exhausted retries, marking failed")
		if merr := d.outboxRepo.MarkFailed(ctx, event.ID, retries); merr != nil {
			d.log.Error().Err(merr).Str("event_id", event.ID.String()).Msg("marking outbox event failed")
		}
		return false
	}

	d.log.Warn().Err(err).
		Str("event_id", event.ID.String()).
		Str("event_type", event.EventType).
		Int("retry_count", retries).
		Msg("outbox publish failed, will retry")
	if merr := d.outboxRepo.IncrementRetry(ctx, event.ID, retries); merr != nil {
		d.log.Error().Err(merr).Str("event_id", event.ID.String()).Msg("incrementing outbox retry count")
	}
	return false
}
