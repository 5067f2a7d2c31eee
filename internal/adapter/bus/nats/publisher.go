package nats

import (
	"context"
	"fmt"

	"loyalty-ledger/config"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// Publisher implements ports.EventPublisher over a NATS connection. The outbox
// dispatcher is the only caller; durability lives in the outbox table, so plain
// publishes with a flush are enough here.
type Publisher struct {
	conn *nats.Conn
	log  zerolog.Logger
}

// NewPublisher connects to the NATS server and verifies the connection.
func NewPublisher(cfg config.NATSConfig, log zerolog.Logger) (*Publisher, error) {
	conn, err := nats.Connect(cfg.URL,
		nats.Name("loyalty-ledger"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(cfg.ReconnectWait),
	)
	if err != nil {
		return nil, fmt.Errorf("connecting to nats: %w", err)
	}

	log.Info().
		Str("url", cfg.URL).
		Msg("NATS connection established")

	return &Publisher{conn: conn, log: log}, nil
}

// Publish sends a payload to a subject and flushes the connection so a broker
// outage surfaces as an error on this call rather than silently later.
func (p *Publisher) Publish(ctx context.Context, subject string, payload []byte) error {
	if err := p.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publishing to %s: %w", subject, err)
	}
	if err := p.conn.FlushWithContext(ctx); err != nil {
		return fmt.Errorf("flushing publish to %s: %w", subject, err)
	}
	return nil
}

// Close drains the connection, letting buffered publishes finish.
func (p *Publisher) Close() {
	if err := p.conn.Drain(); err != nil {
		p.log.Warn().Err(err).Msg("draining NATS connection")
	}
}
