package ports

import "context"

// EventPublisher delivers serialized events to the message bus. The dispatcher
// treats any returned error as a transient publish failure and retries on the
// next poll cycle.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload []byte) error
}
