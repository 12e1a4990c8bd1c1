package ports

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
)

// EventOutbox stores audit events in the same transaction as the state
// transition that produced them, for later relay to subscribers.
type EventOutbox interface {
	// Append stores events in order.
	Append(ctx context.Context, events ...event.Event) error

	// ListUnpublished returns up to limit unpublished events in sequence order.
	ListUnpublished(ctx context.Context, limit int) ([]event.Event, error)

	// MarkPublished stamps the given events as delivered.
	MarkPublished(ctx context.Context, ids []kernel.UUID, at time.Time) error
}

// EventPublisher delivers relayed events to in-process or remote subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, e event.Event) error
}
