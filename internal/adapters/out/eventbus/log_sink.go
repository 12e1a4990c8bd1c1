package eventbus

import (
	"context"
	"log/slog"

	"escrow/internal/core/domain/model/event"
)

// LogSink writes every event to logger as one structured record.
func LogSink(logger *slog.Logger) Handler {
	logger = logger.With("component", "event_stream")
	return func(ctx context.Context, e event.Event) error {
		attrs := []any{
			"sequence", e.Sequence,
			"eventId", e.ID.String(),
			"type", e.Type.String(),
			"escrowId", e.EscrowID.String(),
			"workOrderId", e.WorkOrderID.String(),
			"actor", e.Actor.String(),
			"at", e.OccurredAt,
		}
		if e.Amount != nil {
			attrs = append(attrs, "amount", e.Amount.Units())
		}
		if len(e.Attributes) > 0 {
			attrs = append(attrs, "attributes", e.Attributes)
		}
		logger.InfoContext(ctx, "escrow event", attrs...)
		return nil
	}
}
