package ports

import (
	"context"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
)

// DisputeRepository defines the persistence contract for dispute aggregates.
type DisputeRepository interface {
	Add(ctx context.Context, aggregate *dispute.Dispute) error
	Update(ctx context.Context, aggregate *dispute.Dispute) error
	Get(ctx context.Context, id kernel.UUID) (*dispute.Dispute, error)
}
