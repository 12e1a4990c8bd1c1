package ports

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
)

// EscrowRepository defines the persistence contract for escrow aggregates and
// their milestones.
type EscrowRepository interface {
	// Add persists a new escrow with its milestones.
	Add(ctx context.Context, aggregate *escrow.Escrow) error

	// Update persists balance, status and milestone changes.
	Update(ctx context.Context, aggregate *escrow.Escrow) error

	// GetForUpdate retrieves an escrow and locks its row until the surrounding
	// transaction ends, serialising every mutation of that escrow.
	// A stored record that violates escrow invariants yields errs.ErrCorruptedState.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*escrow.Escrow, error)

	// FindDueForAutoRelease lists funded, approved, undisputed auto-release
	// escrows whose expiry is at or before now.
	FindDueForAutoRelease(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)

	// FindExpired lists funded, undisputed escrows whose expiry is at or before now
	// and whose work order is still Created or Open.
	FindExpired(ctx context.Context, now time.Time, limit int) ([]kernel.UUID, error)
}
