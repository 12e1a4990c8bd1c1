// Package ports defines the contracts between the escrow core and its
// infrastructure: repositories, the unit of work, the value-transfer ledger,
// the condition oracle, the event outbox and the event publisher.
package ports

import (
	"context"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
)

// WorkOrderRepository defines the persistence contract for work order aggregates.
type WorkOrderRepository interface {
	// Add persists a new work order.
	Add(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Update persists changes to an existing work order.
	Update(ctx context.Context, aggregate *workorder.WorkOrder) error

	// Get retrieves a work order by id. Returns errs.ErrObjectNotFound when absent.
	Get(ctx context.Context, id kernel.UUID) (*workorder.WorkOrder, error)
}
