package commands

import (
	"context"
	"fmt"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/pkg/errs"
)

type lockingUoW interface {
	WorkOrderRepoFactory
	EscrowRepoFactory
}

// lockEscrow locks the escrow row and loads its work order. Every mutation
// takes this lock first, so the work order read afterwards is current.
func lockEscrow(ctx context.Context, uow lockingUoW, escrowID kernel.UUID) (*escrow.Escrow, *workorder.WorkOrder, error) {
	e, err := uow.EscrowRepository().GetForUpdate(ctx, escrowID)
	if err != nil {
		return nil, nil, err
	}
	wo, err := uow.WorkOrderRepository().Get(ctx, e.WorkOrderID())
	if err != nil {
		return nil, nil, err
	}
	if !wo.EscrowID().IsEqual(e.ID()) {
		return nil, nil, errs.NewInvariantViolationError("work order", wo.ID().String(),
			fmt.Errorf("references escrow %s, expected %s", wo.EscrowID(), e.ID()))
	}
	return e, wo, nil
}

// lockWorkOrder resolves the escrow of a work order and locks it.
func lockWorkOrder(ctx context.Context, uow lockingUoW, workOrderID kernel.UUID) (*escrow.Escrow, *workorder.WorkOrder, error) {
	wo, err := uow.WorkOrderRepository().Get(ctx, workOrderID)
	if err != nil {
		return nil, nil, err
	}
	return lockEscrow(ctx, uow, wo.EscrowID())
}

// rejectMilestoneEscrow refuses whole-delivery operations on escrows that pay
// out through milestones.
func rejectMilestoneEscrow(e *escrow.Escrow, operation string) error {
	if e.HasMilestones() {
		return errs.NewValueIsInvalidErrorWithCause("workOrderId",
			fmt.Errorf("escrow %s pays through milestones; %s them instead", e.ID(), operation))
	}
	return nil
}
