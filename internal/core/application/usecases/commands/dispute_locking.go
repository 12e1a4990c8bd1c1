package commands

import (
	"context"
	"fmt"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/pkg/errs"
)

type disputeLockingUoW interface {
	lockingUoW
	DisputeRepoFactory
}

// lockDispute locks the escrow a dispute belongs to and reads the dispute
// again under that lock.
func lockDispute(
	ctx context.Context,
	uow disputeLockingUoW,
	disputeID kernel.UUID,
) (*dispute.Dispute, *escrow.Escrow, *workorder.WorkOrder, error) {
	d, err := uow.DisputeRepository().Get(ctx, disputeID)
	if err != nil {
		return nil, nil, nil, err
	}
	e, wo, err := lockEscrow(ctx, uow, d.EscrowID())
	if err != nil {
		return nil, nil, nil, err
	}
	if d, err = uow.DisputeRepository().Get(ctx, disputeID); err != nil {
		return nil, nil, nil, err
	}
	if d.Status() != dispute.StatusResolved && (e.DisputeID() == nil || !e.DisputeID().IsEqual(d.ID())) {
		return nil, nil, nil, errs.NewInvariantViolationError("dispute", d.ID().String(),
			fmt.Errorf("is active but escrow %s does not reference it", e.ID()))
	}
	return d, e, wo, nil
}
