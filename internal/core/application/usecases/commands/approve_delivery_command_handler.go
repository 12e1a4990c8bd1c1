package commands

import (
	"context"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
)

// ApproveDeliveryCommandHandler approves a delivery and releases the escrow.
//
// Escrows created with autoRelease keep the funds until their expiry time
// after approval; the auto-release job pays them out then. All other escrows
// are released to the fulfiller in the same transaction as the approval.
type ApproveDeliveryCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
	clock      ports.Clock
}

// NewApproveDeliveryCommandHandler creates a handler for delivery approvals.
func NewApproveDeliveryCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor, clock ports.Clock) ApproveDeliveryCommandHandler {
	return ApproveDeliveryCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		clock:      clock,
	}
}

// Handle approves the delivery and pays the remainder to the fulfiller.
// On autoRelease escrows the approval is recorded and the payout waits for expiry.
func (h *ApproveDeliveryCommandHandler) Handle(ctx context.Context, cmd ApproveDeliveryCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	e, wo, err := lockWorkOrder(ctx, uow, cmd.WorkOrderID())
	if err != nil {
		return err
	}
	if err = rejectMilestoneEscrow(e, "approve"); err != nil {
		return err
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.ID().String(), e.DisputeID().String())
	}

	now := h.clock.Now()
	if err = wo.VerifyDelivery(cmd.Caller(), now); err != nil {
		return err
	}
	e.MarkApproved(now)

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.DeliveryApproved, e.ID(), wo.ID(), cmd.Caller(), now),
	); err != nil {
		return err
	}

	if e.AutoRelease() {
		if err = uow.EscrowRepository().Update(ctx, e); err != nil {
			return err
		}
		if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
			return err
		}
		return uow.Commit(ctx)
	}

	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathRequesterApproval,
		Actor:     cmd.Caller(),
		Escrow:    e,
		WorkOrder: wo,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
