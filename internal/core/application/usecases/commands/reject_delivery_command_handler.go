package commands

import (
	"context"
	"strconv"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
)

// RejectDeliveryCommandHandler moves a submitted work order to InProgress.
type RejectDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewRejectDeliveryCommandHandler creates a handler that sends a delivery back for rework.
func NewRejectDeliveryCommandHandler(uowFactory UoWFactory, clock ports.Clock) RejectDeliveryCommandHandler {
	return RejectDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle moves a Submitted work order to InProgress with the requester's reason.
// Rejections are refused while a dispute is open.
func (h *RejectDeliveryCommandHandler) Handle(ctx context.Context, cmd RejectDeliveryCommand) error {
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
	if err = rejectMilestoneEscrow(e, "request revisions of"); err != nil {
		return err
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.ID().String(), e.DisputeID().String())
	}

	now := h.clock.Now()
	if err = wo.RejectDelivery(cmd.Caller(), cmd.Reason(), now); err != nil {
		return err
	}
	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.DeliveryRejected, e.ID(), wo.ID(), cmd.Caller(), now).
			With("reason", wo.RejectionReason()).
			With("attempt", strconv.Itoa(wo.Attempts())),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
