package commands

import (
	"context"
	"strconv"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
)

// SubmitDeliveryCommandHandler moves a work order to Submitted.
type SubmitDeliveryCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewSubmitDeliveryCommandHandler creates a handler for delivery submissions.
func NewSubmitDeliveryCommandHandler(uowFactory UoWFactory, clock ports.Clock) SubmitDeliveryCommandHandler {
	return SubmitDeliveryCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle records the delivery. Submissions are refused while a dispute is open
// and once the escrow has expired.
func (h *SubmitDeliveryCommandHandler) Handle(ctx context.Context, cmd SubmitDeliveryCommand) error {
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
	if err = rejectMilestoneEscrow(e, "submit"); err != nil {
		return err
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.ID().String(), e.DisputeID().String())
	}

	now := h.clock.Now()
	if e.IsExpired(now) {
		return errs.NewEscrowExpiredError(e.ID().String(), e.ExpiresAt())
	}
	if err = wo.SubmitDelivery(cmd.Caller(), cmd.Deliverables(), now); err != nil {
		return err
	}
	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.DeliverySubmitted, e.ID(), wo.ID(), cmd.Caller(), now).
			With("attempt", strconv.Itoa(wo.Attempts())),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
