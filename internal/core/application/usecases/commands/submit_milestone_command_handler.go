package commands

import (
	"context"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// SubmitMilestoneCommandHandler records a milestone delivery.
type SubmitMilestoneCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewSubmitMilestoneCommandHandler creates a handler for milestone submissions.
func NewSubmitMilestoneCommandHandler(uowFactory UoWFactory, clock ports.Clock) SubmitMilestoneCommandHandler {
	return SubmitMilestoneCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle records the fulfiller's deliverables on a pending or revised milestone.
func (h *SubmitMilestoneCommandHandler) Handle(ctx context.Context, cmd SubmitMilestoneCommand) error {
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

	e, wo, err := lockEscrow(ctx, uow, cmd.EscrowID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = e.SubmitMilestone(cmd.Caller(), cmd.MilestoneID(), cmd.Deliverables(), now); err != nil {
		return err
	}
	if err = uow.EscrowRepository().Update(ctx, e); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.MilestoneSubmitted, e.ID(), wo.ID(), cmd.Caller(), now).
			With("milestoneId", cmd.MilestoneID().String()),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
