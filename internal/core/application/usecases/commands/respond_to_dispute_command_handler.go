package commands

import (
	"context"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// RespondToDisputeCommandHandler records the counterparty's response.
type RespondToDisputeCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewRespondToDisputeCommandHandler creates a handler for dispute responses.
func NewRespondToDisputeCommandHandler(uowFactory UoWFactory, clock ports.Clock) RespondToDisputeCommandHandler {
	return RespondToDisputeCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle records the counterparty's statement and counter-allocation.
func (h *RespondToDisputeCommandHandler) Handle(ctx context.Context, cmd RespondToDisputeCommand) error {
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

	d, e, wo, err := lockDispute(ctx, uow, cmd.DisputeID())
	if err != nil {
		return err
	}

	now := h.clock.Now()
	if err = d.Respond(cmd.Caller(), cmd.Statement(), cmd.Counter(), e.Remainder(), now); err != nil {
		return err
	}
	if err = uow.DisputeRepository().Update(ctx, d); err != nil {
		return err
	}

	responded := event.New(event.DisputeResponded, e.ID(), wo.ID(), cmd.Caller(), now).
		With("disputeId", d.ID().String())
	if counter := d.Response().Counter; counter != nil {
		responded = responded.
			With("counterToRequester", counter.ToRequester().String()).
			With("counterToFulfiller", counter.ToFulfiller().String())
	}
	if err = uow.EventOutbox().Append(ctx, responded); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
