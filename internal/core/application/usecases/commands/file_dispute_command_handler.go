package commands

import (
	"context"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// FileDisputeCommandHandler opens a dispute and freezes the escrow.
type FileDisputeCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewFileDisputeCommandHandler creates a handler for dispute filing.
func NewFileDisputeCommandHandler(uowFactory UoWFactory, clock ports.Clock) FileDisputeCommandHandler {
	return FileDisputeCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle files the dispute against the current remainder. From commit on,
// every release path other than the dispute's own settlement fails with
// errs.ErrEscrowDisputed.
func (h *FileDisputeCommandHandler) Handle(ctx context.Context, cmd FileDisputeCommand) error {
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
	remainder := e.Remainder()
	d, err := dispute.FileDispute(
		cmd.DisputeID(), e.ID(), wo.ID(),
		dispute.Parties{Requester: e.Requester(), Fulfiller: e.Recipient(), Arbitrator: e.Arbitrator()},
		cmd.Caller(), cmd.Reason(), cmd.Evidence(), cmd.Proposal(), remainder, now,
	)
	if err != nil {
		return err
	}
	if err = e.AttachDispute(d.ID(), now); err != nil {
		return err
	}

	if err = uow.DisputeRepository().Add(ctx, d); err != nil {
		return err
	}
	if err = uow.EscrowRepository().Update(ctx, e); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.DisputeFiled, e.ID(), wo.ID(), cmd.Caller(), now).
			WithAmount(remainder).
			With("disputeId", d.ID().String()).
			With("reason", d.Reason()).
			With("proposedToRequester", d.Proposal().ToRequester().String()).
			With("proposedToFulfiller", d.Proposal().ToFulfiller().String()),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
