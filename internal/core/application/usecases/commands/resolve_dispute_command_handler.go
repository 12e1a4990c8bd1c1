package commands

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/ports"
)

// ResolveDisputeCommandHandler settles disputes, by arbitration or by mutual
// agreement. Either way the allocation is paid out through the release
// executor in the same transaction, the escrow ends fully released and the
// work order ends Completed.
type ResolveDisputeCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
	clock      ports.Clock
}

// NewResolveDisputeCommandHandler creates a handler for arbitration and mutual
// settlement of disputes.
func NewResolveDisputeCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor, clock ports.Clock) ResolveDisputeCommandHandler {
	return ResolveDisputeCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		clock:      clock,
	}
}

// Handle applies the arbitrator's allocation.
func (h *ResolveDisputeCommandHandler) Handle(ctx context.Context, cmd ResolveDisputeCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.settle(ctx, cmd.DisputeID(), cmd.Caller(),
		func(d *dispute.Dispute, remainder kernel.Amount, now time.Time) error {
			return d.Resolve(cmd.Caller(), cmd.Allocation(), remainder, now)
		})
}

// HandleAccept applies a proposal both parties agreed on.
func (h *ResolveDisputeCommandHandler) HandleAccept(ctx context.Context, cmd AcceptDisputeProposalCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.settle(ctx, cmd.DisputeID(), cmd.Caller(),
		func(d *dispute.Dispute, remainder kernel.Amount, now time.Time) error {
			_, err := d.AcceptProposal(cmd.Caller(), remainder, now)
			return err
		})
}

type resolution func(d *dispute.Dispute, remainder kernel.Amount, now time.Time) error

func (h *ResolveDisputeCommandHandler) settle(
	ctx context.Context,
	disputeID kernel.UUID,
	caller kernel.Actor,
	resolve resolution,
) error {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, e, wo, err := lockDispute(ctx, uow, disputeID)
	if err != nil {
		return err
	}

	now := h.clock.Now()
	remainder := e.Remainder()
	if err = resolve(d, remainder, now); err != nil {
		return err
	}
	if err = uow.DisputeRepository().Update(ctx, d); err != nil {
		return err
	}
	if err = uow.EventOutbox().Append(ctx, resolvedEvent(d, e, wo, caller, remainder, now)); err != nil {
		return err
	}

	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathDisputeResolution,
		Actor:     caller,
		Escrow:    e,
		WorkOrder: wo,
		Dispute:   d,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func resolvedEvent(
	d *dispute.Dispute,
	e *escrow.Escrow,
	wo *workorder.WorkOrder,
	caller kernel.Actor,
	remainder kernel.Amount,
	now time.Time,
) event.Event {
	allocation := d.Resolution()
	return event.New(event.DisputeResolved, e.ID(), wo.ID(), caller, now).
		WithAmount(remainder).
		With("disputeId", d.ID().String()).
		With("mode", d.Mode().String()).
		With("toRequester", allocation.ToRequester().String()).
		With("toFulfiller", allocation.ToFulfiller().String()).
		With("toArbitrator", allocation.ToArbitrator().String())
}
