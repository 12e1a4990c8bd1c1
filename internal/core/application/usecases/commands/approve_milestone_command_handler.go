package commands

import (
	"context"
	"strconv"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// ApproveMilestoneCommandHandler approves a milestone and pays it out.
type ApproveMilestoneCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
	clock      ports.Clock
}

// NewApproveMilestoneCommandHandler creates a handler that approves a milestone
// and releases its amount.
func NewApproveMilestoneCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor, clock ports.Clock) ApproveMilestoneCommandHandler {
	return ApproveMilestoneCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
		clock:      clock,
	}
}

// Handle approves the milestone and releases exactly its amount. The tip is a
// separate transfer from the requester's own account, never from custody, and
// carries no fee.
func (h *ApproveMilestoneCommandHandler) Handle(ctx context.Context, cmd ApproveMilestoneCommand) error {
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
	m, err := e.ApproveMilestone(cmd.Caller(), cmd.MilestoneID(), cmd.Rating(), now)
	if err != nil {
		return err
	}

	approved := event.New(event.MilestoneApproved, e.ID(), wo.ID(), cmd.Caller(), now).
		WithAmount(m.Amount()).
		With("milestoneId", m.ID().String())
	if r := m.Rating(); r != nil {
		approved = approved.With("rating", strconv.Itoa(*r))
	}
	if err = uow.EventOutbox().Append(ctx, approved); err != nil {
		return err
	}

	milestoneID := m.ID()
	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:        PathMilestoneApproval,
		Actor:       cmd.Caller(),
		Escrow:      e,
		WorkOrder:   wo,
		MilestoneID: &milestoneID,
	}); err != nil {
		return err
	}

	if tip := cmd.Tip(); tip != nil {
		receipt, err := uow.Ledger().Transfer(ctx, ports.Transfer{
			Key:    e.ID().String() + ":" + milestoneID.String() + ":tip",
			From:   e.Requester().String(),
			To:     e.Recipient().String(),
			Asset:  e.Asset(),
			Amount: *tip,
			Memo:   "tip",
		})
		if err != nil {
			return err
		}
		if err = uow.EventOutbox().Append(ctx,
			event.New(event.TipPaid, e.ID(), wo.ID(), cmd.Caller(), now).
				WithAmount(*tip).
				With("milestoneId", milestoneID.String()).
				With("receiptId", receipt.ID.String()),
		); err != nil {
			return err
		}
	}

	return uow.Commit(ctx)
}
