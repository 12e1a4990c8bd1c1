package commands

import (
	"context"
	"strconv"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// RequestMilestoneRevisionCommandHandler resets a milestone to Pending.
type RequestMilestoneRevisionCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewRequestMilestoneRevisionCommandHandler creates a handler for revision requests.
func NewRequestMilestoneRevisionCommandHandler(uowFactory UoWFactory, clock ports.Clock) RequestMilestoneRevisionCommandHandler {
	return RequestMilestoneRevisionCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle sends a submitted milestone back with the requester's issues and
// optionally pushes its deadline, never past the escrow expiry.
func (h *RequestMilestoneRevisionCommandHandler) Handle(ctx context.Context, cmd RequestMilestoneRevisionCommand) error {
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
	if err = e.RequestMilestoneRevision(cmd.Caller(), cmd.MilestoneID(), cmd.Issues(), cmd.AdditionalTime(), now); err != nil {
		return err
	}
	if err = uow.EscrowRepository().Update(ctx, e); err != nil {
		return err
	}

	m, err := e.Milestone(cmd.MilestoneID())
	if err != nil {
		return err
	}
	if err = uow.EventOutbox().Append(ctx,
		event.New(event.MilestoneRevisionRequested, e.ID(), wo.ID(), cmd.Caller(), now).
			With("milestoneId", m.ID().String()).
			With("issues", m.LastIssues()).
			With("revision", strconv.Itoa(m.Revisions())).
			With("deadline", m.Deadline().Format(time.RFC3339)),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
