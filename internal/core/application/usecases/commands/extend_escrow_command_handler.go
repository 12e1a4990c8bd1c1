package commands

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/ports"
)

// ExtendEscrowCommandHandler applies an expiry extension by the requester.
type ExtendEscrowCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewExtendEscrowCommandHandler creates a handler for expiry extensions.
func NewExtendEscrowCommandHandler(uowFactory UoWFactory, clock ports.Clock) ExtendEscrowCommandHandler {
	return ExtendEscrowCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle moves the escrow expiry forward and records escrow.extended.
func (h *ExtendEscrowCommandHandler) Handle(ctx context.Context, cmd ExtendEscrowCommand) error {
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
	previous := e.ExpiresAt()
	if err = e.Extend(cmd.Caller(), cmd.ExpiresAt(), now); err != nil {
		return err
	}
	if err = uow.EscrowRepository().Update(ctx, e); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.EscrowExtended, e.ID(), wo.ID(), cmd.Caller(), now).
			With("previousExpiry", previous.Format(time.RFC3339)).
			With("expiresAt", e.ExpiresAt().Format(time.RFC3339)),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
