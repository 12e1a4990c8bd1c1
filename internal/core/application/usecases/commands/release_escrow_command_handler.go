package commands

import (
	"context"
)

// ReleaseEscrowCommandHandler runs an authority release through the executor.
//
// Example:
//
//	cmd, _ := NewReleaseEscrowCommand(escrowID, authority, hundred)
//	err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrAlreadyReleased) {
//	    // the escrow was paid out before
//	}
type ReleaseEscrowCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
}

// NewReleaseEscrowCommandHandler creates a handler for explicit releases by the
// release authority.
func NewReleaseEscrowCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor) ReleaseEscrowCommandHandler {
	return ReleaseEscrowCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
	}
}

// Handle returns the receipts of the ledger legs it executed.
func (h *ReleaseEscrowCommandHandler) Handle(ctx context.Context, cmd ReleaseEscrowCommand) (ReleaseOutcome, error) {
	if err := cmd.Validate(); err != nil {
		return ReleaseOutcome{}, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ReleaseOutcome{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	e, wo, err := lockEscrow(ctx, uow, cmd.EscrowID())
	if err != nil {
		return ReleaseOutcome{}, err
	}

	out, err := h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathReleaseAuthority,
		Actor:     cmd.Caller(),
		Escrow:    e,
		WorkOrder: wo,
		Amount:    cmd.Amount(),
	})
	if err != nil {
		return ReleaseOutcome{}, err
	}

	if err = uow.Commit(ctx); err != nil {
		return ReleaseOutcome{}, err
	}
	return out, nil
}
