package commands

import (
	"context"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
)

// DepositCommandHandler credits funds to party accounts. Only the configured
// ledger operators may deposit.
type DepositCommandHandler struct {
	uowFactory UoWFactory
	operators  []kernel.Actor
}

// NewDepositCommandHandler creates a handler for ledger deposits. Only the
// listed operators may deposit.
func NewDepositCommandHandler(uowFactory UoWFactory, operators []kernel.Actor) DepositCommandHandler {
	return DepositCommandHandler{
		uowFactory: uowFactory,
		operators:  append([]kernel.Actor(nil), operators...),
	}
}

// Handle credits the account. Repeating a key returns the original receipt.
func (h *DepositCommandHandler) Handle(ctx context.Context, cmd DepositCommand) (ports.Receipt, error) {
	if err := cmd.Validate(); err != nil {
		return ports.Receipt{}, err
	}
	if !h.isOperator(cmd.Caller()) {
		return ports.Receipt{}, errs.NewUnauthorizedAccessError(cmd.Caller().String(), "deposit funds")
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return ports.Receipt{}, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	receipt, err := uow.Treasury().Deposit(ctx, cmd.Account().String(), cmd.Asset(), cmd.Amount(), cmd.Key())
	if err != nil {
		return ports.Receipt{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return ports.Receipt{}, err
	}
	return receipt, nil
}

func (h *DepositCommandHandler) isOperator(actor kernel.Actor) bool {
	for _, op := range h.operators {
		if op.IsEqual(actor) {
			return true
		}
	}
	return false
}
