package commands

import (
	"context"

	"escrow/internal/core/domain/model/kernel"
)

// ExpireEscrowCommandHandler refunds an expired escrow and cancels its work order.
type ExpireEscrowCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
}

// NewExpireEscrowCommandHandler creates the scheduler's expiry refund handler.
func NewExpireEscrowCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor) ExpireEscrowCommandHandler {
	return ExpireEscrowCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
	}
}

// Handle refunds the remainder and cancels the work order. Only Created and Open
// work orders expire; any other status returns ErrInvalidWorkOrderStatus.
func (h *ExpireEscrowCommandHandler) Handle(ctx context.Context, cmd ExpireEscrowCommand) error {
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

	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathExpiryRefund,
		Actor:     kernel.SchedulerActor(),
		Escrow:    e,
		WorkOrder: wo,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
