package commands

import (
	"context"
)

// CancelWorkOrderCommandHandler cancels a work order and refunds its escrow
// through the release executor.
type CancelWorkOrderCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
}

// NewCancelWorkOrderCommandHandler creates a handler that cancels a work order and
// refunds its escrow remainder to the requester.
func NewCancelWorkOrderCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor) CancelWorkOrderCommandHandler {
	return CancelWorkOrderCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
	}
}

// Handle refunds exactly total - released to the requester. Amounts already
// paid to the fulfiller stay where they are.
func (h *CancelWorkOrderCommandHandler) Handle(ctx context.Context, cmd CancelWorkOrderCommand) error {
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

	e, wo, err := lockWorkOrder(ctx, uow, cmd.WorkOrderID())
	if err != nil {
		return err
	}

	if _, err = h.executor.Execute(ctx, uow, ReleaseRequest{
		Path:      PathCancellationRefund,
		Actor:     cmd.Caller(),
		Escrow:    e,
		WorkOrder: wo,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
