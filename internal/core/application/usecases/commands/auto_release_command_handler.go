package commands

import (
	"context"

	"escrow/internal/core/domain/model/kernel"
)

// AutoReleaseCommandHandler releases one escrow on behalf of the scheduler.
// The executor re-checks that the escrow is still due under the row lock.
type AutoReleaseCommandHandler struct {
	uowFactory UoWFactory
	executor   *ReleaseExecutor
}

// NewAutoReleaseCommandHandler creates the scheduler's auto-release handler.
func NewAutoReleaseCommandHandler(uowFactory UoWFactory, executor *ReleaseExecutor) AutoReleaseCommandHandler {
	return AutoReleaseCommandHandler{
		uowFactory: uowFactory,
		executor:   executor,
	}
}

// Handle pays the remainder of an approved autoRelease escrow once it expired.
func (h *AutoReleaseCommandHandler) Handle(ctx context.Context, cmd AutoReleaseCommand) error {
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
		Path:      PathAutoRelease,
		Actor:     kernel.SchedulerActor(),
		Escrow:    e,
		WorkOrder: wo,
	}); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
