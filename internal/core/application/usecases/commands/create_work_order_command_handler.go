package commands

import (
	"context"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/ports"
)

// CreateWorkOrderCommandHandler creates a work order and its escrow, moves the
// total from the requester into custody and opens the work order, all in one
// transaction.
type CreateWorkOrderCommandHandler struct {
	uowFactory UoWFactory
	clock      ports.Clock
}

// NewCreateWorkOrderCommandHandler creates a handler for work order creation.
func NewCreateWorkOrderCommandHandler(uowFactory UoWFactory, clock ports.Clock) CreateWorkOrderCommandHandler {
	return CreateWorkOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
	}
}

// Handle validates the escrow, funds custody and persists both aggregates.
// The requester's ledger account must hold the total; otherwise the ledger's
// InsufficientFunds error is returned and nothing is stored.
func (h *CreateWorkOrderCommandHandler) Handle(ctx context.Context, cmd CreateWorkOrderCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	now := h.clock.Now()
	params := cmd.Params()
	e, err := escrow.NewEscrow(params, now)
	if err != nil {
		return err
	}
	wo, err := workorder.NewWorkOrder(params.WorkOrderID, params.ID, params.Requester, params.Recipient, now)
	if err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	receipt, err := uow.Ledger().Transfer(ctx, ports.Transfer{
		Key:    e.ID().String() + ":fund",
		From:   e.Requester().String(),
		To:     ports.CustodyAccount(e.ID()),
		Asset:  e.Asset(),
		Amount: e.Total(),
		Memo:   "fund",
	})
	if err != nil {
		return err
	}

	if err = wo.Open(now); err != nil {
		return err
	}
	if err = uow.WorkOrderRepository().Add(ctx, wo); err != nil {
		return err
	}
	if err = uow.EscrowRepository().Add(ctx, e); err != nil {
		return err
	}

	if err = uow.EventOutbox().Append(ctx,
		event.New(event.WorkOrderCreated, e.ID(), wo.ID(), cmd.Caller(), now).
			With("fulfiller", wo.Fulfiller().String()),
		event.New(event.EscrowFunded, e.ID(), wo.ID(), cmd.Caller(), now).
			WithAmount(e.Total()).
			With("asset", e.Asset().String()).
			With("receiptId", receipt.ID.String()),
		event.New(event.WorkOrderOpened, e.ID(), wo.ID(), cmd.Caller(), now),
	); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
