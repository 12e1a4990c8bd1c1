package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrCancelWorkOrderCommandIsNotConstructed = errors.New(
		"CancelWorkOrderCommand must be created via NewCancelWorkOrderCommand constructor",
	)
)

// CancelWorkOrderCommand is the requester withdrawing a work order that has
// not been approved yet. The unreleased remainder goes back to the requester.
type CancelWorkOrderCommand struct { //nolint:recvcheck //using for validation
	workOrderID kernel.UUID
	caller      kernel.Actor

	guard guard.ConstructorGuard
}

// NewCancelWorkOrderCommand creates a cancellation requested by caller.
func NewCancelWorkOrderCommand(workOrderID kernel.UUID, caller kernel.Actor) (CancelWorkOrderCommand, error) {
	if err := errors.Join(workOrderID.Validate(), caller.Validate()); err != nil {
		return CancelWorkOrderCommand{}, err
	}
	return CancelWorkOrderCommand{
		workOrderID: workOrderID,
		caller:      caller,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelWorkOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelWorkOrderCommandIsNotConstructed)
}

func (c CancelWorkOrderCommand) WorkOrderID() kernel.UUID { return c.workOrderID }
func (c CancelWorkOrderCommand) Caller() kernel.Actor { return c.caller }
