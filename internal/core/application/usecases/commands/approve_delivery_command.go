package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrApproveDeliveryCommandIsNotConstructed = errors.New(
		"ApproveDeliveryCommand must be created via NewApproveDeliveryCommand constructor",
	)
)

// ApproveDeliveryCommand is the requester accepting a submitted delivery.
type ApproveDeliveryCommand struct { //nolint:recvcheck //using for validation
	workOrderID kernel.UUID
	caller      kernel.Actor

	guard guard.ConstructorGuard
}

// NewApproveDeliveryCommand creates an approval of the submitted delivery.
func NewApproveDeliveryCommand(workOrderID kernel.UUID, caller kernel.Actor) (ApproveDeliveryCommand, error) {
	if err := errors.Join(workOrderID.Validate(), caller.Validate()); err != nil {
		return ApproveDeliveryCommand{}, err
	}
	return ApproveDeliveryCommand{
		workOrderID: workOrderID,
		caller:      caller,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApproveDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrApproveDeliveryCommandIsNotConstructed)
}

func (c ApproveDeliveryCommand) WorkOrderID() kernel.UUID { return c.workOrderID }
func (c ApproveDeliveryCommand) Caller() kernel.Actor { return c.caller }
