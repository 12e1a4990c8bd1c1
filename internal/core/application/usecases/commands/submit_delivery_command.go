package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrSubmitDeliveryCommandIsNotConstructed = errors.New(
		"SubmitDeliveryCommand must be created via NewSubmitDeliveryCommand constructor",
	)
)

// SubmitDeliveryCommand is the fulfiller handing in deliverables, either the
// first time or after a rejection.
type SubmitDeliveryCommand struct { //nolint:recvcheck //using for validation
	workOrderID  kernel.UUID
	caller       kernel.Actor
	deliverables []string

	guard guard.ConstructorGuard
}

// NewSubmitDeliveryCommand creates the command; at least one deliverable is required.
func NewSubmitDeliveryCommand(workOrderID kernel.UUID, caller kernel.Actor, deliverables []string) (SubmitDeliveryCommand, error) {
	cmd := SubmitDeliveryCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		workOrderID.Validate(),
		caller.Validate(),
	); err != nil {
		return SubmitDeliveryCommand{}, err
	}
	if len(deliverables) == 0 {
		return SubmitDeliveryCommand{}, errs.NewValueIsRequiredError("deliverables")
	}

	cmd.workOrderID = workOrderID
	cmd.caller = caller
	cmd.deliverables = append([]string(nil), deliverables...)
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrSubmitDeliveryCommandIsNotConstructed)
}

func (c SubmitDeliveryCommand) WorkOrderID() kernel.UUID { return c.workOrderID }
func (c SubmitDeliveryCommand) Caller() kernel.Actor { return c.caller }

// Deliverables returns a copy of the submitted references.
func (c SubmitDeliveryCommand) Deliverables() []string {
	return append([]string(nil), c.deliverables...)
}
