package commands

import (
	"errors"
	"strings"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrRejectDeliveryCommandIsNotConstructed = errors.New(
		"RejectDeliveryCommand must be created via NewRejectDeliveryCommand constructor",
	)
)

// RejectDeliveryCommand sends a delivery back to the fulfiller for rework.
type RejectDeliveryCommand struct { //nolint:recvcheck //using for validation
	workOrderID kernel.UUID
	caller      kernel.Actor
	reason      string

	guard guard.ConstructorGuard
}

// NewRejectDeliveryCommand creates a rejection. The reason must not be blank.
func NewRejectDeliveryCommand(workOrderID kernel.UUID, caller kernel.Actor, reason string) (RejectDeliveryCommand, error) {
	if err := errors.Join(workOrderID.Validate(), caller.Validate()); err != nil {
		return RejectDeliveryCommand{}, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return RejectDeliveryCommand{}, errs.NewValueIsRequiredError("reason")
	}
	return RejectDeliveryCommand{
		workOrderID: workOrderID,
		caller:      caller,
		reason:      reason,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RejectDeliveryCommand) Validate() error {
	return c.guard.Validate(ErrRejectDeliveryCommandIsNotConstructed)
}

func (c RejectDeliveryCommand) WorkOrderID() kernel.UUID { return c.workOrderID }
func (c RejectDeliveryCommand) Caller() kernel.Actor { return c.caller }
func (c RejectDeliveryCommand) Reason() string { return c.reason }
