package commands

import (
	"errors"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrRespondToDisputeCommandIsNotConstructed = errors.New(
		"RespondToDisputeCommand must be created via NewRespondToDisputeCommand constructor",
	)
)

// RespondToDisputeCommand is the counterparty's statement, optionally with a
// counter proposal.
type RespondToDisputeCommand struct { //nolint:recvcheck //using for validation
	disputeID kernel.UUID
	caller    kernel.Actor
	statement string
	counter   *dispute.Allocation

	guard guard.ConstructorGuard
}

// NewRespondToDisputeCommand creates the counterparty's response with an optional
// counter-allocation.
func NewRespondToDisputeCommand(
	disputeID kernel.UUID,
	caller kernel.Actor,
	statement string,
	counter *dispute.Allocation,
) (RespondToDisputeCommand, error) {
	if err := errors.Join(disputeID.Validate(), caller.Validate()); err != nil {
		return RespondToDisputeCommand{}, err
	}
	cmd := RespondToDisputeCommand{
		disputeID: disputeID,
		caller:    caller,
		statement: statement,
		guard:     guard.NewConstructorGuard(),
	}
	if counter != nil {
		c := *counter
		cmd.counter = &c
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RespondToDisputeCommand) Validate() error {
	return c.guard.Validate(ErrRespondToDisputeCommandIsNotConstructed)
}

func (c RespondToDisputeCommand) DisputeID() kernel.UUID { return c.disputeID }
func (c RespondToDisputeCommand) Caller() kernel.Actor { return c.caller }
func (c RespondToDisputeCommand) Statement() string { return c.statement }
func (c RespondToDisputeCommand) Counter() *dispute.Allocation { return c.counter }
