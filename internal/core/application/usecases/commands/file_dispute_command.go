package commands

import (
	"errors"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrFileDisputeCommandIsNotConstructed = errors.New(
		"FileDisputeCommand must be created via NewFileDisputeCommand constructor",
	)
)

// FileDisputeCommand is a party freezing an escrow and proposing how its
// remainder should be split.
type FileDisputeCommand struct { //nolint:recvcheck //using for validation
	disputeID kernel.UUID
	escrowID  kernel.UUID
	caller    kernel.Actor
	reason    string
	evidence  []string
	proposal  dispute.Allocation

	guard guard.ConstructorGuard
}

// NewFileDisputeCommand creates the command. Reason, evidence and proposal
// are validated against the escrow by the dispute itself.
func NewFileDisputeCommand(
	disputeID, escrowID kernel.UUID,
	caller kernel.Actor,
	reason string,
	evidence []string,
	proposal dispute.Allocation,
) (FileDisputeCommand, error) {
	if err := errors.Join(disputeID.Validate(), escrowID.Validate(), caller.Validate()); err != nil {
		return FileDisputeCommand{}, err
	}
	return FileDisputeCommand{
		disputeID: disputeID,
		escrowID:  escrowID,
		caller:    caller,
		reason:    reason,
		evidence:  append([]string(nil), evidence...),
		proposal:  proposal,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c FileDisputeCommand) Validate() error {
	return c.guard.Validate(ErrFileDisputeCommandIsNotConstructed)
}

func (c FileDisputeCommand) DisputeID() kernel.UUID { return c.disputeID }
func (c FileDisputeCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c FileDisputeCommand) Caller() kernel.Actor { return c.caller }
func (c FileDisputeCommand) Reason() string { return c.reason }
func (c FileDisputeCommand) Proposal() dispute.Allocation { return c.proposal }

// Evidence returns a copy of the evidence references.
func (c FileDisputeCommand) Evidence() []string {
	return append([]string(nil), c.evidence...)
}
