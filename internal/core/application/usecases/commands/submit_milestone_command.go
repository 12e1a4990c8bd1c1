package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrSubmitMilestoneCommandIsNotConstructed = errors.New(
		"SubmitMilestoneCommand must be created via NewSubmitMilestoneCommand constructor",
	)
)

// SubmitMilestoneCommand is the fulfiller delivering one milestone.
type SubmitMilestoneCommand struct { //nolint:recvcheck //using for validation
	escrowID     kernel.UUID
	milestoneID  kernel.UUID
	caller       kernel.Actor
	deliverables []string

	guard guard.ConstructorGuard
}

// NewSubmitMilestoneCommand creates a milestone submission. At least one
// deliverable is required.
func NewSubmitMilestoneCommand(
	escrowID, milestoneID kernel.UUID,
	caller kernel.Actor,
	deliverables []string,
) (SubmitMilestoneCommand, error) {
	if err := errors.Join(escrowID.Validate(), milestoneID.Validate(), caller.Validate()); err != nil {
		return SubmitMilestoneCommand{}, err
	}
	if len(deliverables) == 0 {
		return SubmitMilestoneCommand{}, errs.NewValueIsRequiredError("deliverables")
	}
	return SubmitMilestoneCommand{
		escrowID:     escrowID,
		milestoneID:  milestoneID,
		caller:       caller,
		deliverables: append([]string(nil), deliverables...),
		guard:        guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c SubmitMilestoneCommand) Validate() error {
	return c.guard.Validate(ErrSubmitMilestoneCommandIsNotConstructed)
}

func (c SubmitMilestoneCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c SubmitMilestoneCommand) MilestoneID() kernel.UUID { return c.milestoneID }
func (c SubmitMilestoneCommand) Caller() kernel.Actor { return c.caller }

// Deliverables returns a copy of the submitted references.
func (c SubmitMilestoneCommand) Deliverables() []string {
	return append([]string(nil), c.deliverables...)
}
