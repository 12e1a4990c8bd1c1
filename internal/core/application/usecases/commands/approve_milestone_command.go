package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrApproveMilestoneCommandIsNotConstructed = errors.New(
		"ApproveMilestoneCommand must be created via NewApproveMilestoneCommand constructor",
	)
)

// ApproveMilestoneCommand is the requester accepting a milestone, optionally
// rating it and tipping the fulfiller.
//
// Example:
//
//	rating := 5
//	tip, _ := kernel.NewPositiveAmount("tip", 10)
//	cmd, err := NewApproveMilestoneCommand(escrowID, milestoneID, requester, &rating, &tip)
//	if err != nil {
//	    return err
//	}
//	// releases the milestone amount from custody and pays the tip from the
//	// requester's own account
//	err = handler.Handle(ctx, cmd)
type ApproveMilestoneCommand struct { //nolint:recvcheck //using for validation
	escrowID    kernel.UUID
	milestoneID kernel.UUID
	caller      kernel.Actor
	rating      *int
	tip         *kernel.Amount

	guard guard.ConstructorGuard
}

// NewApproveMilestoneCommand creates the command. A tip, when given, must be positive.
func NewApproveMilestoneCommand(
	escrowID, milestoneID kernel.UUID,
	caller kernel.Actor,
	rating *int,
	tip *kernel.Amount,
) (ApproveMilestoneCommand, error) {
	if err := errors.Join(escrowID.Validate(), milestoneID.Validate(), caller.Validate()); err != nil {
		return ApproveMilestoneCommand{}, err
	}
	cmd := ApproveMilestoneCommand{
		escrowID:    escrowID,
		milestoneID: milestoneID,
		caller:      caller,
		guard:       guard.NewConstructorGuard(),
	}
	if rating != nil {
		r := *rating
		cmd.rating = &r
	}
	if tip != nil {
		if tip.IsZero() {
			return ApproveMilestoneCommand{}, errs.NewValueIsOutOfRangeError("tip", 0, 1, "max int64")
		}
		t := *tip
		cmd.tip = &t
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c ApproveMilestoneCommand) Validate() error {
	return c.guard.Validate(ErrApproveMilestoneCommandIsNotConstructed)
}

func (c ApproveMilestoneCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c ApproveMilestoneCommand) MilestoneID() kernel.UUID { return c.milestoneID }
func (c ApproveMilestoneCommand) Caller() kernel.Actor { return c.caller }
func (c ApproveMilestoneCommand) Rating() *int { return c.rating }
func (c ApproveMilestoneCommand) Tip() *kernel.Amount { return c.tip }
