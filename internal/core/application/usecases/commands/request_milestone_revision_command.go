package commands

import (
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrRequestMilestoneRevisionCommandIsNotConstructed = errors.New(
		"RequestMilestoneRevisionCommand must be created via NewRequestMilestoneRevisionCommand constructor",
	)
)

// RequestMilestoneRevisionCommand sends a submitted milestone back for rework.
// AdditionalTime extends the milestone deadline; zero keeps it.
type RequestMilestoneRevisionCommand struct { //nolint:recvcheck //using for validation
	escrowID       kernel.UUID
	milestoneID    kernel.UUID
	caller         kernel.Actor
	issues         string
	additionalTime time.Duration

	guard guard.ConstructorGuard
}

// NewRequestMilestoneRevisionCommand creates a revision request. Issues must not
// be blank and additionalTime must not be negative.
func NewRequestMilestoneRevisionCommand(
	escrowID, milestoneID kernel.UUID,
	caller kernel.Actor,
	issues string,
	additionalTime time.Duration,
) (RequestMilestoneRevisionCommand, error) {
	if err := errors.Join(escrowID.Validate(), milestoneID.Validate(), caller.Validate()); err != nil {
		return RequestMilestoneRevisionCommand{}, err
	}
	if additionalTime < 0 {
		return RequestMilestoneRevisionCommand{}, errs.NewValueIsOutOfRangeError("additionalTime", additionalTime, 0, "escrow expiry")
	}
	return RequestMilestoneRevisionCommand{
		escrowID:       escrowID,
		milestoneID:    milestoneID,
		caller:         caller,
		issues:         issues,
		additionalTime: additionalTime,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RequestMilestoneRevisionCommand) Validate() error {
	return c.guard.Validate(ErrRequestMilestoneRevisionCommandIsNotConstructed)
}

func (c RequestMilestoneRevisionCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c RequestMilestoneRevisionCommand) MilestoneID() kernel.UUID { return c.milestoneID }
func (c RequestMilestoneRevisionCommand) Caller() kernel.Actor { return c.caller }
func (c RequestMilestoneRevisionCommand) Issues() string { return c.issues }
func (c RequestMilestoneRevisionCommand) AdditionalTime() time.Duration { return c.additionalTime }
