package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrReleaseEscrowCommandIsNotConstructed = errors.New(
		"ReleaseEscrowCommand must be created via NewReleaseEscrowCommand constructor",
	)
)

// ReleaseEscrowCommand is the release authority paying out part or all of
// the remainder to the fulfiller.
type ReleaseEscrowCommand struct { //nolint:recvcheck //using for validation
	escrowID kernel.UUID
	caller   kernel.Actor
	amount   kernel.Amount

	guard guard.ConstructorGuard
}

// NewReleaseEscrowCommand creates a release of amount by the release authority.
// The amount must be positive; the remainder bound is checked by the executor.
func NewReleaseEscrowCommand(escrowID kernel.UUID, caller kernel.Actor, amount kernel.Amount) (ReleaseEscrowCommand, error) {
	if err := errors.Join(escrowID.Validate(), caller.Validate()); err != nil {
		return ReleaseEscrowCommand{}, err
	}
	if amount.IsZero() {
		return ReleaseEscrowCommand{}, errs.NewValueIsOutOfRangeError("amount", 0, 1, "remainder")
	}
	return ReleaseEscrowCommand{
		escrowID: escrowID,
		caller:   caller,
		amount:   amount,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ReleaseEscrowCommand) Validate() error {
	return c.guard.Validate(ErrReleaseEscrowCommandIsNotConstructed)
}

func (c ReleaseEscrowCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c ReleaseEscrowCommand) Caller() kernel.Actor { return c.caller }
func (c ReleaseEscrowCommand) Amount() kernel.Amount { return c.amount }
