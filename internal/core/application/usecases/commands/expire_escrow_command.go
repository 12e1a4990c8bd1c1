package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrExpireEscrowCommandIsNotConstructed = errors.New(
		"ExpireEscrowCommand must be created via NewExpireEscrowCommand constructor",
	)
)

// ExpireEscrowCommand is the scheduler refunding an escrow past its expiry
// whose work never reached approval.
type ExpireEscrowCommand struct { //nolint:recvcheck //using for validation
	escrowID kernel.UUID

	guard guard.ConstructorGuard
}

// NewExpireEscrowCommand creates the scheduler's expiry refund of escrowID.
func NewExpireEscrowCommand(escrowID kernel.UUID) (ExpireEscrowCommand, error) {
	if err := escrowID.Validate(); err != nil {
		return ExpireEscrowCommand{}, err
	}
	return ExpireEscrowCommand{escrowID: escrowID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c ExpireEscrowCommand) Validate() error {
	return c.guard.Validate(ErrExpireEscrowCommandIsNotConstructed)
}

func (c ExpireEscrowCommand) EscrowID() kernel.UUID { return c.escrowID }
