package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrAutoReleaseCommandIsNotConstructed = errors.New(
		"AutoReleaseCommand must be created via NewAutoReleaseCommand constructor",
	)
)

// AutoReleaseCommand is the scheduler releasing an approved escrow whose
// auto-release time has come.
type AutoReleaseCommand struct { //nolint:recvcheck //using for validation
	escrowID kernel.UUID

	guard guard.ConstructorGuard
}

// NewAutoReleaseCommand creates the scheduler's release of escrowID.
func NewAutoReleaseCommand(escrowID kernel.UUID) (AutoReleaseCommand, error) {
	if err := escrowID.Validate(); err != nil {
		return AutoReleaseCommand{}, err
	}
	return AutoReleaseCommand{escrowID: escrowID, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c AutoReleaseCommand) Validate() error {
	return c.guard.Validate(ErrAutoReleaseCommandIsNotConstructed)
}

func (c AutoReleaseCommand) EscrowID() kernel.UUID { return c.escrowID }
