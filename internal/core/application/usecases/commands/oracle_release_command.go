package commands

import (
	"errors"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrOracleReleaseCommandIsNotConstructed = errors.New(
		"OracleReleaseCommand must be created via NewOracleReleaseCommand constructor",
	)
)

// OracleReleaseCommand asks for the remainder to be released because the
// escrow's external condition has been attested as met.
type OracleReleaseCommand struct { //nolint:recvcheck //using for validation
	escrowID kernel.UUID
	caller   kernel.Actor

	guard guard.ConstructorGuard
}

// NewOracleReleaseCommand creates a condition-driven release requested by caller.
func NewOracleReleaseCommand(escrowID kernel.UUID, caller kernel.Actor) (OracleReleaseCommand, error) {
	if err := errors.Join(escrowID.Validate(), caller.Validate()); err != nil {
		return OracleReleaseCommand{}, err
	}
	return OracleReleaseCommand{
		escrowID: escrowID,
		caller:   caller,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c OracleReleaseCommand) Validate() error {
	return c.guard.Validate(ErrOracleReleaseCommandIsNotConstructed)
}

func (c OracleReleaseCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c OracleReleaseCommand) Caller() kernel.Actor { return c.caller }
