package commands

import (
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrExtendEscrowCommandIsNotConstructed = errors.New(
		"ExtendEscrowCommand must be created via NewExtendEscrowCommand constructor",
	)
)

// ExtendEscrowCommand moves an escrow's expiry time forward.
type ExtendEscrowCommand struct { //nolint:recvcheck //using for validation
	escrowID  kernel.UUID
	caller    kernel.Actor
	expiresAt time.Time

	guard guard.ConstructorGuard
}

// NewExtendEscrowCommand creates an extension to expiresAt. Whether the new
// time is later than the current expiry is checked against the escrow.
func NewExtendEscrowCommand(escrowID kernel.UUID, caller kernel.Actor, expiresAt time.Time) (ExtendEscrowCommand, error) {
	if err := errors.Join(escrowID.Validate(), caller.Validate()); err != nil {
		return ExtendEscrowCommand{}, err
	}
	if expiresAt.IsZero() {
		return ExtendEscrowCommand{}, errs.NewValueIsRequiredError("newExpiryTime")
	}
	return ExtendEscrowCommand{
		escrowID:  escrowID,
		caller:    caller,
		expiresAt: expiresAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ExtendEscrowCommand) Validate() error {
	return c.guard.Validate(ErrExtendEscrowCommandIsNotConstructed)
}

func (c ExtendEscrowCommand) EscrowID() kernel.UUID { return c.escrowID }
func (c ExtendEscrowCommand) Caller() kernel.Actor { return c.caller }
func (c ExtendEscrowCommand) ExpiresAt() time.Time { return c.expiresAt }
