package commands

import (
	"errors"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrResolveDisputeCommandIsNotConstructed = errors.New(
		"ResolveDisputeCommand must be created via NewResolveDisputeCommand constructor",
	)
	ErrAcceptDisputeProposalCommandIsNotConstructed = errors.New(
		"AcceptDisputeProposalCommand must be created via NewAcceptDisputeProposalCommand constructor",
	)
)

// ResolveDisputeCommand is the designated arbitrator's final allocation.
type ResolveDisputeCommand struct { //nolint:recvcheck //using for validation
	disputeID  kernel.UUID
	caller     kernel.Actor
	allocation dispute.Allocation

	guard guard.ConstructorGuard
}

// NewResolveDisputeCommand creates an arbitration decision splitting the
// disputed remainder by allocation.
func NewResolveDisputeCommand(disputeID kernel.UUID, caller kernel.Actor, allocation dispute.Allocation) (ResolveDisputeCommand, error) {
	if err := errors.Join(disputeID.Validate(), caller.Validate()); err != nil {
		return ResolveDisputeCommand{}, err
	}
	return ResolveDisputeCommand{
		disputeID:  disputeID,
		caller:     caller,
		allocation: allocation,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ResolveDisputeCommand) Validate() error {
	return c.guard.Validate(ErrResolveDisputeCommandIsNotConstructed)
}

func (c ResolveDisputeCommand) DisputeID() kernel.UUID { return c.disputeID }
func (c ResolveDisputeCommand) Caller() kernel.Actor { return c.caller }
func (c ResolveDisputeCommand) Allocation() dispute.Allocation { return c.allocation }

// AcceptDisputeProposalCommand resolves a dispute by mutual agreement: the
// counterparty accepts the filer's proposal, or the filer accepts the
// counter proposal.
type AcceptDisputeProposalCommand struct { //nolint:recvcheck //using for validation
	disputeID kernel.UUID
	caller    kernel.Actor

	guard guard.ConstructorGuard
}

// NewAcceptDisputeProposalCommand creates a mutual-agreement acceptance of the
// proposal currently addressed to caller.
func NewAcceptDisputeProposalCommand(disputeID kernel.UUID, caller kernel.Actor) (AcceptDisputeProposalCommand, error) {
	if err := errors.Join(disputeID.Validate(), caller.Validate()); err != nil {
		return AcceptDisputeProposalCommand{}, err
	}
	return AcceptDisputeProposalCommand{
		disputeID: disputeID,
		caller:    caller,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c AcceptDisputeProposalCommand) Validate() error {
	return c.guard.Validate(ErrAcceptDisputeProposalCommandIsNotConstructed)
}

func (c AcceptDisputeProposalCommand) DisputeID() kernel.UUID { return c.disputeID }
func (c AcceptDisputeProposalCommand) Caller() kernel.Actor { return c.caller }
