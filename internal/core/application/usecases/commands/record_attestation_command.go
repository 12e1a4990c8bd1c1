package commands

import (
	"errors"
	"strings"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrRecordAttestationCommandIsNotConstructed = errors.New(
		"RecordAttestationCommand must be created via NewRecordAttestationCommand constructor",
	)
)

// RecordAttestationCommand stores an oracle's verdict on a release condition.
type RecordAttestationCommand struct { //nolint:recvcheck //using for validation
	attester    kernel.Actor
	conditionID string
	met         bool
	proofRef    string

	guard guard.ConstructorGuard
}

// NewRecordAttestationCommand creates the command. A positive attestation
// needs a proof reference.
func NewRecordAttestationCommand(attester kernel.Actor, conditionID string, met bool, proofRef string) (RecordAttestationCommand, error) {
	if err := attester.Validate(); err != nil {
		return RecordAttestationCommand{}, err
	}
	conditionID = strings.TrimSpace(conditionID)
	if conditionID == "" {
		return RecordAttestationCommand{}, errs.NewValueIsRequiredError("conditionId")
	}
	proofRef = strings.TrimSpace(proofRef)
	if met && proofRef == "" {
		return RecordAttestationCommand{}, errs.NewValueIsRequiredError("proofRef")
	}
	return RecordAttestationCommand{
		attester:    attester,
		conditionID: conditionID,
		met:         met,
		proofRef:    proofRef,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordAttestationCommand) Validate() error {
	return c.guard.Validate(ErrRecordAttestationCommandIsNotConstructed)
}

func (c RecordAttestationCommand) Attester() kernel.Actor { return c.attester }
func (c RecordAttestationCommand) ConditionID() string { return c.conditionID }
func (c RecordAttestationCommand) Met() bool { return c.met }
func (c RecordAttestationCommand) ProofRef() string { return c.proofRef }
