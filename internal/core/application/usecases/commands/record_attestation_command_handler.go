package commands

import (
	"context"

	"escrow/internal/core/ports"
)

// RecordAttestationCommandHandler forwards attestations to the oracle store,
// which decides whether the attester is trusted.
type RecordAttestationCommandHandler struct {
	recorder ports.AttestationRecorder
}

// NewRecordAttestationCommandHandler creates a handler that stores oracle attestations.
func NewRecordAttestationCommandHandler(recorder ports.AttestationRecorder) RecordAttestationCommandHandler {
	return RecordAttestationCommandHandler{recorder: recorder}
}

// Handle records the attester's verdict for a condition.
func (h *RecordAttestationCommandHandler) Handle(ctx context.Context, cmd RecordAttestationCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}
	return h.recorder.Record(ctx, cmd.Attester(), cmd.ConditionID(), ports.Attestation{
		Met:      cmd.Met(),
		ProofRef: cmd.ProofRef(),
	})
}
