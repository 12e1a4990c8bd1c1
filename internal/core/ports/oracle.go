package ports

import (
	"context"

	"escrow/internal/core/domain/model/kernel"
)

// Attestation is an external assertion about a release condition.
type Attestation struct {
	Met      bool
	ProofRef string
}

// Oracle verifies release conditions. The core only consumes the boolean and
// the proof reference; how the condition is checked is not its concern.
type Oracle interface {
	Verify(ctx context.Context, conditionID string) (Attestation, error)
}

// AttestationRecorder accepts attestations from trusted attesters.
type AttestationRecorder interface {
	Record(ctx context.Context, attester kernel.Actor, conditionID string, attestation Attestation) error
}
