// Package oraclerepo is a condition oracle backed by attestations that
// trusted attesters post through the API.
package oraclerepo

import (
	"context"
	"errors"
	"strings"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const maxConditionIDLen = 256

// AttestationDTO is the latest attestation for one condition.
type AttestationDTO struct {
	ConditionID string    `gorm:"type:varchar(256);primaryKey"`
	Met         bool      `gorm:"not null"`
	ProofRef    string    `gorm:"type:varchar(512)"`
	Attester    string    `gorm:"type:varchar(128);not null"`
	AttestedAt  time.Time `gorm:"not null"`
}

// TableName overrides GORM's default "attestation_dtos".
func (AttestationDTO) TableName() string {
	return "oracle_attestations"
}

// GormOracle implements ports.Oracle and ports.AttestationRecorder.
type GormOracle struct {
	db        *gorm.DB
	clock     ports.Clock
	attesters map[string]struct{}
}

// NewGormOracle creates an oracle that accepts attestations only from attesters.
func NewGormOracle(db *gorm.DB, clock ports.Clock, attesters []kernel.Actor) *GormOracle {
	set := make(map[string]struct{}, len(attesters))
	for _, a := range attesters {
		set[a.String()] = struct{}{}
	}
	return &GormOracle{db: db, clock: clock, attesters: set}
}

// Verify reports the latest attestation. A condition nobody attested is not met.
func (o *GormOracle) Verify(ctx context.Context, conditionID string) (ports.Attestation, error) {
	if strings.TrimSpace(conditionID) == "" {
		return ports.Attestation{}, errs.NewValueIsRequiredError("conditionId")
	}

	var dto AttestationDTO
	err := o.db.WithContext(ctx).Where("condition_id = ?", conditionID).Take(&dto).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Attestation{}, nil
	}
	if err != nil {
		return ports.Attestation{}, err
	}
	return ports.Attestation{Met: dto.Met, ProofRef: dto.ProofRef}, nil
}

// Record stores or replaces the attestation for conditionID.
func (o *GormOracle) Record(ctx context.Context, attester kernel.Actor, conditionID string, a ports.Attestation) error {
	if _, ok := o.attesters[attester.String()]; !ok || attester.IsZero() {
		return errs.NewUnauthorizedAccessError(attester.String(), "record attestation")
	}
	conditionID = strings.TrimSpace(conditionID)
	switch {
	case conditionID == "":
		return errs.NewValueIsRequiredError("conditionId")
	case len(conditionID) > maxConditionIDLen:
		return errs.NewValueIsOutOfRangeError("conditionId length", len(conditionID), 1, maxConditionIDLen)
	}

	dto := AttestationDTO{
		ConditionID: conditionID,
		Met:         a.Met,
		ProofRef:    a.ProofRef,
		Attester:    attester.String(),
		AttestedAt:  o.clock.Now().UTC(),
	}
	return o.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "condition_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"met", "proof_ref", "attester", "attested_at"}),
	}).Create(&dto).Error
}
