// Package escrowrepo persists escrow aggregates and their milestones with GORM.
package escrowrepo

import (
	"time"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EscrowDTO is the row layout of the escrows table.
type EscrowDTO struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	WorkOrderID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex"`
	Requester        string         `gorm:"type:varchar(128);not null;index"`
	Recipient        string         `gorm:"type:varchar(128);not null;index"`
	ReleaseAuthority string         `gorm:"type:varchar(128);not null"`
	Arbitrator       string         `gorm:"type:varchar(128)"`
	Asset            string         `gorm:"type:varchar(12);not null"`
	Total            int64          `gorm:"not null"`
	Released         int64          `gorm:"not null"`
	Refunded         int64          `gorm:"not null"`
	ReleaseSequence  int64          `gorm:"not null"`
	DisputeID        *uuid.UUID     `gorm:"type:uuid;index"`
	ConditionID      string         `gorm:"type:varchar(256)"`
	ExpiresAt        time.Time      `gorm:"not null;index"`
	AutoRelease      bool           `gorm:"not null"`
	Status           int            `gorm:"not null;index"`
	ApprovedAt       *time.Time     `gorm:"index"`
	CreatedAt        time.Time      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt        time.Time      `gorm:"not null;autoUpdateTime:false"`
	Milestones       []MilestoneDTO `gorm:"foreignKey:EscrowID;constraint:OnDelete:CASCADE"`
}

// TableName overrides GORM's default "escrow_dtos".
func (EscrowDTO) TableName() string {
	return "escrows"
}

// MilestoneDTO is the row layout of the escrow_milestones table.
type MilestoneDTO struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey"`
	EscrowID     uuid.UUID  `gorm:"type:uuid;not null;index"`
	Position     int        `gorm:"not null"`
	Description  string     `gorm:"type:varchar(500);not null"`
	Amount       int64      `gorm:"not null"`
	Deadline     time.Time  `gorm:"not null"`
	Deliverables []string   `gorm:"type:text;serializer:json"`
	Status       int        `gorm:"not null"`
	Revisions    int        `gorm:"not null"`
	LastIssues   string     `gorm:"type:text"`
	Rating       *int       `gorm:"type:smallint"`
	ReleasedAt   *time.Time `gorm:"index"`
}

// TableName overrides GORM's default "milestone_dtos".
func (MilestoneDTO) TableName() string {
	return "escrow_milestones"
}

func fromDomain(e *escrow.Escrow) EscrowDTO {
	escrowID := e.ID().Bytes()
	milestones := make([]MilestoneDTO, 0, len(e.Milestones()))
	for _, m := range e.Milestones() {
		milestones = append(milestones, MilestoneDTO{
			ID:           m.ID().Bytes(),
			EscrowID:     escrowID,
			Position:     m.Position(),
			Description:  m.Description(),
			Amount:       m.Amount().Units(),
			Deadline:     m.Deadline(),
			Deliverables: m.Deliverables(),
			Status:       int(m.Status()),
			Revisions:    m.Revisions(),
			LastIssues:   m.LastIssues(),
			Rating:       m.Rating(),
			ReleasedAt:   m.ReleasedAt(),
		})
	}

	var disputeID *uuid.UUID
	if id := e.DisputeID(); id != nil {
		raw := id.Bytes()
		disputeID = &raw
	}

	return EscrowDTO{
		ID:               escrowID,
		WorkOrderID:      e.WorkOrderID().Bytes(),
		Requester:        e.Requester().String(),
		Recipient:        e.Recipient().String(),
		ReleaseAuthority: e.ReleaseAuthority().String(),
		Arbitrator:       e.Arbitrator().String(),
		Asset:            e.Asset().String(),
		Total:            e.Total().Units(),
		Released:         e.Released().Units(),
		Refunded:         e.Refunded().Units(),
		ReleaseSequence:  e.ReleaseSequence(),
		DisputeID:        disputeID,
		ConditionID:      e.ConditionID(),
		ExpiresAt:        e.ExpiresAt(),
		AutoRelease:      e.AutoRelease(),
		Status:           int(e.Status()),
		ApprovedAt:       e.ApprovedAt(),
		CreatedAt:        e.CreatedAt(),
		UpdatedAt:        e.UpdatedAt(),
		Milestones:       milestones,
	}
}

func toDomain(dto EscrowDTO) (*escrow.Escrow, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	workOrderID, err := kernel.UUIDFromBytes(dto.WorkOrderID[:])
	if err != nil {
		return nil, err
	}
	requester, err := kernel.NewActor(dto.Requester)
	if err != nil {
		return nil, err
	}
	recipient, err := kernel.NewActor(dto.Recipient)
	if err != nil {
		return nil, err
	}
	authority, err := kernel.NewActor(dto.ReleaseAuthority)
	if err != nil {
		return nil, err
	}
	var arbitrator kernel.Actor
	if dto.Arbitrator != "" {
		if arbitrator, err = kernel.NewActor(dto.Arbitrator); err != nil {
			return nil, err
		}
	}
	asset, err := kernel.NewAssetKind(dto.Asset)
	if err != nil {
		return nil, err
	}
	total, err := kernel.NewAmount(dto.Total)
	if err != nil {
		return nil, err
	}
	released, err := kernel.NewAmount(dto.Released)
	if err != nil {
		return nil, err
	}
	refunded, err := kernel.NewAmount(dto.Refunded)
	if err != nil {
		return nil, err
	}
	var disputeID *kernel.UUID
	if dto.DisputeID != nil {
		did, didErr := kernel.UUIDFromBytes(dto.DisputeID[:])
		if didErr != nil {
			return nil, didErr
		}
		disputeID = &did
	}

	milestones := make([]*escrow.Milestone, 0, len(dto.Milestones))
	for _, m := range dto.Milestones {
		milestone, mErr := milestoneToDomain(m)
		if mErr != nil {
			return nil, mErr
		}
		milestones = append(milestones, milestone)
	}

	var approvedAt *time.Time
	if dto.ApprovedAt != nil {
		at := dto.ApprovedAt.UTC()
		approvedAt = &at
	}

	return escrow.RestoreEscrow(escrow.Snapshot{
		ID:               id,
		WorkOrderID:      workOrderID,
		Requester:        requester,
		Recipient:        recipient,
		ReleaseAuthority: authority,
		Arbitrator:       arbitrator,
		Asset:            asset,
		Total:            total,
		Released:         released,
		Refunded:         refunded,
		ReleaseSequence:  dto.ReleaseSequence,
		Milestones:       milestones,
		DisputeID:        disputeID,
		ConditionID:      dto.ConditionID,
		ExpiresAt:        dto.ExpiresAt.UTC(),
		AutoRelease:      dto.AutoRelease,
		Status:           escrow.Status(dto.Status),
		ApprovedAt:       approvedAt,
		CreatedAt:        dto.CreatedAt.UTC(),
		UpdatedAt:        dto.UpdatedAt.UTC(),
	})
}

func milestoneToDomain(dto MilestoneDTO) (*escrow.Milestone, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	amount, err := kernel.NewAmount(dto.Amount)
	if err != nil {
		return nil, err
	}
	var releasedAt *time.Time
	if dto.ReleasedAt != nil {
		at := dto.ReleasedAt.UTC()
		releasedAt = &at
	}
	return escrow.RestoreMilestone(escrow.MilestoneSnapshot{
		ID:           id,
		Position:     dto.Position,
		Description:  dto.Description,
		Amount:       amount,
		Deadline:     dto.Deadline.UTC(),
		Deliverables: dto.Deliverables,
		Status:       escrow.MilestoneStatus(dto.Status),
		Revisions:    dto.Revisions,
		LastIssues:   dto.LastIssues,
		Rating:       dto.Rating,
		ReleasedAt:   releasedAt,
	})
}
