// Package workorderrepo persists work order aggregates with GORM.
package workorderrepo

import (
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"

	"github.com/google/uuid"
)

// WorkOrderDTO is the row layout of the work_orders table.
type WorkOrderDTO struct {
	ID              uuid.UUID `gorm:"type:uuid;primaryKey"`
	EscrowID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Requester       string    `gorm:"type:varchar(128);not null;index"`
	Fulfiller       string    `gorm:"type:varchar(128);not null;index"`
	Status          int       `gorm:"not null;index"`
	Deliverables    []string  `gorm:"type:text;serializer:json"`
	SubmittedAt     *time.Time
	Attempts        int       `gorm:"not null"`
	RejectionReason string    `gorm:"type:text"`
	CreatedAt       time.Time `gorm:"not null;autoCreateTime:false"`
	UpdatedAt       time.Time `gorm:"not null;autoUpdateTime:false"`
}

// TableName overrides GORM's default "work_order_dtos".
func (WorkOrderDTO) TableName() string {
	return "work_orders"
}

func fromDomain(wo *workorder.WorkOrder) WorkOrderDTO {
	dto := WorkOrderDTO{
		ID:              wo.ID().Bytes(),
		EscrowID:        wo.EscrowID().Bytes(),
		Requester:       wo.Requester().String(),
		Fulfiller:       wo.Fulfiller().String(),
		Status:          int(wo.Status()),
		Attempts:        wo.Attempts(),
		RejectionReason: wo.RejectionReason(),
		CreatedAt:       wo.CreatedAt(),
		UpdatedAt:       wo.UpdatedAt(),
	}
	if d := wo.Delivery(); d != nil {
		submittedAt := d.SubmittedAt
		dto.Deliverables = d.Deliverables
		dto.SubmittedAt = &submittedAt
	}
	return dto
}

func toDomain(dto WorkOrderDTO) (*workorder.WorkOrder, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	escrowID, err := kernel.UUIDFromBytes(dto.EscrowID[:])
	if err != nil {
		return nil, err
	}
	requester, err := kernel.NewActor(dto.Requester)
	if err != nil {
		return nil, err
	}
	fulfiller, err := kernel.NewActor(dto.Fulfiller)
	if err != nil {
		return nil, err
	}

	var delivery *workorder.Delivery
	if dto.SubmittedAt != nil {
		delivery = &workorder.Delivery{
			Deliverables: dto.Deliverables,
			SubmittedAt:  dto.SubmittedAt.UTC(),
		}
	}

	return workorder.RestoreWorkOrder(
		id, escrowID, requester, fulfiller,
		workorder.Status(dto.Status),
		delivery, dto.Attempts, dto.RejectionReason,
		dto.CreatedAt.UTC(), dto.UpdatedAt.UTC(),
	)
}
