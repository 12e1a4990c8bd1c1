// Package outboxrepo stores escrow audit events in a transactional outbox table.
package outboxrepo

import (
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// EventDTO is the row layout of the escrow_events table.
type EventDTO struct {
	Sequence    int64             `gorm:"primaryKey;autoIncrement"`
	ID          uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	Type        string            `gorm:"type:varchar(64);not null;index"`
	EscrowID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	WorkOrderID uuid.UUID         `gorm:"type:uuid;not null"`
	Actor       string            `gorm:"type:varchar(128)"`
	Amount      *int64
	Attributes  map[string]string `gorm:"type:text;serializer:json"`
	OccurredAt  time.Time         `gorm:"not null"`
	PublishedAt *time.Time        `gorm:"index"`
}

// TableName overrides GORM's default "event_dtos".
func (EventDTO) TableName() string {
	return "escrow_events"
}

func fromDomain(e event.Event) EventDTO {
	dto := EventDTO{
		ID:          e.ID.Bytes(),
		Type:        e.Type.String(),
		EscrowID:    e.EscrowID.Bytes(),
		WorkOrderID: e.WorkOrderID.Bytes(),
		Actor:       e.Actor.String(),
		Attributes:  e.Attributes,
		OccurredAt:  e.OccurredAt,
		PublishedAt: e.PublishedAt,
	}
	if e.Amount != nil {
		units := e.Amount.Units()
		dto.Amount = &units
	}
	return dto
}

// ToDomain converts a stored row back into an event.
func (dto EventDTO) ToDomain() (event.Event, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return event.Event{}, err
	}
	escrowID, err := kernel.UUIDFromBytes(dto.EscrowID[:])
	if err != nil {
		return event.Event{}, err
	}
	workOrderID, err := kernel.UUIDFromBytes(dto.WorkOrderID[:])
	if err != nil {
		return event.Event{}, err
	}
	var actor kernel.Actor
	if dto.Actor != "" {
		if actor, err = kernel.NewActor(dto.Actor); err != nil {
			return event.Event{}, err
		}
	}

	e := event.Event{
		ID:          id,
		Type:        event.Type(dto.Type),
		EscrowID:    escrowID,
		WorkOrderID: workOrderID,
		Actor:       actor,
		Attributes:  dto.Attributes,
		OccurredAt:  dto.OccurredAt.UTC(),
		Sequence:    dto.Sequence,
	}
	if dto.Amount != nil {
		amount, aErr := kernel.NewAmount(*dto.Amount)
		if aErr != nil {
			return event.Event{}, aErr
		}
		e.Amount = &amount
	}
	if dto.PublishedAt != nil {
		at := dto.PublishedAt.UTC()
		e.PublishedAt = &at
	}
	return e, nil
}
