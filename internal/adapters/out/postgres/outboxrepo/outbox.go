package outboxrepo

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotifyChannel is the Postgres NOTIFY channel signalled on every append.
const NotifyChannel = "escrow_events"

// GormEventOutbox implements ports.EventOutbox using GORM.
type GormEventOutbox struct {
	db *gorm.DB
}

// NewGormEventOutbox creates an outbox bound to db, usually a transaction.
func NewGormEventOutbox(db *gorm.DB) *GormEventOutbox {
	return &GormEventOutbox{db: db}
}

// Append inserts events in order. On Postgres it also queues a NOTIFY that
// is delivered to listeners when the surrounding transaction commits.
func (o *GormEventOutbox) Append(ctx context.Context, events ...event.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, fromDomain(e))
	}

	db := o.db.WithContext(ctx)
	if err := db.Create(&dtos).Error; err != nil {
		return err
	}

	if db.Dialector.Name() == "postgres" {
		return db.Exec("SELECT pg_notify(?, ?)", NotifyChannel, events[len(events)-1].EscrowID.String()).Error
	}
	return nil
}

// ListUnpublished returns up to limit unpublished events, oldest first.
func (o *GormEventOutbox) ListUnpublished(ctx context.Context, limit int) ([]event.Event, error) {
	var dtos []EventDTO
	err := o.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("sequence").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]event.Event, 0, len(dtos))
	for _, dto := range dtos {
		e, convErr := dto.ToDomain()
		if convErr != nil {
			return nil, convErr
		}
		events = append(events, e)
	}
	return events, nil
}

// MarkPublished stamps the given events as delivered.
func (o *GormEventOutbox) MarkPublished(ctx context.Context, ids []kernel.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	return o.db.WithContext(ctx).
		Model(&EventDTO{}).
		Where("id IN ?", raw).
		Update("published_at", at.UTC()).Error
}
