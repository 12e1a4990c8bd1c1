package queries

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ListEscrowEventsQueryHandler reads the escrow_events outbox table.
// Events are returned whether or not the relay has published them yet.
type ListEscrowEventsQueryHandler struct {
	db *gorm.DB
}

// NewListEscrowEventsQueryHandler creates a handler for the escrow audit trail.
func NewListEscrowEventsQueryHandler(db *gorm.DB) ListEscrowEventsQueryHandler {
	return ListEscrowEventsQueryHandler{db: db}
}

// Handle pages the escrow's events in sequence order, starting after the
// query's cursor.
func (h ListEscrowEventsQueryHandler) Handle(
	ctx context.Context,
	query ListEscrowEventsQuery,
) ([]ListEscrowEventsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	events := make([]ListEscrowEventsQueryResponse, 0)
	err := readOnly(ctx, h.db, func(tx *gorm.DB) error {
		escrowID := query.EscrowID().Bytes()
		if err := authorize(tx, escrowID, query.Viewer(), "read escrow events"); err != nil {
			return err
		}

		rows, err := tx.Raw(`
			SELECT
				sequence,
				id,
				type,
				work_order_id,
				actor,
				amount,
				attributes,
				occurred_at
			FROM escrow_events
			WHERE escrow_id = ? AND sequence > ?
			ORDER BY sequence
			LIMIT ?
		`, escrowID, query.AfterSequence(), query.Limit()).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				e          ListEscrowEventsQueryResponse
				id, woID   uuid.UUID
				actor      sql.NullString
				amount     sql.NullInt64
				attributes sql.NullString
			)
			err = rows.Scan(
				&e.Sequence,
				&id,
				&e.Type,
				&woID,
				&actor,
				&amount,
				&attributes,
				&e.OccurredAt,
			)
			if err != nil {
				return err
			}

			if e.ID, err = toUUID(id); err != nil {
				return err
			}
			if e.WorkOrderID, err = toUUID(woID); err != nil {
				return err
			}
			e.EscrowID = query.EscrowID()
			e.Actor = actor.String
			if amount.Valid {
				units := amount.Int64
				e.Amount = &units
			}
			if attributes.Valid && attributes.String != "" {
				if err = json.Unmarshal([]byte(attributes.String), &e.Attributes); err != nil {
					return err
				}
			}
			e.OccurredAt = e.OccurredAt.UTC()
			events = append(events, e)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}
