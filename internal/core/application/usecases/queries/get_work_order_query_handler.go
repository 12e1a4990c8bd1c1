package queries

import (
	"context"
	"database/sql"

	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetWorkOrderQueryHandler reads work orders straight from the work_orders table.
type GetWorkOrderQueryHandler struct {
	db *gorm.DB
}

// NewGetWorkOrderQueryHandler creates a handler for work order reads.
// Requires a GORM database connection for query execution.
func NewGetWorkOrderQueryHandler(db *gorm.DB) GetWorkOrderQueryHandler {
	return GetWorkOrderQueryHandler{db: db}
}

// Handle returns ErrObjectNotFound for unknown ids and ErrUnauthorizedAccess
// when the viewer is not a participant of the work order's escrow.
func (h GetWorkOrderQueryHandler) Handle(
	ctx context.Context,
	query GetWorkOrderQuery,
) (*GetWorkOrderQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var resp *GetWorkOrderQueryResponse
	err := readOnly(ctx, h.db, func(tx *gorm.DB) error {
		rows, err := tx.Raw(`
			SELECT
				id,
				escrow_id,
				requester,
				fulfiller,
				status,
				deliverables,
				submitted_at,
				attempts,
				rejection_reason,
				created_at,
				updated_at
			FROM work_orders
			WHERE id = ?
		`, query.WorkOrderID().Bytes()).Rows()
		if err != nil {
			return err
		}
		defer rows.Close()

		if !rows.Next() {
			if err = rows.Err(); err != nil {
				return err
			}
			return errs.NewObjectNotFoundError("workOrderId", query.WorkOrderID())
		}

		var (
			id, escrowID    uuid.UUID
			status          int
			deliverables    sql.NullString
			submittedAt     sql.NullTime
			rejectionReason sql.NullString
			r               GetWorkOrderQueryResponse
		)
		err = rows.Scan(
			&id,
			&escrowID,
			&r.Requester,
			&r.Fulfiller,
			&status,
			&deliverables,
			&submittedAt,
			&r.Attempts,
			&rejectionReason,
			&r.CreatedAt,
			&r.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err = rows.Close(); err != nil {
			return err
		}

		if err = authorize(tx, escrowID, query.Viewer(), "read work order"); err != nil {
			return err
		}

		if r.ID, err = toUUID(id); err != nil {
			return err
		}
		if r.EscrowID, err = toUUID(escrowID); err != nil {
			return err
		}
		if r.Deliverables, err = decodeList(deliverables); err != nil {
			return err
		}
		r.Status = workorder.Status(status).String()
		r.SubmittedAt = nullTime(submittedAt)
		r.RejectionReason = rejectionReason.String
		r.CreatedAt = r.CreatedAt.UTC()
		r.UpdatedAt = r.UpdatedAt.UTC()
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
