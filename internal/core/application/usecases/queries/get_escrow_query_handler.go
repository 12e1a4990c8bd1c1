package queries

import (
	"context"
	"database/sql"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetEscrowQueryHandler reads escrows and milestones in one snapshot, so the
// milestone schedule always matches the released amount shown beside it.
type GetEscrowQueryHandler struct {
	db *gorm.DB
}

// NewGetEscrowQueryHandler creates a handler for escrow reads.
// Requires a GORM database connection for query execution.
func NewGetEscrowQueryHandler(db *gorm.DB) GetEscrowQueryHandler {
	return GetEscrowQueryHandler{db: db}
}

// Handle returns the escrow with its milestones in position order, read in one
// snapshot. Viewers outside the escrow's participants are refused.
func (h GetEscrowQueryHandler) Handle(
	ctx context.Context,
	query GetEscrowQuery,
) (*GetEscrowQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var resp *GetEscrowQueryResponse
	err := readOnly(ctx, h.db, func(tx *gorm.DB) error {
		id := query.EscrowID().Bytes()
		if err := authorize(tx, id, query.Viewer(), "read escrow"); err != nil {
			return err
		}

		r, err := h.escrow(tx, id)
		if err != nil {
			return err
		}
		if r.Milestones, err = h.milestones(tx, id); err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

func (h GetEscrowQueryHandler) escrow(tx *gorm.DB, escrowID uuid.UUID) (*GetEscrowQueryResponse, error) {
	var (
		r           GetEscrowQueryResponse
		id, woID    uuid.UUID
		arbitrator  sql.NullString
		disputeID   sql.NullString
		conditionID sql.NullString
		status      int
		approvedAt  sql.NullTime
	)
	err := tx.Raw(`
		SELECT
			id,
			work_order_id,
			requester,
			recipient,
			release_authority,
			arbitrator,
			asset,
			total,
			released,
			refunded,
			dispute_id,
			condition_id,
			expires_at,
			auto_release,
			status,
			approved_at,
			created_at,
			updated_at
		FROM escrows
		WHERE id = ?
	`, escrowID).Row().Scan(
		&id,
		&woID,
		&r.Requester,
		&r.Recipient,
		&r.ReleaseAuthority,
		&arbitrator,
		&r.Asset,
		&r.Total,
		&r.Released,
		&r.Refunded,
		&disputeID,
		&conditionID,
		&r.ExpiresAt,
		&r.AutoRelease,
		&status,
		&approvedAt,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if r.ID, err = toUUID(id); err != nil {
		return nil, err
	}
	if r.WorkOrderID, err = toUUID(woID); err != nil {
		return nil, err
	}
	if disputeID.Valid && disputeID.String != "" {
		d, parseErr := uuid.Parse(disputeID.String)
		if parseErr != nil {
			return nil, errs.NewInvariantViolationError("escrow", r.ID.String(), parseErr)
		}
		kd, convErr := toUUID(d)
		if convErr != nil {
			return nil, convErr
		}
		r.DisputeID = &kd
	}
	r.Arbitrator = arbitrator.String
	r.ConditionID = conditionID.String
	r.Status = escrow.Status(status).String()
	r.ApprovedAt = nullTime(approvedAt)
	r.ExpiresAt = r.ExpiresAt.UTC()
	r.CreatedAt = r.CreatedAt.UTC()
	r.UpdatedAt = r.UpdatedAt.UTC()
	r.Remainder = r.Total - r.Released - r.Refunded
	if r.Remainder < 0 {
		return nil, errs.NewInvariantViolationError("escrow", r.ID.String(),
			errs.NewValueIsOutOfRangeError("remainder", r.Remainder, 0, r.Total))
	}
	return &r, nil
}

func (h GetEscrowQueryHandler) milestones(tx *gorm.DB, escrowID uuid.UUID) ([]MilestoneView, error) {
	rows, err := tx.Raw(`
		SELECT
			id,
			position,
			description,
			amount,
			deadline,
			deliverables,
			status,
			revisions,
			last_issues,
			rating,
			released_at
		FROM escrow_milestones
		WHERE escrow_id = ?
		ORDER BY position
	`, escrowID).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	milestones := make([]MilestoneView, 0)
	for rows.Next() {
		var (
			m            MilestoneView
			id           uuid.UUID
			deliverables sql.NullString
			status       int
			lastIssues   sql.NullString
			rating       sql.NullInt64
			releasedAt   sql.NullTime
		)
		err = rows.Scan(
			&id,
			&m.Position,
			&m.Description,
			&m.Amount,
			&m.Deadline,
			&deliverables,
			&status,
			&m.Revisions,
			&lastIssues,
			&rating,
			&releasedAt,
		)
		if err != nil {
			return nil, err
		}

		if m.ID, err = toUUID(id); err != nil {
			return nil, err
		}
		if m.Deliverables, err = decodeList(deliverables); err != nil {
			return nil, err
		}
		if rating.Valid {
			v := int(rating.Int64)
			m.Rating = &v
		}
		m.Status = escrow.MilestoneStatus(status).String()
		m.LastIssues = lastIssues.String
		m.Deadline = m.Deadline.UTC()
		m.ReleasedAt = nullTime(releasedAt)
		milestones = append(milestones, m)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return milestones, nil
}
