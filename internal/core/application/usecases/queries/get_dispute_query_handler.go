package queries

import (
	"context"
	"database/sql"
	"errors"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetDisputeQueryHandler reads disputes from the disputes table.
type GetDisputeQueryHandler struct {
	db *gorm.DB
}

// NewGetDisputeQueryHandler creates a handler for dispute reads.
func NewGetDisputeQueryHandler(db *gorm.DB) GetDisputeQueryHandler {
	return GetDisputeQueryHandler{db: db}
}

// Handle returns the dispute with its proposal, counter and resolution.
func (h GetDisputeQueryHandler) Handle(
	ctx context.Context,
	query GetDisputeQuery,
) (*GetDisputeQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	var resp *GetDisputeQueryResponse
	err := readOnly(ctx, h.db, func(tx *gorm.DB) error {
		var (
			r                       GetDisputeQueryResponse
			id, escrowID, woID      uuid.UUID
			evidence                sql.NullString
			responder, statement    sql.NullString
			resolvedBy              sql.NullString
			hasCounter, hasResolved bool
			counter, resolution     AllocationView
			respondedAt, resolvedAt sql.NullTime
			mode, status            int
		)
		err := tx.Raw(`
			SELECT
				id,
				escrow_id,
				work_order_id,
				filed_by,
				reason,
				evidence,
				proposal_to_requester,
				proposal_to_fulfiller,
				proposal_to_arbitrator,
				responder,
				statement,
				has_counter,
				counter_to_requester,
				counter_to_fulfiller,
				counter_to_arbitrator,
				responded_at,
				has_resolution,
				resolution_to_requester,
				resolution_to_fulfiller,
				resolution_to_arbitrator,
				resolved_by,
				mode,
				status,
				filed_at,
				resolved_at
			FROM disputes
			WHERE id = ?
		`, query.DisputeID().Bytes()).Row().Scan(
			&id,
			&escrowID,
			&woID,
			&r.FiledBy,
			&r.Reason,
			&evidence,
			&r.Proposal.ToRequester,
			&r.Proposal.ToFulfiller,
			&r.Proposal.ToArbitrator,
			&responder,
			&statement,
			&hasCounter,
			&counter.ToRequester,
			&counter.ToFulfiller,
			&counter.ToArbitrator,
			&respondedAt,
			&hasResolved,
			&resolution.ToRequester,
			&resolution.ToFulfiller,
			&resolution.ToArbitrator,
			&resolvedBy,
			&mode,
			&status,
			&r.FiledAt,
			&resolvedAt,
		)
		if errors.Is(err, sql.ErrNoRows) {
			return errs.NewObjectNotFoundError("disputeId", query.DisputeID())
		}
		if err != nil {
			return err
		}

		if err = authorize(tx, escrowID, query.Viewer(), "read dispute"); err != nil {
			return err
		}

		if r.ID, err = toUUID(id); err != nil {
			return err
		}
		if r.EscrowID, err = toUUID(escrowID); err != nil {
			return err
		}
		if r.WorkOrderID, err = toUUID(woID); err != nil {
			return err
		}
		if r.Evidence, err = decodeList(evidence); err != nil {
			return err
		}
		if hasCounter {
			r.Counter = &counter
		}
		if hasResolved {
			r.Resolution = &resolution
		}
		r.Responder = responder.String
		r.Statement = statement.String
		r.RespondedAt = nullTime(respondedAt)
		r.ResolvedBy = resolvedBy.String
		r.Mode = dispute.Mode(mode).String()
		r.Status = dispute.Status(status).String()
		r.FiledAt = r.FiledAt.UTC()
		r.ResolvedAt = nullTime(resolvedAt)
		resp = &r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}
