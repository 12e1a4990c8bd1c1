package queries

import (
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrGetDisputeQueryIsNotConstructed = errors.New(
		"GetDisputeQuery must be created via NewGetDisputeQuery constructor",
	)
)

// GetDisputeQuery reads a dispute with its proposal, response and resolution.
type GetDisputeQuery struct {
	disputeID kernel.UUID
	viewer    kernel.Actor

	guard guard.ConstructorGuard
}

// NewGetDisputeQuery creates a read of disputeID on behalf of viewer.
func NewGetDisputeQuery(disputeID kernel.UUID, viewer kernel.Actor) (GetDisputeQuery, error) {
	if err := errors.Join(disputeID.Validate(), viewer.Validate()); err != nil {
		return GetDisputeQuery{}, err
	}
	return GetDisputeQuery{
		disputeID: disputeID,
		viewer:    viewer,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDisputeQuery) Validate() error {
	return q.guard.Validate(ErrGetDisputeQueryIsNotConstructed)
}

func (q GetDisputeQuery) DisputeID() kernel.UUID { return q.disputeID }
func (q GetDisputeQuery) Viewer() kernel.Actor   { return q.viewer }

// AllocationView splits a disputed remainder between the three possible recipients.
type AllocationView struct {
	ToRequester  int64
	ToFulfiller  int64
	ToArbitrator int64
}

// GetDisputeQueryResponse is the read model of a dispute.
// Counter and Resolution are nil until the matching step happened.
type GetDisputeQueryResponse struct {
	ID          kernel.UUID
	EscrowID    kernel.UUID
	WorkOrderID kernel.UUID
	FiledBy     string
	Reason      string
	Evidence    []string
	Proposal    AllocationView
	Responder   string
	Statement   string
	Counter     *AllocationView
	RespondedAt *time.Time
	Resolution  *AllocationView
	ResolvedBy  string
	Mode        string
	Status      string
	FiledAt     time.Time
	ResolvedAt  *time.Time
}
