package queries

import (
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrGetWorkOrderQueryIsNotConstructed = errors.New(
		"GetWorkOrderQuery must be created via NewGetWorkOrderQuery constructor",
	)
)

// GetWorkOrderQuery reads one work order as seen by one of its escrow's participants.
//
// Example:
//
//	query, err := NewGetWorkOrderQuery(workOrderID, caller)
//	if err != nil {
//	    return err
//	}
//	wo, err := NewGetWorkOrderQueryHandler(db).Handle(ctx, query)
type GetWorkOrderQuery struct {
	workOrderID kernel.UUID
	viewer      kernel.Actor

	guard guard.ConstructorGuard
}

// NewGetWorkOrderQuery creates a read of workOrderID on behalf of viewer.
func NewGetWorkOrderQuery(workOrderID kernel.UUID, viewer kernel.Actor) (GetWorkOrderQuery, error) {
	if err := errors.Join(workOrderID.Validate(), viewer.Validate()); err != nil {
		return GetWorkOrderQuery{}, err
	}
	return GetWorkOrderQuery{
		workOrderID: workOrderID,
		viewer:      viewer,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetWorkOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetWorkOrderQueryIsNotConstructed)
}

func (q GetWorkOrderQuery) WorkOrderID() kernel.UUID { return q.workOrderID }
func (q GetWorkOrderQuery) Viewer() kernel.Actor     { return q.viewer }

// GetWorkOrderQueryResponse is the read model of a work order.
type GetWorkOrderQueryResponse struct {
	ID              kernel.UUID
	EscrowID        kernel.UUID
	Requester       string
	Fulfiller       string
	Status          string
	Deliverables    []string
	SubmittedAt     *time.Time
	Attempts        int
	RejectionReason string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
