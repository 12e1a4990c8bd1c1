package queries

import (
	"errors"
	"math"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

const (
	DefaultEventPageSize = 100
	MaxEventPageSize     = 500
)

var (
	ErrListEscrowEventsQueryIsNotConstructed = errors.New(
		"ListEscrowEventsQuery must be created via NewListEscrowEventsQuery constructor",
	)
)

// ListEscrowEventsQuery pages through the audit events of one escrow in
// sequence order. Pass the last seen sequence as afterSequence to continue.
//
// Example:
//
//	query, _ := NewListEscrowEventsQuery(escrowID, caller, 0, 0)
//	page, err := handler.Handle(ctx, query)
//	for len(page) > 0 && err == nil {
//	    query, _ = NewListEscrowEventsQuery(escrowID, caller, page[len(page)-1].Sequence, 0)
//	    page, err = handler.Handle(ctx, query)
//	}
type ListEscrowEventsQuery struct {
	escrowID      kernel.UUID
	viewer        kernel.Actor
	afterSequence int64
	limit         int

	guard guard.ConstructorGuard
}

// NewListEscrowEventsQuery builds the query. A zero limit selects DefaultEventPageSize.
func NewListEscrowEventsQuery(
	escrowID kernel.UUID,
	viewer kernel.Actor,
	afterSequence int64,
	limit int,
) (ListEscrowEventsQuery, error) {
	if err := errors.Join(escrowID.Validate(), viewer.Validate()); err != nil {
		return ListEscrowEventsQuery{}, err
	}
	if afterSequence < 0 {
		return ListEscrowEventsQuery{}, errs.NewValueIsOutOfRangeError("after", afterSequence, 0, int64(math.MaxInt64))
	}
	if limit == 0 {
		limit = DefaultEventPageSize
	}
	if limit < 0 || limit > MaxEventPageSize {
		return ListEscrowEventsQuery{}, errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxEventPageSize)
	}
	return ListEscrowEventsQuery{
		escrowID:      escrowID,
		viewer:        viewer,
		afterSequence: afterSequence,
		limit:         limit,
		guard:         guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q ListEscrowEventsQuery) Validate() error {
	return q.guard.Validate(ErrListEscrowEventsQueryIsNotConstructed)
}

func (q ListEscrowEventsQuery) EscrowID() kernel.UUID { return q.escrowID }
func (q ListEscrowEventsQuery) Viewer() kernel.Actor  { return q.viewer }
func (q ListEscrowEventsQuery) AfterSequence() int64  { return q.afterSequence }
func (q ListEscrowEventsQuery) Limit() int            { return q.limit }

// ListEscrowEventsQueryResponse is one audit event.
type ListEscrowEventsQueryResponse struct {
	Sequence    int64
	ID          kernel.UUID
	Type        string
	EscrowID    kernel.UUID
	WorkOrderID kernel.UUID
	Actor       string
	Amount      *int64
	Attributes  map[string]string
	OccurredAt  time.Time
}
