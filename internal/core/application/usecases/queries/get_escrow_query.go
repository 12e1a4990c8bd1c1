package queries

import (
	"errors"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/guard"
)

var (
	ErrGetEscrowQueryIsNotConstructed = errors.New(
		"GetEscrowQuery must be created via NewGetEscrowQuery constructor",
	)
)

// GetEscrowQuery reads an escrow account together with its milestone schedule.
type GetEscrowQuery struct {
	escrowID kernel.UUID
	viewer   kernel.Actor

	guard guard.ConstructorGuard
}

// NewGetEscrowQuery creates a read of escrowID on behalf of viewer.
func NewGetEscrowQuery(escrowID kernel.UUID, viewer kernel.Actor) (GetEscrowQuery, error) {
	if err := errors.Join(escrowID.Validate(), viewer.Validate()); err != nil {
		return GetEscrowQuery{}, err
	}
	return GetEscrowQuery{
		escrowID: escrowID,
		viewer:   viewer,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetEscrowQuery) Validate() error {
	return q.guard.Validate(ErrGetEscrowQueryIsNotConstructed)
}

func (q GetEscrowQuery) EscrowID() kernel.UUID { return q.escrowID }
func (q GetEscrowQuery) Viewer() kernel.Actor  { return q.viewer }

// GetEscrowQueryResponse is the read model of an escrow account.
// Amounts are in minor units of Asset.
type GetEscrowQueryResponse struct {
	ID               kernel.UUID
	WorkOrderID      kernel.UUID
	Requester        string
	Recipient        string
	ReleaseAuthority string
	Arbitrator       string
	Asset            string
	Total            int64
	Released         int64
	Refunded         int64
	Remainder        int64
	DisputeID        *kernel.UUID
	ConditionID      string
	ExpiresAt        time.Time
	AutoRelease      bool
	Status           string
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	Milestones       []MilestoneView
}

// MilestoneView is one entry of an escrow's milestone schedule, in position order.
type MilestoneView struct {
	ID           kernel.UUID
	Position     int
	Description  string
	Amount       int64
	Deadline     time.Time
	Deliverables []string
	Status       string
	Revisions    int
	LastIssues   string
	Rating       *int
	ReleasedAt   *time.Time
}
