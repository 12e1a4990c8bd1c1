package http

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types mirror the schemas of api/openapi.json.

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type NewMilestone struct {
	Description string    `json:"description"`
	Amount      int64     `json:"amount"`
	Deadline    time.Time `json:"deadline"`
}

type NewWorkOrder struct {
	WorkOrderID      *openapi_types.UUID `json:"workOrderId,omitempty"`
	EscrowID         *openapi_types.UUID `json:"escrowId,omitempty"`
	Fulfiller        string              `json:"fulfiller"`
	ReleaseAuthority string              `json:"releaseAuthority,omitempty"`
	Arbitrator       string              `json:"arbitrator,omitempty"`
	Asset            string              `json:"asset"`
	Total            int64               `json:"total"`
	ExpiresAt        time.Time           `json:"expiresAt"`
	AutoRelease      bool                `json:"autoRelease,omitempty"`
	ConditionID      string              `json:"conditionId,omitempty"`
	Milestones       []NewMilestone      `json:"milestones,omitempty"`
}

type WorkOrderCreated struct {
	WorkOrderID openapi_types.UUID `json:"workOrderId"`
	EscrowID    openapi_types.UUID `json:"escrowId"`
}

type WorkOrder struct {
	ID              openapi_types.UUID `json:"id"`
	EscrowID        openapi_types.UUID `json:"escrowId"`
	Requester       string             `json:"requester"`
	Fulfiller       string             `json:"fulfiller"`
	Status          string             `json:"status"`
	Deliverables    []string           `json:"deliverables,omitempty"`
	SubmittedAt     *time.Time         `json:"submittedAt,omitempty"`
	Attempts        int                `json:"attempts"`
	RejectionReason string             `json:"rejectionReason,omitempty"`
	CreatedAt       time.Time          `json:"createdAt"`
	UpdatedAt       time.Time          `json:"updatedAt"`
}

type Deliverables struct {
	Deliverables []string `json:"deliverables"`
}

type Rejection struct {
	Reason string `json:"reason"`
}

type Milestone struct {
	ID           openapi_types.UUID `json:"id"`
	Position     int                `json:"position"`
	Description  string             `json:"description"`
	Amount       int64              `json:"amount"`
	Deadline     time.Time          `json:"deadline"`
	Deliverables []string           `json:"deliverables,omitempty"`
	Status       string             `json:"status"`
	Revisions    int                `json:"revisions"`
	LastIssues   string             `json:"lastIssues,omitempty"`
	Rating       *int               `json:"rating,omitempty"`
	ReleasedAt   *time.Time         `json:"releasedAt,omitempty"`
}

type Escrow struct {
	ID               openapi_types.UUID  `json:"id"`
	WorkOrderID      openapi_types.UUID  `json:"workOrderId"`
	Requester        string              `json:"requester"`
	Recipient        string              `json:"recipient"`
	ReleaseAuthority string              `json:"releaseAuthority"`
	Arbitrator       string              `json:"arbitrator,omitempty"`
	Asset            string              `json:"asset"`
	Total            int64               `json:"total"`
	Released         int64               `json:"released"`
	Refunded         int64               `json:"refunded"`
	Remainder        int64               `json:"remainder"`
	DisputeID        *openapi_types.UUID `json:"disputeId,omitempty"`
	ConditionID      string              `json:"conditionId,omitempty"`
	ExpiresAt        time.Time           `json:"expiresAt"`
	AutoRelease      bool                `json:"autoRelease"`
	Status           string              `json:"status"`
	ApprovedAt       *time.Time          `json:"approvedAt,omitempty"`
	CreatedAt        time.Time           `json:"createdAt"`
	UpdatedAt        time.Time           `json:"updatedAt"`
	Milestones       []Milestone         `json:"milestones"`
}

type ReleaseRequest struct {
	Amount int64 `json:"amount"`
}

type ReleaseLeg struct {
	Name        string              `json:"name"`
	Beneficiary string              `json:"beneficiary"`
	Gross       int64               `json:"gross"`
	Fee         int64               `json:"fee"`
	Net         int64               `json:"net"`
	ReceiptID   *openapi_types.UUID `json:"receiptId,omitempty"`
}

type ReleaseOutcome struct {
	Sequence int64        `json:"sequence"`
	Gross    int64        `json:"gross"`
	Legs     []ReleaseLeg `json:"legs"`
}

type Extension struct {
	ExpiresAt time.Time `json:"expiresAt"`
}

type MilestoneApproval struct {
	Rating *int   `json:"rating,omitempty"`
	Tip    *int64 `json:"tip,omitempty"`
}

type RevisionRequest struct {
	Issues          string `json:"issues"`
	AdditionalHours int    `json:"additionalHours,omitempty"`
}

type Allocation struct {
	ToRequester  int64 `json:"toRequester"`
	ToFulfiller  int64 `json:"toFulfiller"`
	ToArbitrator int64 `json:"toArbitrator,omitempty"`
}

type NewDispute struct {
	DisputeID *openapi_types.UUID `json:"disputeId,omitempty"`
	Reason    string              `json:"reason"`
	Evidence  []string            `json:"evidence,omitempty"`
	Proposal  Allocation          `json:"proposal"`
}

type DisputeCreated struct {
	DisputeID openapi_types.UUID `json:"disputeId"`
}

type DisputeResponse struct {
	Statement string      `json:"statement"`
	Counter   *Allocation `json:"counter,omitempty"`
}

type Dispute struct {
	ID          openapi_types.UUID `json:"id"`
	EscrowID    openapi_types.UUID `json:"escrowId"`
	WorkOrderID openapi_types.UUID `json:"workOrderId"`
	FiledBy     string             `json:"filedBy"`
	Reason      string             `json:"reason"`
	Evidence    []string           `json:"evidence,omitempty"`
	Proposal    Allocation         `json:"proposal"`
	Responder   string             `json:"responder,omitempty"`
	Statement   string             `json:"statement,omitempty"`
	Counter     *Allocation        `json:"counter,omitempty"`
	RespondedAt *time.Time         `json:"respondedAt,omitempty"`
	Resolution  *Allocation        `json:"resolution,omitempty"`
	ResolvedBy  string             `json:"resolvedBy,omitempty"`
	Mode        string             `json:"mode"`
	Status      string             `json:"status"`
	FiledAt     time.Time          `json:"filedAt"`
	ResolvedAt  *time.Time         `json:"resolvedAt,omitempty"`
}

type Event struct {
	Sequence    int64              `json:"sequence"`
	ID          openapi_types.UUID `json:"id"`
	Type        string             `json:"type"`
	EscrowID    openapi_types.UUID `json:"escrowId"`
	WorkOrderID openapi_types.UUID `json:"workOrderId"`
	Actor       string             `json:"actor,omitempty"`
	Amount      *int64             `json:"amount,omitempty"`
	Attributes  map[string]string  `json:"attributes,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
}

type ListEscrowEventsParams struct {
	After *int64 `form:"after,omitempty" json:"after,omitempty"`
	Limit *int   `form:"limit,omitempty" json:"limit,omitempty"`
}

type Attestation struct {
	ConditionID string `json:"conditionId"`
	Met         bool   `json:"met"`
	ProofRef    string `json:"proofRef,omitempty"`
}

type Deposit struct {
	Account string `json:"account"`
	Asset   string `json:"asset"`
	Amount  int64  `json:"amount"`
	Key     string `json:"key"`
}

type Receipt struct {
	ID         openapi_types.UUID `json:"id"`
	Key        string             `json:"key"`
	ExecutedAt time.Time          `json:"executedAt"`
}
