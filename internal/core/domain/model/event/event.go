// Package event defines the audit events emitted on every escrow and work
// order state transition. Events are immutable once built; they are appended
// to the outbox in the same unit of work as the transition they describe.
package event

import (
	"maps"
	"time"

	"escrow/internal/core/domain/model/kernel"
)

// Type names a state transition.
type Type string

const (
	WorkOrderCreated   Type = "workorder.created"
	WorkOrderOpened    Type = "workorder.opened"
	DeliverySubmitted  Type = "workorder.delivery_submitted"
	DeliveryApproved   Type = "workorder.delivery_approved"
	DeliveryRejected   Type = "workorder.delivery_rejected"
	WorkOrderCompleted Type = "workorder.completed"
	WorkOrderCancelled Type = "workorder.cancelled"
	WorkOrderExpired   Type = "workorder.expired"

	EscrowFunded   Type = "escrow.funded"
	EscrowReleased Type = "escrow.released"
	EscrowRefunded Type = "escrow.refunded"
	EscrowExtended Type = "escrow.extended"
	FeeCollected   Type = "escrow.fee_collected"

	MilestoneSubmitted         Type = "milestone.submitted"
	MilestoneApproved          Type = "milestone.approved"
	MilestoneRevisionRequested Type = "milestone.revision_requested"
	MilestoneReleased          Type = "milestone.released"
	TipPaid                    Type = "milestone.tip_paid"

	DisputeFiled     Type = "dispute.filed"
	DisputeResponded Type = "dispute.responded"
	DisputeResolved  Type = "dispute.resolved"
)

func (t Type) String() string {
	return string(t)
}

// Event is one entry of the escrow event stream.
// Sequence is assigned by the outbox on insert.
type Event struct {
	ID          kernel.UUID
	Type        Type
	EscrowID    kernel.UUID
	WorkOrderID kernel.UUID
	Actor       kernel.Actor
	Amount      *kernel.Amount
	Attributes  map[string]string
	OccurredAt  time.Time
	Sequence    int64
	PublishedAt *time.Time
}

// New builds an event without amount or attributes.
func New(t Type, escrowID, workOrderID kernel.UUID, actor kernel.Actor, occurredAt time.Time) Event {
	return Event{
		ID:          kernel.NewUUID(),
		Type:        t,
		EscrowID:    escrowID,
		WorkOrderID: workOrderID,
		Actor:       actor,
		OccurredAt:  occurredAt.UTC(),
	}
}

// WithAmount returns a copy of e carrying amount.
func (e Event) WithAmount(amount kernel.Amount) Event {
	a := amount
	e.Amount = &a
	return e
}

// With returns a copy of e with an extra attribute.
func (e Event) With(key, value string) Event {
	attrs := make(map[string]string, len(e.Attributes)+1)
	maps.Copy(attrs, e.Attributes)
	attrs[key] = value
	e.Attributes = attrs
	return e
}
