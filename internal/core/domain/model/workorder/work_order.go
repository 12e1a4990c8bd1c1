package workorder

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

const (
	maxDeliverables   = 50
	maxReasonLength   = 2000
	maxDeliverableLen = 2048
)

var (
	// ErrWorkOrderIsNotConstructed is returned for a WorkOrder not created via NewWorkOrder or RestoreWorkOrder.
	ErrWorkOrderIsNotConstructed = errors.New("WorkOrder must be created via NewWorkOrder constructor")
)

// Delivery is the latest set of deliverables submitted by the fulfiller.
// A resubmission replaces it entirely.
type Delivery struct {
	Deliverables []string
	SubmittedAt  time.Time
}

// WorkOrder is the aggregate root for the contract between a requester and a
// fulfiller. The escrow it is tied to is referenced by id only.
//
// Invariants:
//   - requester and fulfiller are distinct identities
//   - status changes only through the transition methods
//   - Completed and Cancelled are never left
//
// The rework loop (Submitted -> InProgress -> Submitted) is tracked with an
// attempt counter and the last rejection reason; the reason is cleared on
// every resubmission.
type WorkOrder struct {
	id              kernel.UUID
	escrowID        kernel.UUID
	requester       kernel.Actor
	fulfiller       kernel.Actor
	status          Status
	delivery        *Delivery
	attempts        int
	rejectionReason string
	createdAt       time.Time
	updatedAt       time.Time

	guard guard.ConstructorGuard
}

// NewWorkOrder creates a work order in status Created.
//
// Example:
//
//	wo, err := workorder.NewWorkOrder(kernel.NewUUID(), escrowID, requester, fulfiller, time.Now())
func NewWorkOrder(id, escrowID kernel.UUID, requester, fulfiller kernel.Actor, now time.Time) (*WorkOrder, error) {
	wo := &WorkOrder{
		status:    Created,
		createdAt: now.UTC(),
		updatedAt: now.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		wo.setID(id),
		wo.setEscrowID(escrowID),
		wo.setParties(requester, fulfiller),
	); err != nil {
		return nil, err
	}

	return wo, nil
}

// RestoreWorkOrder rebuilds a work order from persistence without replaying transitions.
func RestoreWorkOrder(
	id, escrowID kernel.UUID,
	requester, fulfiller kernel.Actor,
	status Status,
	delivery *Delivery,
	attempts int,
	rejectionReason string,
	createdAt, updatedAt time.Time,
) (*WorkOrder, error) {
	wo := &WorkOrder{
		delivery:        delivery,
		rejectionReason: rejectionReason,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
		guard:           guard.NewConstructorGuard(),
	}

	var attemptsErr error
	if attempts < 0 {
		attemptsErr = errs.NewValueIsInvalidErrorWithCause("attempts", fmt.Errorf("%d is negative", attempts))
	}
	wo.attempts = attempts

	if err := errors.Join(
		wo.setID(id),
		wo.setEscrowID(escrowID),
		wo.setParties(requester, fulfiller),
		wo.setStatus(status),
		attemptsErr,
	); err != nil {
		return nil, err
	}

	return wo, nil
}

// Validate ensures the work order was built by one of its constructors.
func (w *WorkOrder) Validate() error {
	if w == nil {
		return ErrWorkOrderIsNotConstructed
	}
	return w.guard.Validate(ErrWorkOrderIsNotConstructed)
}

// IsEqual compares work orders by identifier.
func (w *WorkOrder) IsEqual(other *WorkOrder) bool {
	return other != nil && w.id.IsEqual(other.id)
}

func (w *WorkOrder) ID() kernel.UUID { return w.id }
func (w *WorkOrder) EscrowID() kernel.UUID { return w.escrowID }
func (w *WorkOrder) Requester() kernel.Actor { return w.requester }
func (w *WorkOrder) Fulfiller() kernel.Actor { return w.fulfiller }
func (w *WorkOrder) Status() Status { return w.status }
func (w *WorkOrder) Attempts() int { return w.attempts }
func (w *WorkOrder) RejectionReason() string { return w.rejectionReason }
func (w *WorkOrder) CreatedAt() time.Time { return w.createdAt }
func (w *WorkOrder) UpdatedAt() time.Time { return w.updatedAt }

// Delivery returns a copy of the current delivery record, or nil when nothing
// has been submitted yet.
func (w *WorkOrder) Delivery() *Delivery {
	if w.delivery == nil {
		return nil
	}
	d := *w.delivery
	d.Deliverables = append([]string(nil), w.delivery.Deliverables...)
	return &d
}

// IsParty reports whether actor is the requester or the fulfiller.
func (w *WorkOrder) IsParty(actor kernel.Actor) bool {
	return w.requester.IsEqual(actor) || w.fulfiller.IsEqual(actor)
}

// Open marks the work order as funded and accepting deliveries.
func (w *WorkOrder) Open(now time.Time) error {
	next, err := w.status.Open()
	if err != nil {
		return err
	}
	w.transition(next, now)
	return nil
}

// SubmitDelivery records the fulfiller's deliverables. A resubmission
// overwrites the previous delivery and clears the rejection reason.
func (w *WorkOrder) SubmitDelivery(caller kernel.Actor, deliverables []string, now time.Time) error {
	next, err := w.status.Submit()
	if err != nil {
		return err
	}
	if !w.fulfiller.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "submit delivery")
	}
	cleaned, err := normalizeDeliverables(deliverables)
	if err != nil {
		return err
	}

	w.delivery = &Delivery{Deliverables: cleaned, SubmittedAt: now.UTC()}
	w.rejectionReason = ""
	w.attempts++
	w.transition(next, now)
	return nil
}

// VerifyDelivery is the requester accepting the delivery. Releasing the funds
// is the caller's concern.
func (w *WorkOrder) VerifyDelivery(caller kernel.Actor, now time.Time) error {
	next, err := w.status.Approve()
	if err != nil {
		return err
	}
	if !w.requester.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "approve delivery")
	}
	w.transition(next, now)
	return nil
}

// ApproveByCondition approves a submitted delivery on the strength of an
// external attestation instead of the requester.
func (w *WorkOrder) ApproveByCondition(now time.Time) error {
	next, err := w.status.Approve()
	if err != nil {
		return err
	}
	w.transition(next, now)
	return nil
}

// RejectDelivery sends the delivery back to the fulfiller with a reason.
func (w *WorkOrder) RejectDelivery(caller kernel.Actor, reason string, now time.Time) error {
	next, err := w.status.Reject()
	if err != nil {
		return err
	}
	if !w.requester.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "reject delivery")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if len(reason) > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", len(reason), 1, maxReasonLength)
	}

	w.rejectionReason = reason
	w.transition(next, now)
	return nil
}

// Complete closes an approved work order once its escrow is fully released.
func (w *WorkOrder) Complete(fullyReleased bool, now time.Time) error {
	next, err := w.status.Complete()
	if err != nil {
		return err
	}
	if !fullyReleased {
		return errs.NewInvalidStatusError(entityName, w.status, "complete before the escrow is fully released")
	}
	w.transition(next, now)
	return nil
}

// Settle closes a work order whose escrow was drained by milestone or
// authority releases.
func (w *WorkOrder) Settle(fullyReleased bool, now time.Time) error {
	next, err := w.status.Settle()
	if err != nil {
		return err
	}
	if !fullyReleased {
		return errs.NewInvalidStatusError(entityName, w.status, "settle before the escrow is fully released")
	}
	w.transition(next, now)
	return nil
}

// Cancel is only available to the requester.
func (w *WorkOrder) Cancel(caller kernel.Actor, now time.Time) error {
	next, err := w.status.Cancel()
	if err != nil {
		return err
	}
	if !w.requester.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "cancel work order")
	}
	w.transition(next, now)
	return nil
}

// Expire cancels a work order that passed its escrow expiry before any
// delivery arrived. Only Created and Open work orders expire.
func (w *WorkOrder) Expire(now time.Time) error {
	next, err := w.status.Expire()
	if err != nil {
		return err
	}
	w.transition(next, now)
	return nil
}

// ResolveDispute applies the final outcome of a dispute: the work order is
// Completed whatever its previous state was.
func (w *WorkOrder) ResolveDispute(now time.Time) error {
	next, err := w.status.ResolveDispute()
	if err != nil {
		return err
	}
	w.transition(next, now)
	return nil
}

func (w *WorkOrder) transition(next Status, now time.Time) {
	w.status = next
	w.updatedAt = now.UTC()
}

func (w *WorkOrder) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	w.id = id
	return nil
}

func (w *WorkOrder) setEscrowID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("escrowId", err)
	}
	w.escrowID = id
	return nil
}

func (w *WorkOrder) setParties(requester, fulfiller kernel.Actor) error {
	if err := requester.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("requester", err)
	}
	if err := fulfiller.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("fulfiller", err)
	}
	if requester.IsEqual(fulfiller) {
		return errs.NewValueIsInvalidErrorWithCause("fulfiller",
			fmt.Errorf("%s cannot fulfil its own work order", fulfiller))
	}
	w.requester = requester
	w.fulfiller = fulfiller
	return nil
}

func (w *WorkOrder) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	w.status = status
	return nil
}

func normalizeDeliverables(deliverables []string) ([]string, error) {
	if len(deliverables) == 0 {
		return nil, errs.NewValueIsRequiredError("deliverables")
	}
	if len(deliverables) > maxDeliverables {
		return nil, errs.NewValueIsOutOfRangeError("deliverables", len(deliverables), 1, maxDeliverables)
	}
	cleaned := make([]string, 0, len(deliverables))
	for i, d := range deliverables {
		d = strings.TrimSpace(d)
		if d == "" || len(d) > maxDeliverableLen {
			return nil, errs.NewValueIsInvalidErrorWithCause("deliverables",
				fmt.Errorf("entry %d is empty or longer than %d characters", i, maxDeliverableLen))
		}
		cleaned = append(cleaned, d)
	}
	return cleaned, nil
}
