package escrow

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

const (
	escrowEntity      = "escrow"
	maxConditionIDLen = 256
)

var (
	// ErrEscrowIsNotConstructed is returned for an Escrow not created via NewEscrow or RestoreEscrow.
	ErrEscrowIsNotConstructed = errors.New("Escrow must be created via NewEscrow constructor")
)

// Params holds everything needed to open a new escrow.
type Params struct {
	ID          kernel.UUID
	WorkOrderID kernel.UUID
	Requester   kernel.Actor
	Recipient   kernel.Actor
	// ReleaseAuthority defaults to the requester when left zero.
	ReleaseAuthority kernel.Actor
	// Arbitrator is optional; without one disputes resolve only by mutual agreement.
	Arbitrator  kernel.Actor
	Asset       kernel.AssetKind
	Total       kernel.Amount
	ExpiresAt   time.Time
	AutoRelease bool
	ConditionID string
	Milestones  []MilestoneSpec
}

// Snapshot carries persisted escrow state into RestoreEscrow.
type Snapshot struct {
	ID               kernel.UUID
	WorkOrderID      kernel.UUID
	Requester        kernel.Actor
	Recipient        kernel.Actor
	ReleaseAuthority kernel.Actor
	Arbitrator       kernel.Actor
	Asset            kernel.AssetKind
	Total            kernel.Amount
	Released         kernel.Amount
	Refunded         kernel.Amount
	ReleaseSequence  int64
	Milestones       []*Milestone
	DisputeID        *kernel.UUID
	ConditionID      string
	ExpiresAt        time.Time
	AutoRelease      bool
	Status           Status
	ApprovedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Escrow is the custodied balance backing one work order.
type Escrow struct {
	id               kernel.UUID
	workOrderID      kernel.UUID
	requester        kernel.Actor
	recipient        kernel.Actor
	releaseAuthority kernel.Actor
	arbitrator       kernel.Actor
	asset            kernel.AssetKind
	total            kernel.Amount
	released         kernel.Amount
	refunded         kernel.Amount
	releaseSequence  int64
	milestones       []*Milestone
	disputeID        *kernel.UUID
	conditionID      string
	expiresAt        time.Time
	autoRelease      bool
	status           Status
	approvedAt       *time.Time
	createdAt        time.Time
	updatedAt        time.Time

	guard guard.ConstructorGuard
}

// NewEscrow validates p and returns a Funded escrow. Funding custody through
// the ledger is the caller's job and happens in the same unit of work.
//
// Validation:
//   - total > 0, expiry after now
//   - requester, recipient and arbitrator are distinct identities
//   - milestone amounts sum to total, each deadline within [now, expiry]
func NewEscrow(p Params, now time.Time) (*Escrow, error) {
	now = now.UTC()
	e := &Escrow{
		releaseAuthority: p.ReleaseAuthority,
		asset:            p.Asset,
		autoRelease:      p.AutoRelease,
		status:           Funded,
		createdAt:        now,
		updatedAt:        now,
		guard:            guard.NewConstructorGuard(),
	}
	if e.releaseAuthority.IsZero() {
		e.releaseAuthority = p.Requester
	}

	if err := errors.Join(
		e.setIDs(p.ID, p.WorkOrderID),
		e.setParties(p.Requester, p.Recipient, p.Arbitrator),
		p.Asset.Validate(),
		e.setTotal(p.Total),
		e.setExpiry(p.ExpiresAt, now),
		e.setConditionID(p.ConditionID),
	); err != nil {
		return nil, err
	}

	if err := e.setMilestones(p.Milestones, now); err != nil {
		return nil, err
	}

	return e, nil
}

// RestoreEscrow rebuilds an escrow from persistence and re-checks its invariants.
// A stored record that breaks them is reported as errs.ErrCorruptedState.
func RestoreEscrow(s Snapshot) (*Escrow, error) {
	milestones := append([]*Milestone(nil), s.Milestones...)
	sort.Slice(milestones, func(i, j int) bool { return milestones[i].position < milestones[j].position })

	e := &Escrow{
		id:               s.ID,
		workOrderID:      s.WorkOrderID,
		requester:        s.Requester,
		recipient:        s.Recipient,
		releaseAuthority: s.ReleaseAuthority,
		arbitrator:       s.Arbitrator,
		asset:            s.Asset,
		total:            s.Total,
		released:         s.Released,
		refunded:         s.Refunded,
		releaseSequence:  s.ReleaseSequence,
		milestones:       milestones,
		disputeID:        s.DisputeID,
		conditionID:      s.ConditionID,
		expiresAt:        s.ExpiresAt,
		autoRelease:      s.AutoRelease,
		status:           s.Status,
		approvedAt:       s.ApprovedAt,
		createdAt:        s.CreatedAt,
		updatedAt:        s.UpdatedAt,
		guard:            guard.NewConstructorGuard(),
	}

	if err := e.CheckInvariants(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate ensures the escrow was built by one of its constructors.
func (e *Escrow) Validate() error {
	if e == nil {
		return ErrEscrowIsNotConstructed
	}
	return e.guard.Validate(ErrEscrowIsNotConstructed)
}

// CheckInvariants verifies the balance and milestone invariants.
func (e *Escrow) CheckInvariants() error {
	violation := func(format string, args ...any) error {
		return errs.NewInvariantViolationError(escrowEntity, e.id.String(), fmt.Errorf(format, args...))
	}

	if err := errors.Join(e.id.Validate(), e.workOrderID.Validate(), e.requester.Validate(),
		e.recipient.Validate(), e.releaseAuthority.Validate(), e.asset.Validate(), e.status.Validate()); err != nil {
		return violation("malformed record: %v", err)
	}
	if e.total.IsZero() {
		return violation("total is zero")
	}
	if e.releaseSequence < 0 {
		return violation("negative release sequence %d", e.releaseSequence)
	}
	settled, err := e.released.Add(e.refunded)
	if err != nil || settled.GreaterThan(e.total) {
		return violation("released %s + refunded %s exceeds total %s", e.released, e.refunded, e.total)
	}

	switch e.status {
	case Funded:
		if settled.IsEqual(e.total) {
			return violation("funded escrow has no remainder")
		}
	case Released:
		if !e.released.IsEqual(e.total) {
			return violation("released escrow paid %s of %s", e.released, e.total)
		}
	case Refunded:
		if !settled.IsEqual(e.total) || e.refunded.IsZero() {
			return violation("refunded escrow settled %s of %s", settled, e.total)
		}
	}

	if len(e.milestones) == 0 {
		return nil
	}
	sum, paid := kernel.ZeroAmount, kernel.ZeroAmount
	for _, m := range e.milestones {
		if m.amount.IsZero() {
			return violation("milestone %s has zero amount", m.id)
		}
		if sum, err = sum.Add(m.amount); err != nil {
			return violation("milestone sum overflows")
		}
		if m.IsReleased() {
			if paid, err = paid.Add(m.amount); err != nil {
				return violation("released milestone sum overflows")
			}
		}
	}
	if !sum.IsEqual(e.total) {
		return violation("milestones sum to %s, total is %s", sum, e.total)
	}
	if paid.GreaterThan(e.released) {
		return violation("released milestones sum to %s, escrow released %s", paid, e.released)
	}
	return nil
}

func (e *Escrow) ID() kernel.UUID { return e.id }

func (e *Escrow) WorkOrderID() kernel.UUID { return e.workOrderID }

// Requester is the funding party and refund target.
func (e *Escrow) Requester() kernel.Actor { return e.requester }

// Recipient is the fulfiller who receives released funds.
func (e *Escrow) Recipient() kernel.Actor { return e.recipient }

func (e *Escrow) ReleaseAuthority() kernel.Actor { return e.releaseAuthority }

func (e *Escrow) Arbitrator() kernel.Actor { return e.arbitrator }

func (e *Escrow) Asset() kernel.AssetKind { return e.asset }

func (e *Escrow) Total() kernel.Amount { return e.total }

func (e *Escrow) Released() kernel.Amount { return e.released }

func (e *Escrow) Refunded() kernel.Amount { return e.refunded }

func (e *Escrow) ReleaseSequence() int64 { return e.releaseSequence }

func (e *Escrow) DisputeID() *kernel.UUID { return e.disputeID }

func (e *Escrow) ConditionID() string { return e.conditionID }

func (e *Escrow) ExpiresAt() time.Time { return e.expiresAt }

func (e *Escrow) AutoRelease() bool { return e.autoRelease }

func (e *Escrow) Status() Status { return e.status }

func (e *Escrow) ApprovedAt() *time.Time { return e.approvedAt }

func (e *Escrow) CreatedAt() time.Time { return e.createdAt }

func (e *Escrow) UpdatedAt() time.Time { return e.updatedAt }

// Remainder is what is still in custody: total - released - refunded.
func (e *Escrow) Remainder() kernel.Amount {
	settled, _ := e.released.Add(e.refunded)
	rest, _ := e.total.Sub(settled)
	return rest
}

// Milestones returns the milestones ordered by position. The slice is a copy;
// the milestones themselves must not be mutated by callers.
func (e *Escrow) Milestones() []*Milestone {
	return append([]*Milestone(nil), e.milestones...)
}

// HasMilestones reports whether releases go through the milestone ledger.
func (e *Escrow) HasMilestones() bool {
	return len(e.milestones) > 0
}

// Milestone looks a milestone up by id.
func (e *Escrow) Milestone(id kernel.UUID) (*Milestone, error) {
	for _, m := range e.milestones {
		if m.id.IsEqual(id) {
			return m, nil
		}
	}
	return nil, errs.NewObjectNotFoundError("milestoneId", id.String())
}

// IsFullyReleased reports whether the whole total went out through release paths.
func (e *Escrow) IsFullyReleased() bool {
	return e.released.IsEqual(e.total)
}

// HasOpenDispute reports whether a dispute is attached and not yet settled.
// Settling a dispute always drains the escrow, so an attached dispute on a
// Funded escrow is unresolved.
func (e *Escrow) HasOpenDispute() bool {
	return e.disputeID != nil && e.status == Funded
}

// IsExpired reports whether now is at or past the expiry time.
func (e *Escrow) IsExpired(now time.Time) bool {
	return !now.Before(e.expiresAt)
}

// HasArbitrator reports whether a designated arbitrator was set at creation.
func (e *Escrow) HasArbitrator() bool {
	return !e.arbitrator.IsZero()
}

// IsParty reports whether actor is the requester or the recipient.
func (e *Escrow) IsParty(actor kernel.Actor) bool {
	return e.requester.IsEqual(actor) || e.recipient.IsEqual(actor)
}

// AuthorizeRelease checks that caller holds the release authority.
func (e *Escrow) AuthorizeRelease(caller kernel.Actor) error {
	if !e.releaseAuthority.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "release escrow funds")
	}
	return nil
}

// EnsureReleasable runs the pre-ledger checks shared by every payout path, in
// order: already released, refunded, open dispute (unless settling it), amount.
func (e *Escrow) EnsureReleasable(amount kernel.Amount, settlingDispute bool) error {
	switch e.status {
	case Released:
		return errs.NewAlreadyReleasedError("escrowId", e.id.String())
	case Refunded:
		return errs.NewInvalidStatusError(escrowEntity, e.status, "release")
	}
	if e.HasOpenDispute() && !settlingDispute {
		return errs.NewEscrowDisputedError(e.id.String(), e.disputeID.String())
	}
	if amount.IsZero() {
		return errs.NewValueIsOutOfRangeError("amount", 0, 1, e.Remainder().Units())
	}
	if amount.GreaterThan(e.Remainder()) {
		return errs.NewValueIsOutOfRangeError("amount", amount.Units(), 1, e.Remainder().Units())
	}
	return nil
}

// NextReleaseSequence is the sequence number the next payout will be recorded
// under; ledger transfers are keyed by it.
func (e *Escrow) NextReleaseSequence() int64 {
	return e.releaseSequence + 1
}

// RecordRelease books a payout of gross to the recipient. For milestone
// escrows milestoneID must name an Approved milestone whose amount equals gross.
func (e *Escrow) RecordRelease(gross kernel.Amount, milestoneID *kernel.UUID, now time.Time) error {
	if err := e.EnsureReleasable(gross, false); err != nil {
		return err
	}

	var milestone *Milestone
	switch {
	case milestoneID != nil:
		m, err := e.Milestone(*milestoneID)
		if err != nil {
			return err
		}
		if !m.amount.IsEqual(gross) {
			return errs.NewValueIsInvalidErrorWithCause("amount",
				fmt.Errorf("milestone %s pays %s, not %s", m.id, m.amount, gross))
		}
		milestone = m
	case e.HasMilestones():
		return errs.NewValueIsInvalidErrorWithCause("milestoneId",
			fmt.Errorf("escrow %s releases through its milestones", e.id))
	}

	released, err := e.released.Add(gross)
	if err != nil {
		return err
	}
	if milestone != nil {
		if err = milestone.markReleased(now); err != nil {
			return err
		}
	}

	e.released = released
	e.releaseSequence++
	if e.released.IsEqual(e.total) {
		e.status = Released
	}
	e.touch(now)
	return nil
}

// RecordRefund books the return of the whole remainder to the requester.
// Amounts already released stay untouched.
func (e *Escrow) RecordRefund(now time.Time) (kernel.Amount, error) {
	if err := e.EnsureReleasable(e.Remainder(), false); err != nil {
		return kernel.Amount{}, err
	}
	remainder := e.Remainder()
	e.refunded, _ = e.refunded.Add(remainder)
	e.releaseSequence++
	e.status = Refunded
	e.touch(now)
	return remainder, nil
}

// RecordDisputeSettlement books the final allocation of a dispute. The whole
// remainder counts as released whatever the split was.
func (e *Escrow) RecordDisputeSettlement(disputeID kernel.UUID, now time.Time) (kernel.Amount, error) {
	if e.disputeID == nil || !e.disputeID.IsEqual(disputeID) {
		return kernel.Amount{}, errs.NewValueIsInvalidErrorWithCause("disputeId",
			fmt.Errorf("dispute %s is not attached to escrow %s", disputeID, e.id))
	}
	remainder := e.Remainder()
	if err := e.EnsureReleasable(remainder, true); err != nil {
		return kernel.Amount{}, err
	}
	e.released, _ = e.released.Add(remainder)
	e.releaseSequence++
	e.status = Released
	e.touch(now)
	return remainder, nil
}

// AttachDispute freezes every non-dispute payout and marks unreleased milestones Disputed.
func (e *Escrow) AttachDispute(disputeID kernel.UUID, now time.Time) error {
	switch e.status {
	case Released:
		return errs.NewAlreadyReleasedError("escrowId", e.id.String())
	case Refunded:
		return errs.NewInvalidStatusError(escrowEntity, e.status, "be disputed")
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.id.String(), e.disputeID.String())
	}
	if err := disputeID.Validate(); err != nil {
		return err
	}
	id := disputeID
	e.disputeID = &id
	for _, m := range e.milestones {
		m.markDisputed()
	}
	e.touch(now)
	return nil
}

// MarkApproved records the delivery approval that starts the auto-release clock.
func (e *Escrow) MarkApproved(now time.Time) {
	at := now.UTC()
	e.approvedAt = &at
	e.touch(now)
}

// DueForAutoRelease reports whether the time-based auto-release may fire:
// enabled, approved, no open dispute, still funded and now >= expiry.
func (e *Escrow) DueForAutoRelease(now time.Time) bool {
	return e.autoRelease && e.approvedAt != nil && e.status == Funded &&
		!e.HasOpenDispute() && e.IsExpired(now)
}

// Extend moves the expiry forward. Only the requester may extend.
func (e *Escrow) Extend(caller kernel.Actor, newExpiry time.Time, now time.Time) error {
	if !e.requester.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "extend escrow")
	}
	if e.status == Released {
		return errs.NewAlreadyReleasedError("escrowId", e.id.String())
	}
	if e.status != Funded {
		return errs.NewInvalidStatusError(escrowEntity, e.status, "extend")
	}
	newExpiry = newExpiry.UTC()
	if !newExpiry.After(e.expiresAt) || !newExpiry.After(now) {
		return errs.NewValueIsInvalidErrorWithCause("newExpiryTime",
			fmt.Errorf("%s is not after current expiry %s", newExpiry.Format(time.RFC3339),
				e.expiresAt.Format(time.RFC3339)))
	}
	e.expiresAt = newExpiry
	e.touch(now)
	return nil
}

// SubmitMilestone records the recipient's deliverables for a milestone.
func (e *Escrow) SubmitMilestone(caller kernel.Actor, id kernel.UUID, deliverables []string, now time.Time) error {
	m, err := e.Milestone(id)
	if err != nil {
		return err
	}
	if m.IsReleased() {
		return errs.NewAlreadyReleasedError("milestoneId", id.String())
	}
	if !e.recipient.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "submit milestone")
	}
	if err = e.ensureMilestoneMutable(now); err != nil {
		return err
	}
	if err = m.submit(deliverables); err != nil {
		return err
	}
	e.touch(now)
	return nil
}

// ApproveMilestone marks a submitted milestone Approved. The payout itself is
// recorded by RecordRelease once the ledger transfer succeeded.
func (e *Escrow) ApproveMilestone(caller kernel.Actor, id kernel.UUID, rating *int, now time.Time) (*Milestone, error) {
	m, err := e.Milestone(id)
	if err != nil {
		return nil, err
	}
	if m.IsReleased() {
		return nil, errs.NewAlreadyReleasedError("milestoneId", id.String())
	}
	if !e.requester.IsEqual(caller) {
		return nil, errs.NewUnauthorizedAccessError(caller.String(), "approve milestone")
	}
	if e.HasOpenDispute() {
		return nil, errs.NewEscrowDisputedError(e.id.String(), e.disputeID.String())
	}
	if e.status != Funded {
		return nil, errs.NewInvalidStatusError(escrowEntity, e.status, "approve milestone")
	}
	if err = m.approve(rating); err != nil {
		return nil, err
	}
	e.touch(now)
	return m, nil
}

// RequestMilestoneRevision sends a submitted milestone back to Pending, with
// an optional deadline extension that must stay within the escrow expiry.
func (e *Escrow) RequestMilestoneRevision(
	caller kernel.Actor,
	id kernel.UUID,
	issues string,
	additional time.Duration,
	now time.Time,
) error {
	m, err := e.Milestone(id)
	if err != nil {
		return err
	}
	if !e.requester.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "request milestone revision")
	}
	if m.IsReleased() {
		return errs.NewAlreadyReleasedError("milestoneId", id.String())
	}
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.id.String(), e.disputeID.String())
	}
	if err = m.requestRevision(issues, additional, e.expiresAt); err != nil {
		return err
	}
	e.touch(now)
	return nil
}

func (e *Escrow) ensureMilestoneMutable(now time.Time) error {
	if e.HasOpenDispute() {
		return errs.NewEscrowDisputedError(e.id.String(), e.disputeID.String())
	}
	if e.status != Funded {
		return errs.NewInvalidStatusError(escrowEntity, e.status, "accept milestone work")
	}
	if e.IsExpired(now) {
		return errs.NewEscrowExpiredError(e.id.String(), e.expiresAt)
	}
	return nil
}

func (e *Escrow) touch(now time.Time) {
	e.updatedAt = now.UTC()
}

func (e *Escrow) setIDs(id, workOrderID kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	if err := workOrderID.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("workOrderId", err)
	}
	e.id = id
	e.workOrderID = workOrderID
	return nil
}

func (e *Escrow) setParties(requester, recipient, arbitrator kernel.Actor) error {
	if err := requester.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("requester", err)
	}
	if err := recipient.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("recipient", err)
	}
	if requester.IsEqual(recipient) {
		return errs.NewValueIsInvalidErrorWithCause("recipient", fmt.Errorf("%s is also the requester", recipient))
	}
	if requester.IsEqual(arbitrator) || recipient.IsEqual(arbitrator) {
		return errs.NewValueIsInvalidErrorWithCause("arbitrator", fmt.Errorf("%s is a party to the escrow", arbitrator))
	}
	e.requester = requester
	e.recipient = recipient
	e.arbitrator = arbitrator
	return nil
}

func (e *Escrow) setTotal(total kernel.Amount) error {
	if total.IsZero() {
		return errs.NewValueIsOutOfRangeError("totalAmount", total.Units(), 1, int64(math.MaxInt64))
	}
	e.total = total
	return nil
}

func (e *Escrow) setExpiry(expiresAt, now time.Time) error {
	if !expiresAt.After(now) {
		return errs.NewValueIsInvalidErrorWithCause("expiryTime",
			fmt.Errorf("%s is not in the future", expiresAt.UTC().Format(time.RFC3339)))
	}
	e.expiresAt = expiresAt.UTC()
	return nil
}

func (e *Escrow) setConditionID(conditionID string) error {
	conditionID = strings.TrimSpace(conditionID)
	if len(conditionID) > maxConditionIDLen {
		return errs.NewValueIsOutOfRangeError("conditionId length", len(conditionID), 0, maxConditionIDLen)
	}
	e.conditionID = conditionID
	return nil
}

func (e *Escrow) setMilestones(specs []MilestoneSpec, now time.Time) error {
	if len(specs) == 0 {
		return nil
	}

	milestones := make([]*Milestone, 0, len(specs))
	sum := kernel.ZeroAmount
	var joined error
	for i, spec := range specs {
		m, err := newMilestone(i, spec)
		if err != nil {
			joined = errors.Join(joined, err)
			continue
		}
		if m.deadline.Before(now) || m.deadline.After(e.expiresAt) {
			joined = errors.Join(joined, errs.NewValueIsInvalidErrorWithCause(
				fmt.Sprintf("milestones[%d].deadline", i),
				fmt.Errorf("%s is outside [%s, %s]", m.deadline.Format(time.RFC3339),
					now.Format(time.RFC3339), e.expiresAt.Format(time.RFC3339))))
			continue
		}
		if sum, err = sum.Add(m.amount); err != nil {
			return err
		}
		milestones = append(milestones, m)
	}
	if joined != nil {
		return joined
	}
	if !sum.IsEqual(e.total) {
		return errs.NewValueIsInvalidErrorWithCause("milestones",
			fmt.Errorf("amounts sum to %s, total is %s", sum, e.total))
	}
	e.milestones = milestones
	return nil
}
