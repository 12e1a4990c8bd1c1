package dispute

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
	entityName        = "dispute"
	maxReasonLength   = 2000
	maxEvidenceItems  = 20
	maxEvidenceLength = 2048
)

var (
	// ErrDisputeIsNotConstructed is returned for a Dispute not created via FileDispute or RestoreDispute.
	ErrDisputeIsNotConstructed = errors.New("Dispute must be created via FileDispute constructor")
)

// Parties identifies who may take part in a dispute about one escrow.
type Parties struct {
	Requester  kernel.Actor
	Fulfiller  kernel.Actor
	Arbitrator kernel.Actor
}

// Response is the counterparty's answer. Each new response replaces the previous one.
type Response struct {
	Responder   kernel.Actor
	Statement   string
	Counter     *Allocation
	RespondedAt time.Time
}

// Dispute is the aggregate root for a disagreement about one escrow.
type Dispute struct {
	id          kernel.UUID
	escrowID    kernel.UUID
	workOrderID kernel.UUID
	parties     Parties
	filedBy     kernel.Actor
	reason      string
	evidence    []string
	proposal    Allocation
	response    *Response
	resolution  *Allocation
	resolvedBy  kernel.Actor
	mode        Mode
	status      Status
	filedAt     time.Time
	resolvedAt  *time.Time

	guard guard.ConstructorGuard
}

// Snapshot carries persisted dispute state into RestoreDispute.
type Snapshot struct {
	ID          kernel.UUID
	EscrowID    kernel.UUID
	WorkOrderID kernel.UUID
	Parties     Parties
	FiledBy     kernel.Actor
	Reason      string
	Evidence    []string
	Proposal    Allocation
	Response    *Response
	Resolution  *Allocation
	ResolvedBy  kernel.Actor
	Mode        Mode
	Status      Status
	FiledAt     time.Time
	ResolvedAt  *time.Time
}

// FileDispute opens a dispute. The filer must be one of the parties and the
// proposal must allocate the disputed remainder between the parties only.
func FileDispute(
	id, escrowID, workOrderID kernel.UUID,
	parties Parties,
	filedBy kernel.Actor,
	reason string,
	evidence []string,
	proposal Allocation,
	remainder kernel.Amount,
	now time.Time,
) (*Dispute, error) {
	if !parties.Requester.IsEqual(filedBy) && !parties.Fulfiller.IsEqual(filedBy) {
		return nil, errs.NewUnauthorizedAccessError(filedBy.String(), "file a dispute")
	}

	d := &Dispute{
		parties: parties,
		filedBy: filedBy,
		status:  StatusOpen,
		filedAt: now.UTC(),
		guard:   guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		id.Validate(),
		escrowID.Validate(),
		workOrderID.Validate(),
		d.setReason(reason),
		d.setEvidence(evidence),
	); err != nil {
		return nil, err
	}
	if err := validatePartyProposal("proposal", proposal, remainder); err != nil {
		return nil, err
	}

	d.id = id
	d.escrowID = escrowID
	d.workOrderID = workOrderID
	d.proposal = proposal
	return d, nil
}

// RestoreDispute rebuilds a dispute from persistence.
func RestoreDispute(s Snapshot) (*Dispute, error) {
	if err := errors.Join(s.ID.Validate(), s.EscrowID.Validate(), s.WorkOrderID.Validate(),
		s.FiledBy.Validate(), s.Status.Validate()); err != nil {
		return nil, err
	}
	if s.Status == StatusResolved && s.Resolution == nil {
		return nil, errs.NewInvariantViolationError(entityName, s.ID.String(),
			errors.New("resolved without a resolution"))
	}
	return &Dispute{
		id:          s.ID,
		escrowID:    s.EscrowID,
		workOrderID: s.WorkOrderID,
		parties:     s.Parties,
		filedBy:     s.FiledBy,
		reason:      s.Reason,
		evidence:    append([]string(nil), s.Evidence...),
		proposal:    s.Proposal,
		response:    s.Response,
		resolution:  s.Resolution,
		resolvedBy:  s.ResolvedBy,
		mode:        s.Mode,
		status:      s.Status,
		filedAt:     s.FiledAt,
		resolvedAt:  s.ResolvedAt,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the dispute was created through FileDispute or RestoreDispute.
func (d *Dispute) Validate() error {
	if d == nil {
		return ErrDisputeIsNotConstructed
	}
	return d.guard.Validate(ErrDisputeIsNotConstructed)
}

func (d *Dispute) ID() kernel.UUID { return d.id }
func (d *Dispute) EscrowID() kernel.UUID { return d.escrowID }
func (d *Dispute) WorkOrderID() kernel.UUID { return d.workOrderID }
func (d *Dispute) Parties() Parties { return d.parties }
func (d *Dispute) FiledBy() kernel.Actor { return d.filedBy }
func (d *Dispute) Reason() string { return d.reason }
func (d *Dispute) Proposal() Allocation { return d.proposal }
func (d *Dispute) Response() *Response { return d.response }
func (d *Dispute) Resolution() *Allocation { return d.resolution }
func (d *Dispute) ResolvedBy() kernel.Actor { return d.resolvedBy }
func (d *Dispute) Mode() Mode { return d.mode }
func (d *Dispute) Status() Status { return d.status }
func (d *Dispute) FiledAt() time.Time { return d.filedAt }
func (d *Dispute) ResolvedAt() *time.Time { return d.resolvedAt }

// Evidence returns a copy of the filer's evidence references.
func (d *Dispute) Evidence() []string {
	return append([]string(nil), d.evidence...)
}

// Counterparty is the party that did not file.
func (d *Dispute) Counterparty() kernel.Actor {
	if d.parties.Requester.IsEqual(d.filedBy) {
		return d.parties.Fulfiller
	}
	return d.parties.Requester
}

// Respond records the counterparty's statement and optional counter proposal.
func (d *Dispute) Respond(caller kernel.Actor, statement string, counter *Allocation, remainder kernel.Amount, now time.Time) error {
	if !d.status.IsActive() {
		return errs.NewInvalidStatusError(entityName, d.status, "accept a response")
	}
	if !d.Counterparty().IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "respond to the dispute")
	}
	statement = strings.TrimSpace(statement)
	if statement == "" {
		return errs.NewValueIsRequiredError("statement")
	}
	if len(statement) > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("statement length", len(statement), 1, maxReasonLength)
	}
	if counter != nil {
		if err := validatePartyProposal("counterProposal", *counter, remainder); err != nil {
			return err
		}
		c := *counter
		counter = &c
	}

	d.response = &Response{
		Responder:   caller,
		Statement:   statement,
		Counter:     counter,
		RespondedAt: now.UTC(),
	}
	d.status = StatusResponded
	return nil
}

// Resolve applies the designated arbitrator's allocation.
func (d *Dispute) Resolve(caller kernel.Actor, allocation Allocation, remainder kernel.Amount, now time.Time) error {
	if !d.status.IsActive() {
		return errs.NewInvalidStatusError(entityName, d.status, "be resolved")
	}
	if d.parties.Arbitrator.IsZero() || !d.parties.Arbitrator.IsEqual(caller) {
		return errs.NewUnauthorizedAccessError(caller.String(), "arbitrate the dispute")
	}
	if err := allocation.Matches(remainder); err != nil {
		return err
	}
	d.resolve(caller, allocation, ModeArbitration, now)
	return nil
}

// AcceptProposal resolves the dispute by mutual agreement: the counterparty
// accepts the filer's proposal, or the filer accepts the counter proposal.
func (d *Dispute) AcceptProposal(caller kernel.Actor, remainder kernel.Amount, now time.Time) (Allocation, error) {
	if !d.status.IsActive() {
		return Allocation{}, errs.NewInvalidStatusError(entityName, d.status, "be resolved")
	}

	var accepted Allocation
	switch {
	case d.Counterparty().IsEqual(caller):
		accepted = d.proposal
	case d.filedBy.IsEqual(caller):
		if d.response == nil || d.response.Counter == nil {
			return Allocation{}, errs.NewInvalidStatusError(entityName, d.status, "accept a missing counter proposal")
		}
		accepted = *d.response.Counter
	default:
		return Allocation{}, errs.NewUnauthorizedAccessError(caller.String(), "accept a dispute proposal")
	}

	if err := accepted.Matches(remainder); err != nil {
		return Allocation{}, err
	}
	d.resolve(caller, accepted, ModeMutual, now)
	return accepted, nil
}

func (d *Dispute) resolve(by kernel.Actor, allocation Allocation, mode Mode, now time.Time) {
	at := now.UTC()
	a := allocation
	d.resolution = &a
	d.resolvedBy = by
	d.mode = mode
	d.status = StatusResolved
	d.resolvedAt = &at
}

func (d *Dispute) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return errs.NewValueIsRequiredError("reason")
	}
	if len(reason) > maxReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", len(reason), 1, maxReasonLength)
	}
	d.reason = reason
	return nil
}

func (d *Dispute) setEvidence(evidence []string) error {
	if len(evidence) > maxEvidenceItems {
		return errs.NewValueIsOutOfRangeError("evidence", len(evidence), 0, maxEvidenceItems)
	}
	cleaned := make([]string, 0, len(evidence))
	for i, item := range evidence {
		item = strings.TrimSpace(item)
		if item == "" || len(item) > maxEvidenceLength {
			return errs.NewValueIsInvalidErrorWithCause("evidence",
				fmt.Errorf("entry %d is empty or longer than %d characters", i, maxEvidenceLength))
		}
		cleaned = append(cleaned, item)
	}
	d.evidence = cleaned
	return nil
}

// Party proposals split the remainder between requester and fulfiller; the
// arbitrator's fee is only set by the arbitrator.
func validatePartyProposal(param string, a Allocation, remainder kernel.Amount) error {
	if !a.toArbitrator.IsZero() {
		return errs.NewValueIsInvalidErrorWithCause(param, errors.New("parties cannot allocate to the arbitrator"))
	}
	return a.Matches(remainder)
}
