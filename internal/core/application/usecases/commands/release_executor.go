package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/domain/services"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ReleasePath names the decision that authorises value leaving custody.
type ReleasePath string

const (
	PathRequesterApproval  ReleasePath = "requester_approval"
	PathMilestoneApproval  ReleasePath = "milestone_approval"
	PathReleaseAuthority   ReleasePath = "release_authority"
	PathAutoRelease        ReleasePath = "auto_release"
	PathOracle             ReleasePath = "oracle"
	PathDisputeResolution  ReleasePath = "dispute_resolution"
	PathCancellationRefund ReleasePath = "cancellation_refund"
	PathExpiryRefund       ReleasePath = "expiry_refund"
)

func (p ReleasePath) String() string {
	return string(p)
}

// Ledger leg names; they end up in transfer keys and event attributes.
const (
	legPayout     = "payout"
	legRefund     = "refund"
	legRequester  = "requester"
	legFulfiller  = "fulfiller"
	legArbitrator = "arbitrator"
	feeLegSuffix  = "-fee"
)

var (
	ErrReleaseExecutorIsNotConstructed = errors.New("ReleaseExecutor must be created via NewReleaseExecutor constructor")
)

// ReleaseRequest describes one custody outflow. Escrow and WorkOrder must be
// loaded in the caller's unit of work, the escrow with GetForUpdate.
type ReleaseRequest struct {
	Path      ReleasePath
	Actor     kernel.Actor
	Escrow    *escrow.Escrow
	WorkOrder *workorder.WorkOrder

	// Amount is the gross payout of a release-authority call. Every other
	// path derives its amount from the escrow.
	Amount kernel.Amount

	// MilestoneID names the Approved milestone paid by PathMilestoneApproval.
	MilestoneID *kernel.UUID

	// Dispute is the Resolved dispute settled by PathDisputeResolution.
	Dispute *dispute.Dispute

	// ProofRef is the oracle proof backing PathOracle.
	ProofRef string
}

// ReleaseLeg is one beneficiary transfer out of custody.
type ReleaseLeg struct {
	Name        string
	Beneficiary string
	Quote       services.FeeQuote
	Receipt     *ports.Receipt
	FeeReceipt  *ports.Receipt
}

// ReleaseOutcome reports what an execution moved.
type ReleaseOutcome struct {
	Sequence int64
	Legs     []ReleaseLeg
}

// Gross sums the gross amounts of all legs.
func (o ReleaseOutcome) Gross() kernel.Amount {
	total := kernel.ZeroAmount
	for _, leg := range o.Legs {
		total, _ = total.Add(leg.Quote.Gross)
	}
	return total
}

// ReleaseExecutor is the only component that moves value out of custody.
//
// Execute runs, in order: path authority, escrow checks (already released,
// open dispute, amount), fee quotes, the in-memory state transition, the
// ledger legs and finally persistence and audit events. Everything before the
// ledger is pure, so validation failures have no side effects. The ledger
// shares the caller's transaction, so a failed leg rolls back every earlier
// leg together with the state change when the caller rolls back.
//
// Ledger legs are keyed <escrow>:<sequence>:<leg>; a replayed key returns the
// original receipt instead of paying twice.
type ReleaseExecutor struct {
	fees       *services.FeeCalculator
	feeAccount string
	clock      ports.Clock
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

// NewReleaseExecutor creates an executor that sends collected fees to feeAccount.
func NewReleaseExecutor(
	fees *services.FeeCalculator,
	feeAccount string,
	clock ports.Clock,
	m *metrics.Metrics,
) (*ReleaseExecutor, error) {
	if fees == nil {
		return nil, errs.NewValueIsRequiredError("fees")
	}
	if feeAccount == "" {
		return nil, errs.NewValueIsRequiredError("feeAccount")
	}
	if clock == nil {
		return nil, errs.NewValueIsRequiredError("clock")
	}
	if m == nil {
		return nil, errs.NewValueIsRequiredError("metrics")
	}

	return &ReleaseExecutor{
		fees:       fees,
		feeAccount: feeAccount,
		clock:      clock,
		metrics:    m,
		tracer:     otel.Tracer("escrow/release"),
	}, nil
}

// Execute performs req inside uow. It never begins, commits or rolls back.
func (x *ReleaseExecutor) Execute(ctx context.Context, uow ReleaseUoW, req ReleaseRequest) (out ReleaseOutcome, err error) {
	if x == nil {
		return ReleaseOutcome{}, ErrReleaseExecutorIsNotConstructed
	}
	if err = req.validate(); err != nil {
		return ReleaseOutcome{}, err
	}

	now := x.clock.Now()
	ctx, span := x.tracer.Start(ctx, "escrow.release", trace.WithAttributes(
		attribute.String("escrow.id", req.Escrow.ID().String()),
		attribute.String("release.path", req.Path.String()),
		attribute.String("asset", req.Escrow.Asset().String()),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetAttributes(attribute.Int64("release.gross", out.Gross().Units()))
		}
		span.End()
		x.metrics.ObserveRelease(req.Path.String(), metrics.OutcomeOf(err), x.clock.Now().Sub(now))
	}()

	if err = x.authorize(req, now); err != nil {
		return ReleaseOutcome{}, err
	}

	e, wo := req.Escrow, req.WorkOrder
	out.Sequence = e.NextReleaseSequence()
	span.SetAttributes(attribute.Int64("release.sequence", out.Sequence))

	if out.Legs, err = x.plan(req); err != nil {
		return ReleaseOutcome{}, err
	}
	for i := range out.Legs {
		if out.Legs[i].Quote, err = x.fees.Quote(e.Asset(), out.Legs[i].Quote.Gross); err != nil {
			return ReleaseOutcome{}, err
		}
	}

	before := wo.Status()
	if err = apply(req, now); err != nil {
		return ReleaseOutcome{}, err
	}

	custody := ports.CustodyAccount(e.ID())
	ledger := uow.Ledger()
	for i := range out.Legs {
		if err = x.transfer(ctx, ledger, custody, out.Sequence, &out.Legs[i], req); err != nil {
			return ReleaseOutcome{}, err
		}
	}

	if err = uow.EscrowRepository().Update(ctx, e); err != nil {
		return ReleaseOutcome{}, err
	}
	if err = uow.WorkOrderRepository().Update(ctx, wo); err != nil {
		return ReleaseOutcome{}, err
	}
	if err = uow.EventOutbox().Append(ctx, releaseEvents(req, out, before, now)...); err != nil {
		return ReleaseOutcome{}, err
	}

	for _, leg := range out.Legs {
		x.metrics.AddReleased(e.Asset().String(), leg.Quote.Gross.Units(), leg.Quote.Fee.Units())
	}
	return out, nil
}

func (r ReleaseRequest) validate() error {
	if r.Escrow == nil {
		return errs.NewValueIsRequiredError("escrow")
	}
	if r.WorkOrder == nil {
		return errs.NewValueIsRequiredError("workOrder")
	}
	if !r.Escrow.WorkOrderID().IsEqual(r.WorkOrder.ID()) {
		return errs.NewValueIsInvalidErrorWithCause("workOrder",
			fmt.Errorf("work order %s does not belong to escrow %s", r.WorkOrder.ID(), r.Escrow.ID()))
	}
	return r.Actor.Validate()
}

// authorize checks that the actor may trigger the path and that the path's
// own preconditions hold.
func (x *ReleaseExecutor) authorize(req ReleaseRequest, now time.Time) error {
	e, wo := req.Escrow, req.WorkOrder

	switch req.Path {
	case PathRequesterApproval:
		if !e.Requester().IsEqual(req.Actor) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "approve the release")
		}
		return requireApproved(wo)

	case PathMilestoneApproval:
		if !e.Requester().IsEqual(req.Actor) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "release a milestone")
		}
		if req.MilestoneID == nil {
			return errs.NewValueIsRequiredError("milestoneId")
		}
		return nil

	case PathReleaseAuthority:
		return e.AuthorizeRelease(req.Actor)

	case PathAutoRelease:
		if !req.Actor.IsEqual(kernel.SchedulerActor()) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "trigger auto-release")
		}
		if err := e.EnsureReleasable(e.Remainder(), false); err != nil {
			return err
		}
		if err := requireApproved(wo); err != nil {
			return err
		}
		if !e.DueForAutoRelease(now) {
			return errs.NewInvalidStatusError("escrow", e.Status(), "auto-release before expiry")
		}
		return nil

	case PathOracle:
		if !e.IsParty(req.Actor) && !req.Actor.IsEqual(kernel.SchedulerActor()) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "trigger an oracle release")
		}
		if e.ConditionID() == "" {
			return errs.NewValueIsInvalidErrorWithCause("conditionId",
				fmt.Errorf("escrow %s has no release condition", e.ID()))
		}
		if req.ProofRef == "" {
			return errs.NewValueIsRequiredError("proofRef")
		}
		return requireApproved(wo)

	case PathDisputeResolution:
		d := req.Dispute
		if d == nil {
			return errs.NewValueIsRequiredError("dispute")
		}
		if d.Status() != dispute.StatusResolved || d.Resolution() == nil {
			return errs.NewInvalidStatusError("dispute", d.Status(), "be settled")
		}
		if !d.EscrowID().IsEqual(e.ID()) {
			return errs.NewValueIsInvalidErrorWithCause("dispute",
				fmt.Errorf("dispute %s belongs to escrow %s", d.ID(), d.EscrowID()))
		}
		if !d.ResolvedBy().IsEqual(req.Actor) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "settle the dispute")
		}
		return nil

	case PathCancellationRefund:
		if !e.Requester().IsEqual(req.Actor) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "cancel the work order")
		}
		return nil

	case PathExpiryRefund:
		if !req.Actor.IsEqual(kernel.SchedulerActor()) {
			return errs.NewUnauthorizedAccessError(req.Actor.String(), "expire the escrow")
		}
		if !e.IsExpired(now) {
			return errs.NewInvalidStatusError("escrow", e.Status(), "expire before its expiry time")
		}
		return nil
	}

	return errs.NewValueIsInvalidErrorWithCause("path", fmt.Errorf("unknown release path %q", req.Path))
}

func requireApproved(wo *workorder.WorkOrder) error {
	if wo.Status() != workorder.Approved {
		return errs.NewInvalidStatusError("work order", wo.Status(), "release on approval")
	}
	return nil
}

// plan lists the gross legs of the release without touching any state.
func (x *ReleaseExecutor) plan(req ReleaseRequest) ([]ReleaseLeg, error) {
	e := req.Escrow
	payout := func(gross kernel.Amount) []ReleaseLeg {
		return []ReleaseLeg{{Name: legPayout, Beneficiary: e.Recipient().String(), Quote: services.FeeQuote{Gross: gross}}}
	}

	switch req.Path {
	case PathReleaseAuthority:
		return payout(req.Amount), nil

	case PathMilestoneApproval:
		m, err := e.Milestone(*req.MilestoneID)
		if err != nil {
			return nil, err
		}
		return payout(m.Amount()), nil

	case PathRequesterApproval, PathAutoRelease, PathOracle:
		return payout(e.Remainder()), nil

	case PathCancellationRefund, PathExpiryRefund:
		return []ReleaseLeg{{Name: legRefund, Beneficiary: e.Requester().String(), Quote: services.FeeQuote{Gross: e.Remainder()}}}, nil

	case PathDisputeResolution:
		allocation := *req.Dispute.Resolution()
		if err := allocation.Matches(e.Remainder()); err != nil {
			return nil, err
		}
		shares := []ReleaseLeg{
			{Name: legRequester, Beneficiary: e.Requester().String(), Quote: services.FeeQuote{Gross: allocation.ToRequester()}},
			{Name: legFulfiller, Beneficiary: e.Recipient().String(), Quote: services.FeeQuote{Gross: allocation.ToFulfiller()}},
			{Name: legArbitrator, Beneficiary: req.Dispute.Parties().Arbitrator.String(), Quote: services.FeeQuote{Gross: allocation.ToArbitrator()}},
		}
		legs := make([]ReleaseLeg, 0, len(shares))
		for _, leg := range shares {
			if !leg.Quote.Gross.IsZero() {
				legs = append(legs, leg)
			}
		}
		return legs, nil
	}

	return nil, errs.NewValueIsInvalidErrorWithCause("path", fmt.Errorf("unknown release path %q", req.Path))
}

// apply performs the in-memory state transition of the escrow and the work
// order. It runs before any ledger call.
func apply(req ReleaseRequest, now time.Time) error {
	e, wo := req.Escrow, req.WorkOrder

	switch req.Path {
	case PathRequesterApproval, PathAutoRelease, PathOracle:
		if err := e.RecordRelease(e.Remainder(), nil, now); err != nil {
			return err
		}
		return wo.Complete(e.IsFullyReleased(), now)

	case PathMilestoneApproval:
		m, err := e.Milestone(*req.MilestoneID)
		if err != nil {
			return err
		}
		if err = e.RecordRelease(m.Amount(), req.MilestoneID, now); err != nil {
			return err
		}
		if e.IsFullyReleased() {
			return wo.Settle(true, now)
		}
		return nil

	case PathReleaseAuthority:
		if err := e.RecordRelease(req.Amount, nil, now); err != nil {
			return err
		}
		switch {
		case !e.IsFullyReleased():
			return nil
		case wo.Status() == workorder.Approved:
			return wo.Complete(true, now)
		default:
			return wo.Settle(true, now)
		}

	case PathCancellationRefund:
		if err := wo.Cancel(req.Actor, now); err != nil {
			return err
		}
		_, err := e.RecordRefund(now)
		return err

	case PathExpiryRefund:
		if err := wo.Expire(now); err != nil {
			return err
		}
		_, err := e.RecordRefund(now)
		return err

	case PathDisputeResolution:
		if _, err := e.RecordDisputeSettlement(req.Dispute.ID(), now); err != nil {
			return err
		}
		return wo.ResolveDispute(now)
	}

	return errs.NewValueIsInvalidErrorWithCause("path", fmt.Errorf("unknown release path %q", req.Path))
}

func (x *ReleaseExecutor) transfer(
	ctx context.Context,
	ledger ports.Ledger,
	custody string,
	sequence int64,
	leg *ReleaseLeg,
	req ReleaseRequest,
) error {
	key := legKey(req.Escrow.ID(), sequence, leg.Name)
	memo := req.Path.String()

	if !leg.Quote.Fee.IsZero() {
		receipt, err := ledger.Transfer(ctx, ports.Transfer{
			Key:    key + feeLegSuffix,
			From:   custody,
			To:     x.feeAccount,
			Asset:  req.Escrow.Asset(),
			Amount: leg.Quote.Fee,
			Memo:   memo + feeLegSuffix,
		})
		if err != nil {
			return err
		}
		leg.FeeReceipt = &receipt
	}

	if leg.Quote.Net.IsZero() {
		return nil
	}
	receipt, err := ledger.Transfer(ctx, ports.Transfer{
		Key:    key,
		From:   custody,
		To:     leg.Beneficiary,
		Asset:  req.Escrow.Asset(),
		Amount: leg.Quote.Net,
		Memo:   memo,
	})
	if err != nil {
		return err
	}
	leg.Receipt = &receipt
	return nil
}

func legKey(escrowID kernel.UUID, sequence int64, leg string) string {
	return escrowID.String() + ":" + strconv.FormatInt(sequence, 10) + ":" + leg
}

func releaseEvents(req ReleaseRequest, out ReleaseOutcome, before workorder.Status, now time.Time) []event.Event {
	e, wo := req.Escrow, req.WorkOrder
	sequence := strconv.FormatInt(out.Sequence, 10)
	newEvent := func(t event.Type) event.Event {
		return event.New(t, e.ID(), wo.ID(), req.Actor, now).
			With("path", req.Path.String()).
			With("sequence", sequence)
	}

	events := make([]event.Event, 0, 2*len(out.Legs)+2)
	for _, leg := range out.Legs {
		t := event.EscrowReleased
		if leg.Name == legRefund {
			t = event.EscrowRefunded
		}
		ev := newEvent(t).WithAmount(leg.Quote.Gross).
			With("leg", leg.Name).
			With("beneficiary", leg.Beneficiary).
			With("net", leg.Quote.Net.String()).
			With("fee", leg.Quote.Fee.String())
		if req.ProofRef != "" {
			ev = ev.With("proofRef", req.ProofRef)
		}
		if req.Dispute != nil {
			ev = ev.With("disputeId", req.Dispute.ID().String())
		}
		events = append(events, ev)

		if !leg.Quote.Fee.IsZero() {
			events = append(events, newEvent(event.FeeCollected).WithAmount(leg.Quote.Fee).With("leg", leg.Name))
		}
	}

	if req.MilestoneID != nil {
		events = append(events, newEvent(event.MilestoneReleased).
			WithAmount(out.Gross()).
			With("milestoneId", req.MilestoneID.String()))
	}

	if after := wo.Status(); after != before {
		switch after {
		case workorder.Completed:
			events = append(events, newEvent(event.WorkOrderCompleted))
		case workorder.Cancelled:
			t := event.WorkOrderCancelled
			if req.Path == PathExpiryRefund {
				t = event.WorkOrderExpired
			}
			events = append(events, newEvent(t))
		}
	}
	return events
}
