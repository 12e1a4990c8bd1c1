package commands_test

import (
	"testing"
	"time"

	postgres_adapter "escrow/internal/adapters/out/postgres"
	"escrow/internal/adapters/out/postgres/ledgerrepo"
	"escrow/internal/adapters/out/postgres/oraclerepo"
	"escrow/internal/adapters/out/postgres/outboxrepo"
	"escrow/internal/adapters/out/postgres/pgtest"
	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/domain/services"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const feeAccount = "fees:escrow"

var (
	requester, _  = kernel.NewActor("requester")
	fulfiller, _  = kernel.NewActor("fulfiller")
	arbitrator, _ = kernel.NewActor("arbitrator")
	outsider, _   = kernel.NewActor("outsider")
	attester, _   = kernel.NewActor("oracle:weather")
	operator, _   = kernel.NewActor("ops")
	usd, _        = kernel.NewAssetKind("USD")
	startedAt     = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)
)

func amount(t testing.TB, units int64) kernel.Amount {
	t.Helper()
	a, err := kernel.NewAmount(units)
	require.NoError(t, err)
	return a
}

// uowFactory adapts the gorm factory to the command-side interface.
type uowFactory struct {
	factory *postgres_adapter.GormUnitOfWorkFactory
}

func (f uowFactory) Create() commands.UoW {
	return f.factory.Create()
}

// harness wires the command handlers to an in-memory SQLite database.
type harness struct {
	t        *testing.T
	db       *gorm.DB
	now      time.Time
	clock    ports.Clock
	factory  commands.UoWFactory
	executor *commands.ReleaseExecutor
	oracle   *oraclerepo.GormOracle
	registry *prometheus.Registry
}

type harnessOption func(*harnessConfig)

type harnessConfig struct {
	maxFeeBps int64
	policy    services.FeePolicy
}

func withFeePolicy(maxFeeBps int64, policy services.FeePolicy) harnessOption {
	return func(c *harnessConfig) {
		c.maxFeeBps = maxFeeBps
		c.policy = policy
	}
}

func newHarness(t *testing.T, opts ...harnessOption) *harness {
	t.Helper()
	cfg := harnessConfig{maxFeeBps: 500}
	for _, opt := range opts {
		opt(&cfg)
	}

	h := &harness{t: t, db: pgtest.OpenSQLite(t), now: startedAt, registry: prometheus.NewRegistry()}
	h.clock = ports.ClockFunc(func() time.Time { return h.now })
	h.factory = uowFactory{factory: postgres_adapter.NewGormUnitOfWorkFactory(h.db, h.clock)}
	h.oracle = oraclerepo.NewGormOracle(h.db, h.clock, []kernel.Actor{attester})

	fees, err := services.NewFeeCalculator(cfg.maxFeeBps, services.FeePolicy{}, map[string]services.FeePolicy{
		usd.String(): cfg.policy,
	})
	require.NoError(t, err)
	h.executor, err = commands.NewReleaseExecutor(fees, feeAccount, h.clock, metrics.New(h.registry))
	require.NoError(t, err)
	return h
}

func (h *harness) advance(d time.Duration) {
	h.now = h.now.Add(d)
}

func (h *harness) deposit(account kernel.Actor, units int64) {
	h.t.Helper()
	_, err := ledgerrepo.NewGormLedger(h.db, h.clock).
		Deposit(h.t.Context(), account.String(), usd, amount(h.t, units), kernel.NewUUID().String())
	require.NoError(h.t, err)
}

func (h *harness) balance(account string) int64 {
	h.t.Helper()
	b, err := ledgerrepo.NewGormLedger(h.db, h.clock).Balance(h.t.Context(), account, usd)
	require.NoError(h.t, err)
	return b.Units()
}

type escrowSpec struct {
	total       int64
	milestones  []int64
	autoRelease bool
	arbitrator  bool
	conditionID string
	authority   kernel.Actor
}

// create funds the requester and opens a work order with an escrow.
func (h *harness) create(spec escrowSpec) (escrowID, workOrderID kernel.UUID) {
	h.t.Helper()
	h.deposit(requester, spec.total)
	escrowID, workOrderID = kernel.NewUUID(), kernel.NewUUID()
	require.NoError(h.t, h.tryCreate(spec, escrowID, workOrderID))
	return escrowID, workOrderID
}

func (h *harness) tryCreate(spec escrowSpec, escrowID, workOrderID kernel.UUID) error {
	h.t.Helper()
	params := escrow.Params{
		ID:               escrowID,
		WorkOrderID:      workOrderID,
		Requester:        requester,
		Recipient:        fulfiller,
		ReleaseAuthority: spec.authority,
		Asset:            usd,
		Total:            amount(h.t, spec.total),
		ExpiresAt:        h.now.Add(30 * 24 * time.Hour),
		AutoRelease:      spec.autoRelease,
		ConditionID:      spec.conditionID,
	}
	if spec.arbitrator {
		params.Arbitrator = arbitrator
	}
	for i, units := range spec.milestones {
		params.Milestones = append(params.Milestones, escrow.MilestoneSpec{
			Description: "milestone " + string(rune('a'+i)),
			Amount:      amount(h.t, units),
			Deadline:    h.now.Add(time.Duration(i+1) * 7 * 24 * time.Hour),
		})
	}

	cmd, err := commands.NewCreateWorkOrderCommand(requester, params)
	if err != nil {
		return err
	}
	handler := commands.NewCreateWorkOrderCommandHandler(h.factory, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

// load reads the escrow and its work order in a throwaway transaction.
func (h *harness) load(escrowID kernel.UUID) (*escrow.Escrow, *workorder.WorkOrder) {
	h.t.Helper()
	uow := h.factory.Create()
	require.NoError(h.t, uow.Begin(h.t.Context()))
	defer func() { _ = uow.Rollback(h.t.Context()) }()

	e, err := uow.EscrowRepository().GetForUpdate(h.t.Context(), escrowID)
	require.NoError(h.t, err)
	wo, err := uow.WorkOrderRepository().Get(h.t.Context(), e.WorkOrderID())
	require.NoError(h.t, err)
	return e, wo
}

func (h *harness) dispute(id kernel.UUID) *dispute.Dispute {
	h.t.Helper()
	uow := h.factory.Create()
	require.NoError(h.t, uow.Begin(h.t.Context()))
	defer func() { _ = uow.Rollback(h.t.Context()) }()

	d, err := uow.DisputeRepository().Get(h.t.Context(), id)
	require.NoError(h.t, err)
	return d
}

// eventTypes lists the types of every event recorded for escrowID, in order.
func (h *harness) eventTypes(escrowID kernel.UUID) []event.Type {
	h.t.Helper()
	var types []event.Type
	for _, e := range h.events(escrowID) {
		types = append(types, e.Type)
	}
	return types
}

func (h *harness) events(escrowID kernel.UUID) []event.Event {
	h.t.Helper()
	all, err := outboxrepo.NewGormEventOutbox(h.db).ListUnpublished(h.t.Context(), 1000)
	require.NoError(h.t, err)
	var out []event.Event
	for _, e := range all {
		if e.EscrowID.IsEqual(escrowID) {
			out = append(out, e)
		}
	}
	return out
}

func (h *harness) submit(workOrderID kernel.UUID) error {
	cmd, err := commands.NewSubmitDeliveryCommand(workOrderID, fulfiller, []string{"https://files.example/report.pdf"})
	require.NoError(h.t, err)
	handler := commands.NewSubmitDeliveryCommandHandler(h.factory, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) approve(workOrderID kernel.UUID, caller kernel.Actor) error {
	cmd, err := commands.NewApproveDeliveryCommand(workOrderID, caller)
	require.NoError(h.t, err)
	handler := commands.NewApproveDeliveryCommandHandler(h.factory, h.executor, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) reject(workOrderID kernel.UUID, reason string) error {
	cmd, err := commands.NewRejectDeliveryCommand(workOrderID, requester, reason)
	require.NoError(h.t, err)
	handler := commands.NewRejectDeliveryCommandHandler(h.factory, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) cancel(workOrderID kernel.UUID, caller kernel.Actor) error {
	cmd, err := commands.NewCancelWorkOrderCommand(workOrderID, caller)
	require.NoError(h.t, err)
	handler := commands.NewCancelWorkOrderCommandHandler(h.factory, h.executor)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) release(escrowID kernel.UUID, caller kernel.Actor, units int64) error {
	cmd, err := commands.NewReleaseEscrowCommand(escrowID, caller, amount(h.t, units))
	require.NoError(h.t, err)
	handler := commands.NewReleaseEscrowCommandHandler(h.factory, h.executor)
	_, err = handler.Handle(h.t.Context(), cmd)
	return err
}

func (h *harness) submitMilestone(escrowID, milestoneID kernel.UUID) error {
	cmd, err := commands.NewSubmitMilestoneCommand(escrowID, milestoneID, fulfiller, []string{"draft.docx"})
	require.NoError(h.t, err)
	handler := commands.NewSubmitMilestoneCommandHandler(h.factory, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) approveMilestone(escrowID, milestoneID kernel.UUID, rating *int, tip *kernel.Amount) error {
	cmd, err := commands.NewApproveMilestoneCommand(escrowID, milestoneID, requester, rating, tip)
	require.NoError(h.t, err)
	handler := commands.NewApproveMilestoneCommandHandler(h.factory, h.executor, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}

func (h *harness) fileDispute(escrowID kernel.UUID, by kernel.Actor, toRequester, toFulfiller int64) kernel.UUID {
	h.t.Helper()
	id := kernel.NewUUID()
	cmd, err := commands.NewFileDisputeCommand(id, escrowID, by, "work does not match the brief",
		[]string{"https://files.example/diff.png"},
		dispute.NewAllocation(amount(h.t, toRequester), amount(h.t, toFulfiller), kernel.ZeroAmount))
	require.NoError(h.t, err)
	handler := commands.NewFileDisputeCommandHandler(h.factory, h.clock)
	require.NoError(h.t, handler.Handle(h.t.Context(), cmd))
	return id
}

func (h *harness) resolve(disputeID kernel.UUID, caller kernel.Actor, toRequester, toFulfiller, toArbitrator int64) error {
	cmd, err := commands.NewResolveDisputeCommand(disputeID, caller,
		dispute.NewAllocation(amount(h.t, toRequester), amount(h.t, toFulfiller), amount(h.t, toArbitrator)))
	require.NoError(h.t, err)
	handler := commands.NewResolveDisputeCommandHandler(h.factory, h.executor, h.clock)
	return handler.Handle(h.t.Context(), cmd)
}
