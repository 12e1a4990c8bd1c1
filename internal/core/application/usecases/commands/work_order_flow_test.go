package commands_test

import (
	"testing"
	"time"

	"escrow/internal/core/application/usecases/commands"
	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/event"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/model/workorder"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateWorkOrder_FundsCustody(t *testing.T) {
	h := newHarness(t)

	escrowID, workOrderID := h.create(escrowSpec{total: 100})

	e, wo := h.load(escrowID)
	assert.Equal(t, escrow.Funded, e.Status())
	assert.Equal(t, int64(100), e.Total().Units())
	assert.True(t, e.Released().IsZero())
	assert.True(t, e.ReleaseAuthority().IsEqual(requester))
	assert.True(t, wo.ID().IsEqual(workOrderID))
	assert.Equal(t, workorder.Open, wo.Status())

	assert.Equal(t, int64(0), h.balance(requester.String()))
	assert.Equal(t, int64(100), h.balance(ports.CustodyAccount(escrowID)))
	assert.Equal(t, []event.Type{event.WorkOrderCreated, event.EscrowFunded, event.WorkOrderOpened}, h.eventTypes(escrowID))
}

func TestCreateWorkOrder_InsufficientFundsStoresNothing(t *testing.T) {
	h := newHarness(t)
	h.deposit(requester, 40)
	escrowID, workOrderID := kernel.NewUUID(), kernel.NewUUID()

	err := h.tryCreate(escrowSpec{total: 100}, escrowID, workOrderID)

	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
	assert.Equal(t, int64(40), h.balance(requester.String()))
	assert.Equal(t, int64(0), h.balance(ports.CustodyAccount(escrowID)))
	assert.Empty(t, h.events(escrowID))

	uow := h.factory.Create()
	require.NoError(t, uow.Begin(t.Context()))
	defer func() { _ = uow.Rollback(t.Context()) }()
	_, err = uow.EscrowRepository().GetForUpdate(t.Context(), escrowID)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCreateWorkOrder_RejectsMilestonesNotSummingToTotal(t *testing.T) {
	h := newHarness(t)
	h.deposit(requester, 100)

	err := h.tryCreate(escrowSpec{total: 100, milestones: []int64{40, 50}}, kernel.NewUUID(), kernel.NewUUID())

	require.ErrorIs(t, err, errs.ErrInvalidParameters)
	assert.Equal(t, int64(100), h.balance(requester.String()))
}

func TestApproveDelivery_ReleasesImmediately(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	require.NoError(t, h.submit(workOrderID))

	require.NoError(t, h.approve(workOrderID, requester))

	e, wo := h.load(escrowID)
	assert.Equal(t, escrow.Released, e.Status())
	assert.Equal(t, int64(100), e.Released().Units())
	assert.Equal(t, workorder.Completed, wo.Status())
	assert.Equal(t, int64(100), h.balance(fulfiller.String()))
	assert.Equal(t, int64(0), h.balance(ports.CustodyAccount(escrowID)))
	assert.Equal(t, []event.Type{
		event.WorkOrderCreated, event.EscrowFunded, event.WorkOrderOpened,
		event.DeliverySubmitted, event.DeliveryApproved,
		event.EscrowReleased, event.WorkOrderCompleted,
	}, h.eventTypes(escrowID))
}

func TestApproveDelivery_OnlyRequester(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	require.NoError(t, h.submit(workOrderID))

	err := h.approve(workOrderID, fulfiller)

	require.ErrorIs(t, err, errs.ErrUnauthorizedAccess)
	_, wo := h.load(escrowID)
	assert.Equal(t, workorder.Submitted, wo.Status())
	assert.Equal(t, int64(0), h.balance(fulfiller.String()))
}

func TestApproveDelivery_BeforeSubmission(t *testing.T) {
	h := newHarness(t)
	_, workOrderID := h.create(escrowSpec{total: 100})

	err := h.approve(workOrderID, requester)

	require.ErrorIs(t, err, errs.ErrInvalidWorkOrderStatus)
}

func TestRejectDelivery_ResubmitLoop(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	require.NoError(t, h.submit(workOrderID))

	require.NoError(t, h.reject(workOrderID, "missing appendix"))

	_, wo := h.load(escrowID)
	assert.Equal(t, workorder.InProgress, wo.Status())
	assert.Equal(t, "missing appendix", wo.RejectionReason())

	require.NoError(t, h.submit(workOrderID))

	_, wo = h.load(escrowID)
	assert.Equal(t, workorder.Submitted, wo.Status())
	assert.Equal(t, 2, wo.Attempts())
	assert.Empty(t, wo.RejectionReason())
	assert.Contains(t, h.eventTypes(escrowID), event.DeliveryRejected)
}

func TestSubmitDelivery_AfterExpiry(t *testing.T) {
	h := newHarness(t)
	_, workOrderID := h.create(escrowSpec{total: 100})
	h.advance(31 * 24 * time.Hour)

	err := h.submit(workOrderID)

	require.ErrorIs(t, err, errs.ErrEscrowExpired)
}

func TestSubmitDelivery_UnknownWorkOrder(t *testing.T) {
	h := newHarness(t)

	err := h.submit(kernel.NewUUID())

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

// Approval of an auto-release escrow defers the payout; the release authority
// can still pay out right away, and only once.
func TestReleaseEscrow_AfterDeferredApproval(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100, autoRelease: true})
	require.NoError(t, h.submit(workOrderID))
	require.NoError(t, h.approve(workOrderID, requester))

	e, wo := h.load(escrowID)
	require.Equal(t, workorder.Approved, wo.Status())
	require.NotNil(t, e.ApprovedAt())
	require.Equal(t, int64(100), h.balance(ports.CustodyAccount(escrowID)))

	require.NoError(t, h.release(escrowID, requester, 100))

	e, wo = h.load(escrowID)
	assert.Equal(t, int64(100), e.Released().Units())
	assert.Equal(t, workorder.Completed, wo.Status())

	err := h.release(escrowID, requester, 100)

	require.ErrorIs(t, err, errs.ErrAlreadyReleased)
	e, _ = h.load(escrowID)
	assert.Equal(t, int64(100), e.Released().Units())
	assert.Equal(t, int64(100), h.balance(fulfiller.String()))
}

func TestReleaseEscrow_Validation(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100})

	require.ErrorIs(t, h.release(escrowID, outsider, 10), errs.ErrUnauthorizedAccess)
	require.ErrorIs(t, h.release(escrowID, requester, 150), errs.ErrInvalidParameters)

	e, _ := h.load(escrowID)
	assert.True(t, e.Released().IsZero())
	assert.Equal(t, int64(100), h.balance(ports.CustodyAccount(escrowID)))
}

func TestReleaseEscrow_DesignatedAuthority(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, authority: arbitrator})

	require.ErrorIs(t, h.release(escrowID, requester, 10), errs.ErrUnauthorizedAccess)
	require.NoError(t, h.release(escrowID, arbitrator, 10))

	assert.Equal(t, int64(10), h.balance(fulfiller.String()))
}

func TestCancelWorkOrder_RefundsRemainder(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	require.NoError(t, h.submit(workOrderID))

	require.NoError(t, h.cancel(workOrderID, requester))

	e, wo := h.load(escrowID)
	assert.Equal(t, escrow.Refunded, e.Status())
	assert.Equal(t, int64(100), e.Refunded().Units())
	assert.Equal(t, workorder.Cancelled, wo.Status())
	assert.Equal(t, int64(100), h.balance(requester.String()))
	assert.Equal(t, int64(0), h.balance(ports.CustodyAccount(escrowID)))

	types := h.eventTypes(escrowID)
	assert.Equal(t, []event.Type{event.EscrowRefunded, event.WorkOrderCancelled}, types[len(types)-2:])

	require.ErrorIs(t, h.submit(workOrderID), errs.ErrInvalidWorkOrderStatus)
	require.ErrorIs(t, h.cancel(workOrderID, requester), errs.ErrInvalidWorkOrderStatus)
	require.ErrorIs(t, h.approve(workOrderID, requester), errs.ErrInvalidWorkOrderStatus)
	require.ErrorIs(t, h.release(escrowID, requester, 10), errs.ErrInvalidWorkOrderStatus)
	assert.Equal(t, int64(100), h.balance(requester.String()))
}

func TestCancelWorkOrder_AfterPartialRelease(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	require.NoError(t, h.release(escrowID, requester, 30))

	require.NoError(t, h.cancel(workOrderID, requester))

	e, _ := h.load(escrowID)
	assert.Equal(t, int64(30), e.Released().Units())
	assert.Equal(t, int64(70), e.Refunded().Units())
	assert.Equal(t, int64(30), h.balance(fulfiller.String()))
	assert.Equal(t, int64(70), h.balance(requester.String()))
}

func TestCancelWorkOrder_OnlyRequester(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})

	require.ErrorIs(t, h.cancel(workOrderID, fulfiller), errs.ErrUnauthorizedAccess)

	_, wo := h.load(escrowID)
	assert.Equal(t, workorder.Open, wo.Status())
}

func TestExtendEscrow(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100})
	e, _ := h.load(escrowID)
	later := e.ExpiresAt().Add(10 * 24 * time.Hour)

	extend := func(caller kernel.Actor, at time.Time) error {
		cmd, err := commands.NewExtendEscrowCommand(escrowID, caller, at)
		require.NoError(t, err)
		handler := commands.NewExtendEscrowCommandHandler(h.factory, h.clock)
		return handler.Handle(t.Context(), cmd)
	}

	require.ErrorIs(t, extend(fulfiller, later), errs.ErrUnauthorizedAccess)
	require.ErrorIs(t, extend(requester, e.ExpiresAt().Add(-time.Hour)), errs.ErrInvalidParameters)
	require.NoError(t, extend(requester, later))

	e, _ = h.load(escrowID)
	assert.True(t, e.ExpiresAt().Equal(later))
	assert.Contains(t, h.eventTypes(escrowID), event.EscrowExtended)

	h.advance(35 * 24 * time.Hour)
	require.NoError(t, h.submit(workOrderID))
}
