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

func milestoneIDs(t *testing.T, h *harness, escrowID kernel.UUID) []kernel.UUID {
	t.Helper()
	e, _ := h.load(escrowID)
	ids := make([]kernel.UUID, 0, len(e.Milestones()))
	for _, m := range e.Milestones() {
		ids = append(ids, m.ID())
	}
	return ids
}

func TestMilestones_ReleaseOneByOne(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{40, 60}})
	ids := milestoneIDs(t, h, escrowID)
	require.Len(t, ids, 2)

	require.NoError(t, h.submitMilestone(escrowID, ids[0]))
	require.NoError(t, h.approveMilestone(escrowID, ids[0], nil, nil))

	e, wo := h.load(escrowID)
	assert.Equal(t, int64(40), e.Released().Units())
	assert.Equal(t, escrow.MilestoneReleased, e.Milestones()[0].Status())
	assert.Equal(t, escrow.MilestonePending, e.Milestones()[1].Status())
	assert.Equal(t, escrow.Funded, e.Status())
	assert.NotEqual(t, workorder.Completed, wo.Status())
	assert.Equal(t, int64(40), h.balance(fulfiller.String()))

	types := h.eventTypes(escrowID)
	assert.Equal(t, []event.Type{event.MilestoneApproved, event.EscrowReleased, event.MilestoneReleased}, types[len(types)-3:])

	rating := 5
	h.deposit(requester, 10)
	tip := amount(t, 10)
	require.NoError(t, h.submitMilestone(escrowID, ids[1]))
	require.NoError(t, h.approveMilestone(escrowID, ids[1], &rating, &tip))

	e, wo = h.load(escrowID)
	assert.Equal(t, escrow.Released, e.Status())
	assert.Equal(t, int64(100), e.Released().Units())
	require.NotNil(t, e.Milestones()[1].Rating())
	assert.Equal(t, 5, *e.Milestones()[1].Rating())
	assert.Equal(t, workorder.Completed, wo.Status())
	assert.Equal(t, int64(110), h.balance(fulfiller.String()))
	assert.Equal(t, int64(0), h.balance(requester.String()))
	assert.Equal(t, int64(0), h.balance(ports.CustodyAccount(escrowID)))
	assert.Contains(t, h.eventTypes(escrowID), event.TipPaid)
	assert.Contains(t, h.eventTypes(escrowID), event.WorkOrderCompleted)
}

func TestMilestones_DoubleApprovalIsRefused(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{40, 60}})
	ids := milestoneIDs(t, h, escrowID)
	require.NoError(t, h.submitMilestone(escrowID, ids[0]))
	require.NoError(t, h.approveMilestone(escrowID, ids[0], nil, nil))

	for range 2 {
		err := h.approveMilestone(escrowID, ids[0], nil, nil)
		require.ErrorIs(t, err, errs.ErrAlreadyReleased)
	}

	e, _ := h.load(escrowID)
	assert.Equal(t, int64(40), e.Released().Units())
	assert.Equal(t, int64(40), h.balance(fulfiller.String()))
}

func TestMilestones_ApproveBeforeSubmission(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{40, 60}})
	ids := milestoneIDs(t, h, escrowID)

	require.ErrorIs(t, h.approveMilestone(escrowID, ids[0], nil, nil), errs.ErrInvalidWorkOrderStatus)
	assert.Equal(t, int64(0), h.balance(fulfiller.String()))
}

func TestMilestones_OnlyPartiesAct(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{100}})
	ids := milestoneIDs(t, h, escrowID)

	submit, err := commands.NewSubmitMilestoneCommand(escrowID, ids[0], requester, []string{"draft.docx"})
	require.NoError(t, err)
	submitHandler := commands.NewSubmitMilestoneCommandHandler(h.factory, h.clock)
	require.ErrorIs(t, submitHandler.Handle(t.Context(), submit), errs.ErrUnauthorizedAccess)

	require.NoError(t, h.submitMilestone(escrowID, ids[0]))

	approve, err := commands.NewApproveMilestoneCommand(escrowID, ids[0], fulfiller, nil, nil)
	require.NoError(t, err)
	approveHandler := commands.NewApproveMilestoneCommandHandler(h.factory, h.executor, h.clock)
	require.ErrorIs(t, approveHandler.Handle(t.Context(), approve), errs.ErrUnauthorizedAccess)
}

func TestMilestones_RevisionLoop(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{40, 60}})
	ids := milestoneIDs(t, h, escrowID)
	e, _ := h.load(escrowID)
	deadline := e.Milestones()[0].Deadline()
	require.NoError(t, h.submitMilestone(escrowID, ids[0]))

	cmd, err := commands.NewRequestMilestoneRevisionCommand(escrowID, ids[0], requester, "wrong colours", 24*time.Hour)
	require.NoError(t, err)
	handler := commands.NewRequestMilestoneRevisionCommandHandler(h.factory, h.clock)
	require.NoError(t, handler.Handle(t.Context(), cmd))

	e, _ = h.load(escrowID)
	m := e.Milestones()[0]
	assert.Equal(t, escrow.MilestonePending, m.Status())
	assert.Equal(t, 1, m.Revisions())
	assert.Equal(t, "wrong colours", m.LastIssues())
	assert.True(t, m.Deadline().Equal(deadline.Add(24*time.Hour)))
	assert.Contains(t, h.eventTypes(escrowID), event.MilestoneRevisionRequested)

	require.NoError(t, h.submitMilestone(escrowID, ids[0]))
	require.NoError(t, h.approveMilestone(escrowID, ids[0], nil, nil))
	assert.Equal(t, int64(40), h.balance(fulfiller.String()))
}

func TestMilestones_WholeDeliveryOperationsAreRefused(t *testing.T) {
	h := newHarness(t)
	escrowID, workOrderID := h.create(escrowSpec{total: 100, milestones: []int64{40, 60}})

	require.ErrorIs(t, h.submit(workOrderID), errs.ErrInvalidParameters)
	require.ErrorIs(t, h.release(escrowID, requester, 40), errs.ErrInvalidParameters)

	e, _ := h.load(escrowID)
	assert.True(t, e.Released().IsZero())
}

func TestMilestones_UnknownMilestone(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{100}})

	require.ErrorIs(t, h.submitMilestone(escrowID, kernel.NewUUID()), errs.ErrObjectNotFound)
}

func TestMilestones_TipNeedsFunds(t *testing.T) {
	h := newHarness(t)
	escrowID, _ := h.create(escrowSpec{total: 100, milestones: []int64{100}})
	ids := milestoneIDs(t, h, escrowID)
	require.NoError(t, h.submitMilestone(escrowID, ids[0]))
	tip := amount(t, 5)

	err := h.approveMilestone(escrowID, ids[0], nil, &tip)

	require.ErrorIs(t, err, errs.ErrInsufficientFunds)
	e, _ := h.load(escrowID)
	assert.True(t, e.Released().IsZero())
	assert.Equal(t, escrow.MilestoneSubmitted, e.Milestones()[0].Status())
	assert.Equal(t, int64(100), h.balance(ports.CustodyAccount(escrowID)))
}
