package escrow_test

import (
	"testing"
	"time"

	"escrow/internal/core/domain/model/escrow"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requester, _  = kernel.NewActor("requester")
	recipient, _  = kernel.NewActor("fulfiller")
	arbitrator, _ = kernel.NewActor("arbiter")
	usd, _        = kernel.NewAssetKind("USD")
	now           = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	expiry        = now.Add(30 * 24 * time.Hour)
)

func amt(t *testing.T, units int64) kernel.Amount {
	t.Helper()
	a, err := kernel.NewAmount(units)
	require.NoError(t, err)
	return a
}

func baseParams(t *testing.T, total int64) escrow.Params {
	t.Helper()
	return escrow.Params{
		ID:          kernel.NewUUID(),
		WorkOrderID: kernel.NewUUID(),
		Requester:   requester,
		Recipient:   recipient,
		Arbitrator:  arbitrator,
		Asset:       usd,
		Total:       amt(t, total),
		ExpiresAt:   expiry,
	}
}

func newMilestoneEscrow(t *testing.T) *escrow.Escrow {
	t.Helper()
	p := baseParams(t, 100)
	p.Milestones = []escrow.MilestoneSpec{
		{Description: "a", Amount: amt(t, 40), Deadline: now.Add(7 * 24 * time.Hour)},
		{Description: "b", Amount: amt(t, 60), Deadline: now.Add(14 * 24 * time.Hour)},
	}
	e, err := escrow.NewEscrow(p, now)
	require.NoError(t, err)
	return e
}

func TestNewEscrow(t *testing.T) {
	t.Run("plain escrow defaults the release authority to the requester", func(t *testing.T) {
		e, err := escrow.NewEscrow(baseParams(t, 100), now)

		require.NoError(t, err)
		assert.Equal(t, escrow.Funded, e.Status())
		assert.True(t, e.ReleaseAuthority().IsEqual(requester))
		assert.Equal(t, int64(100), e.Remainder().Units())
		assert.Zero(t, e.ReleaseSequence())
		assert.False(t, e.HasMilestones())
		assert.NoError(t, e.CheckInvariants())
	})

	t.Run("rejects zero total", func(t *testing.T) {
		_, err := escrow.NewEscrow(baseParams(t, 0), now)
		assert.ErrorIs(t, err, errs.ErrInvalidParameters)
	})

	t.Run("rejects past expiry", func(t *testing.T) {
		p := baseParams(t, 100)
		p.ExpiresAt = now.Add(-time.Minute)
		_, err := escrow.NewEscrow(p, now)
		assert.ErrorIs(t, err, errs.ErrInvalidParameters)
	})

	t.Run("rejects arbitrator who is a party", func(t *testing.T) {
		p := baseParams(t, 100)
		p.Arbitrator = recipient
		_, err := escrow.NewEscrow(p, now)
		assert.ErrorIs(t, err, errs.ErrInvalidParameters)
	})

	t.Run("rejects milestones not summing to total", func(t *testing.T) {
		p := baseParams(t, 100)
		p.Milestones = []escrow.MilestoneSpec{
			{Description: "a", Amount: amt(t, 40), Deadline: now.Add(time.Hour)},
			{Description: "b", Amount: amt(t, 50), Deadline: now.Add(time.Hour)},
		}
		_, err := escrow.NewEscrow(p, now)
		require.ErrorIs(t, err, errs.ErrInvalidParameters)
		assert.Contains(t, err.Error(), "milestones")
	})

	t.Run("rejects milestone deadline outside the escrow window", func(t *testing.T) {
		p := baseParams(t, 100)
		p.Milestones = []escrow.MilestoneSpec{
			{Description: "early", Amount: amt(t, 50), Deadline: now.Add(-time.Hour)},
			{Description: "late", Amount: amt(t, 50), Deadline: expiry.Add(time.Hour)},
		}
		_, err := escrow.NewEscrow(p, now)
		require.ErrorIs(t, err, errs.ErrInvalidParameters)
		assert.Contains(t, err.Error(), "milestones[0].deadline")
		assert.Contains(t, err.Error(), "milestones[1].deadline")
	})
}

// Scenario: total 100 split 40/60, first milestone approved and released.
func TestEscrow_MilestoneRelease(t *testing.T) {
	// Given
	e := newMilestoneEscrow(t)
	first := e.Milestones()[0]
	require.NoError(t, e.SubmitMilestone(recipient, first.ID(), []string{"design.pdf"}, now))
	rating := 5

	// When
	approved, err := e.ApproveMilestone(requester, first.ID(), &rating, now)
	require.NoError(t, err)
	id := approved.ID()
	require.NoError(t, e.RecordRelease(approved.Amount(), &id, now))

	// Then
	assert.Equal(t, int64(40), e.Released().Units())
	assert.Equal(t, escrow.MilestoneReleased, first.Status())
	assert.Equal(t, 5, *first.Rating())
	assert.Equal(t, escrow.Funded, e.Status())
	assert.False(t, e.IsFullyReleased())
	assert.Equal(t, int64(1), e.ReleaseSequence())
	assert.NoError(t, e.CheckInvariants())

	// double release is reported, never ignored
	for range 2 {
		_, err = e.ApproveMilestone(requester, first.ID(), nil, now)
		assert.ErrorIs(t, err, errs.ErrAlreadyReleased)
		assert.ErrorIs(t, e.RecordRelease(first.Amount(), &id, now), errs.ErrAlreadyReleased)
	}
	assert.Equal(t, int64(40), e.Released().Units())
}

func TestEscrow_MilestoneGuards(t *testing.T) {
	e := newMilestoneEscrow(t)
	m := e.Milestones()[1]

	assert.ErrorIs(t, e.SubmitMilestone(requester, m.ID(), []string{"x"}, now), errs.ErrUnauthorizedAccess)
	_, err := e.ApproveMilestone(requester, m.ID(), nil, now)
	assert.ErrorIs(t, err, errs.ErrInvalidWorkOrderStatus, "pending milestone cannot be approved")
	assert.ErrorIs(t, e.SubmitMilestone(recipient, kernel.NewUUID(), []string{"x"}, now), errs.ErrObjectNotFound)
	assert.ErrorIs(t, e.SubmitMilestone(recipient, m.ID(), []string{"x"}, expiry), errs.ErrEscrowExpired)

	require.NoError(t, e.SubmitMilestone(recipient, m.ID(), []string{"x"}, now))
	bad := 9
	_, err = e.ApproveMilestone(requester, m.ID(), &bad, now)
	assert.ErrorIs(t, err, errs.ErrInvalidParameters)
	assert.Equal(t, escrow.MilestoneSubmitted, m.Status())

	plainID := m.ID()
	assert.ErrorIs(t, e.RecordRelease(amt(t, 60), &plainID, now), errs.ErrInvalidWorkOrderStatus,
		"unapproved milestone cannot be released")
	assert.ErrorIs(t, e.RecordRelease(amt(t, 60), nil, now), errs.ErrInvalidParameters,
		"milestone escrows release per milestone")
}

func TestEscrow_RequestMilestoneRevision(t *testing.T) {
	e := newMilestoneEscrow(t)
	m := e.Milestones()[0]
	deadline := m.Deadline()
	require.NoError(t, e.SubmitMilestone(recipient, m.ID(), []string{"v1"}, now))

	err := e.RequestMilestoneRevision(requester, m.ID(), "colours are off", 48*time.Hour, now)

	require.NoError(t, err)
	assert.Equal(t, escrow.MilestonePending, m.Status())
	assert.Equal(t, 1, m.Revisions())
	assert.Equal(t, "colours are off", m.LastIssues())
	assert.Equal(t, deadline.Add(48*time.Hour), m.Deadline())
	assert.NoError(t, e.CheckInvariants(), "milestone sum unchanged by revision")

	require.NoError(t, e.SubmitMilestone(recipient, m.ID(), []string{"v2"}, now))
	err = e.RequestMilestoneRevision(requester, m.ID(), "again", 60*24*time.Hour, now)
	assert.ErrorIs(t, err, errs.ErrInvalidParameters, "extension past expiry")
	assert.Equal(t, escrow.MilestoneSubmitted, m.Status())
}

func TestEscrow_DisputeFreezesReleases(t *testing.T) {
	e := newMilestoneEscrow(t)
	m := e.Milestones()[0]
	require.NoError(t, e.SubmitMilestone(recipient, m.ID(), []string{"x"}, now))
	disputeID := kernel.NewUUID()

	require.NoError(t, e.AttachDispute(disputeID, now))

	assert.True(t, e.HasOpenDispute())
	assert.Equal(t, escrow.MilestoneDisputed, m.Status())
	_, err := e.ApproveMilestone(requester, m.ID(), nil, now)
	assert.ErrorIs(t, err, errs.ErrEscrowDisputed)
	assert.ErrorIs(t, e.EnsureReleasable(amt(t, 10), false), errs.ErrEscrowDisputed)
	assert.NoError(t, e.EnsureReleasable(amt(t, 100), true))
	_, err = e.RecordRefund(now)
	assert.ErrorIs(t, err, errs.ErrEscrowDisputed)
	assert.ErrorIs(t, e.AttachDispute(kernel.NewUUID(), now), errs.ErrEscrowDisputed)

	settled, err := e.RecordDisputeSettlement(disputeID, now)
	require.NoError(t, err)
	assert.Equal(t, int64(100), settled.Units())
	assert.Equal(t, escrow.Released, e.Status())
	assert.True(t, e.IsFullyReleased())
	assert.False(t, e.HasOpenDispute())
	assert.ErrorIs(t, e.EnsureReleasable(amt(t, 1), false), errs.ErrAlreadyReleased)
	assert.NoError(t, e.CheckInvariants())
}

func TestEscrow_FullRelease(t *testing.T) {
	e, err := escrow.NewEscrow(baseParams(t, 100), now)
	require.NoError(t, err)

	require.NoError(t, e.RecordRelease(amt(t, 100), nil, now))
	assert.Equal(t, escrow.Released, e.Status())

	err = e.RecordRelease(amt(t, 100), nil, now)
	assert.ErrorIs(t, err, errs.ErrAlreadyReleased)
	assert.Equal(t, int64(100), e.Released().Units())
}

func TestEscrow_PartialReleaseBounds(t *testing.T) {
	e, err := escrow.NewEscrow(baseParams(t, 100), now)
	require.NoError(t, err)

	require.NoError(t, e.RecordRelease(amt(t, 30), nil, now))
	assert.ErrorIs(t, e.RecordRelease(amt(t, 71), nil, now), errs.ErrInvalidParameters)
	assert.ErrorIs(t, e.RecordRelease(kernel.ZeroAmount, nil, now), errs.ErrInvalidParameters)
	assert.Equal(t, int64(30), e.Released().Units())
	assert.Equal(t, int64(70), e.Remainder().Units())
}

func TestEscrow_Refund(t *testing.T) {
	e := newMilestoneEscrow(t)
	m := e.Milestones()[0]
	require.NoError(t, e.SubmitMilestone(recipient, m.ID(), []string{"x"}, now))
	_, err := e.ApproveMilestone(requester, m.ID(), nil, now)
	require.NoError(t, err)
	id := m.ID()
	require.NoError(t, e.RecordRelease(m.Amount(), &id, now))

	refunded, err := e.RecordRefund(now)

	require.NoError(t, err)
	assert.Equal(t, int64(60), refunded.Units())
	assert.Equal(t, int64(40), e.Released().Units(), "released funds are untouched")
	assert.Equal(t, escrow.Refunded, e.Status())
	assert.ErrorIs(t, e.RecordRelease(amt(t, 1), nil, now), errs.ErrInvalidWorkOrderStatus)
	assert.NoError(t, e.CheckInvariants())
}

func TestEscrow_Extend(t *testing.T) {
	e, err := escrow.NewEscrow(baseParams(t, 100), now)
	require.NoError(t, err)

	assert.ErrorIs(t, e.Extend(recipient, expiry.Add(time.Hour), now), errs.ErrUnauthorizedAccess)
	assert.ErrorIs(t, e.Extend(requester, expiry.Add(-time.Hour), now), errs.ErrInvalidParameters)
	require.NoError(t, e.Extend(requester, expiry.Add(time.Hour), now))
	assert.Equal(t, expiry.Add(time.Hour), e.ExpiresAt())
}

func TestEscrow_DueForAutoRelease(t *testing.T) {
	p := baseParams(t, 100)
	p.AutoRelease = true
	e, err := escrow.NewEscrow(p, now)
	require.NoError(t, err)

	assert.False(t, e.DueForAutoRelease(expiry), "not approved yet")
	e.MarkApproved(now)
	assert.False(t, e.DueForAutoRelease(expiry.Add(-time.Second)))
	assert.True(t, e.DueForAutoRelease(expiry))

	require.NoError(t, e.AttachDispute(kernel.NewUUID(), now))
	assert.False(t, e.DueForAutoRelease(expiry), "dispute blocks auto-release")
}

func TestRestoreEscrow_DetectsCorruption(t *testing.T) {
	e := newMilestoneEscrow(t)
	snapshot := func() escrow.Snapshot {
		return escrow.Snapshot{
			ID:               e.ID(),
			WorkOrderID:      e.WorkOrderID(),
			Requester:        requester,
			Recipient:        recipient,
			ReleaseAuthority: requester,
			Asset:            usd,
			Total:            amt(t, 100),
			Milestones:       e.Milestones(),
			ExpiresAt:        expiry,
			Status:           escrow.Funded,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
	}

	restored, err := escrow.RestoreEscrow(snapshot())
	require.NoError(t, err)
	assert.Len(t, restored.Milestones(), 2)

	tests := []struct {
		name   string
		mutate func(*escrow.Snapshot)
	}{
		{"released above total", func(s *escrow.Snapshot) { s.Released = amt(t, 101) }},
		{"milestone sum differs", func(s *escrow.Snapshot) { s.Total = amt(t, 90) }},
		{"released status with remainder", func(s *escrow.Snapshot) { s.Status = escrow.Released }},
		{"funded without remainder", func(s *escrow.Snapshot) { s.Released = amt(t, 100) }},
		{"unknown status", func(s *escrow.Snapshot) { s.Status = escrow.StatusUnknown }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := snapshot()
			tt.mutate(&s)

			_, err := escrow.RestoreEscrow(s)

			assert.ErrorIs(t, err, errs.ErrCorruptedState)
			assert.NotErrorIs(t, err, errs.ErrInvalidParameters)
		})
	}
}
