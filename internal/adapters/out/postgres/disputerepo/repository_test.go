package disputerepo_test

import (
	"testing"
	"time"

	"escrow/internal/adapters/out/postgres/disputerepo"
	"escrow/internal/adapters/out/postgres/pgtest"
	"escrow/internal/core/domain/model/dispute"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	requester, _  = kernel.NewActor("alice")
	fulfiller, _  = kernel.NewActor("bob")
	arbitrator, _ = kernel.NewActor("carol")
	filedAt       = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
)

func amount(t *testing.T, units int64) kernel.Amount {
	t.Helper()
	a, err := kernel.NewAmount(units)
	require.NoError(t, err)
	return a
}

func fileDispute(t *testing.T) *dispute.Dispute {
	t.Helper()
	d, err := dispute.FileDispute(
		kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(),
		dispute.Parties{Requester: requester, Fulfiller: fulfiller, Arbitrator: arbitrator},
		requester,
		"work not delivered",
		[]string{"ipfs://chat-log"},
		dispute.NewAllocation(amount(t, 30), amount(t, 70), kernel.ZeroAmount),
		amount(t, 100),
		filedAt,
	)
	require.NoError(t, err)
	return d
}

func TestGormDisputeRepository_RoundTrip(t *testing.T) {
	ctx := t.Context()
	repo := disputerepo.NewGormDisputeRepository(pgtest.OpenSQLite(t))
	d := fileDispute(t)
	require.NoError(t, repo.Add(ctx, d))

	got, err := repo.Get(ctx, d.ID())
	require.NoError(t, err)

	assert.Equal(t, dispute.StatusOpen, got.Status())
	assert.Equal(t, "work not delivered", got.Reason())
	assert.Equal(t, []string{"ipfs://chat-log"}, got.Evidence())
	assert.Equal(t, int64(30), got.Proposal().ToRequester().Units())
	assert.Equal(t, int64(70), got.Proposal().ToFulfiller().Units())
	assert.True(t, got.Parties().Arbitrator.IsEqual(arbitrator))
	assert.Nil(t, got.Response())
	assert.Nil(t, got.Resolution())
	assert.True(t, got.FiledAt().Equal(filedAt))
}

func TestGormDisputeRepository_UpdateResponseAndResolution(t *testing.T) {
	ctx := t.Context()
	repo := disputerepo.NewGormDisputeRepository(pgtest.OpenSQLite(t))
	d := fileDispute(t)
	require.NoError(t, repo.Add(ctx, d))

	counter := dispute.NewAllocation(amount(t, 10), amount(t, 90), kernel.ZeroAmount)
	require.NoError(t, d.Respond(fulfiller, "delivered on time", &counter, amount(t, 100), filedAt.Add(time.Hour)))
	require.NoError(t, d.Resolve(arbitrator,
		dispute.NewAllocation(amount(t, 20), amount(t, 75), amount(t, 5)), amount(t, 100), filedAt.Add(2*time.Hour)))
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.Get(ctx, d.ID())
	require.NoError(t, err)

	require.NotNil(t, got.Response())
	assert.Equal(t, "delivered on time", got.Response().Statement)
	require.NotNil(t, got.Response().Counter)
	assert.Equal(t, int64(90), got.Response().Counter.ToFulfiller().Units())

	require.NotNil(t, got.Resolution())
	assert.Equal(t, dispute.StatusResolved, got.Status())
	assert.Equal(t, dispute.ModeArbitration, got.Mode())
	assert.Equal(t, int64(5), got.Resolution().ToArbitrator().Units())
	assert.True(t, got.ResolvedBy().IsEqual(arbitrator))
	require.NotNil(t, got.ResolvedAt())
}

func TestGormDisputeRepository_ResponseWithoutCounter(t *testing.T) {
	ctx := t.Context()
	repo := disputerepo.NewGormDisputeRepository(pgtest.OpenSQLite(t))
	d := fileDispute(t)
	require.NoError(t, repo.Add(ctx, d))
	require.NoError(t, d.Respond(fulfiller, "see attached", nil, amount(t, 100), filedAt.Add(time.Hour)))
	require.NoError(t, repo.Update(ctx, d))

	got, err := repo.Get(ctx, d.ID())
	require.NoError(t, err)
	require.NotNil(t, got.Response())
	assert.Nil(t, got.Response().Counter)
	assert.Equal(t, dispute.StatusResponded, got.Status())
}

func TestGormDisputeRepository_NotFound(t *testing.T) {
	repo := disputerepo.NewGormDisputeRepository(pgtest.OpenSQLite(t))

	_, err := repo.Get(t.Context(), kernel.NewUUID())
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)

	err = repo.Update(t.Context(), fileDispute(t))
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestGormDisputeRepository_ResolvedWithoutResolutionIsCorrupted(t *testing.T) {
	ctx := t.Context()
	db := pgtest.OpenSQLite(t)
	repo := disputerepo.NewGormDisputeRepository(db)
	d := fileDispute(t)
	require.NoError(t, repo.Add(ctx, d))
	require.NoError(t, db.Exec("UPDATE disputes SET status = ? WHERE id = ?", int(dispute.StatusResolved), d.ID().Bytes()).Error)

	_, err := repo.Get(ctx, d.ID())
	assert.ErrorIs(t, err, errs.ErrCorruptedState)
}
