package ledgerrepo_test

import (
	"testing"
	"time"

	"escrow/internal/adapters/out/postgres/ledgerrepo"
	"escrow/internal/adapters/out/postgres/pgtest"
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	usd, _  = kernel.NewAssetKind("USD")
	fixedAt = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock   = ports.ClockFunc(func() time.Time { return fixedAt })
)

func units(t *testing.T, n int64) kernel.Amount {
	t.Helper()
	a, err := kernel.NewAmount(n)
	require.NoError(t, err)
	return a
}

func balance(t *testing.T, l *ledgerrepo.GormLedger, account string) int64 {
	t.Helper()
	b, err := l.Balance(t.Context(), account, usd)
	require.NoError(t, err)
	return b.Units()
}

func TestGormLedger_Transfer(t *testing.T) {
	ctx := t.Context()
	l := ledgerrepo.NewGormLedger(pgtest.OpenSQLite(t), clock)

	_, err := l.Deposit(ctx, "alice", usd, units(t, 100), "dep-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance(t, l, "alice"))

	receipt, err := l.Transfer(ctx, ports.Transfer{
		Key: "t-1", From: "alice", To: "escrow:1", Asset: usd, Amount: units(t, 60), Memo: "fund",
	})
	require.NoError(t, err)
	assert.Equal(t, "t-1", receipt.Key)
	assert.True(t, receipt.ExecutedAt.Equal(fixedAt))
	assert.Equal(t, int64(40), balance(t, l, "alice"))
	assert.Equal(t, int64(60), balance(t, l, "escrow:1"))
}

func TestGormLedger_InsufficientFunds(t *testing.T) {
	ctx := t.Context()
	l := ledgerrepo.NewGormLedger(pgtest.OpenSQLite(t), clock)
	_, err := l.Deposit(ctx, "alice", usd, units(t, 10), "dep-1")
	require.NoError(t, err)

	_, err = l.Transfer(ctx, ports.Transfer{Key: "t-1", From: "alice", To: "bob", Asset: usd, Amount: units(t, 11)})
	require.ErrorIs(t, err, errs.ErrInsufficientFunds)

	var insufficient *errs.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, int64(10), insufficient.Available)
	assert.Equal(t, int64(11), insufficient.Required)
	assert.Equal(t, int64(10), balance(t, l, "alice"))
	assert.Zero(t, balance(t, l, "bob"))

	_, err = l.Transfer(ctx, ports.Transfer{Key: "t-2", From: "nobody", To: "bob", Asset: usd, Amount: units(t, 1)})
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
}

func TestGormLedger_ReplayIsIdempotent(t *testing.T) {
	ctx := t.Context()
	l := ledgerrepo.NewGormLedger(pgtest.OpenSQLite(t), clock)
	_, err := l.Deposit(ctx, "alice", usd, units(t, 100), "dep-1")
	require.NoError(t, err)
	_, err = l.Deposit(ctx, "alice", usd, units(t, 100), "dep-1")
	require.NoError(t, err)
	assert.Equal(t, int64(100), balance(t, l, "alice"), "replayed deposit is applied once")

	transfer := ports.Transfer{Key: "t-1", From: "alice", To: "bob", Asset: usd, Amount: units(t, 30)}
	first, err := l.Transfer(ctx, transfer)
	require.NoError(t, err)
	second, err := l.Transfer(ctx, transfer)
	require.NoError(t, err)

	assert.True(t, first.ID.IsEqual(second.ID))
	assert.Equal(t, int64(70), balance(t, l, "alice"))
	assert.Equal(t, int64(30), balance(t, l, "bob"))

	transfer.Amount = units(t, 31)
	_, err = l.Transfer(ctx, transfer)
	assert.ErrorIs(t, err, errs.ErrInvalidParameters)
}

func TestGormLedger_RejectsMalformedTransfers(t *testing.T) {
	l := ledgerrepo.NewGormLedger(pgtest.OpenSQLite(t), clock)

	tests := []struct {
		name     string
		transfer ports.Transfer
	}{
		{"missing key", ports.Transfer{From: "a", To: "b", Asset: usd, Amount: units(t, 1)}},
		{"same account", ports.Transfer{Key: "k", From: "a", To: "a", Asset: usd, Amount: units(t, 1)}},
		{"zero amount", ports.Transfer{Key: "k", From: "a", To: "b", Asset: usd}},
		{"missing asset", ports.Transfer{Key: "k", From: "a", To: "b", Amount: units(t, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Transfer(t.Context(), tt.transfer)
			assert.ErrorIs(t, err, errs.ErrInvalidParameters)
		})
	}
}

func TestGormLedger_Treasury(t *testing.T) {
	var treasury ports.Treasury = ledgerrepo.NewGormLedger(pgtest.OpenSQLite(t), clock)
	id := kernel.NewUUID()

	_, err := treasury.Deposit(t.Context(), ports.CustodyAccount(id), usd, units(t, 30), "seed")
	require.NoError(t, err)

	b, err := treasury.Balance(t.Context(), "escrow:"+id.String(), usd)
	require.NoError(t, err)
	assert.Equal(t, int64(30), b.Units())
}
