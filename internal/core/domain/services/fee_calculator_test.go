package services_test

import (
	"math"
	"testing"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/domain/services"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func amt(t *testing.T, units int64) kernel.Amount {
	t.Helper()
	a, err := kernel.NewAmount(units)
	require.NoError(t, err)
	return a
}

func asset(t *testing.T, symbol string) kernel.AssetKind {
	t.Helper()
	a, err := kernel.NewAssetKind(symbol)
	require.NoError(t, err)
	return a
}

func TestNewFeeCalculator(t *testing.T) {
	_, err := services.NewFeeCalculator(-1, services.FeePolicy{}, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidParameters)

	_, err = services.NewFeeCalculator(500, services.FeePolicy{Bps: 10_001}, nil)
	assert.ErrorIs(t, err, errs.ErrInvalidParameters)

	_, err = services.NewFeeCalculator(500, services.FeePolicy{}, map[string]services.FeePolicy{"$$": {}})
	assert.ErrorIs(t, err, errs.ErrInvalidParameters)

	calc, err := services.NewFeeCalculator(500, services.FeePolicy{}, map[string]services.FeePolicy{"usdc": {Bps: 100}})
	require.NoError(t, err)
	assert.Equal(t, int64(100), calc.Policy(asset(t, "USDC")).Bps, "symbols are normalised")
	assert.Equal(t, int64(500), calc.MaxFeeBps())
}

func TestFeeCalculator_Quote(t *testing.T) {
	calc, err := services.NewFeeCalculator(500, services.FeePolicy{}, map[string]services.FeePolicy{
		"USDC": {Bps: 100},
		"ZNHB": {FlatFee: amt(t, 2), Bps: 50},
		"FEE":  {Bps: 1_000},
		"FLAT": {FlatFee: amt(t, 10)},
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		asset   string
		gross   int64
		fee     int64
		wantErr error
	}{
		{name: "default policy is free", asset: "USD", gross: 100, fee: 0},
		{name: "one percent", asset: "USDC", gross: 10_000, fee: 100},
		{name: "rounds down", asset: "USDC", gross: 150, fee: 1},
		{name: "flat plus variable", asset: "ZNHB", gross: 1_000, fee: 7},
		{name: "above slippage bound", asset: "FEE", gross: 1_000, wantErr: errs.ErrTransferFeeExceeded},
		{name: "flat fee larger than payout", asset: "FLAT", gross: 5, wantErr: errs.ErrTransferFeeExceeded},
		{name: "zero gross", asset: "USDC", gross: 0, fee: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			quote, err := calc.Quote(asset(t, tt.asset), amt(t, tt.gross))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.gross, quote.Gross.Units())
			assert.Equal(t, tt.fee, quote.Fee.Units())
			assert.Equal(t, tt.gross-tt.fee, quote.Net.Units())
		})
	}
}

func TestFeeCalculator_QuoteLargeAmountsDoNotOverflow(t *testing.T) {
	calc, err := services.NewFeeCalculator(10_000, services.FeePolicy{Bps: 10_000}, nil)
	require.NoError(t, err)

	quote, err := calc.Quote(asset(t, "USD"), amt(t, math.MaxInt64))

	require.NoError(t, err)
	assert.Equal(t, int64(math.MaxInt64), quote.Fee.Units())
	assert.True(t, quote.Net.IsZero())
}
