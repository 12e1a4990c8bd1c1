package kernel_test

import (
	"testing"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAssetKind(t *testing.T) {
	tests := []struct {
		input string
		want  string
		err   error
	}{
		{input: "usd", want: "USD"},
		{input: " usdc ", want: "USDC"},
		{input: "Znhb", want: "ZNHB"},
		{input: "", err: errs.ErrValueIsRequired},
		{input: "U", err: errs.ErrValueIsInvalid},
		{input: "1USD", err: errs.ErrValueIsInvalid},
		{input: "US-D", err: errs.ErrValueIsInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := kernel.NewAssetKind(tt.input)
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind.String())
		})
	}
}

func TestAssetKind_IsEqual(t *testing.T) {
	lower, _ := kernel.NewAssetKind("usd")
	upper, _ := kernel.NewAssetKind("USD")

	assert.True(t, lower.IsEqual(upper))
	assert.ErrorIs(t, kernel.AssetKind{}.Validate(), kernel.ErrAssetKindIsNotConstructed)
}
