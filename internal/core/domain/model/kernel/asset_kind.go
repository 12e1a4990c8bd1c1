package kernel

import (
	"fmt"
	"regexp"
	"strings"

	"escrow/internal/pkg/errs"
)

var assetSymbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9]{1,11}$`)

// ErrAssetKindIsNotConstructed indicates a zero-value AssetKind.
var ErrAssetKindIsNotConstructed = errs.NewValueIsRequiredError("asset kind must be created via NewAssetKind")

// AssetKind is the canonical upper-case symbol of the custodied asset ("USD", "USDC").
type AssetKind struct {
	symbol string
}

// NewAssetKind trims and upper-cases symbol, then checks it is 2 to 12 alphanumerics.
func NewAssetKind(symbol string) (AssetKind, error) {
	normalized := strings.ToUpper(strings.TrimSpace(symbol))
	if normalized == "" {
		return AssetKind{}, errs.NewValueIsRequiredError("assetKind")
	}
	if !assetSymbolPattern.MatchString(normalized) {
		return AssetKind{}, errs.NewValueIsInvalidErrorWithCause("assetKind",
			fmt.Errorf("unsupported asset symbol %q", symbol))
	}
	return AssetKind{symbol: normalized}, nil
}

func (k AssetKind) String() string {
	return k.symbol
}

// IsEqual reports whether both asset kinds have the same symbol.
func (k AssetKind) IsEqual(other AssetKind) bool {
	return k.symbol == other.symbol
}

// Validate returns ErrAssetKindIsNotConstructed for the zero value.
func (k AssetKind) Validate() error {
	if k.symbol == "" {
		return ErrAssetKindIsNotConstructed
	}
	return nil
}
