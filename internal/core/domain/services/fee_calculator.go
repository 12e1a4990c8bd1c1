package services

import (
	"fmt"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
)

// BasisPointsDenominator is the number of basis points in 100%.
const BasisPointsDenominator = 10_000

// FeePolicy is the transfer-fee policy of one asset kind:
// fee = FlatFee + gross * Bps / 10000, rounded down.
type FeePolicy struct {
	FlatFee kernel.Amount
	Bps     int64
}

// Validate checks that Bps is within [0, 10000].
func (p FeePolicy) Validate() error {
	if p.Bps < 0 || p.Bps > BasisPointsDenominator {
		return errs.NewValueIsOutOfRangeError("bps", p.Bps, 0, BasisPointsDenominator)
	}
	return nil
}

// FeeQuote splits a gross payout into the fee charged by the transfer and the
// net amount the beneficiary receives.
type FeeQuote struct {
	Gross kernel.Amount
	Fee   kernel.Amount
	Net   kernel.Amount
}

// FeeCalculator quotes transfer fees. It is immutable and safe for concurrent use.
//
// Example:
//
//	calc, _ := services.NewFeeCalculator(500, services.FeePolicy{}, map[string]services.FeePolicy{
//	    "USDC": {Bps: 100},
//	})
//	quote, err := calc.Quote(usdc, gross) // 1% fee, rejected above 5%
type FeeCalculator struct {
	maxFeeBps     int64
	defaultPolicy FeePolicy
	policies      map[string]FeePolicy
}

// NewFeeCalculator creates a calculator. maxFeeBps is the slippage bound: a
// quote whose fee is above gross * maxFeeBps / 10000 is refused. Assets without
// an explicit policy use defaultPolicy.
func NewFeeCalculator(maxFeeBps int64, defaultPolicy FeePolicy, policies map[string]FeePolicy) (*FeeCalculator, error) {
	if maxFeeBps < 0 || maxFeeBps > BasisPointsDenominator {
		return nil, errs.NewValueIsOutOfRangeError("maxFeeBps", maxFeeBps, 0, BasisPointsDenominator)
	}
	if err := defaultPolicy.Validate(); err != nil {
		return nil, err
	}

	normalized := make(map[string]FeePolicy, len(policies))
	for symbol, policy := range policies {
		asset, err := kernel.NewAssetKind(symbol)
		if err != nil {
			return nil, err
		}
		if err = policy.Validate(); err != nil {
			return nil, fmt.Errorf("fee policy %s: %w", asset, err)
		}
		normalized[asset.String()] = policy
	}

	return &FeeCalculator{
		maxFeeBps:     maxFeeBps,
		defaultPolicy: defaultPolicy,
		policies:      normalized,
	}, nil
}

// MaxFeeBps returns the configured slippage bound.
func (c *FeeCalculator) MaxFeeBps() int64 {
	return c.maxFeeBps
}

// Policy returns the policy applied to asset.
func (c *FeeCalculator) Policy(asset kernel.AssetKind) FeePolicy {
	if p, ok := c.policies[asset.String()]; ok {
		return p
	}
	return c.defaultPolicy
}

// Quote computes fee and net for a gross payout of asset.
// It fails with errs.ErrTransferFeeExceeded when the fee is larger than the
// gross amount or above the slippage bound.
func (c *FeeCalculator) Quote(asset kernel.AssetKind, gross kernel.Amount) (FeeQuote, error) {
	if err := asset.Validate(); err != nil {
		return FeeQuote{}, err
	}
	if gross.IsZero() {
		return FeeQuote{Gross: gross}, nil
	}

	policy := c.Policy(asset)
	variable, err := kernel.NewAmount(mulDivFloor(gross.Units(), policy.Bps))
	if err != nil {
		return FeeQuote{}, err
	}
	fee, err := policy.FlatFee.Add(variable)
	if err != nil {
		return FeeQuote{}, err
	}

	bound := mulDivFloor(gross.Units(), c.maxFeeBps)
	if fee.GreaterThan(gross) || fee.Units() > bound {
		return FeeQuote{}, errs.NewTransferFeeExceededError(asset.String(), gross.Units(), fee.Units(), c.maxFeeBps)
	}

	net, err := gross.Sub(fee)
	if err != nil {
		return FeeQuote{}, err
	}
	return FeeQuote{Gross: gross, Fee: fee, Net: net}, nil
}

// mulDivFloor returns floor(v * bps / 10000) for non-negative v without
// overflowing int64.
func mulDivFloor(v, bps int64) int64 {
	return (v/BasisPointsDenominator)*bps + (v%BasisPointsDenominator)*bps/BasisPointsDenominator
}
