package kernel

import (
	"fmt"
	"math"
	"strconv"

	"escrow/internal/pkg/errs"
)

// Amount is a non-negative quantity of an asset expressed in minor units
// (cents, satoshis, token base units). Arithmetic is checked: results never
// overflow and never go negative.
//
// The zero value is a valid zero amount.
type Amount struct {
	units int64
}

// ZeroAmount is the additive identity.
var ZeroAmount = Amount{}

// NewAmount creates an Amount from minor units. Negative values are rejected.
func NewAmount(units int64) (Amount, error) {
	if units < 0 {
		return Amount{}, errs.NewValueIsOutOfRangeError("amount", units, 0, int64(math.MaxInt64))
	}
	return Amount{units: units}, nil
}

// NewPositiveAmount creates an Amount that must be greater than zero.
func NewPositiveAmount(paramName string, units int64) (Amount, error) {
	if units <= 0 {
		return Amount{}, errs.NewValueIsOutOfRangeError(paramName, units, 1, int64(math.MaxInt64))
	}
	return Amount{units: units}, nil
}

// SumAmounts adds all amounts, failing on overflow.
func SumAmounts(amounts ...Amount) (Amount, error) {
	total := ZeroAmount
	for _, a := range amounts {
		var err error
		if total, err = total.Add(a); err != nil {
			return Amount{}, err
		}
	}
	return total, nil
}

// Units returns the amount in minor units.
func (a Amount) Units() int64 {
	return a.units
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.units == 0
}

// Add returns a + other.
func (a Amount) Add(other Amount) (Amount, error) {
	if a.units > math.MaxInt64-other.units {
		return Amount{}, errs.NewValueIsInvalidErrorWithCause("amount",
			fmt.Errorf("%d + %d overflows", a.units, other.units))
	}
	return Amount{units: a.units + other.units}, nil
}

// Sub returns a - other. A negative result is an error.
func (a Amount) Sub(other Amount) (Amount, error) {
	if other.units > a.units {
		return Amount{}, errs.NewValueIsOutOfRangeError("amount", a.units-other.units, 0, a.units)
	}
	return Amount{units: a.units - other.units}, nil
}

// Cmp returns -1, 0 or +1 depending on whether a is less than, equal to or greater than other.
func (a Amount) Cmp(other Amount) int {
	switch {
	case a.units < other.units:
		return -1
	case a.units > other.units:
		return 1
	default:
		return 0
	}
}

// IsEqual reports whether both amounts are the same.
func (a Amount) IsEqual(other Amount) bool {
	return a.units == other.units
}

// GreaterThan reports whether a > other.
func (a Amount) GreaterThan(other Amount) bool {
	return a.units > other.units
}

func (a Amount) String() string {
	return strconv.FormatInt(a.units, 10)
}
