package dispute

import (
	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
)

// Allocation splits a disputed remainder between the parties and the arbitrator.
type Allocation struct {
	toRequester  kernel.Amount
	toFulfiller  kernel.Amount
	toArbitrator kernel.Amount
}

// NewAllocation builds an allocation; all three shares are non-negative by
// construction of kernel.Amount.
func NewAllocation(toRequester, toFulfiller, toArbitrator kernel.Amount) Allocation {
	return Allocation{
		toRequester:  toRequester,
		toFulfiller:  toFulfiller,
		toArbitrator: toArbitrator,
	}
}

// ToRequester is the share refunded to the requester.
func (a Allocation) ToRequester() kernel.Amount { return a.toRequester }

// ToFulfiller is the share paid to the fulfiller.
func (a Allocation) ToFulfiller() kernel.Amount { return a.toFulfiller }

// ToArbitrator is the arbitration fee paid to the designated arbitrator.
func (a Allocation) ToArbitrator() kernel.Amount { return a.toArbitrator }

// Total sums the three shares.
func (a Allocation) Total() (kernel.Amount, error) {
	return kernel.SumAmounts(a.toRequester, a.toFulfiller, a.toArbitrator)
}

// Matches returns errs.AllocationMismatchError unless the shares add up to remainder exactly.
func (a Allocation) Matches(remainder kernel.Amount) error {
	total, err := a.Total()
	if err != nil {
		return err
	}
	if !total.IsEqual(remainder) {
		return errs.NewAllocationMismatchError(total.Units(), remainder.Units())
	}
	return nil
}
