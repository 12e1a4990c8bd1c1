package escrow

import (
	"fmt"

	"escrow/internal/pkg/errs"
)

// Status is the custody state of an escrow.
type Status int

const (
	StatusUnknown Status = iota
	// Funded escrows still hold an unreleased remainder.
	Funded
	// Released escrows paid out the full total.
	Released
	// Refunded escrows returned their remainder to the requester.
	Refunded
)

func (s Status) String() string {
	switch s {
	case Funded:
		return "Funded"
	case Released:
		return "Released"
	case Refunded:
		return "Refunded"
	default:
		return "Unknown"
	}
}

// Validate rejects Unknown and out-of-range escrow statuses.
func (s Status) Validate() error {
	if s < Funded || s > Refunded {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid escrow status", s))
	}
	return nil
}

// MilestoneStatus is the approval state of a single milestone.
type MilestoneStatus int

const (
	MilestoneUnknown MilestoneStatus = iota
	MilestonePending
	MilestoneSubmitted
	MilestoneApproved
	MilestoneDisputed
	MilestoneReleased
)

func (s MilestoneStatus) String() string {
	switch s {
	case MilestonePending:
		return "Pending"
	case MilestoneSubmitted:
		return "Submitted"
	case MilestoneApproved:
		return "Approved"
	case MilestoneDisputed:
		return "Disputed"
	case MilestoneReleased:
		return "Released"
	default:
		return "Unknown"
	}
}

// Validate rejects Unknown and out-of-range milestone statuses.
func (s MilestoneStatus) Validate() error {
	if s < MilestonePending || s > MilestoneReleased {
		return errs.NewValueIsInvalidErrorWithCause("milestone status is invalid",
			fmt.Errorf("%d is not a valid milestone status", s))
	}
	return nil
}
