package workorder

import (
	"fmt"

	"escrow/internal/pkg/errs"
)

// Status is the lifecycle state of a work order.
type Status int

const (
	// Unknown catches uninitialised values.
	Unknown Status = iota
	Created
	Open
	Submitted
	InProgress
	Approved
	Completed
	Cancelled
)

const entityName = "work order"

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:    "Unknown",
		Created:    "Created",
		Open:       "Open",
		Submitted:  "Submitted",
		InProgress: "InProgress",
		Approved:   "Approved",
		Completed:  "Completed",
		Cancelled:  "Cancelled",
	}
}

// Validate checks that s is one of the seven lifecycle states.
func (s Status) Validate() error {
	if s <= Unknown || s > Cancelled {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String implements fmt.Stringer.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "Unknown"
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

// Open moves a freshly funded work order to Open.
func (s Status) Open() (Status, error) {
	if s != Created {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "open")
	}
	return Open, nil
}

// Submit handles both the first submission and a resubmission after rejection.
func (s Status) Submit() (Status, error) {
	if s != Open && s != InProgress {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "submit delivery")
	}
	return Submitted, nil
}

// Approve accepts the submitted delivery.
func (s Status) Approve() (Status, error) {
	if s != Submitted {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "approve delivery")
	}
	return Approved, nil
}

// Reject sends the submitted delivery back for rework.
func (s Status) Reject() (Status, error) {
	if s != Submitted {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "reject delivery")
	}
	return InProgress, nil
}

// Complete finishes an approved work order.
func (s Status) Complete() (Status, error) {
	if s != Approved {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "complete")
	}
	return Completed, nil
}

// Settle finishes a work order whose escrow was drained without a delivery
// approval (all milestones released, or the release authority paid out).
func (s Status) Settle() (Status, error) {
	switch s {
	case Open, Submitted, InProgress:
		return Completed, nil
	default:
		return Unknown, errs.NewInvalidStatusError(entityName, s, "settle")
	}
}

// Cancel is the requester-driven exit. It is refused once work is under
// review or approved.
func (s Status) Cancel() (Status, error) {
	switch s {
	case Created, Open, Submitted:
		return Cancelled, nil
	default:
		return Unknown, errs.NewInvalidStatusError(entityName, s, "cancel")
	}
}

// Expire is the scheduler-driven exit for work orders that never received a
// delivery. Work under review or in rework is left to the parties.
func (s Status) Expire() (Status, error) {
	switch s {
	case Created, Open:
		return Cancelled, nil
	default:
		return Unknown, errs.NewInvalidStatusError(entityName, s, "expire")
	}
}

// ResolveDispute forces any live work order to Completed.
func (s Status) ResolveDispute() (Status, error) {
	if s.IsTerminal() || s.Validate() != nil {
		return Unknown, errs.NewInvalidStatusError(entityName, s, "resolve dispute")
	}
	return Completed, nil
}
