package dispute

import (
	"fmt"

	"escrow/internal/pkg/errs"
)

// Status is the dispute sub-lifecycle state.
type Status int

const (
	StatusUnknown Status = iota
	StatusOpen
	StatusResponded
	StatusResolved
)

// String returns the status name used in read models and events.
func (s Status) String() string {
	switch s {
	case StatusOpen:
		return "Open"
	case StatusResponded:
		return "Responded"
	case StatusResolved:
		return "Resolved"
	default:
		return "Unknown"
	}
}

// Validate rejects Unknown and out-of-range values.
func (s Status) Validate() error {
	if s < StatusOpen || s > StatusResolved {
		return errs.NewValueIsInvalidErrorWithCause("status is invalid", fmt.Errorf("%d is not a valid dispute status", s))
	}
	return nil
}

// IsActive reports whether the dispute still blocks releases.
func (s Status) IsActive() bool {
	return s == StatusOpen || s == StatusResponded
}

// Mode records how a dispute was resolved.
type Mode int

const (
	ModeNone Mode = iota
	ModeArbitration
	ModeMutual
)

// String returns "none", "arbitration" or "mutual".
func (m Mode) String() string {
	switch m {
	case ModeArbitration:
		return "arbitration"
	case ModeMutual:
		return "mutual"
	default:
		return "none"
	}
}
