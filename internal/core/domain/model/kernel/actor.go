package kernel

import (
	"fmt"
	"strings"

	"escrow/internal/pkg/errs"
)

const maxActorLength = 128

// ErrActorIsNotConstructed indicates a zero-value Actor.
var ErrActorIsNotConstructed = errs.NewValueIsRequiredError("actor must be created via NewActor")

// Actor is the identity of an already-authenticated caller. Signature and
// session checks happen upstream; the core only compares identities.
type Actor struct {
	id string
}

// schedulerActor is the identity used by polling jobs (auto-release, expiry).
var schedulerActor = Actor{id: "system:scheduler"}

// NewActor creates an Actor from a non-empty identity.
func NewActor(id string) (Actor, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return Actor{}, errs.NewValueIsRequiredError("actor")
	}
	if len(trimmed) > maxActorLength {
		return Actor{}, errs.NewValueIsInvalidErrorWithCause("actor",
			fmt.Errorf("identity longer than %d characters", maxActorLength))
	}
	return Actor{id: trimmed}, nil
}

// SchedulerActor returns the identity recorded for scheduler-triggered transitions.
func SchedulerActor() Actor {
	return schedulerActor
}

func (a Actor) String() string {
	return a.id
}

// IsEqual reports whether both actors are the same identity.
func (a Actor) IsEqual(other Actor) bool {
	return a.id != "" && a.id == other.id
}

// IsZero reports whether the actor is unset.
func (a Actor) IsZero() bool {
	return a.id == ""
}

// Validate returns ErrActorIsNotConstructed for the zero value.
func (a Actor) Validate() error {
	if a.id == "" {
		return ErrActorIsNotConstructed
	}
	return nil
}
