// Package guard lets value objects, commands and queries detect whether they were
// built through their constructor or are an unvalidated zero value.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded in types whose invariants are established by a
// constructor. The zero value reports "not constructed".
//
// Example:
//
//	var ErrReleaseFundsCommandIsNotConstructed = errors.New("ReleaseFundsCommand must be created via NewReleaseFundsCommand")
//
//	type ReleaseFundsCommand struct {
//	    escrowID kernel.UUID
//	    amount   kernel.Amount
//	    guard    guard.ConstructorGuard
//	}
//
//	func (c ReleaseFundsCommand) Validate() error {
//	    return c.guard.Validate(ErrReleaseFundsCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard returns a guard marked as constructed.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// if the guard is a zero value, and nil otherwise.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
