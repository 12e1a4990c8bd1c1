// Package errs provides the error types shared by the escrow service.
//
// Two families live here:
//   - generic validation errors (ValueIsRequiredError, ValueIsInvalidError,
//     ValueIsOutOfRangeError, ObjectNotFoundError); the first three also match
//     ErrInvalidParameters through errors.Is
//   - the escrow taxonomy (ErrInvalidWorkOrderStatus, ErrUnauthorizedAccess,
//     ErrInsufficientFunds, ErrTransferFeeExceeded, ErrAlreadyReleased,
//     ErrEscrowDisputed, ErrEscrowExpired, ErrDisputeAllocationMismatch) and
//     ErrCorruptedState for records that fail invariant checks on load
//
// Each error type follows the same pattern:
//   - a sentinel error variable
//   - a struct type with the error details
//   - a constructor (and a WithCause variant where a cause makes sense)
//   - Error() for formatting and Unwrap() returning the sentinel
package errs
