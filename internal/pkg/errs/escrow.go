package errs

import (
	"errors"
	"fmt"
	"time"
)

// Escrow taxonomy. Every error returned by the escrow core unwraps to exactly one
// of these sentinels, so callers can branch with errors.Is.
var (
	ErrInvalidParameters         = errors.New("invalid parameters")
	ErrInvalidWorkOrderStatus    = errors.New("invalid work order status")
	ErrUnauthorizedAccess        = errors.New("unauthorized access")
	ErrInsufficientFunds         = errors.New("insufficient funds")
	ErrTransferFeeExceeded       = errors.New("transfer fee exceeded")
	ErrAlreadyReleased           = errors.New("already released")
	ErrEscrowDisputed            = errors.New("escrow disputed")
	ErrEscrowExpired             = errors.New("escrow expired")
	ErrDisputeAllocationMismatch = errors.New("dispute allocation mismatch")

	// ErrCorruptedState marks stored records that violate an invariant. It is kept
	// apart from ErrInvalidParameters: the request was fine, the data is not.
	ErrCorruptedState = errors.New("corrupted state")
)

// InvalidStatusError reports an action attempted from a status that does not allow it.
type InvalidStatusError struct {
	Entity string
	Status string
	Action string
}

// NewInvalidStatusError creates an InvalidStatusError.
func NewInvalidStatusError(entity string, status fmt.Stringer, action string) *InvalidStatusError {
	return &InvalidStatusError{
		Entity: entity,
		Status: status.String(),
		Action: action,
	}
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("%s: %s in status %s cannot %s", ErrInvalidWorkOrderStatus, e.Entity, e.Status, e.Action)
}

func (e *InvalidStatusError) Unwrap() error {
	return ErrInvalidWorkOrderStatus
}

// UnauthorizedAccessError reports a caller lacking the role an action requires.
type UnauthorizedAccessError struct {
	Actor  string
	Action string
}

// NewUnauthorizedAccessError creates an UnauthorizedAccessError.
func NewUnauthorizedAccessError(actor, action string) *UnauthorizedAccessError {
	return &UnauthorizedAccessError{Actor: actor, Action: action}
}

func (e *UnauthorizedAccessError) Error() string {
	return fmt.Sprintf("%s: %q may not %s", ErrUnauthorizedAccess, e.Actor, e.Action)
}

func (e *UnauthorizedAccessError) Unwrap() error {
	return ErrUnauthorizedAccess
}

// InsufficientFundsError reports an account that cannot cover a debit.
type InsufficientFundsError struct {
	Account   string
	Available int64
	Required  int64
}

// NewInsufficientFundsError creates an InsufficientFundsError.
func NewInsufficientFundsError(account string, available, required int64) *InsufficientFundsError {
	return &InsufficientFundsError{Account: account, Available: available, Required: required}
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: account %s holds %d, needs %d", ErrInsufficientFunds, e.Account, e.Available, e.Required)
}

func (e *InsufficientFundsError) Unwrap() error {
	return ErrInsufficientFunds
}

// TransferFeeExceededError reports a transfer fee above the configured slippage bound.
type TransferFeeExceededError struct {
	Asset     string
	Gross     int64
	Fee       int64
	MaxFeeBps int64
}

// NewTransferFeeExceededError creates a TransferFeeExceededError.
func NewTransferFeeExceededError(asset string, gross, fee, maxFeeBps int64) *TransferFeeExceededError {
	return &TransferFeeExceededError{Asset: asset, Gross: gross, Fee: fee, MaxFeeBps: maxFeeBps}
}

func (e *TransferFeeExceededError) Error() string {
	return fmt.Sprintf("%s: fee %d on %d %s exceeds bound of %d bps",
		ErrTransferFeeExceeded, e.Fee, e.Gross, e.Asset, e.MaxFeeBps)
}

func (e *TransferFeeExceededError) Unwrap() error {
	return ErrTransferFeeExceeded
}

// AlreadyReleasedError reports a second release of something already paid out.
type AlreadyReleasedError struct {
	ParamName string
	ID        string
}

// NewAlreadyReleasedError creates an AlreadyReleasedError.
func NewAlreadyReleasedError(paramName, id string) *AlreadyReleasedError {
	return &AlreadyReleasedError{ParamName: paramName, ID: id}
}

func (e *AlreadyReleasedError) Error() string {
	return fmt.Sprintf("%s: %s %s", ErrAlreadyReleased, e.ParamName, e.ID)
}

func (e *AlreadyReleasedError) Unwrap() error {
	return ErrAlreadyReleased
}

// EscrowDisputedError reports a release attempted while a dispute is unresolved.
type EscrowDisputedError struct {
	EscrowID  string
	DisputeID string
}

// NewEscrowDisputedError creates an EscrowDisputedError.
func NewEscrowDisputedError(escrowID, disputeID string) *EscrowDisputedError {
	return &EscrowDisputedError{EscrowID: escrowID, DisputeID: disputeID}
}

func (e *EscrowDisputedError) Error() string {
	return fmt.Sprintf("%s: escrow %s is frozen by dispute %s", ErrEscrowDisputed, e.EscrowID, e.DisputeID)
}

func (e *EscrowDisputedError) Unwrap() error {
	return ErrEscrowDisputed
}

// EscrowExpiredError reports an action attempted after the escrow expiry.
type EscrowExpiredError struct {
	EscrowID  string
	ExpiredAt time.Time
}

// NewEscrowExpiredError creates an EscrowExpiredError.
func NewEscrowExpiredError(escrowID string, expiredAt time.Time) *EscrowExpiredError {
	return &EscrowExpiredError{EscrowID: escrowID, ExpiredAt: expiredAt}
}

func (e *EscrowExpiredError) Error() string {
	return fmt.Sprintf("%s: escrow %s expired at %s", ErrEscrowExpired, e.EscrowID, e.ExpiredAt.UTC().Format(time.RFC3339))
}

func (e *EscrowExpiredError) Unwrap() error {
	return ErrEscrowExpired
}

// AllocationMismatchError reports a dispute split that does not cover the disputed remainder exactly.
type AllocationMismatchError struct {
	Allocated int64
	Remainder int64
}

// NewAllocationMismatchError creates an AllocationMismatchError.
func NewAllocationMismatchError(allocated, remainder int64) *AllocationMismatchError {
	return &AllocationMismatchError{Allocated: allocated, Remainder: remainder}
}

func (e *AllocationMismatchError) Error() string {
	return fmt.Sprintf("%s: allocation sums to %d, disputed remainder is %d",
		ErrDisputeAllocationMismatch, e.Allocated, e.Remainder)
}

func (e *AllocationMismatchError) Unwrap() error {
	return ErrDisputeAllocationMismatch
}

// InvariantViolationError reports a stored record that breaks an invariant.
type InvariantViolationError struct {
	Entity string
	ID     string
	Cause  error
}

// NewInvariantViolationError creates an InvariantViolationError.
func NewInvariantViolationError(entity, id string, cause error) *InvariantViolationError {
	return &InvariantViolationError{Entity: entity, ID: id, Cause: cause}
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("%s: %s %s: %v", ErrCorruptedState, e.Entity, e.ID, e.Cause)
}

func (e *InvariantViolationError) Unwrap() error {
	return ErrCorruptedState
}
