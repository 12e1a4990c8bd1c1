package ports

import (
	"context"
	"time"

	"escrow/internal/core/domain/model/kernel"
)

// Transfer is one leg of value movement between two ledger accounts.
// Key makes the transfer idempotent: replaying a key returns the original
// receipt without moving value again.
type Transfer struct {
	Key    string
	From   string
	To     string
	Asset  kernel.AssetKind
	Amount kernel.Amount
	Memo   string
}

// Receipt confirms a committed transfer.
type Receipt struct {
	ID         kernel.UUID
	Key        string
	ExecutedAt time.Time
}

// CustodyAccount names the ledger account holding an escrow's funds.
func CustodyAccount(escrowID kernel.UUID) string {
	return "escrow:" + escrowID.String()
}

// Ledger is the value-transfer primitive. Implementations fail with
// errs.ErrInsufficientFunds or errs.ErrTransferFeeExceeded; other failures
// are returned as-is and leave balances unchanged.
type Ledger interface {
	Transfer(ctx context.Context, transfer Transfer) (Receipt, error)
}

// Treasury credits funds entering the ledger from outside and reads balances.
type Treasury interface {
	Deposit(ctx context.Context, account string, asset kernel.AssetKind, amount kernel.Amount, key string) (Receipt, error)
	Balance(ctx context.Context, account string, asset kernel.AssetKind) (kernel.Amount, error)
}
