package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Every repository and the
// ledger it hands out are bound to the same transaction, so balance movements
// and state changes commit or roll back together.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	Rollback(ctx context.Context) error

	WorkOrderRepository() WorkOrderRepository
	EscrowRepository() EscrowRepository
	DisputeRepository() DisputeRepository
	EventOutbox() EventOutbox

	// Ledger returns the value-transfer ledger bound to the current transaction.
	Ledger() Ledger

	// Treasury is the same ledger seen from the deposit side.
	Treasury() Treasury
}
