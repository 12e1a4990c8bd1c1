// Package postgres provides the GORM-based Unit of Work for the escrow service.
// The Unit of Work pins every repository, the event outbox and the ledger to a
// single database transaction, so a release either moves value and records the
// new escrow state together or does neither.
//
// Key Features:
//   - Transaction management across repositories, outbox and ledger
//   - Row locks on escrows serialise concurrent mutations of one escrow
//   - Automatic rollback when a handler returns early
//   - Repository factory pattern for consistent database connections
//
// Usage Patterns:
//
//	factory := NewGormUnitOfWorkFactory(db, ports.SystemClock)
//	uow := factory.Create()
//
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	e, err := uow.EscrowRepository().GetForUpdate(ctx, escrowID)
//	if err != nil {
//	    return err
//	}
//	if _, err := uow.Ledger().Transfer(ctx, transfer); err != nil {
//	    return err
//	}
//	if err := uow.EscrowRepository().Update(ctx, e); err != nil {
//	    return err
//	}
//
//	return uow.Commit(ctx)
//
// Rollback after a successful Commit returns gorm.ErrInvalidTransaction, which
// the deferred call discards.
//
// Concurrency Considerations:
//   - Each UnitOfWork instance owns one transaction; do not share it between goroutines
//   - Load escrows with GetForUpdate before touching the ledger, in that order,
//     so concurrent handlers queue on the escrow row instead of deadlocking
package postgres

import (
	"context"

	"escrow/internal/adapters/out/postgres/disputerepo"
	"escrow/internal/adapters/out/postgres/escrowrepo"
	"escrow/internal/adapters/out/postgres/ledgerrepo"
	"escrow/internal/adapters/out/postgres/outboxrepo"
	"escrow/internal/adapters/out/postgres/workorderrepo"
	"escrow/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances using GORM database connections.
// Factory ensures each business operation gets a fresh unit of work instance
// with proper isolation from other concurrent operations.
type GormUnitOfWorkFactory struct {
	db    *gorm.DB
	clock ports.Clock
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
// The clock stamps ledger receipts.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db, ports.SystemClock)
func NewGormUnitOfWorkFactory(db *gorm.DB, clock ports.Clock) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db, clock: clock}
}

// Create produces a new UnitOfWork instance ready for business transaction management.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:    f.db,
		clock: f.clock,
	}
}

// GormUnitOfWork coordinates one database transaction for a business operation.
type GormUnitOfWork struct {
	db    *gorm.DB
	tx    *gorm.DB
	clock ports.Clock
}

// Begin initiates a new database transaction for the unit of work.
// Multiple calls to Begin on the same instance are safe and will not create nested transactions.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	tx := uow.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalizes all changes made within the current transaction.
// After commit, the transaction is closed and cannot be reused.
//
// Returns error if no active transaction exists or if the commit operation fails.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards all changes made within the current transaction.
//
// Returns error if no active transaction exists or if the rollback operation fails.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// WorkOrderRepository provides work order persistence within the unit of work.
func (uow *GormUnitOfWork) WorkOrderRepository() ports.WorkOrderRepository {
	return workorderrepo.NewGormWorkOrderRepository(uow.conn())
}

// EscrowRepository provides escrow persistence within the unit of work.
func (uow *GormUnitOfWork) EscrowRepository() ports.EscrowRepository {
	return escrowrepo.NewGormEscrowRepository(uow.conn())
}

// DisputeRepository provides dispute persistence within the unit of work.
func (uow *GormUnitOfWork) DisputeRepository() ports.DisputeRepository {
	return disputerepo.NewGormDisputeRepository(uow.conn())
}

// EventOutbox appends audit events within the unit of work.
func (uow *GormUnitOfWork) EventOutbox() ports.EventOutbox {
	return outboxrepo.NewGormEventOutbox(uow.conn())
}

// Ledger returns the ledger bound to the current transaction.
func (uow *GormUnitOfWork) Ledger() ports.Ledger {
	return ledgerrepo.NewGormLedger(uow.conn(), uow.clock)
}

// Treasury returns the deposit side of the ledger bound to the current transaction.
func (uow *GormUnitOfWork) Treasury() ports.Treasury {
	return ledgerrepo.NewGormLedger(uow.conn(), uow.clock)
}

// conn returns the active transaction, or the base connection when Begin has
// not been called.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
