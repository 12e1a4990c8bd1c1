// Package commands contains business operations that modify escrow state.
// Implements the Command pattern for the write side of the service.
// Every handler follows the same shape: validate the command, open a unit of
// work, lock the escrow row, apply the domain transition, move value through
// the ledger, append audit events and commit.
package commands

import (
	"context"

	"escrow/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Everything handed out by one unit of work shares its transaction, so ledger
// legs and state changes commit or roll back together.
type (
	// TxManager handles database transaction lifecycle.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// WorkOrderRepoFactory provides access to the work order repository within a transaction.
	WorkOrderRepoFactory interface {
		WorkOrderRepository() ports.WorkOrderRepository
	}

	// EscrowRepoFactory provides access to the escrow repository within a transaction.
	EscrowRepoFactory interface {
		EscrowRepository() ports.EscrowRepository
	}

	// DisputeRepoFactory provides access to the dispute repository within a transaction.
	DisputeRepoFactory interface {
		DisputeRepository() ports.DisputeRepository
	}

	// OutboxFactory provides the event outbox within a transaction.
	OutboxFactory interface {
		EventOutbox() ports.EventOutbox
	}

	// LedgerFactory provides the ledger bound to the transaction.
	LedgerFactory interface {
		Ledger() ports.Ledger
	}

	// TreasuryFactory provides the deposit side of the ledger within a transaction.
	TreasuryFactory interface {
		Treasury() ports.Treasury
	}

	// ReleaseUoW is what the release executor needs from a unit of work.
	// It never begins or commits; the calling handler owns the transaction.
	ReleaseUoW interface {
		WorkOrderRepoFactory
		EscrowRepoFactory
		OutboxFactory
		LedgerFactory
	}

	// UoW manages transactions across work orders, escrows, disputes, the
	// outbox and the ledger.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   e, err := uow.EscrowRepository().GetForUpdate(ctx, escrowID)
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	UoW interface {
		TxManager
		WorkOrderRepoFactory
		EscrowRepoFactory
		DisputeRepoFactory
		OutboxFactory
		LedgerFactory
		TreasuryFactory
	}

	// UoWFactory creates new unit of work instances.
	UoWFactory interface {
		Create() UoW
	}
)
