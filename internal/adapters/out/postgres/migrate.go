package postgres

import (
	"escrow/internal/adapters/out/postgres/disputerepo"
	"escrow/internal/adapters/out/postgres/escrowrepo"
	"escrow/internal/adapters/out/postgres/ledgerrepo"
	"escrow/internal/adapters/out/postgres/oraclerepo"
	"escrow/internal/adapters/out/postgres/outboxrepo"
	"escrow/internal/adapters/out/postgres/workorderrepo"

	"gorm.io/gorm"
)

// Migrate creates or updates every table the service owns.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&workorderrepo.WorkOrderDTO{},
		&escrowrepo.EscrowDTO{},
		&escrowrepo.MilestoneDTO{},
		&disputerepo.DisputeDTO{},
		&outboxrepo.EventDTO{},
		&ledgerrepo.BalanceDTO{},
		&ledgerrepo.TransferDTO{},
		&oraclerepo.AttestationDTO{},
	)
}
