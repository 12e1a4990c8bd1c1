// Package ledgerrepo is a double-entry balance ledger stored next to the
// escrow tables, so transfers commit atomically with escrow state.
package ledgerrepo

import (
	"time"

	"github.com/google/uuid"
)

// BalanceDTO is one account balance per asset.
type BalanceDTO struct {
	Account string `gorm:"type:varchar(160);primaryKey"`
	Asset   string `gorm:"type:varchar(12);primaryKey"`
	Balance int64  `gorm:"not null"`
}

// TableName overrides GORM's default "balance_dtos".
func (BalanceDTO) TableName() string {
	return "ledger_balances"
}

// TransferDTO records a committed transfer. Key is unique, which makes replays detectable.
type TransferDTO struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Key        string    `gorm:"column:transfer_key;type:varchar(200);not null;uniqueIndex"`
	From       string    `gorm:"column:from_account;type:varchar(160);not null;index"`
	To         string    `gorm:"column:to_account;type:varchar(160);not null;index"`
	Asset      string    `gorm:"type:varchar(12);not null"`
	Amount     int64     `gorm:"not null"`
	Memo       string    `gorm:"type:varchar(256)"`
	ExecutedAt time.Time `gorm:"not null"`
}

// TableName overrides GORM's default "transfer_dtos".
func (TransferDTO) TableName() string {
	return "ledger_transfers"
}
