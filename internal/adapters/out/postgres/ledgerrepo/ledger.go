package ledgerrepo

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/core/ports"
	"escrow/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepositAccount is the counter-account of funds entering the ledger from outside.
const DepositAccount = "external:deposit"

// GormLedger implements ports.Ledger on two tables: balances keyed by
// (account, asset) and an append-only transfer journal.
type GormLedger struct {
	db    *gorm.DB
	clock ports.Clock
}

// NewGormLedger creates a ledger bound to db, usually a transaction.
func NewGormLedger(db *gorm.DB, clock ports.Clock) *GormLedger {
	return &GormLedger{db: db, clock: clock}
}

// Transfer moves value from one account to another. Replaying a key with the
// same parameters returns the original receipt; reusing it for a different
// transfer is rejected.
func (l *GormLedger) Transfer(ctx context.Context, t ports.Transfer) (ports.Receipt, error) {
	if err := validateTransfer(t); err != nil {
		return ports.Receipt{}, err
	}

	db := l.db.WithContext(ctx)
	if receipt, found, err := l.replay(db, t); err != nil || found {
		return receipt, err
	}

	if err := l.debit(db, t.From, t.Asset.String(), t.Amount.Units()); err != nil {
		return ports.Receipt{}, err
	}
	if err := l.credit(db, t.To, t.Asset.String(), t.Amount.Units()); err != nil {
		return ports.Receipt{}, err
	}
	return l.journal(db, t)
}

// Deposit credits account with funds from outside the ledger. It is keyed
// like Transfer, so retried deposits are applied once.
func (l *GormLedger) Deposit(
	ctx context.Context,
	account string,
	asset kernel.AssetKind,
	amount kernel.Amount,
	key string,
) (ports.Receipt, error) {
	t := ports.Transfer{Key: key, From: DepositAccount, To: account, Asset: asset, Amount: amount, Memo: "deposit"}
	if err := validateTransfer(t); err != nil {
		return ports.Receipt{}, err
	}

	db := l.db.WithContext(ctx)
	if receipt, found, err := l.replay(db, t); err != nil || found {
		return receipt, err
	}
	if err := l.credit(db, account, asset.String(), amount.Units()); err != nil {
		return ports.Receipt{}, err
	}
	return l.journal(db, t)
}

// Balance returns the balance of account in asset; unknown accounts hold zero.
func (l *GormLedger) Balance(ctx context.Context, account string, asset kernel.AssetKind) (kernel.Amount, error) {
	units, err := l.balance(l.db.WithContext(ctx), account, asset.String())
	if err != nil {
		return kernel.Amount{}, err
	}
	return kernel.NewAmount(units)
}

func (l *GormLedger) replay(db *gorm.DB, t ports.Transfer) (ports.Receipt, bool, error) {
	var prior TransferDTO
	err := db.Where("transfer_key = ?", t.Key).Take(&prior).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Receipt{}, false, nil
	}
	if err != nil {
		return ports.Receipt{}, false, err
	}

	if prior.From != t.From || prior.To != t.To || prior.Asset != t.Asset.String() || prior.Amount != t.Amount.Units() {
		return ports.Receipt{}, true, errs.NewValueIsInvalidErrorWithCause("transfer.key",
			fmt.Errorf("key %q already used for a different transfer", t.Key))
	}
	id, err := kernel.UUIDFromBytes(prior.ID[:])
	if err != nil {
		return ports.Receipt{}, true, err
	}
	return ports.Receipt{ID: id, Key: prior.Key, ExecutedAt: prior.ExecutedAt.UTC()}, true, nil
}

// debit subtracts units only when the balance covers them, in one statement.
func (l *GormLedger) debit(db *gorm.DB, account, asset string, units int64) error {
	result := db.Model(&BalanceDTO{}).
		Where("account = ? AND asset = ? AND balance >= ?", account, asset, units).
		Update("balance", gorm.Expr("balance - ?", units))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	available, err := l.balance(db, account, asset)
	if err != nil {
		return err
	}
	return errs.NewInsufficientFundsError(account, available, units)
}

func (l *GormLedger) credit(db *gorm.DB, account, asset string, units int64) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "account"}, {Name: "asset"}},
		DoUpdates: clause.Assignments(map[string]any{"balance": gorm.Expr("ledger_balances.balance + ?", units)}),
	}).Create(&BalanceDTO{Account: account, Asset: asset, Balance: units}).Error
}

func (l *GormLedger) balance(db *gorm.DB, account, asset string) (int64, error) {
	var row BalanceDTO
	err := db.Where("account = ? AND asset = ?", account, asset).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return row.Balance, nil
}

func (l *GormLedger) journal(db *gorm.DB, t ports.Transfer) (ports.Receipt, error) {
	id := kernel.NewUUID()
	now := l.clock.Now().UTC()
	row := TransferDTO{
		ID:         id.Bytes(),
		Key:        t.Key,
		From:       t.From,
		To:         t.To,
		Asset:      t.Asset.String(),
		Amount:     t.Amount.Units(),
		Memo:       t.Memo,
		ExecutedAt: now,
	}
	if err := db.Create(&row).Error; err != nil {
		return ports.Receipt{}, err
	}
	return ports.Receipt{ID: id, Key: t.Key, ExecutedAt: now}, nil
}

func validateTransfer(t ports.Transfer) error {
	var keyErr, fromErr, toErr, sameErr, amountErr error
	if strings.TrimSpace(t.Key) == "" {
		keyErr = errs.NewValueIsRequiredError("transfer.key")
	}
	if strings.TrimSpace(t.From) == "" {
		fromErr = errs.NewValueIsRequiredError("transfer.from")
	}
	if strings.TrimSpace(t.To) == "" {
		toErr = errs.NewValueIsRequiredError("transfer.to")
	}
	if t.From != "" && t.From == t.To {
		sameErr = errs.NewValueIsInvalidErrorWithCause("transfer.to", errors.New("source and destination are the same account"))
	}
	if t.Amount.IsZero() {
		amountErr = errs.NewValueIsOutOfRangeError("transfer.amount", 0, 1, int64(math.MaxInt64))
	}
	return errors.Join(keyErr, fromErr, toErr, sameErr, amountErr, t.Asset.Validate())
}
