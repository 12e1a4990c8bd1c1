package commands

import (
	"errors"
	"strings"

	"escrow/internal/core/domain/model/kernel"
	"escrow/internal/pkg/errs"
	"escrow/internal/pkg/guard"
)

var (
	ErrDepositCommandIsNotConstructed = errors.New(
		"DepositCommand must be created via NewDepositCommand constructor",
	)
)

// DepositCommand credits an account with funds arriving from outside the
// ledger, such as a settled bank transfer. Key makes retries safe.
type DepositCommand struct { //nolint:recvcheck //using for validation
	caller  kernel.Actor
	account kernel.Actor
	asset   kernel.AssetKind
	amount  kernel.Amount
	key     string

	guard guard.ConstructorGuard
}

// NewDepositCommand creates a deposit of amount into account. The key makes
// retries idempotent and must not be blank.
func NewDepositCommand(
	caller, account kernel.Actor,
	asset kernel.AssetKind,
	amount kernel.Amount,
	key string,
) (DepositCommand, error) {
	if err := errors.Join(caller.Validate(), account.Validate(), asset.Validate()); err != nil {
		return DepositCommand{}, err
	}
	if amount.IsZero() {
		return DepositCommand{}, errs.NewValueIsOutOfRangeError("amount", 0, 1, "max int64")
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return DepositCommand{}, errs.NewValueIsRequiredError("key")
	}
	return DepositCommand{
		caller:  caller,
		account: account,
		asset:   asset,
		amount:  amount,
		key:     key,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c DepositCommand) Validate() error {
	return c.guard.Validate(ErrDepositCommandIsNotConstructed)
}

func (c DepositCommand) Caller() kernel.Actor { return c.caller }
func (c DepositCommand) Account() kernel.Actor { return c.account }
func (c DepositCommand) Asset() kernel.AssetKind { return c.asset }
func (c DepositCommand) Amount() kernel.Amount { return c.amount }
func (c DepositCommand) Key() string { return c.key }
