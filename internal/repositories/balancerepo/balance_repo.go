package balancerepo

import (
	"context"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// IBalanceRepository is the ledger store: durable per-(currency, bank)
// balances over the registered official accounts.
type IBalanceRepository interface {
	// GetBalance returns the total balance held across active accounts for
	// the (currency, bank) pair. Unknown pairs read as 0.
	GetBalance(ctx context.Context, currency, bank string) (float64, error)

	// AdjustBalance applies a relative change to a single account row, so
	// the summed balance moves by exactly delta even when several active
	// accounts share the pair. When no active account matches it logs a
	// warning and leaves the ledger untouched.
	AdjustBalance(ctx context.Context, currency, bank string, delta float64) error

	// SetBalance overwrites the summed balance for the pair; sibling
	// account rows are zeroed so a following GetBalance reads exactly
	// value. Same miss behavior as AdjustBalance.
	SetBalance(ctx context.Context, currency, bank string, value float64) error

	// ListBalances returns active accounts ordered by currency then bank.
	ListBalances(ctx context.Context) ([]*models.BalanceAccount, error)

	// ListAccounts returns active accounts, optionally filtered by
	// currency, ordered by currency then bank.
	ListAccounts(ctx context.Context, currency string) ([]*models.BalanceAccount, error)

	// RegisterAccount inserts a new official account with a zero balance.
	// Duplicate registration under the (currency, bank, account number)
	// uniqueness constraint is logged and ignored.
	RegisterAccount(ctx context.Context, currency, bank, accountNumber, accountName string, displayName *string) error

	// Deactivate retires an account. It stays on record but stops matching
	// and stops being listed.
	Deactivate(ctx context.Context, accountID int64) error

	// UpdateDisplayName changes the listing label of an account.
	UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error

	// CountAccounts reports how many accounts exist, active or not. Used
	// to decide whether to seed initial balances.
	CountAccounts(ctx context.Context) (int, error)
}
