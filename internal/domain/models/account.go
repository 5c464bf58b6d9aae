package models

import "time"

// BalanceAccount is a registered official account holding a ledger balance
// for one (currency, bank) pair. Rows are created through registration and
// deactivated rather than deleted; balances are mutated only through the
// ledger repository.
type BalanceAccount struct {
	ID            int64     `json:"id" db:"id"`
	Currency      string    `json:"currency" db:"currency"`
	Bank          string    `json:"bank" db:"bank"`
	AccountNumber string    `json:"account_number" db:"account_number"`
	AccountName   string    `json:"account_name" db:"account_name"`
	DisplayName   *string   `json:"display_name,omitempty" db:"display_name"`
	Balance       float64   `json:"balance" db:"balance"`
	IsActive      bool      `json:"is_active" db:"is_active"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Label is the name shown in balance listings: the display name when set,
// the bank otherwise.
func (a *BalanceAccount) Label() string {
	if a.DisplayName != nil && *a.DisplayName != "" {
		return *a.DisplayName
	}
	return a.Bank
}
