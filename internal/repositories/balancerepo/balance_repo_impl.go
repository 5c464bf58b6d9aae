package balancerepo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/internal/infrastructure/database"
)

type balanceRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) IBalanceRepository {
	return &balanceRepository{
		db:     db.Db,
		logger: logger.With().Str("component", "balance_repository").Logger(),
	}
}

func (r *balanceRepository) GetBalance(ctx context.Context, currency, bank string) (float64, error) {
	var balance float64
	err := r.db.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(balance), 0)
		FROM balance_accounts
		WHERE currency = $1 AND bank = $2 AND is_active`,
		currency, bank,
	).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return balance, nil
}

// AdjustBalance targets exactly one account row even when several active
// accounts share the (currency, bank) pair, so the summed balance read by
// GetBalance moves by exactly delta.
func (r *balanceRepository) AdjustBalance(ctx context.Context, currency, bank string, delta float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE balance_accounts
		SET balance = balance + $3, updated_at = NOW()
		WHERE id = (
			SELECT id FROM balance_accounts
			WHERE currency = $1 AND bank = $2 AND is_active
			ORDER BY id
			LIMIT 1
		)`,
		currency, bank, delta,
	)
	if err != nil {
		return fmt.Errorf("failed to adjust balance: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		r.logger.Warn().
			Str("currency", currency).
			Str("bank", bank).
			Float64("delta", delta).
			Msg("Balance adjustment skipped, no active account")
		return nil
	}

	r.logger.Info().
		Str("currency", currency).
		Str("bank", bank).
		Float64("delta", delta).
		Msg("Balance adjusted")
	return nil
}

// SetBalance overwrites the summed (currency, bank) balance: the first
// account row takes the value and any sibling rows are zeroed, so a
// following GetBalance reads exactly value.
func (r *balanceRepository) SetBalance(ctx context.Context, currency, bank string, value float64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE balance_accounts
		SET balance = CASE WHEN id = (
				SELECT id FROM balance_accounts
				WHERE currency = $1 AND bank = $2 AND is_active
				ORDER BY id
				LIMIT 1
			) THEN $3 ELSE 0 END,
			updated_at = NOW()
		WHERE currency = $1 AND bank = $2 AND is_active`,
		currency, bank, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set balance: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		r.logger.Warn().
			Str("currency", currency).
			Str("bank", bank).
			Float64("value", value).
			Msg("Balance overwrite skipped, no active account")
		return nil
	}

	r.logger.Info().
		Str("currency", currency).
		Str("bank", bank).
		Float64("value", value).
		Msg("Balance set")
	return nil
}

func (r *balanceRepository) ListBalances(ctx context.Context) ([]*models.BalanceAccount, error) {
	return r.list(ctx, `
		SELECT id, currency, bank, account_number, account_name, display_name,
		       balance, is_active, created_at, updated_at
		FROM balance_accounts
		WHERE is_active
		ORDER BY currency, bank`)
}

func (r *balanceRepository) ListAccounts(ctx context.Context, currency string) ([]*models.BalanceAccount, error) {
	if currency == "" {
		return r.ListBalances(ctx)
	}
	return r.list(ctx, `
		SELECT id, currency, bank, account_number, account_name, display_name,
		       balance, is_active, created_at, updated_at
		FROM balance_accounts
		WHERE is_active AND currency = $1
		ORDER BY bank`, currency)
}

func (r *balanceRepository) list(ctx context.Context, query string, args ...any) ([]*models.BalanceAccount, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query balance accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.BalanceAccount
	for rows.Next() {
		var account models.BalanceAccount
		var displayName sql.NullString

		if err := rows.Scan(
			&account.ID,
			&account.Currency,
			&account.Bank,
			&account.AccountNumber,
			&account.AccountName,
			&displayName,
			&account.Balance,
			&account.IsActive,
			&account.CreatedAt,
			&account.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan balance account: %w", err)
		}

		if displayName.Valid {
			account.DisplayName = &displayName.String
		}
		accounts = append(accounts, &account)
	}

	return accounts, rows.Err()
}

func (r *balanceRepository) RegisterAccount(ctx context.Context, currency, bank, accountNumber, accountName string, displayName *string) error {
	var display sql.NullString
	if displayName != nil && *displayName != "" {
		display = sql.NullString{String: *displayName, Valid: true}
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO balance_accounts (currency, bank, account_number, account_name, display_name)
		VALUES ($1, $2, $3, $4, $5)`,
		currency, bank, accountNumber, accountName, display,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			r.logger.Warn().
				Str("currency", currency).
				Str("bank", bank).
				Str("account_number", accountNumber).
				Msg("Account already registered, ignoring")
			return nil
		}
		return fmt.Errorf("failed to register account: %w", err)
	}

	r.logger.Info().
		Str("currency", currency).
		Str("bank", bank).
		Str("account_number", accountNumber).
		Msg("Account registered")
	return nil
}

func (r *balanceRepository) Deactivate(ctx context.Context, accountID int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE balance_accounts
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1`,
		accountID,
	)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return models.ErrNotFound
	}

	r.logger.Info().Int64("account_id", accountID).Msg("Account deactivated")
	return nil
}

func (r *balanceRepository) UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE balance_accounts
		SET display_name = $2, updated_at = NOW()
		WHERE id = $1`,
		accountID, displayName,
	)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (r *balanceRepository) CountAccounts(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM balance_accounts`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count accounts: %w", err)
	}
	return count, nil
}
