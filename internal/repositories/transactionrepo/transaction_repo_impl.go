package transactionrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/sqlc-dev/pqtype"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/internal/infrastructure/database"
)

const transactionColumns = `
	id, requester_id, requester_name, source_amount, target_amount, rate,
	payout_bank, payout_account_number, payout_account_name, sender_bank,
	source_bank_tag, payout_bank_tag, status, receipt_ref,
	counter_receipt_ref, extraction, created_at, confirmed_at`

type transactionRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ITransactionRepository {
	return &transactionRepository{
		db:     db.Db,
		logger: logger.With().Str("component", "transaction_repository").Logger(),
	}
}

func (r *transactionRepository) Create(ctx context.Context, tx *models.Transaction) (int64, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO transactions (
			requester_id, requester_name, source_amount, target_amount, rate,
			payout_bank, payout_account_number, payout_account_name,
			sender_bank, source_bank_tag, receipt_ref, extraction, status
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 'pending')
		RETURNING id`,
		tx.RequesterID,
		tx.RequesterName,
		tx.SourceAmount,
		tx.TargetAmount,
		tx.Rate,
		tx.PayoutBank,
		tx.PayoutAccountNumber,
		tx.PayoutAccountName,
		tx.SenderBank,
		nullString(tx.SourceBankTag),
		nullString(tx.ReceiptRef),
		pqtype.NullRawMessage{RawMessage: tx.Extraction, Valid: tx.Extraction != nil},
	).Scan(&id)
	if err != nil {
		r.logger.Error().Err(err).Int64("requester_id", tx.RequesterID).Msg("Failed to create transaction")
		return 0, fmt.Errorf("failed to create transaction: %w", err)
	}

	r.logger.Info().
		Int64("transaction_id", id).
		Int64("requester_id", tx.RequesterID).
		Float64("source_amount", tx.SourceAmount).
		Float64("rate", tx.Rate).
		Msg("Transaction created")
	return id, nil
}

func (r *transactionRepository) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id)
	return scanTransaction(row)
}

func (r *transactionRepository) LatestPendingFor(ctx context.Context, requesterID int64) (*models.Transaction, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE requester_id = $1 AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1`, requesterID)
	return scanTransaction(row)
}

func (r *transactionRepository) ListToday(ctx context.Context) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE created_at::date = CURRENT_DATE
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list today's transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *transactionRepository) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT `+transactionColumns+`
		FROM transactions
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

func (r *transactionRepository) Cancel(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = 'cancelled'
		WHERE id = $1 AND status = 'pending'`, id)
	if err != nil {
		return fmt.Errorf("failed to cancel transaction: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		if _, err := r.Get(ctx, id); errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrNotPending
	}

	r.logger.Info().Int64("transaction_id", id).Msg("Transaction cancelled")
	return nil
}

// ConfirmWithDebit runs the confirmation protocol's single atomic unit. The
// debit statement only touches rows with sufficient balance and the status
// flip only touches pending rows, so a duplicate trigger or an underfunded
// payout account rolls back with nothing applied. The before/after figures
// are taken under the row locks so callers report what the debit saw.
func (r *transactionRepository) ConfirmWithDebit(ctx context.Context, id int64, payoutCurrency, payoutBank string) (*models.Transaction, float64, float64, error) {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to begin confirmation: %w", err)
	}
	defer dbTx.Rollback()

	var status models.TransactionStatus
	var targetAmount float64
	err = dbTx.QueryRowContext(ctx, `
		SELECT status, target_amount FROM transactions WHERE id = $1 FOR UPDATE`,
		id,
	).Scan(&status, &targetAmount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, 0, models.ErrNotFound
		}
		return nil, 0, 0, fmt.Errorf("failed to load transaction for confirmation: %w", err)
	}

	if status != models.StatusPending {
		r.logger.Warn().
			Int64("transaction_id", id).
			Str("status", string(status)).
			Msg("Confirmation skipped, transaction no longer pending")
		return nil, 0, 0, models.ErrNotPending
	}

	var balance float64
	err = dbTx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(balance), 0) FROM (
			SELECT balance
			FROM balance_accounts
			WHERE currency = $1 AND bank = $2 AND is_active
			FOR UPDATE
		) locked`,
		payoutCurrency, payoutBank,
	).Scan(&balance)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to read payout balance: %w", err)
	}

	if balance-targetAmount < 0 {
		return nil, 0, 0, &models.InsufficientFundsError{
			Currency: payoutCurrency,
			Bank:     payoutBank,
			Balance:  balance,
			Required: targetAmount,
		}
	}

	// Debit exactly one account row that can cover the amount.
	res, err := dbTx.ExecContext(ctx, `
		UPDATE balance_accounts
		SET balance = balance - $3, updated_at = NOW()
		WHERE id = (
			SELECT id FROM balance_accounts
			WHERE currency = $1 AND bank = $2 AND is_active AND balance >= $3
			ORDER BY id
			LIMIT 1
		)`,
		payoutCurrency, payoutBank, targetAmount,
	)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("failed to debit payout account: %w", err)
	}
	debited, _ := res.RowsAffected()
	if debited == 0 {
		// Sum was sufficient but no single active row covers the amount.
		return nil, 0, 0, &models.InsufficientFundsError{
			Currency: payoutCurrency,
			Bank:     payoutBank,
			Balance:  balance,
			Required: targetAmount,
		}
	}

	row := dbTx.QueryRowContext(ctx, `
		UPDATE transactions
		SET status = 'confirmed', payout_bank_tag = $2, confirmed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+transactionColumns,
		id, payoutBank,
	)
	confirmed, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, 0, 0, models.ErrNotPending
		}
		return nil, 0, 0, fmt.Errorf("failed to confirm transaction: %w", err)
	}

	if err := dbTx.Commit(); err != nil {
		return nil, 0, 0, fmt.Errorf("failed to commit confirmation: %w", err)
	}

	r.logger.Info().
		Int64("transaction_id", id).
		Str("payout_bank", payoutBank).
		Float64("debited", targetAmount).
		Msg("Transaction confirmed")
	return confirmed, balance, balance - targetAmount, nil
}

func (r *transactionRepository) AttachCounterReceipt(ctx context.Context, id int64, ref string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET counter_receipt_ref = $2
		WHERE id = $1 AND status = 'pending'`, id, ref)
	if err != nil {
		return fmt.Errorf("failed to attach counter receipt: %w", err)
	}

	rows, _ := res.RowsAffected()
	if rows == 0 {
		if _, err := r.Get(ctx, id); errors.Is(err, models.ErrNotFound) {
			return models.ErrNotFound
		}
		return models.ErrNotPending
	}

	r.logger.Info().Int64("transaction_id", id).Str("ref", ref).Msg("Counter receipt attached")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*models.Transaction, error) {
	var tx models.Transaction
	var sourceBankTag, payoutBankTag, receiptRef, counterReceiptRef sql.NullString
	var extraction pqtype.NullRawMessage
	var confirmedAt sql.NullTime

	err := row.Scan(
		&tx.ID,
		&tx.RequesterID,
		&tx.RequesterName,
		&tx.SourceAmount,
		&tx.TargetAmount,
		&tx.Rate,
		&tx.PayoutBank,
		&tx.PayoutAccountNumber,
		&tx.PayoutAccountName,
		&tx.SenderBank,
		&sourceBankTag,
		&payoutBankTag,
		&tx.Status,
		&receiptRef,
		&counterReceiptRef,
		&extraction,
		&tx.CreatedAt,
		&confirmedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	if sourceBankTag.Valid {
		tx.SourceBankTag = &sourceBankTag.String
	}
	if payoutBankTag.Valid {
		tx.PayoutBankTag = &payoutBankTag.String
	}
	if receiptRef.Valid {
		tx.ReceiptRef = &receiptRef.String
	}
	if counterReceiptRef.Valid {
		tx.CounterReceiptRef = &counterReceiptRef.String
	}
	if extraction.Valid {
		tx.Extraction = extraction.RawMessage
	}
	if confirmedAt.Valid {
		tx.ConfirmedAt = &confirmedAt.Time
	}
	return &tx, nil
}

func scanTransactions(rows *sql.Rows) ([]*models.Transaction, error) {
	var txs []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

func nullString(s *string) sql.NullString {
	if s == nil || *s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
