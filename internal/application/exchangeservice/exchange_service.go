package exchangeservice

import (
	"context"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// Submission carries everything a requester declared or the extraction
// collaborator produced for one exchange request.
type Submission struct {
	RequesterID   int64
	RequesterName string

	// DeclaredAmount is the manually entered source amount, used when the
	// extraction record carries none.
	DeclaredAmount float64

	// Extraction is the structured receipt record; nil on the manual path.
	Extraction *models.ReceiptExtraction

	ReceiptRef *string

	// Requester's payout destination.
	PayoutBank          string
	PayoutAccountNumber string
	PayoutAccountName   string
}

// ConfirmationResult reports a successful confirmation together with the
// payout balance movement for operator reporting.
type ConfirmationResult struct {
	Transaction   *models.Transaction
	BalanceBefore float64
	BalanceAfter  float64
}

// BalanceChange reports a manual ledger adjustment.
type BalanceChange struct {
	Currency string
	Bank     string
	Before   float64
	After    float64
}

// IExchangeService is the workflow orchestrator: the only component that
// knows the submission, confirmation and cancellation protocols.
type IExchangeService interface {
	// ExtractReceipt runs the extraction collaborator over receipt image
	// bytes, retrying transient failures.
	ExtractReceipt(ctx context.Context, image []byte) (*models.ReceiptExtraction, error)

	// Submit validates the claimed receiver against registered accounts,
	// creates the pending transaction with a rate snapshot and credits the
	// matched receiving account. models.ErrNoMatch rejects the submission
	// with nothing persisted.
	Submit(ctx context.Context, sub *Submission) (*models.Transaction, error)

	// Confirm debits the selected payout account and terminates the
	// transaction as confirmed, atomically. An underfunded account yields
	// *models.InsufficientFundsError with the transaction left pending.
	Confirm(ctx context.Context, id int64, payoutBank string) (*ConfirmationResult, error)

	// Cancel terminates a pending transaction with no ledger effect.
	Cancel(ctx context.Context, id int64) error

	AttachCounterReceipt(ctx context.Context, id int64, ref string) error
	GetTransaction(ctx context.Context, id int64) (*models.Transaction, error)
	LatestPendingFor(ctx context.Context, requesterID int64) (*models.Transaction, error)
	TodaySummary(ctx context.Context) (*models.DailySummary, error)

	GetRate(ctx context.Context) (float64, error)
	SetRate(ctx context.Context, rate float64) error

	RegisterAccount(ctx context.Context, currency, bank, accountNumber, accountName string, displayName *string) error
	ListAccounts(ctx context.Context, currency string) ([]*models.BalanceAccount, error)
	DeactivateAccount(ctx context.Context, accountID int64) error
	UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error

	ListBalances(ctx context.Context) ([]*models.BalanceAccount, error)
	AdjustBalance(ctx context.Context, currency, bank string, delta float64) (*BalanceChange, error)
	SetBalance(ctx context.Context, currency, bank string, value float64) (*BalanceChange, error)

	GetSetting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error

	// Seed initializes the exchange rate and, on an empty ledger, the
	// configured starting accounts and balances.
	Seed(ctx context.Context) error

	// StartPendingSweeper blocks, periodically alerting operators about
	// transactions pending longer than the configured age, until the
	// context is cancelled.
	StartPendingSweeper(ctx context.Context) error
}
