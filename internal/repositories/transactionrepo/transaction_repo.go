package transactionrepo

import (
	"context"
	"time"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// ITransactionRepository is the transaction registry: durable exchange
// transactions and their lifecycle.
type ITransactionRepository interface {
	// Create persists a new transaction with status forced to pending and
	// returns its id.
	Create(ctx context.Context, tx *models.Transaction) (int64, error)

	// Get returns the transaction or models.ErrNotFound.
	Get(ctx context.Context, id int64) (*models.Transaction, error)

	// LatestPendingFor returns the most recent pending transaction of a
	// requester, or models.ErrNotFound.
	LatestPendingFor(ctx context.Context, requesterID int64) (*models.Transaction, error)

	// ListToday returns today's transactions, newest first.
	ListToday(ctx context.Context) ([]*models.Transaction, error)

	// ListPendingOlderThan returns pending transactions created before the
	// cutoff, oldest first.
	ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error)

	// Cancel flips pending → cancelled. A terminal status yields
	// models.ErrNotPending.
	Cancel(ctx context.Context, id int64) error

	// ConfirmWithDebit debits the payout account and flips
	// pending → confirmed as one atomic unit. The optimistic preconditions
	// are checked inside the same database transaction: the status must
	// still be pending (a duplicate trigger yields models.ErrNotPending
	// with no second debit) and the payout account must cover the target
	// amount (a shortfall yields *models.InsufficientFundsError with
	// nothing mutated). The returned balances are the ones observed under
	// the row locks, immediately before and after the debit.
	ConfirmWithDebit(ctx context.Context, id int64, payoutCurrency, payoutBank string) (*models.Transaction, float64, float64, error)

	// AttachCounterReceipt stores the operator's payout receipt reference
	// on a pending transaction.
	AttachCounterReceipt(ctx context.Context, id int64, ref string) error
}
