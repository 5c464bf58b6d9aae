package exchangeservice

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zwehtet-dev/tg-bot/internal/application/matcher"
	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

type fakeBalanceRepo struct {
	accounts []*models.BalanceAccount
	nextID   int64
}

func (r *fakeBalanceRepo) find(currency, bank string) []*models.BalanceAccount {
	var out []*models.BalanceAccount
	for _, a := range r.accounts {
		if a.IsActive && a.Currency == currency && a.Bank == bank {
			out = append(out, a)
		}
	}
	return out
}

func (r *fakeBalanceRepo) GetBalance(ctx context.Context, currency, bank string) (float64, error) {
	var total float64
	for _, a := range r.find(currency, bank) {
		total += a.Balance
	}
	return total, nil
}

func (r *fakeBalanceRepo) AdjustBalance(ctx context.Context, currency, bank string, delta float64) error {
	matches := r.find(currency, bank)
	if len(matches) == 0 {
		return nil
	}
	matches[0].Balance += delta
	return nil
}

func (r *fakeBalanceRepo) SetBalance(ctx context.Context, currency, bank string, value float64) error {
	matches := r.find(currency, bank)
	if len(matches) == 0 {
		return nil
	}
	matches[0].Balance = value
	for _, a := range matches[1:] {
		a.Balance = 0
	}
	return nil
}

func (r *fakeBalanceRepo) ListBalances(ctx context.Context) ([]*models.BalanceAccount, error) {
	var out []*models.BalanceAccount
	for _, a := range r.accounts {
		if a.IsActive {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Currency != out[j].Currency {
			return out[i].Currency < out[j].Currency
		}
		return out[i].Bank < out[j].Bank
	})
	return out, nil
}

func (r *fakeBalanceRepo) ListAccounts(ctx context.Context, currency string) ([]*models.BalanceAccount, error) {
	var out []*models.BalanceAccount
	for _, a := range r.accounts {
		if a.IsActive && (currency == "" || a.Currency == currency) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *fakeBalanceRepo) RegisterAccount(ctx context.Context, currency, bank, accountNumber, accountName string, displayName *string) error {
	for _, a := range r.accounts {
		if a.Currency == currency && a.Bank == bank && a.AccountNumber == accountNumber {
			return nil
		}
	}
	r.nextID++
	r.accounts = append(r.accounts, &models.BalanceAccount{
		ID:            r.nextID,
		Currency:      currency,
		Bank:          bank,
		AccountNumber: accountNumber,
		AccountName:   accountName,
		DisplayName:   displayName,
		IsActive:      true,
	})
	return nil
}

func (r *fakeBalanceRepo) Deactivate(ctx context.Context, accountID int64) error {
	for _, a := range r.accounts {
		if a.ID == accountID {
			a.IsActive = false
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *fakeBalanceRepo) UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error {
	for _, a := range r.accounts {
		if a.ID == accountID {
			a.DisplayName = &displayName
			return nil
		}
	}
	return models.ErrNotFound
}

func (r *fakeBalanceRepo) CountAccounts(ctx context.Context) (int, error) {
	return len(r.accounts), nil
}

type fakeTransactionRepo struct {
	balances     *fakeBalanceRepo
	transactions map[int64]*models.Transaction
	nextID       int64
}

func newFakeTransactionRepo(balances *fakeBalanceRepo) *fakeTransactionRepo {
	return &fakeTransactionRepo{
		balances:     balances,
		transactions: make(map[int64]*models.Transaction),
	}
}

func (r *fakeTransactionRepo) Create(ctx context.Context, tx *models.Transaction) (int64, error) {
	r.nextID++
	stored := *tx
	stored.ID = r.nextID
	stored.Status = models.StatusPending
	stored.CreatedAt = time.Now()
	r.transactions[stored.ID] = &stored
	return stored.ID, nil
}

func (r *fakeTransactionRepo) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	copied := *tx
	return &copied, nil
}

func (r *fakeTransactionRepo) LatestPendingFor(ctx context.Context, requesterID int64) (*models.Transaction, error) {
	var latest *models.Transaction
	for _, tx := range r.transactions {
		if tx.RequesterID != requesterID || tx.Status != models.StatusPending {
			continue
		}
		if latest == nil || tx.ID > latest.ID {
			latest = tx
		}
	}
	if latest == nil {
		return nil, models.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

func (r *fakeTransactionRepo) ListToday(ctx context.Context) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.transactions {
		copied := *tx
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (r *fakeTransactionRepo) ListPendingOlderThan(ctx context.Context, cutoff time.Time) ([]*models.Transaction, error) {
	var out []*models.Transaction
	for _, tx := range r.transactions {
		if tx.Status == models.StatusPending && tx.CreatedAt.Before(cutoff) {
			copied := *tx
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakeTransactionRepo) Cancel(ctx context.Context, id int64) error {
	tx, ok := r.transactions[id]
	if !ok {
		return models.ErrNotFound
	}
	if tx.Status != models.StatusPending {
		return models.ErrNotPending
	}
	tx.Status = models.StatusCancelled
	return nil
}

func (r *fakeTransactionRepo) ConfirmWithDebit(ctx context.Context, id int64, payoutCurrency, payoutBank string) (*models.Transaction, float64, float64, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return nil, 0, 0, models.ErrNotFound
	}
	if tx.Status != models.StatusPending {
		return nil, 0, 0, models.ErrNotPending
	}

	balance, _ := r.balances.GetBalance(ctx, payoutCurrency, payoutBank)
	if balance < tx.TargetAmount {
		return nil, 0, 0, &models.InsufficientFundsError{
			Currency: payoutCurrency,
			Bank:     payoutBank,
			Balance:  balance,
			Required: tx.TargetAmount,
		}
	}

	if err := r.balances.AdjustBalance(ctx, payoutCurrency, payoutBank, -tx.TargetAmount); err != nil {
		return nil, 0, 0, err
	}
	now := time.Now()
	tx.Status = models.StatusConfirmed
	tx.PayoutBankTag = &payoutBank
	tx.ConfirmedAt = &now

	copied := *tx
	return &copied, balance, balance - tx.TargetAmount, nil
}

func (r *fakeTransactionRepo) AttachCounterReceipt(ctx context.Context, id int64, ref string) error {
	tx, ok := r.transactions[id]
	if !ok {
		return models.ErrNotFound
	}
	if tx.Status != models.StatusPending {
		return models.ErrNotPending
	}
	tx.CounterReceiptRef = &ref
	return nil
}

type fakeSettingsRepo struct {
	rate     float64
	settings map[string]string
}

func newFakeSettingsRepo(rate float64) *fakeSettingsRepo {
	return &fakeSettingsRepo{rate: rate, settings: make(map[string]string)}
}

func (r *fakeSettingsRepo) GetRate(ctx context.Context) (float64, error) { return r.rate, nil }
func (r *fakeSettingsRepo) SetRate(ctx context.Context, rate float64) error {
	r.rate = rate
	return nil
}
func (r *fakeSettingsRepo) InitRate(ctx context.Context, defaultRate float64) error {
	if r.rate == 0 {
		r.rate = defaultRate
	}
	return nil
}
func (r *fakeSettingsRepo) GetSetting(ctx context.Context, key string) (string, error) {
	return r.settings[key], nil
}
func (r *fakeSettingsRepo) SetSetting(ctx context.Context, key, value string) error {
	r.settings[key] = value
	return nil
}

type fakeExtractor struct {
	extraction *models.ReceiptExtraction
	err        error
}

func (e *fakeExtractor) Extract(ctx context.Context, image []byte) (*models.ReceiptExtraction, error) {
	return e.extraction, e.err
}

type fakeMessenger struct {
	sent []string
}

func (m *fakeMessenger) Send(ctx context.Context, channelID, threadID, text string) (string, error) {
	m.sent = append(m.sent, text)
	return "msg-1", nil
}

func (m *fakeMessenger) Edit(ctx context.Context, channelID, messageID, text string) error {
	return nil
}

type fixture struct {
	svc       IExchangeService
	balances  *fakeBalanceRepo
	txs       *fakeTransactionRepo
	settings  *fakeSettingsRepo
	messenger *fakeMessenger
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	balances := &fakeBalanceRepo{}
	require.NoError(t, balances.RegisterAccount(context.Background(), "THB", "KBank", "111-1", "Min Myat Nwe", nil))
	require.NoError(t, balances.RegisterAccount(context.Background(), "THB", "SCB", "222-2", "Somchai Prasert", nil))
	require.NoError(t, balances.RegisterAccount(context.Background(), "MMK", "KBZ", "333-3", "Aung Kyaw", nil))

	txs := newFakeTransactionRepo(balances)
	settings := newFakeSettingsRepo(121.5)
	messenger := &fakeMessenger{}

	cfg := config.ExchangeConfig{
		SourceCurrency:    "THB",
		TargetCurrency:    "MMK",
		DefaultRate:       121.5,
		OperatorChannelID: "ops-channel",
	}

	svc := New(
		balances,
		txs,
		settings,
		matcher.New(config.MatchingConfig{SimilarityThreshold: 0.85, BankMatchBonus: 0.05}, zerolog.Nop()),
		&fakeExtractor{},
		messenger,
		websocket.NewWsHub(zerolog.Nop()),
		cfg,
		zerolog.Nop(),
	)

	return &fixture{svc: svc, balances: balances, txs: txs, settings: settings, messenger: messenger}
}

func strPtr(s string) *string { return &s }
func floatPtr(f float64) *float64 { return &f }

func submission(amount float64) *Submission {
	return &Submission{
		RequesterID:   42,
		RequesterName: "Requester",
		Extraction: &models.ReceiptExtraction{
			Amount:       floatPtr(amount),
			ReceiverName: strPtr("MISS Min Myat Nwe"),
			ReceiverBank: strPtr("Kasikorn Bank"),
			Reference:    strPtr("REF-001"),
		},
		PayoutBank:          "KBZ",
		PayoutAccountNumber: "999",
		PayoutAccountName:   "U Mya",
	}
}

func TestSubmitCreditsMatchedAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	assert.Equal(t, models.StatusPending, tx.Status)
	assert.Equal(t, 1000.0, tx.SourceAmount)
	assert.Equal(t, 121500.0, tx.TargetAmount)
	assert.Equal(t, 121.5, tx.Rate)
	require.NotNil(t, tx.SourceBankTag)
	assert.Equal(t, "KBank", *tx.SourceBankTag)
	require.NotNil(t, tx.ReceiptRef)
	assert.Equal(t, "REF-001", *tx.ReceiptRef)

	balance, err := f.balances.GetBalance(ctx, "THB", "KBank")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)
}

func TestSubmitRejectsUnmatchedReceiver(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	sub := submission(1000)
	sub.Extraction.ReceiverName = strPtr("Nobody We Know")

	_, err := f.svc.Submit(ctx, sub)
	assert.ErrorIs(t, err, models.ErrNoMatch)

	// Nothing persisted, nothing credited.
	assert.Empty(t, f.txs.transactions)
	balance, _ := f.balances.GetBalance(ctx, "THB", "KBank")
	assert.Equal(t, 0.0, balance)
}

func TestSubmitManualAmountPath(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, &Submission{
		RequesterID:         42,
		RequesterName:       "Requester",
		DeclaredAmount:      500,
		PayoutBank:          "KBZ",
		PayoutAccountNumber: "999",
		PayoutAccountName:   "U Mya",
	})
	require.NoError(t, err)
	assert.Equal(t, 500.0, tx.SourceAmount)
	assert.Equal(t, 60750.0, tx.TargetAmount)
	assert.Nil(t, tx.SourceBankTag)
}

func TestSubmitRejectsNonPositiveAmount(t *testing.T) {
	f := newFixture(t)

	sub := submission(1000)
	sub.Extraction.Amount = floatPtr(0)

	_, err := f.svc.Submit(context.Background(), sub)
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSubmitRejectsFailedTransferStatus(t *testing.T) {
	f := newFixture(t)

	sub := submission(1000)
	sub.Extraction.Status = strPtr("FAILED")

	_, err := f.svc.Submit(context.Background(), sub)
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
	assert.Empty(t, f.txs.transactions)
}

func TestRateSnapshotSurvivesRateChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	require.NoError(t, f.svc.SetRate(ctx, 130))

	stored, err := f.svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, 121.5, stored.Rate)
	assert.Equal(t, 121500.0, stored.TargetAmount)
}

func TestConfirmDebitsPayoutAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 200000)
	require.NoError(t, err)

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	result, err := f.svc.Confirm(ctx, tx.ID, "KBZ")
	require.NoError(t, err)

	assert.Equal(t, models.StatusConfirmed, result.Transaction.Status)
	require.NotNil(t, result.Transaction.ConfirmedAt)
	require.NotNil(t, result.Transaction.PayoutBankTag)
	assert.Equal(t, "KBZ", *result.Transaction.PayoutBankTag)
	assert.Equal(t, 200000.0, result.BalanceBefore)
	assert.Equal(t, 78500.0, result.BalanceAfter)

	balance, _ := f.balances.GetBalance(ctx, "MMK", "KBZ")
	assert.Equal(t, 78500.0, balance)
}

func TestConfirmReportsBalancesFromDebit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 200000)
	require.NoError(t, err)

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	// Balance moves between submission and confirmation. The confirmation
	// figures must reflect the account as the debit found it, not an
	// earlier snapshot.
	_, err = f.svc.AdjustBalance(ctx, "MMK", "KBZ", -10000)
	require.NoError(t, err)

	result, err := f.svc.Confirm(ctx, tx.ID, "KBZ")
	require.NoError(t, err)

	assert.Equal(t, 190000.0, result.BalanceBefore)
	assert.Equal(t, 68500.0, result.BalanceAfter)

	balance, _ := f.balances.GetBalance(ctx, "MMK", "KBZ")
	assert.Equal(t, 68500.0, balance)
}

func TestConfirmInsufficientFundsLeavesTransactionPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 50000)
	require.NoError(t, err)

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, tx.ID, "KBZ")
	var insufficient *models.InsufficientFundsError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, 50000.0, insufficient.Balance)
	assert.Equal(t, 121500.0, insufficient.Required)
	assert.Equal(t, 71500.0, insufficient.Shortage())

	stored, err := f.svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)

	balance, _ := f.balances.GetBalance(ctx, "MMK", "KBZ")
	assert.Equal(t, 50000.0, balance)
}

func TestConfirmTwiceDebitsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 300000)
	require.NoError(t, err)

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, tx.ID, "KBZ")
	require.NoError(t, err)

	_, err = f.svc.Confirm(ctx, tx.ID, "KBZ")
	assert.ErrorIs(t, err, models.ErrNotPending)

	balance, _ := f.balances.GetBalance(ctx, "MMK", "KBZ")
	assert.Equal(t, 178500.0, balance)
}

func TestCancelKeepsSubmissionCredit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	require.NoError(t, f.svc.Cancel(ctx, tx.ID))

	stored, err := f.svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, stored.Status)

	// The submission-time credit intentionally stays on the ledger.
	balance, _ := f.balances.GetBalance(ctx, "THB", "KBank")
	assert.Equal(t, 1000.0, balance)
}

func TestCancelConfirmedTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 300000)
	require.NoError(t, err)

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, tx.ID, "KBZ")
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Cancel(ctx, tx.ID), models.ErrNotPending)
}

func TestAttachCounterReceipt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)

	require.NoError(t, f.svc.AttachCounterReceipt(ctx, tx.ID, "OUT-77"))

	stored, err := f.svc.GetTransaction(ctx, tx.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.CounterReceiptRef)
	assert.Equal(t, "OUT-77", *stored.CounterReceiptRef)
}

func TestLatestPendingFor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)
	second, err := f.svc.Submit(ctx, submission(2000))
	require.NoError(t, err)

	latest, err := f.svc.LatestPendingFor(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, second.ID, latest.ID)

	require.NoError(t, f.svc.Cancel(ctx, second.ID))

	latest, err = f.svc.LatestPendingFor(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, first.ID, latest.ID)
}

func TestTodaySummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.SetBalance(ctx, "MMK", "KBZ", 300000)
	require.NoError(t, err)

	confirmed, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, confirmed.ID, "KBZ")
	require.NoError(t, err)

	cancelled, err := f.svc.Submit(ctx, submission(500))
	require.NoError(t, err)
	require.NoError(t, f.svc.Cancel(ctx, cancelled.ID))

	_, err = f.svc.Submit(ctx, submission(700))
	require.NoError(t, err)

	summary, err := f.svc.TodaySummary(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.ConfirmedCount)
	assert.Equal(t, 1, summary.CancelledCount)
	assert.Equal(t, 1, summary.PendingCount)
	assert.Equal(t, 1000.0, summary.TotalSource)
	assert.Equal(t, 121500.0, summary.TotalTarget)
	assert.Len(t, summary.Transactions, 3)
}

func TestSeedInitializesRateAndAccounts(t *testing.T) {
	balances := &fakeBalanceRepo{}
	txs := newFakeTransactionRepo(balances)
	settings := newFakeSettingsRepo(0)

	cfg := config.ExchangeConfig{
		SourceCurrency: "THB",
		TargetCurrency: "MMK",
		DefaultRate:    121.5,
		InitialBalances: []config.SeedBalance{
			{Currency: "THB", Bank: "KBank", AccountNumber: "111-1", AccountName: "Min Myat Nwe", Balance: 5000},
			{Currency: "MMK", Bank: "KBZ", AccountNumber: "333-3", AccountName: "Aung Kyaw"},
		},
	}

	svc := New(
		balances,
		txs,
		settings,
		matcher.New(config.MatchingConfig{SimilarityThreshold: 0.85, BankMatchBonus: 0.05}, zerolog.Nop()),
		&fakeExtractor{},
		&fakeMessenger{},
		websocket.NewWsHub(zerolog.Nop()),
		cfg,
		zerolog.Nop(),
	)

	ctx := context.Background()
	require.NoError(t, svc.Seed(ctx))

	rate, err := svc.GetRate(ctx)
	require.NoError(t, err)
	assert.Equal(t, 121.5, rate)

	count, err := balances.CountAccounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	balance, _ := balances.GetBalance(ctx, "THB", "KBank")
	assert.Equal(t, 5000.0, balance)

	// Re-seeding an already populated ledger changes nothing.
	require.NoError(t, svc.Seed(ctx))
	count, _ = balances.CountAccounts(ctx)
	assert.Equal(t, 2, count)
}

func TestBalanceOpsWithMultipleAccountsPerBank(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	// A second KBank/THB account must not double the effect of ledger ops.
	require.NoError(t, f.balances.RegisterAccount(ctx, "THB", "KBank", "111-2", "Min Myat Nwe", nil))

	change, err := f.svc.AdjustBalance(ctx, "THB", "KBank", 1000)
	require.NoError(t, err)
	assert.Equal(t, 0.0, change.Before)
	assert.Equal(t, 1000.0, change.After)

	balance, err := f.balances.GetBalance(ctx, "THB", "KBank")
	require.NoError(t, err)
	assert.Equal(t, 1000.0, balance)

	change, err = f.svc.SetBalance(ctx, "THB", "KBank", 5000)
	require.NoError(t, err)
	assert.Equal(t, 5000.0, change.After)

	balance, err = f.balances.GetBalance(ctx, "THB", "KBank")
	require.NoError(t, err)
	assert.Equal(t, 5000.0, balance)
}

func TestSettingKeyValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.svc.SetSetting(ctx, SettingOperatorChannelID, "chan-7"))
	value, err := f.svc.GetSetting(ctx, SettingOperatorChannelID)
	require.NoError(t, err)
	assert.Equal(t, "chan-7", value)

	err = f.svc.SetSetting(ctx, "unknown_key", "x")
	var validation *models.ValidationError
	assert.ErrorAs(t, err, &validation)
}

func TestSweepAlertsOncePerTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tx, err := f.svc.Submit(ctx, submission(1000))
	require.NoError(t, err)
	f.txs.transactions[tx.ID].CreatedAt = time.Now().Add(-2 * time.Hour)

	sentBefore := len(f.messenger.sent)

	svc := f.svc.(*exchangeService)
	alerted := make(map[int64]bool)
	svc.sweepOnce(ctx, time.Hour, alerted)
	assert.Len(t, f.messenger.sent, sentBefore+1)

	// Second sweep must not repeat the alert.
	svc.sweepOnce(ctx, time.Hour, alerted)
	assert.Len(t, f.messenger.sent, sentBefore+1)

	// A confirmed transaction falls out of the alerted set.
	_, err = f.svc.SetBalance(ctx, "MMK", "KBZ", 300000)
	require.NoError(t, err)
	_, err = f.svc.Confirm(ctx, tx.ID, "KBZ")
	require.NoError(t, err)

	svc.sweepOnce(ctx, time.Hour, alerted)
	assert.Empty(t, alerted)
}

func TestSetRateRejectsNonPositive(t *testing.T) {
	f := newFixture(t)

	var validation *models.ValidationError
	assert.ErrorAs(t, f.svc.SetRate(context.Background(), 0), &validation)
	assert.ErrorAs(t, f.svc.SetRate(context.Background(), -5), &validation)
}
