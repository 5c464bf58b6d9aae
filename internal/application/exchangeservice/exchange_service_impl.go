package exchangeservice

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/application/matcher"
	"github.com/zwehtet-dev/tg-bot/internal/domain/interfaces"
	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/balancerepo"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/settingsrepo"
	"github.com/zwehtet-dev/tg-bot/internal/repositories/transactionrepo"
	"github.com/zwehtet-dev/tg-bot/internal/server/websocket"
	"github.com/zwehtet-dev/tg-bot/pkg/config"
)

// Settings keys tunable at runtime through the admin surface.
const (
	SettingOperatorChannelID = "operator_channel_id"
	SettingOperatorThreadID  = "operator_thread_id"
	SettingBalanceThreadID   = "balance_thread_id"
)

var validSettingKeys = map[string]bool{
	SettingOperatorChannelID: true,
	SettingOperatorThreadID:  true,
	SettingBalanceThreadID:   true,
}

type exchangeService struct {
	balanceRepo     balancerepo.IBalanceRepository
	transactionRepo transactionrepo.ITransactionRepository
	settingsRepo    settingsrepo.ISettingsRepository
	accountMatcher  *matcher.Matcher
	extractor       interfaces.ReceiptExtractor
	messenger       interfaces.Messenger
	wsHub           *websocket.WsHub
	cfg             config.ExchangeConfig
	logger          zerolog.Logger
}

func New(
	balanceRepo balancerepo.IBalanceRepository,
	transactionRepo transactionrepo.ITransactionRepository,
	settingsRepo settingsrepo.ISettingsRepository,
	accountMatcher *matcher.Matcher,
	extractor interfaces.ReceiptExtractor,
	messenger interfaces.Messenger,
	wsHub *websocket.WsHub,
	cfg config.ExchangeConfig,
	logger zerolog.Logger,
) IExchangeService {
	return &exchangeService{
		balanceRepo:     balanceRepo,
		transactionRepo: transactionRepo,
		settingsRepo:    settingsRepo,
		accountMatcher:  accountMatcher,
		extractor:       extractor,
		messenger:       messenger,
		wsHub:           wsHub,
		cfg:             cfg,
		logger:          logger.With().Str("component", "exchange_service").Logger(),
	}
}

func (s *exchangeService) ExtractReceipt(ctx context.Context, image []byte) (*models.ReceiptExtraction, error) {
	if len(image) == 0 {
		return nil, models.NewValidationError("receipt", "empty image")
	}

	extraction, err := s.extractor.Extract(ctx, image)
	if err != nil {
		s.logger.Error().Err(err).Msg("Receipt extraction failed")
		return nil, err
	}
	return extraction, nil
}

func (s *exchangeService) Submit(ctx context.Context, sub *Submission) (*models.Transaction, error) {
	if sub.PayoutBank == "" || sub.PayoutAccountNumber == "" || sub.PayoutAccountName == "" {
		return nil, models.NewValidationError("payout_account", "bank, account number and account name are required")
	}

	sourceAmount := sub.DeclaredAmount
	if sub.Extraction != nil && sub.Extraction.Amount != nil {
		sourceAmount = *sub.Extraction.Amount
	}
	if sourceAmount <= 0 {
		return nil, models.NewValidationError("amount", "must be positive")
	}

	if sub.Extraction != nil && !sub.Extraction.Successful() {
		return nil, models.NewValidationError("receipt_status", "transfer does not appear successful")
	}

	rate, err := s.settingsRepo.GetRate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read current rate: %w", err)
	}
	targetAmount := sourceAmount * rate

	var sourceBankTag string
	if sub.Extraction != nil && sub.Extraction.ReceiverNameValue() != "" {
		candidates, err := s.balanceRepo.ListAccounts(ctx, s.cfg.SourceCurrency)
		if err != nil {
			return nil, fmt.Errorf("failed to load receiving accounts: %w", err)
		}

		match, err := s.accountMatcher.Match(
			sub.Extraction.ReceiverNameValue(),
			sub.Extraction.ReceiverBankValue(),
			candidates,
		)
		if err != nil {
			// No transaction, no ledger effect.
			return nil, err
		}
		sourceBankTag = match.Account.Bank
	} else if sub.Extraction != nil {
		// No receiver name to validate; fall back to the extracted bank.
		sourceBankTag = sub.Extraction.ReceiverBankValue()
	}

	tx := &models.Transaction{
		RequesterID:         sub.RequesterID,
		RequesterName:       sub.RequesterName,
		SourceAmount:        sourceAmount,
		TargetAmount:        targetAmount,
		Rate:                rate,
		PayoutBank:          sub.PayoutBank,
		PayoutAccountNumber: sub.PayoutAccountNumber,
		PayoutAccountName:   sub.PayoutAccountName,
		ReceiptRef:          sub.ReceiptRef,
		Status:              models.StatusPending,
	}
	if sub.Extraction != nil {
		tx.SenderBank = sub.Extraction.SenderBankValue()
		if tx.ReceiptRef == nil && sub.Extraction.Reference != nil && *sub.Extraction.Reference != "" {
			tx.ReceiptRef = sub.Extraction.Reference
		}
		if raw, err := json.Marshal(sub.Extraction); err == nil {
			tx.Extraction = raw
		}
	}
	if s.cfg.RequireExtractedRef && tx.ReceiptRef == nil {
		return nil, models.NewValidationError("receipt_ref", "receipt reference required")
	}
	if sourceBankTag != "" {
		tx.SourceBankTag = &sourceBankTag
	}

	id, err := s.transactionRepo.Create(ctx, tx)
	if err != nil {
		return nil, err
	}
	tx.ID = id
	tx.CreatedAt = time.Now()

	// Funds are treated as received at submission time; the payout is
	// verified later by an operator.
	if sourceBankTag != "" {
		if err := s.balanceRepo.AdjustBalance(ctx, s.cfg.SourceCurrency, sourceBankTag, sourceAmount); err != nil {
			return nil, fmt.Errorf("failed to credit receiving account: %w", err)
		}
	} else {
		s.logger.Warn().
			Int64("transaction_id", id).
			Msg("No receiving account identified, submission credited nothing")
	}

	s.wsHub.Publish(models.StatusUpdate{
		Type:          models.EventTransactionCreated,
		TransactionID: id,
		Transaction:   tx,
	})
	s.notifySubmission(ctx, tx)

	return tx, nil
}

func (s *exchangeService) Confirm(ctx context.Context, id int64, payoutBank string) (*ConfirmationResult, error) {
	if payoutBank == "" {
		return nil, models.NewValidationError("payout_bank", "required")
	}

	confirmed, before, after, err := s.transactionRepo.ConfirmWithDebit(ctx, id, s.cfg.TargetCurrency, payoutBank)
	if err != nil {
		var insufficient *models.InsufficientFundsError
		if errors.As(err, &insufficient) {
			s.wsHub.Publish(models.StatusUpdate{
				Type:          models.EventInsufficientFunds,
				TransactionID: id,
				Currency:      insufficient.Currency,
				Bank:          insufficient.Bank,
				Balance:       insufficient.Balance,
				Message:       insufficient.Error(),
			})
			s.notifyInsufficientFunds(ctx, id, insufficient)
		}
		return nil, err
	}

	s.wsHub.Publish(models.StatusUpdate{
		Type:          models.EventTransactionConfirmed,
		TransactionID: id,
		Transaction:   confirmed,
	})
	s.wsHub.Publish(models.StatusUpdate{
		Type:     models.EventBalanceChanged,
		Currency: s.cfg.TargetCurrency,
		Bank:     payoutBank,
		Balance:  after,
	})
	s.notifyConfirmation(ctx, confirmed, before, after)

	return &ConfirmationResult{
		Transaction:   confirmed,
		BalanceBefore: before,
		BalanceAfter:  after,
	}, nil
}

func (s *exchangeService) Cancel(ctx context.Context, id int64) error {
	if err := s.transactionRepo.Cancel(ctx, id); err != nil {
		return err
	}

	tx, err := s.transactionRepo.Get(ctx, id)
	if err == nil && tx.SourceBankTag != nil {
		// The submission-time credit stays on the ledger. Surface it so
		// operators can reconcile manually.
		s.logger.Warn().
			Int64("transaction_id", id).
			Str("credited_bank", *tx.SourceBankTag).
			Float64("credited_amount", tx.SourceAmount).
			Msg("Transaction cancelled, submission credit not reversed")
	}

	s.wsHub.Publish(models.StatusUpdate{
		Type:          models.EventTransactionCancelled,
		TransactionID: id,
		Transaction:   tx,
	})
	s.notifyCancellation(ctx, id)
	return nil
}

func (s *exchangeService) AttachCounterReceipt(ctx context.Context, id int64, ref string) error {
	if ref == "" {
		return models.NewValidationError("counter_receipt", "reference required")
	}
	return s.transactionRepo.AttachCounterReceipt(ctx, id, ref)
}

func (s *exchangeService) GetTransaction(ctx context.Context, id int64) (*models.Transaction, error) {
	return s.transactionRepo.Get(ctx, id)
}

func (s *exchangeService) LatestPendingFor(ctx context.Context, requesterID int64) (*models.Transaction, error) {
	return s.transactionRepo.LatestPendingFor(ctx, requesterID)
}

func (s *exchangeService) TodaySummary(ctx context.Context) (*models.DailySummary, error) {
	txs, err := s.transactionRepo.ListToday(ctx)
	if err != nil {
		return nil, err
	}

	summary := &models.DailySummary{Transactions: txs}
	for _, tx := range txs {
		switch tx.Status {
		case models.StatusConfirmed:
			summary.ConfirmedCount++
			summary.TotalSource += tx.SourceAmount
			summary.TotalTarget += tx.TargetAmount
		case models.StatusPending:
			summary.PendingCount++
		case models.StatusCancelled:
			summary.CancelledCount++
		}
	}
	return summary, nil
}

func (s *exchangeService) GetRate(ctx context.Context) (float64, error) {
	return s.settingsRepo.GetRate(ctx)
}

func (s *exchangeService) SetRate(ctx context.Context, rate float64) error {
	if rate <= 0 {
		return models.NewValidationError("rate", "must be positive")
	}
	return s.settingsRepo.SetRate(ctx, rate)
}

func (s *exchangeService) RegisterAccount(ctx context.Context, currency, bank, accountNumber, accountName string, displayName *string) error {
	if currency == "" || bank == "" || accountNumber == "" || accountName == "" {
		return models.NewValidationError("account", "currency, bank, account number and account name are required")
	}
	return s.balanceRepo.RegisterAccount(ctx, currency, bank, accountNumber, accountName, displayName)
}

func (s *exchangeService) ListAccounts(ctx context.Context, currency string) ([]*models.BalanceAccount, error) {
	return s.balanceRepo.ListAccounts(ctx, currency)
}

func (s *exchangeService) DeactivateAccount(ctx context.Context, accountID int64) error {
	return s.balanceRepo.Deactivate(ctx, accountID)
}

func (s *exchangeService) UpdateDisplayName(ctx context.Context, accountID int64, displayName string) error {
	if displayName == "" {
		return models.NewValidationError("display_name", "required")
	}
	return s.balanceRepo.UpdateDisplayName(ctx, accountID, displayName)
}

func (s *exchangeService) ListBalances(ctx context.Context) ([]*models.BalanceAccount, error) {
	return s.balanceRepo.ListBalances(ctx)
}

func (s *exchangeService) AdjustBalance(ctx context.Context, currency, bank string, delta float64) (*BalanceChange, error) {
	before, err := s.balanceRepo.GetBalance(ctx, currency, bank)
	if err != nil {
		return nil, err
	}
	if err := s.balanceRepo.AdjustBalance(ctx, currency, bank, delta); err != nil {
		return nil, err
	}
	after, err := s.balanceRepo.GetBalance(ctx, currency, bank)
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(models.StatusUpdate{
		Type:     models.EventBalanceChanged,
		Currency: currency,
		Bank:     bank,
		Balance:  after,
	})
	change := &BalanceChange{Currency: currency, Bank: bank, Before: before, After: after}
	s.notifyBalanceChange(ctx, change)
	return change, nil
}

func (s *exchangeService) SetBalance(ctx context.Context, currency, bank string, value float64) (*BalanceChange, error) {
	before, err := s.balanceRepo.GetBalance(ctx, currency, bank)
	if err != nil {
		return nil, err
	}
	if err := s.balanceRepo.SetBalance(ctx, currency, bank, value); err != nil {
		return nil, err
	}
	after, err := s.balanceRepo.GetBalance(ctx, currency, bank)
	if err != nil {
		return nil, err
	}

	s.wsHub.Publish(models.StatusUpdate{
		Type:     models.EventBalanceChanged,
		Currency: currency,
		Bank:     bank,
		Balance:  after,
	})
	change := &BalanceChange{Currency: currency, Bank: bank, Before: before, After: after}
	s.notifyBalanceChange(ctx, change)
	return change, nil
}

func (s *exchangeService) GetSetting(ctx context.Context, key string) (string, error) {
	if !validSettingKeys[key] {
		return "", models.NewValidationError("key", "unknown setting")
	}
	return s.settingsRepo.GetSetting(ctx, key)
}

func (s *exchangeService) SetSetting(ctx context.Context, key, value string) error {
	if !validSettingKeys[key] {
		return models.NewValidationError("key", "unknown setting")
	}
	return s.settingsRepo.SetSetting(ctx, key, value)
}

func (s *exchangeService) Seed(ctx context.Context) error {
	if err := s.settingsRepo.InitRate(ctx, s.cfg.DefaultRate); err != nil {
		return err
	}

	count, err := s.balanceRepo.CountAccounts(ctx)
	if err != nil {
		return err
	}
	if count > 0 || len(s.cfg.InitialBalances) == 0 {
		return nil
	}

	for _, seed := range s.cfg.InitialBalances {
		var display *string
		if seed.DisplayName != "" {
			d := seed.DisplayName
			display = &d
		}
		if err := s.balanceRepo.RegisterAccount(ctx, seed.Currency, seed.Bank, seed.AccountNumber, seed.AccountName, display); err != nil {
			return err
		}
		if seed.Balance != 0 {
			if err := s.balanceRepo.SetBalance(ctx, seed.Currency, seed.Bank, seed.Balance); err != nil {
				return err
			}
		}
	}

	s.logger.Info().Int("accounts", len(s.cfg.InitialBalances)).Msg("Initial balances seeded")
	return nil
}
