package exchangeservice

import (
	"context"
	"fmt"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
	"github.com/zwehtet-dev/tg-bot/pkg/currency"
)

// operatorTarget resolves the notification channel and thread, preferring
// runtime settings over the static config.
func (s *exchangeService) operatorTarget(ctx context.Context) (string, string) {
	channelID := s.cfg.OperatorChannelID
	threadID := s.cfg.OperatorThreadID

	if v, err := s.settingsRepo.GetSetting(ctx, SettingOperatorChannelID); err == nil && v != "" {
		channelID = v
	}
	if v, err := s.settingsRepo.GetSetting(ctx, SettingOperatorThreadID); err == nil && v != "" {
		threadID = v
	}
	return channelID, threadID
}

func (s *exchangeService) notify(ctx context.Context, text string) {
	channelID, threadID := s.operatorTarget(ctx)
	if channelID == "" {
		return
	}
	if _, err := s.messenger.Send(ctx, channelID, threadID, text); err != nil {
		s.logger.Error().Err(err).Msg("Failed to deliver operator notification")
	}
}

func (s *exchangeService) notifySubmission(ctx context.Context, tx *models.Transaction) {
	sourceBank := "unidentified"
	if tx.SourceBankTag != nil {
		sourceBank = *tx.SourceBankTag
	}
	text := fmt.Sprintf(
		"New exchange request #%d\nFrom: %s\nReceived: %s via %s\nPayout: %s\nTo: %s %s (%s)\nRate: %s",
		tx.ID,
		tx.RequesterName,
		currency.Format(tx.SourceAmount, s.cfg.SourceCurrency),
		sourceBank,
		currency.Format(tx.TargetAmount, s.cfg.TargetCurrency),
		tx.PayoutBank,
		tx.PayoutAccountNumber,
		tx.PayoutAccountName,
		currency.FormatAmount(tx.Rate),
	)
	s.notify(ctx, text)
}

func (s *exchangeService) notifyConfirmation(ctx context.Context, tx *models.Transaction, before, after float64) {
	bank := ""
	if tx.PayoutBankTag != nil {
		bank = *tx.PayoutBankTag
	}
	text := fmt.Sprintf(
		"Confirmed #%d\nPaid out: %s via %s\n%s balance: %s -> %s",
		tx.ID,
		currency.Format(tx.TargetAmount, s.cfg.TargetCurrency),
		bank,
		bank,
		currency.FormatAmount(before),
		currency.FormatAmount(after),
	)
	s.notify(ctx, text)
}

func (s *exchangeService) notifyCancellation(ctx context.Context, id int64) {
	s.notify(ctx, fmt.Sprintf("Cancelled #%d", id))
}

// notifyBalanceChange reports manual ledger edits into the balance thread.
func (s *exchangeService) notifyBalanceChange(ctx context.Context, change *BalanceChange) {
	channelID, _ := s.operatorTarget(ctx)
	if channelID == "" {
		return
	}

	threadID := s.cfg.BalanceThreadID
	if v, err := s.settingsRepo.GetSetting(ctx, SettingBalanceThreadID); err == nil && v != "" {
		threadID = v
	}

	text := fmt.Sprintf(
		"%s %s balance: %s -> %s",
		change.Currency,
		change.Bank,
		currency.FormatAmount(change.Before),
		currency.FormatAmount(change.After),
	)
	if _, err := s.messenger.Send(ctx, channelID, threadID, text); err != nil {
		s.logger.Error().Err(err).Msg("Failed to deliver balance notification")
	}
}

func (s *exchangeService) notifyInsufficientFunds(ctx context.Context, id int64, e *models.InsufficientFundsError) {
	text := fmt.Sprintf(
		"Cannot confirm #%d: insufficient %s funds on %s\nAvailable: %s\nRequired: %s\nShort by: %s",
		id,
		e.Currency,
		e.Bank,
		currency.FormatAmount(e.Balance),
		currency.FormatAmount(e.Required),
		currency.FormatAmount(e.Shortage()),
	)
	s.notify(ctx, text)
}
