package exchangeservice

import (
	"context"
	"fmt"
	"time"

	"github.com/zwehtet-dev/tg-bot/internal/domain/models"
)

// StartPendingSweeper periodically flags transactions stuck in pending so
// operators do not lose track of them. Each transaction is alerted once.
// Blocks until the context is cancelled.
func (s *exchangeService) StartPendingSweeper(ctx context.Context) error {
	interval := s.cfg.SweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	maxAge := s.cfg.StalePendingAge
	if maxAge <= 0 {
		maxAge = 30 * time.Minute
	}

	s.logger.Info().
		Dur("interval", interval).
		Dur("max_age", maxAge).
		Msg("Pending sweeper started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	alerted := make(map[int64]bool)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Pending sweeper stopped")
			return ctx.Err()
		case <-ticker.C:
			s.sweepOnce(ctx, maxAge, alerted)
		}
	}
}

func (s *exchangeService) sweepOnce(ctx context.Context, maxAge time.Duration, alerted map[int64]bool) {
	stale, err := s.transactionRepo.ListPendingOlderThan(ctx, time.Now().Add(-maxAge))
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to scan for stale pending transactions")
		return
	}

	for _, tx := range stale {
		if alerted[tx.ID] {
			continue
		}
		alerted[tx.ID] = true

		age := time.Since(tx.CreatedAt).Round(time.Minute)
		s.logger.Warn().
			Int64("transaction_id", tx.ID).
			Dur("age", age).
			Msg("Transaction pending past threshold")

		s.wsHub.Publish(models.StatusUpdate{
			Type:          models.EventStalePending,
			TransactionID: tx.ID,
			Transaction:   tx,
			Message:       fmt.Sprintf("Transaction #%d pending for %s", tx.ID, age),
		})
		s.notify(ctx, fmt.Sprintf("Reminder: transaction #%d from %s still pending after %s", tx.ID, tx.RequesterName, age))
	}

	// Drop terminal entries so the set does not grow unbounded.
	staleIDs := make(map[int64]bool, len(stale))
	for _, tx := range stale {
		staleIDs[tx.ID] = true
	}
	for id := range alerted {
		if !staleIDs[id] {
			delete(alerted, id)
		}
	}
}
