package settingsrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/zwehtet-dev/tg-bot/internal/infrastructure/database"
)

type settingsRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func New(db *database.DBManager, logger zerolog.Logger) ISettingsRepository {
	return &settingsRepository{
		db:     db.Db,
		logger: logger.With().Str("component", "settings_repository").Logger(),
	}
}

func (r *settingsRepository) GetRate(ctx context.Context) (float64, error) {
	var rate float64
	err := r.db.QueryRowContext(ctx, `SELECT rate FROM exchange_rate WHERE id = 1`).Scan(&rate)
	if err != nil {
		return 0, fmt.Errorf("failed to get exchange rate: %w", err)
	}
	return rate, nil
}

func (r *settingsRepository) SetRate(ctx context.Context, rate float64) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rate (id, rate, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET rate = $1, updated_at = NOW()`, rate)
	if err != nil {
		return fmt.Errorf("failed to set exchange rate: %w", err)
	}

	r.logger.Info().Float64("rate", rate).Msg("Exchange rate updated")
	return nil
}

func (r *settingsRepository) InitRate(ctx context.Context, defaultRate float64) error {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO exchange_rate (id, rate)
		VALUES (1, $1)
		ON CONFLICT (id) DO NOTHING`, defaultRate)
	if err != nil {
		return fmt.Errorf("failed to initialize exchange rate: %w", err)
	}

	if rows, _ := res.RowsAffected(); rows > 0 {
		r.logger.Info().Float64("rate", defaultRate).Msg("Exchange rate initialized")
	}
	return nil
}

func (r *settingsRepository) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, nil
}

func (r *settingsRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = NOW()`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}

	r.logger.Info().Str("key", key).Str("value", value).Msg("Setting updated")
	return nil
}
