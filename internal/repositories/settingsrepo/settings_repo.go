package settingsrepo

import "context"

// ISettingsRepository holds the exchange rate and the runtime-tunable
// routing identifiers.
type ISettingsRepository interface {
	// GetRate returns the current exchange rate.
	GetRate(ctx context.Context) (float64, error)

	// SetRate overwrites the exchange rate. Transactions created earlier
	// keep their snapshot.
	SetRate(ctx context.Context, rate float64) error

	// InitRate seeds the rate row when absent.
	InitRate(ctx context.Context, defaultRate float64) error

	// GetSetting returns the value for a key, or "" when unset.
	GetSetting(ctx context.Context, key string) (string, error)

	// SetSetting upserts a key/value pair.
	SetSetting(ctx context.Context, key, value string) error
}
