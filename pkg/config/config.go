package config

import (
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/zwehtet-dev/tg-bot/pkg/logger"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logger     logger.Config    `yaml:"logger"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Matching   MatchingConfig   `yaml:"matching"`
	Extraction ExtractionConfig `yaml:"extraction"`
	Messenger  MessengerConfig  `yaml:"messenger"`
	WebSocket  WebSocketConfig  `yaml:"websocket"`
	JWT        JWTConfig        `yaml:"jwt"`
	Security   SecurityConfig   `yaml:"security"`
}

type ServerConfig struct {
	Host        string `yaml:"host"`
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
}

type DatabaseConfig struct {
	Host         string `yaml:"host"`
	Port         string `yaml:"port"`
	User         string `yaml:"user"`
	DBName       string `yaml:"name"`
	Password     string `yaml:"password"`
	SSLMode      string `yaml:"ssl_mode"`
	MaxOpenConns int    `yaml:"max_open_conns"`
	MaxIdleConns int    `yaml:"max_idle_conns"`
}

// ExchangeConfig carries the workflow tunables: the default rate seeded on
// first start, the currency pair the broker trades, and the sweeper that
// nags operators about stale pending transactions.
type ExchangeConfig struct {
	SourceCurrency      string        `yaml:"source_currency"`
	TargetCurrency      string        `yaml:"target_currency"`
	DefaultRate         float64       `yaml:"default_rate"`
	SweepInterval       time.Duration `yaml:"sweep_interval"`
	StalePendingAge     time.Duration `yaml:"stale_pending_age"`
	OperatorChannelID   string        `yaml:"operator_channel_id"`
	OperatorThreadID    string        `yaml:"operator_thread_id"`
	BalanceThreadID     string        `yaml:"balance_thread_id"`
	InitialBalances     []SeedBalance `yaml:"initial_balances"`
	RequireExtractedRef bool          `yaml:"require_extracted_ref"`
}

type SeedBalance struct {
	Currency      string  `yaml:"currency"`
	Bank          string  `yaml:"bank"`
	AccountNumber string  `yaml:"account_number"`
	AccountName   string  `yaml:"account_name"`
	DisplayName   string  `yaml:"display_name"`
	Balance       float64 `yaml:"balance"`
}

// MatchingConfig tunes the receiver-account matcher. The threshold has
// drifted between 0.80 and 0.85 across deployments, so it is config, not
// a constant.
type MatchingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	BankMatchBonus      float64 `yaml:"bank_match_bonus"`
}

type ExtractionConfig struct {
	BaseURL          string `yaml:"base_url"`
	APIKey           string `yaml:"api_key"`
	Model            string `yaml:"model"`
	Timeout          int    `yaml:"timeout"`
	MaxRetries       int    `yaml:"max_retries"`
	RetryBackoffBase int    `yaml:"retry_backoff_base"`
}

type MessengerConfig struct {
	WebhookURL       string `yaml:"webhook_url"`
	Timeout          int    `yaml:"timeout"`
	MaxRetries       int    `yaml:"max_retries"`
	RetryBackoffBase int    `yaml:"retry_backoff_base"`
}

type WebSocketConfig struct {
	ReadBufferSize  int  `yaml:"read_buffer_size"`
	WriteBufferSize int  `yaml:"write_buffer_size"`
	CheckOrigin     bool `yaml:"check_origin"`
}

type JWTConfig struct {
	Secret   string        `yaml:"secret"`
	Lifetime time.Duration `yaml:"lifetime"`
}

type SecurityConfig struct {
	OperatorAPIKey string `yaml:"operator_api_key"`
}

func Load(path string) (*Config, error) {
	// .env is optional outside local development
	_ = godotenv.Load()

	configData, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if err := yaml.Unmarshal(configData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()
	config.applyEnv()

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Exchange.SourceCurrency == "" {
		c.Exchange.SourceCurrency = "THB"
	}
	if c.Exchange.TargetCurrency == "" {
		c.Exchange.TargetCurrency = "MMK"
	}
	if c.Exchange.DefaultRate == 0 {
		c.Exchange.DefaultRate = 121.5
	}
	if c.Exchange.SweepInterval == 0 {
		c.Exchange.SweepInterval = 10 * time.Minute
	}
	if c.Exchange.StalePendingAge == 0 {
		c.Exchange.StalePendingAge = time.Hour
	}
	if c.Matching.SimilarityThreshold == 0 {
		c.Matching.SimilarityThreshold = 0.85
	}
	if c.Matching.BankMatchBonus == 0 {
		c.Matching.BankMatchBonus = 0.05
	}
	if c.JWT.Lifetime == 0 {
		c.JWT.Lifetime = 12 * time.Hour
	}
}

func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_PASSWORD"); v != "" {
		c.Database.Password = v
	}
	if v := os.Getenv("EXTRACTION_API_KEY"); v != "" {
		c.Extraction.APIKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.JWT.Secret = v
	}
	if v := os.Getenv("OPERATOR_API_KEY"); v != "" {
		c.Security.OperatorAPIKey = v
	}
}
