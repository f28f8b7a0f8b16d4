package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	ExportSinkCSV      = "csv"
	ExportSinkPostgres = "postgres"
)

type Config struct {
	Port     int    `env:"PORT" envDefault:"8080"`
	RedisURL string `env:"REDIS_URL,required"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Export
	ExportSink        string `env:"EXPORT_SINK" envDefault:"csv"`
	ExportDir         string `env:"EXPORT_DIR" envDefault:"data"`
	DatabaseURL       string `env:"DATABASE_URL"`
	ExportBothSides   bool   `env:"EXPORT_BOTH_SIDES" envDefault:"false"`
	ExportRetryFailed bool   `env:"EXPORT_RETRY_FAILED" envDefault:"false"`

	// Affect oracles; an empty URL disables the oracle and logging
	// degrades to empty affect data.
	SentimentAPIURL string `env:"SENTIMENT_API_URL"`
	EmotionAPIURL   string `env:"EMOTION_API_URL"`
	TranslateAPIURL string `env:"TRANSLATE_API_URL"`

	SupportedLanguages []string `env:"SUPPORTED_LANGUAGES" envSeparator:"," envDefault:"en,ar,es,fr"`

	FrameMinIntervalMS int `env:"FRAME_MIN_INTERVAL_MS" envDefault:"400"`
	WaiterTTLSeconds   int `env:"WAITER_TTL_SECONDS" envDefault:"300"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) FrameMinInterval() time.Duration {
	return time.Duration(c.FrameMinIntervalMS) * time.Millisecond
}

func (c *Config) WaiterTTL() time.Duration {
	return time.Duration(c.WaiterTTLSeconds) * time.Second
}

func (c *Config) Validate() error {
	switch c.ExportSink {
	case ExportSinkCSV:
	case ExportSinkPostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when EXPORT_SINK=postgres")
		}
	default:
		return fmt.Errorf("EXPORT_SINK must be %q or %q, got %q", ExportSinkCSV, ExportSinkPostgres, c.ExportSink)
	}

	if c.FrameMinIntervalMS < 0 {
		return fmt.Errorf("FRAME_MIN_INTERVAL_MS must not be negative")
	}

	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
