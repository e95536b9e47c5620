// Package config loads application configuration from YAML with environment
// overrides for credentials.
package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/unoinvest/rco-scanner/internal/scanner"
)

// LoggingConfig mirrors the logger package options.
type LoggingConfig struct {
	Level      string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format     string `yaml:"format" validate:"omitempty,oneof=json text"`
	Output     string `yaml:"output"`
	MaxAgeDays int    `yaml:"max_age_days" validate:"gte=0"`
}

// RedisConfig controls the optional persistence layer.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db" validate:"gte=0"`
}

// TelegramConfig controls the optional alert channel. Credentials come from
// the environment, never from the YAML file.
type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"-"`
	ChatID   string `yaml:"-"`
}

// Config is the full application configuration.
type Config struct {
	Symbols []string `yaml:"symbols" validate:"min=1,dive,required"`
	// Provider selects the chain source.
	Provider string `yaml:"provider" validate:"oneof=yahoo csv synthetic"`
	// SnapshotDir feeds the csv provider.
	SnapshotDir string `yaml:"snapshot_dir"`
	ReportDir   string `yaml:"report_dir" validate:"required"`

	Logging  LoggingConfig  `yaml:"logging"`
	Scanner  scanner.Config `yaml:"scanner"`
	Redis    RedisConfig    `yaml:"redis"`
	Telegram TelegramConfig `yaml:"telegram"`
}

// Default returns the configuration used when no file is supplied. The
// symbol list covers the liquid B3 option underlyings the methodology
// tracks.
func Default() Config {
	return Config{
		Symbols:     []string{"PETR4", "VALE3", "BBAS3", "ITUB4", "BOVA11"},
		Provider:    "yahoo",
		SnapshotDir: "snapshots",
		ReportDir:   "reports",
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Scanner: scanner.DefaultConfig(),
		Redis: RedisConfig{
			Addr: "localhost:6379",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file when given,
// then environment overrides, then validation.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	cfg.applyEnv()

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// applyEnv pulls credentials and operational overrides from the environment,
// typically populated from a .env file.
func (c *Config) applyEnv() {
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	c.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
	c.Telegram.ChatID = os.Getenv("TELEGRAM_CHAT_ID")
}
