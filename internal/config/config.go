package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"CandleDream/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Chart struct {
		Symbol         string        `yaml:"symbol"`
		StartPrice     float64       `yaml:"start_price"`
		SeedCount      int           `yaml:"seed_count"`
		Window         int           `yaml:"window"`
		TickInterval   time.Duration `yaml:"tick_interval"`
		TicksPerCandle int           `yaml:"ticks_per_candle"`
		CandleStep     int64         `yaml:"candle_step"`
		Seed           int64         `yaml:"seed"` // 0 means time-based
	} `yaml:"chart"`
	Overlay struct {
		NotifyDelay     time.Duration `yaml:"notify_delay"`
		ProjectionCount int           `yaml:"projection_count"`
		DreamOnStart    bool          `yaml:"dream_on_start"`
	} `yaml:"overlay"`
	Position struct {
		Side  string  `yaml:"side"`
		Size  float64 `yaml:"size"`
		Entry float64 `yaml:"entry"`
	} `yaml:"position"`
	Profiles model.ProfileSet `yaml:"profiles"`
	Server   struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Schedule struct {
		ReportCron string `yaml:"report_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Profiles start from the built-in defaults so a file only needs the knobs it changes.
func Load(path string) (*Config, error) {
	cfg := &Config{Profiles: model.DefaultProfiles()}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("WEB_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("REPORT_CRON"); v != "" {
		cfg.Schedule.ReportCron = v
	}
	if v := os.Getenv("CHART_START_PRICE"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Chart.StartPrice = f
		}
	}
	if v := os.Getenv("CHART_SEED"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Chart.Seed = n
		}
	}
	if v := os.Getenv("TICK_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Chart.TickInterval = d
		}
	}
	if v := os.Getenv("DREAM_ON_START"); v != "" {
		cfg.Overlay.DreamOnStart = v == "true" || v == "1"
	}

	// Defaults
	if cfg.Chart.Symbol == "" {
		cfg.Chart.Symbol = "BTC/USD"
	}
	if cfg.Chart.StartPrice == 0 {
		cfg.Chart.StartPrice = 52500
	}
	if cfg.Chart.SeedCount == 0 {
		cfg.Chart.SeedCount = 50
	}
	if cfg.Chart.Window == 0 {
		cfg.Chart.Window = 100
	}
	if cfg.Chart.TickInterval == 0 {
		cfg.Chart.TickInterval = 100 * time.Millisecond
	}
	if cfg.Chart.TicksPerCandle == 0 {
		cfg.Chart.TicksPerCandle = 20
	}
	if cfg.Chart.CandleStep == 0 {
		cfg.Chart.CandleStep = 2
	}
	if cfg.Overlay.NotifyDelay == 0 {
		cfg.Overlay.NotifyDelay = 100 * time.Millisecond
	}
	if cfg.Overlay.ProjectionCount == 0 {
		cfg.Overlay.ProjectionCount = 30
	}
	if cfg.Position.Side == "" {
		cfg.Position.Side = "LONG"
	}
	if cfg.Position.Size == 0 {
		cfg.Position.Size = 0.5
	}
	if cfg.Position.Entry == 0 {
		cfg.Position.Entry = 52000
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}

	return cfg, nil
}

// Validate checks that all fields hold usable values.
func (c *Config) Validate() error {
	if c.Chart.StartPrice <= 0 {
		return fmt.Errorf("chart.start_price must be positive")
	}
	if c.Chart.SeedCount < 1 {
		return fmt.Errorf("chart.seed_count must be at least 1")
	}
	if c.Chart.Window < 1 {
		return fmt.Errorf("chart.window must be at least 1")
	}
	if c.Chart.TickInterval <= 0 {
		return fmt.Errorf("chart.tick_interval must be positive")
	}
	if c.Chart.TicksPerCandle < 1 {
		return fmt.Errorf("chart.ticks_per_candle must be at least 1")
	}
	if c.Chart.CandleStep <= 0 {
		return fmt.Errorf("chart.candle_step must be positive")
	}
	if c.Overlay.NotifyDelay < 0 {
		return fmt.Errorf("overlay.notify_delay must not be negative")
	}
	if c.Overlay.ProjectionCount < 1 {
		return fmt.Errorf("overlay.projection_count must be at least 1")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if err := c.Profiles.Validate(); err != nil {
		return fmt.Errorf("profiles: %w", err)
	}
	return nil
}

// TelegramEnabled reports whether a bot is configured.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
