package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		Kind    string `yaml:"kind"` // yahoo | rest | mock
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		Symbol  string `yaml:"symbol"`
		Start   string `yaml:"start"`
		End     string `yaml:"end"`
	} `yaml:"data_source"`
	Pipeline struct {
		SplitFraction float64 `yaml:"split_fraction"`
		WindowLength  int     `yaml:"window_length"`
	} `yaml:"pipeline"`
	MovingAverages []int `yaml:"moving_averages"`
	Model          struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Redis struct {
		Addr     string        `yaml:"addr"`
		Password string        `yaml:"password"`
		DB       int           `yaml:"db"`
		TTL      time.Duration `yaml:"ttl"`
	} `yaml:"redis"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Schedule struct {
		RefreshCron string   `yaml:"refresh_cron"`
		Watchlist   []string `yaml:"watchlist"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable
// overrides and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("PRICELENS_SOURCE"); v != "" {
		cfg.DataSource.Kind = v
	}
	if v := os.Getenv("PRICELENS_BASE_URL"); v != "" {
		cfg.DataSource.BaseURL = v
	}
	if v := os.Getenv("PRICELENS_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("PRICELENS_SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("MODEL_PATH"); v != "" {
		cfg.Model.Path = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Redis.Password = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			cfg.Redis.DB = db
		}
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("CRON_REFRESH"); v != "" {
		cfg.Schedule.RefreshCron = v
	}
	if v := os.Getenv("WATCHLIST"); v != "" {
		cfg.Schedule.Watchlist = splitList(v)
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.DataSource.Kind == "" {
		if cfg.DataSource.BaseURL != "" {
			cfg.DataSource.Kind = "rest"
		} else {
			cfg.DataSource.Kind = "yahoo"
		}
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "GOOG"
	}
	if cfg.DataSource.Start == "" {
		cfg.DataSource.Start = "2015-01-01"
	}
	if cfg.DataSource.End == "" {
		cfg.DataSource.End = "2025-03-01"
	}
	if cfg.Pipeline.SplitFraction == 0 {
		cfg.Pipeline.SplitFraction = 0.8
	}
	if cfg.Pipeline.WindowLength == 0 {
		cfg.Pipeline.WindowLength = 100
	}
	if len(cfg.MovingAverages) == 0 {
		cfg.MovingAverages = []int{50, 100, 200}
	}
	if cfg.Model.Path == "" {
		cfg.Model.Path = "models/stock_model.yaml"
	}
	if cfg.Redis.TTL == 0 {
		cfg.Redis.TTL = 12 * time.Hour
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/pricelens.db"
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Schedule.RefreshCron == "" {
		cfg.Schedule.RefreshCron = "0 30 22 * * 1-5"
	}
	if len(cfg.Schedule.Watchlist) == 0 {
		cfg.Schedule.Watchlist = []string{cfg.DataSource.Symbol}
	}
}

// Validate checks that all required fields are set and consistent.
func (c *Config) Validate() error {
	switch c.DataSource.Kind {
	case "yahoo", "mock":
	case "rest":
		if c.DataSource.BaseURL == "" {
			return fmt.Errorf("data_source.base_url is required for kind rest")
		}
	default:
		return fmt.Errorf("data_source.kind %q is not one of yahoo, rest, mock", c.DataSource.Kind)
	}
	start, end, err := c.DateRange()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("data_source.end must be after data_source.start")
	}
	if c.Pipeline.SplitFraction <= 0 || c.Pipeline.SplitFraction >= 1 {
		return fmt.Errorf("pipeline.split_fraction must be in (0, 1)")
	}
	if c.Pipeline.WindowLength <= 0 {
		return fmt.Errorf("pipeline.window_length must be positive")
	}
	for _, w := range c.MovingAverages {
		if w <= 0 {
			return fmt.Errorf("moving_averages: window %d must be positive", w)
		}
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model.path is required")
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	if c.Telegram.ChatID != "" {
		if _, err := strconv.ParseInt(c.Telegram.ChatID, 10, 64); err != nil {
			return fmt.Errorf("telegram.chat_id must be a numeric chat id, got %q", c.Telegram.ChatID)
		}
	}
	return nil
}

// DateRange parses the configured start and end dates (YYYY-MM-DD, UTC).
func (c *Config) DateRange() (time.Time, time.Time, error) {
	start, err := ParseDate(c.DataSource.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_source.start: %w", err)
	}
	end, err := ParseDate(c.DataSource.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("data_source.end: %w", err)
	}
	return start, end, nil
}

// TelegramEnabled reports whether bot credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}

// ParseDate parses a YYYY-MM-DD date in UTC.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(time.DateOnly, strings.TrimSpace(s), time.UTC)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
