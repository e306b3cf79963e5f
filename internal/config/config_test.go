package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Kind)
	assert.Equal(t, "GOOG", cfg.DataSource.Symbol)
	assert.Equal(t, 0.8, cfg.Pipeline.SplitFraction)
	assert.Equal(t, 100, cfg.Pipeline.WindowLength)
	assert.Equal(t, []int{50, 100, 200}, cfg.MovingAverages)
	assert.Equal(t, 12*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, []string{"GOOG"}, cfg.Schedule.Watchlist)
	assert.False(t, cfg.TelegramEnabled())

	start, end, err := cfg.DateRange()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), end)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  kind: rest
  base_url: http://bars.local
  symbol: MSFT
  start: "2020-01-01"
  end: "2024-01-01"
pipeline:
  window_length: 60
moving_averages: [20, 50]
redis:
  addr: localhost:6379
  ttl: 30m
schedule:
  watchlist: [MSFT, AAPL]
`)
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PRICELENS_SYMBOL", "NVDA")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rest", cfg.DataSource.Kind)
	assert.Equal(t, "NVDA", cfg.DataSource.Symbol)
	assert.Equal(t, 60, cfg.Pipeline.WindowLength)
	assert.Equal(t, 0.8, cfg.Pipeline.SplitFraction)
	assert.Equal(t, []int{20, 50}, cfg.MovingAverages)
	assert.Equal(t, 30*time.Minute, cfg.Redis.TTL)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, []string{"MSFT", "AAPL"}, cfg.Schedule.Watchlist)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_WatchlistEnv(t *testing.T) {
	t.Setenv("WATCHLIST", "goog, aapl ,,msft")
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"goog", "aapl", "msft"}, cfg.Schedule.Watchlist)
}

func TestLoad_InvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "pipeline: [unclosed"))
	require.Error(t, err)
	assert.True(t, strings.HasPrefix(err.Error(), "parse config"))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown kind", func(c *Config) { c.DataSource.Kind = "csv" }, "data_source.kind"},
		{"rest without url", func(c *Config) { c.DataSource.Kind = "rest"; c.DataSource.BaseURL = "" }, "base_url"},
		{"bad start", func(c *Config) { c.DataSource.Start = "01/01/2015" }, "data_source.start"},
		{"end before start", func(c *Config) { c.DataSource.End = "2014-01-01" }, "after"},
		{"split fraction", func(c *Config) { c.Pipeline.SplitFraction = 1 }, "split_fraction"},
		{"window length", func(c *Config) { c.Pipeline.WindowLength = -5 }, "window_length"},
		{"ma window", func(c *Config) { c.MovingAverages = []int{50, 0} }, "moving_averages"},
		{"half telegram", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"channel name chat id", func(c *Config) { c.Telegram.BotToken = "x"; c.Telegram.ChatID = "@prices" }, "numeric chat id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
			require.NoError(t, err)
			tt.mutate(cfg)
			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_NumericChatID(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	cfg.Telegram.BotToken = "x"
	cfg.Telegram.ChatID = "-1001234567890"
	assert.NoError(t, cfg.Validate())
}
