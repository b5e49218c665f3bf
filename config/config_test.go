package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.NotNil(t, cfg)
	assert.Equal(t, "sim", cfg.User.Name)
	assert.Equal(t, []market.Instrument{market.USDJPY, market.EURUSD}, cfg.Instruments)
	assert.Equal(t, "sqlite", cfg.Journal.Type)
	assert.NoError(t, cfg.Validate())
}

func TestWindowRange(t *testing.T) {
	w := WindowConfig{Start: "2022-02-28T23:58", End: "2022-03-01T00:03"}
	start, end, err := w.Range()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2022, 2, 28, 23, 58, 0, 0, time.UTC), start)
	assert.Equal(t, time.Date(2022, 3, 1, 0, 3, 0, 0, time.UTC), end)

	_, _, err = WindowConfig{Start: "yesterday", End: "2022-03-01T00:03"}.Range()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
		errMsg  string
	}{
		{
			name:   "valid config",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing user",
			mutate:  func(c *Config) { c.User.Name = "" },
			wantErr: true,
			errMsg:  "user.name is required",
		},
		{
			name:    "missing data root",
			mutate:  func(c *Config) { c.Data.Root = "" },
			wantErr: true,
			errMsg:  "data.root is required",
		},
		{
			name:    "missing products",
			mutate:  func(c *Config) { c.Data.Products = "" },
			wantErr: true,
			errMsg:  "data.products is required",
		},
		{
			name:    "bad start",
			mutate:  func(c *Config) { c.Window.Start = "2022/01/01" },
			wantErr: true,
			errMsg:  "window.start",
		},
		{
			name:    "end before start",
			mutate:  func(c *Config) { c.Window.End = "2021-12-31T00:00" },
			wantErr: true,
			errMsg:  "window.end must not be before window.start",
		},
		{
			name:    "no instruments",
			mutate:  func(c *Config) { c.Instruments = nil },
			wantErr: true,
			errMsg:  "at least one instrument",
		},
		{
			name:    "unknown instrument",
			mutate:  func(c *Config) { c.Instruments = []market.Instrument{"XAU_USD"} },
			wantErr: true,
			errMsg:  "unknown instrument",
		},
		{
			name:    "no strategies",
			mutate:  func(c *Config) { c.Strategies = nil },
			wantErr: true,
			errMsg:  "at least one strategy",
		},
		{
			name:    "negative units",
			mutate:  func(c *Config) { c.Strategies[0].Units = decimal.NewFromInt(-1) },
			wantErr: true,
			errMsg:  "units must not be negative",
		},
		{
			name:    "bad journal type",
			mutate:  func(c *Config) { c.Journal.Type = "postgres" },
			wantErr: true,
			errMsg:  "journal.type must be",
		},
		{
			name:    "csv without file",
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "csv"} },
			wantErr: true,
			errMsg:  "positions_file required",
		},
		{
			name:    "sqlite without path",
			mutate:  func(c *Config) { c.Journal = JournalConfig{Type: "sqlite"} },
			wantErr: true,
			errMsg:  "db_path required",
		},
		{
			name:   "no journal",
			mutate: func(c *Config) { c.Journal = JournalConfig{Type: "none"} },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				if tt.errMsg != "" {
					assert.Contains(t, err.Error(), tt.errMsg)
				}
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name string
		ext  string
	}{
		{"json format", ".json"},
		{"yaml format", ".yaml"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			path := filepath.Join(tmpDir, "test"+tt.ext)

			require.NoError(t, cfg.SaveToFile(path))

			_, err := os.Stat(path)
			require.NoError(t, err)

			loaded, err := LoadFromFile(path)
			require.NoError(t, err)

			assert.Equal(t, cfg.User, loaded.User)
			assert.Equal(t, cfg.Window, loaded.Window)
			assert.Equal(t, cfg.Instruments, loaded.Instruments)
			require.Len(t, loaded.Strategies, 1)
			assert.Equal(t, cfg.Strategies[0].Instrument, loaded.Strategies[0].Instrument)
			assert.Equal(t, cfg.Strategies[0].Direction, loaded.Strategies[0].Direction)
			assert.True(t, cfg.Strategies[0].Units.Equal(loaded.Strategies[0].Units))
			assert.Equal(t, cfg.Journal, loaded.Journal)
		})
	}
}

func TestLoadHandWrittenYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	data := `
user:
  account_id: 7
  name: alice
run:
  name: feb-rollover
data:
  root: ./testdata
  products: ./products.yaml
window:
  start: 2022-02-28T23:58
  end: 2022-03-01T00:03
instruments: [USD/JPY, eurusd]
strategies:
  - name: open-once
    instrument: USD_JPY
    direction: sell
    units: 10000
journal:
  type: none
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, int64(7), cfg.User.AccountID)
	assert.Equal(t, []market.Instrument{market.USDJPY, market.EURUSD}, cfg.Instruments)
	assert.Equal(t, market.Sell, cfg.Strategies[0].Direction)
	assert.True(t, decimal.NewFromInt(10000).Equal(cfg.Strategies[0].Units))
}

func TestLoadInvalidFile(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/path.yaml")
	assert.Error(t, err)
}
