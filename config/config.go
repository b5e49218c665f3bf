package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// WindowLayout is the minute-level timestamp format used in config files.
const WindowLayout = "2006-01-02T15:04"

// Config represents the complete backtest configuration
type Config struct {
	User        UserConfig          `json:"user" yaml:"user"`
	Run         RunConfig           `json:"run" yaml:"run"`
	Data        DataConfig          `json:"data" yaml:"data"`
	Window      WindowConfig        `json:"window" yaml:"window"`
	Instruments []market.Instrument `json:"instruments" yaml:"instruments"`
	Strategies  []StrategyConfig    `json:"strategies" yaml:"strategies"`
	Journal     JournalConfig       `json:"journal" yaml:"journal"`
	Log         LogConfig           `json:"log" yaml:"log"`
}

// UserConfig identifies who the run is recorded for
type UserConfig struct {
	AccountID int64  `json:"account_id" yaml:"account_id"`
	Name      string `json:"name" yaml:"name"`
}

type RunConfig struct {
	Name string `json:"name" yaml:"name"`
}

// DataConfig locates the monthly price files and the instrument parameters
type DataConfig struct {
	Root     string `json:"root" yaml:"root"`
	Products string `json:"products" yaml:"products"`
}

// WindowConfig is the inclusive [start, end] replay range, minute resolution, UTC
type WindowConfig struct {
	Start string `json:"start" yaml:"start"` // e.g. "2022-02-28T23:58"
	End   string `json:"end" yaml:"end"`
}

func (w WindowConfig) Range() (start, end time.Time, err error) {
	start, err = time.ParseInLocation(WindowLayout, strings.TrimSpace(w.Start), time.UTC)
	if err != nil {
		return start, end, fmt.Errorf("window.start: %w", err)
	}
	end, err = time.ParseInLocation(WindowLayout, strings.TrimSpace(w.End), time.UTC)
	if err != nil {
		return start, end, fmt.Errorf("window.end: %w", err)
	}
	return start, end, nil
}

// StrategyConfig selects a strategy by name and carries its parameters.
// Unused parameters are ignored by strategies that don't need them.
type StrategyConfig struct {
	Name       string            `json:"name" yaml:"name"`
	Instrument market.Instrument `json:"instrument" yaml:"instrument"`
	Direction  market.Direction  `json:"direction" yaml:"direction"`
	Units      decimal.Decimal   `json:"units" yaml:"units"`
	Hold       int               `json:"hold,omitempty" yaml:"hold,omitempty"` // ticks
	Fast       int               `json:"fast,omitempty" yaml:"fast,omitempty"`
	Slow       int               `json:"slow,omitempty" yaml:"slow,omitempty"`
}

// JournalConfig contains persistence parameters
type JournalConfig struct {
	Type          string `json:"type" yaml:"type"` // "sqlite", "csv" or "none"
	DBPath        string `json:"db_path,omitempty" yaml:"db_path,omitempty"`
	PositionsFile string `json:"positions_file,omitempty" yaml:"positions_file,omitempty"`
}

type LogConfig struct {
	Level       string `json:"level" yaml:"level"`
	Development bool   `json:"development" yaml:"development"`
}

// LoadFromFile loads configuration from a file (YAML, falling back to JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration as YAML for .yaml/.yml paths and JSON otherwise
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.User.Name == "" {
		return fmt.Errorf("user.name is required")
	}
	if c.Data.Root == "" {
		return fmt.Errorf("data.root is required")
	}
	if c.Data.Products == "" {
		return fmt.Errorf("data.products is required")
	}

	start, end, err := c.Window.Range()
	if err != nil {
		return err
	}
	if end.Before(start) {
		return fmt.Errorf("window.end must not be before window.start")
	}

	if len(c.Instruments) == 0 {
		return fmt.Errorf("at least one instrument is required")
	}
	for _, inst := range c.Instruments {
		if !inst.Valid() {
			return fmt.Errorf("unknown instrument: %s", inst)
		}
	}

	if len(c.Strategies) == 0 {
		return fmt.Errorf("at least one strategy is required")
	}
	for i, s := range c.Strategies {
		if s.Name == "" {
			return fmt.Errorf("strategies[%d].name is required", i)
		}
		if s.Instrument != "" && !s.Instrument.Valid() {
			return fmt.Errorf("strategies[%d]: unknown instrument: %s", i, s.Instrument)
		}
		if s.Units.IsNegative() {
			return fmt.Errorf("strategies[%d].units must not be negative", i)
		}
		if s.Hold < 0 {
			return fmt.Errorf("strategies[%d].hold must not be negative", i)
		}
	}

	switch c.Journal.Type {
	case "none":
	case "csv":
		if c.Journal.PositionsFile == "" {
			return fmt.Errorf("journal positions_file required for CSV type")
		}
	case "sqlite":
		if c.Journal.DBPath == "" {
			return fmt.Errorf("journal db_path required for SQLite type")
		}
	default:
		return fmt.Errorf("journal.type must be 'sqlite', 'csv' or 'none'")
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	return &Config{
		User: UserConfig{
			AccountID: 1,
			Name:      "sim",
		},
		Run: RunConfig{
			Name: "default",
		},
		Data: DataConfig{
			Root:     "./data",
			Products: "./products.yaml",
		},
		Window: WindowConfig{
			Start: "2022-01-03T00:00",
			End:   "2022-01-07T23:59",
		},
		Instruments: []market.Instrument{market.USDJPY, market.EURUSD},
		Strategies: []StrategyConfig{
			{
				Name:       "hold",
				Instrument: market.USDJPY,
				Direction:  market.Buy,
				Units:      decimal.NewFromInt(10_000),
				Hold:       60,
			},
		},
		Journal: JournalConfig{
			Type:   "sqlite",
			DBPath: "./backtest.sqlite",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
