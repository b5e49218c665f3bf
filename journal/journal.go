// Package journal persists the positions of a backtest run.
package journal

import (
	"context"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// TimeLayout is how open and close times are written.
const TimeLayout = "2006-01-02-15:04"

// Recorder is the persistence sink the runner feeds after every tick.
type Recorder interface {
	// Record persists the closed positions of s. Positions already
	// persisted are not written again.
	Record(ctx context.Context, s *session.Session) error
	// Final persists every position of s, open or closed.
	Final(ctx context.Context, s *session.Session) error
	Close() error
}

// PositionRecord is one persisted position. Close fields are empty while
// the position is open.
type PositionRecord struct {
	PositionID string
	RunID      string
	Instrument market.Instrument
	Direction  market.Direction
	Units      decimal.Decimal
	OpenPrice  decimal.Decimal
	OpenAt     time.Time
	ClosePrice decimal.NullDecimal
	CloseAt    time.Time
	Status     string
	Profit     decimal.NullDecimal
}

type RunRecord struct {
	RunID     string
	Name      string
	AccountID int64
	UserName  string
	Created   time.Time
}

// NewPositionRecord flattens p for run runID.
func NewPositionRecord(runID string, p *market.Position) PositionRecord {
	rec := PositionRecord{
		PositionID: p.ID,
		RunID:      runID,
		Instrument: p.Instrument,
		Direction:  p.Direction,
		Units:      p.Units,
		OpenPrice:  p.EntryPrice(),
		OpenAt:     p.OpenTime,
		Status:     p.Status.String(),
	}
	if price, ok := p.ExitPrice(); ok {
		rec.ClosePrice = decimal.NewNullDecimal(price)
	}
	if p.CloseTime != nil {
		rec.CloseAt = *p.CloseTime
	}
	if profit, ok := p.Profit(); ok {
		rec.Profit = decimal.NewNullDecimal(profit)
	}
	return rec
}

// New opens the recorder selected by cfg.
func New(cfg config.JournalConfig) (Recorder, error) {
	switch cfg.Type {
	case "sqlite":
		return NewSQLite(cfg.DBPath)
	case "csv":
		return NewCSV(cfg.PositionsFile)
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown journal type %q", cfg.Type)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(TimeLayout)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.ParseInLocation(TimeLayout, s, time.UTC)
}

func nullString(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}
