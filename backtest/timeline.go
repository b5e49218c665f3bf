package backtest

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"go.uber.org/zap"
)

var (
	ErrInvalidRange   = errors.New("end is before start")
	ErrMissingProduct = errors.New("no trading parameters for instrument")
)

// TimelineConfig describes which prices to load.
type TimelineConfig struct {
	Start       time.Time
	End         time.Time
	Instruments []market.Instrument
	Root        string
	Products    *config.Products
}

// Timeline is the minute-by-minute sequence of snapshots for [Start, End].
// It always holds MinutesBetween(Start, End)+1 snapshots; a minute where no
// instrument had data is an empty snapshot, never skipped.
type Timeline struct {
	start     time.Time
	snapshots []market.Snapshot
	pos       int
}

// MinutesBetween counts whole minutes from start to end, truncating.
func MinutesBetween(start, end time.Time) int {
	return int(end.Sub(start) / time.Minute)
}

// NewTimeline reads every monthly file of every instrument and aligns the
// records on the one minute grid. Any missing product, missing file or
// malformed record fails the whole build.
func NewTimeline(ctx context.Context, cfg TimelineConfig, logger *zap.Logger) (*Timeline, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	// records are UTC minutes, so the grid must be too
	cfg.Start = cfg.Start.UTC().Truncate(time.Minute)
	cfg.End = cfg.End.UTC().Truncate(time.Minute)
	if cfg.End.Before(cfg.Start) {
		return nil, fmt.Errorf("timeline %s..%s: %w",
			cfg.Start.Format(time.RFC3339), cfg.End.Format(time.RFC3339), ErrInvalidRange)
	}

	n := MinutesBetween(cfg.Start, cfg.End) + 1
	snapshots := make([]market.Snapshot, n)
	for i := range snapshots {
		snapshots[i] = market.Snapshot{}
	}

	for _, inst := range cfg.Instruments {
		product, ok := cfg.Products.Product(inst)
		if !ok {
			return nil, fmt.Errorf("%s: %w", inst, ErrMissingProduct)
		}

		prices, err := loadInstrument(ctx, inst, product, cfg)
		if err != nil {
			return nil, err
		}

		hits := 0
		for i := range snapshots {
			at := cfg.Start.Add(time.Duration(i) * time.Minute)
			if q, ok := prices[at]; ok {
				snapshots[i][inst] = q
				hits++
			}
		}

		logger.Info("instrument loaded",
			zap.String("instrument", inst.String()),
			zap.Int("records", len(prices)),
			zap.Int("minutes", n),
			zap.Int("minutes_with_data", hits))
	}

	return &Timeline{start: cfg.Start, snapshots: snapshots}, nil
}

// loadInstrument folds all of the instrument's monthly files, oldest first,
// into a map keyed by minute. Later records win.
func loadInstrument(ctx context.Context, inst market.Instrument, product config.Product, cfg TimelineConfig) (map[time.Time]market.Quote, error) {
	prices := make(map[time.Time]market.Quote)

	for _, path := range PriceFilePaths(inst, cfg.Start, cfg.End, cfg.Root) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := readPriceFile(path, product, prices); err != nil {
			return nil, err
		}
	}
	return prices, nil
}

func readPriceFile(path string, product config.Product, into map[time.Time]market.Quote) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open price file: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}
		q, err := ParseRecord(text, product)
		if err != nil {
			return &RecordError{Path: path, Line: line, Err: err}
		}
		into[q.Time] = q
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

// Len is the number of snapshots, MinutesBetween(start, end)+1.
func (t *Timeline) Len() int {
	return len(t.snapshots)
}

// At returns the snapshot of the i-th minute.
func (t *Timeline) At(i int) market.Snapshot {
	return t.snapshots[i]
}

// Time returns the minute the i-th snapshot belongs to.
func (t *Timeline) Time(i int) time.Time {
	return t.start.Add(time.Duration(i) * time.Minute)
}

// Start and End are the first and last minutes of the grid.
func (t *Timeline) Start() time.Time { return t.start }
func (t *Timeline) End() time.Time   { return t.Time(len(t.snapshots) - 1) }

// Times lists every minute of the grid in order.
func (t *Timeline) Times() []time.Time {
	out := make([]time.Time, len(t.snapshots))
	for i := range out {
		out[i] = t.Time(i)
	}
	return out
}

// Next yields snapshots in chronological order; ok is false once exhausted.
func (t *Timeline) Next() (market.Snapshot, bool) {
	if t.pos >= len(t.snapshots) {
		return nil, false
	}
	s := t.snapshots[t.pos]
	t.pos++
	return s, true
}

// Reset rewinds Next to the first minute.
func (t *Timeline) Reset() {
	t.pos = 0
}
