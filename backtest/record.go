package backtest

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
)

// recordLayout parses "<date>.<time>", e.g. "2022.01.20.18:06".
const recordLayout = "2006.01.02.15:04"

// RecordError reports a malformed price record and where it was found.
type RecordError struct {
	Path string
	Line int
	Err  error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// PriceFilePaths lists the monthly price files covering [start, end] for inst:
//
//	<root>/<INSTRUMENT>_<yyyy>_<mm>.csv
//
// one per calendar month from start's month through end's month.
func PriceFilePaths(inst market.Instrument, start, end time.Time, root string) []string {
	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, start.Location())
	months := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month()) + 1

	paths := make([]string, 0, max(months, 0))
	for i := 0; i < months; i++ {
		m := first.AddDate(0, i, 0)
		name := fmt.Sprintf("%s_%d_%02d.csv", inst.FileName(), m.Year(), int(m.Month()))
		paths = append(paths, filepath.Join(root, name))
	}
	return paths
}

// ParseRecord parses one line of a price file:
//
//	date,time,open,high,low,close,volume
//
// The close is taken as the bid and the ask is synthesized by adding the
// product's simulated spread.
func ParseRecord(line string, product config.Product) (market.Quote, error) {
	fields := strings.Split(line, ",")
	if len(fields) < 6 {
		return market.Quote{}, fmt.Errorf("need at least 6 fields, got %d", len(fields))
	}

	stamp := strings.TrimSpace(fields[0]) + "." + strings.TrimSpace(fields[1])
	at, err := time.ParseInLocation(recordLayout, stamp, time.UTC)
	if err != nil {
		return market.Quote{}, fmt.Errorf("bad timestamp %q: %w", stamp, err)
	}

	bid, err := decimal.NewFromString(strings.TrimSpace(fields[5]))
	if err != nil {
		return market.Quote{}, fmt.Errorf("bad close %q: %w", fields[5], err)
	}

	return market.Quote{
		Instrument: product.Instrument,
		Bid:        bid,
		Ask:        bid.Add(product.Spread()),
		Time:       at,
	}, nil
}
