package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
)

// Bar is one minute of bid prices.
type Bar struct {
	Time   time.Time
	Open   decimal.Decimal
	High   decimal.Decimal
	Low    decimal.Decimal
	Close  decimal.Decimal
	Volume int64 // ticks
}

// MinuteBars folds ticks into one bar per UTC minute, in time order.
func MinuteBars(ticks []Tick) []Bar {
	byMinute := make(map[time.Time]*Bar)
	var order []time.Time

	sorted := make([]Tick, len(ticks))
	copy(sorted, ticks)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })

	for _, t := range sorted {
		m := t.Time.UTC().Truncate(time.Minute)
		b, ok := byMinute[m]
		if !ok {
			b = &Bar{Time: m, Open: t.Bid, High: t.Bid, Low: t.Bid}
			byMinute[m] = b
			order = append(order, m)
		}
		if t.Bid.GreaterThan(b.High) {
			b.High = t.Bid
		}
		if t.Bid.LessThan(b.Low) {
			b.Low = t.Bid
		}
		b.Close = t.Bid
		b.Volume++
	}

	out := make([]Bar, 0, len(order))
	for _, m := range order {
		out = append(out, *byMinute[m])
	}
	return out
}

// MonthlyPath is where the bars of inst for the month of t live under root.
func MonthlyPath(root string, inst market.Instrument, t time.Time) string {
	return filepath.Join(root, fmt.Sprintf("%s_%d_%02d.csv", inst.FileName(), t.Year(), int(t.Month())))
}

// WriteMonthly writes bars into one file per calendar month. Files of the
// months covered by bars are replaced. It returns the paths written.
func WriteMonthly(root string, inst market.Instrument, bars []Bar) ([]string, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}

	var paths []string
	for start := 0; start < len(bars); {
		y, m := bars[start].Time.Year(), bars[start].Time.Month()
		end := start
		for end < len(bars) && bars[end].Time.Year() == y && bars[end].Time.Month() == m {
			end++
		}

		path := MonthlyPath(root, inst, bars[start].Time)
		if err := writeBars(path, bars[start:end]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
		start = end
	}
	return paths, nil
}

func writeBars(path string, bars []Bar) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	for _, b := range bars {
		t := b.Time.UTC()
		err := w.Write([]string{
			t.Format("2006.01.02"),
			t.Format("15:04"),
			b.Open.String(),
			b.High.String(),
			b.Low.String(),
			b.Close.String(),
			strconv.FormatInt(b.Volume, 10),
		})
		if err != nil {
			_ = f.Close()
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
