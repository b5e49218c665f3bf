package data

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rustyeddy/backtester/market"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const DefaultBase = "https://datafeed.dukascopy.com/datafeed"

// Fetcher downloads hourly tick files from a Dukascopy compatible feed.
type Fetcher struct {
	Client  *http.Client
	Base    string
	Workers int
	Delay   time.Duration // polite pause before each request
	Logger  *zap.Logger
}

func NewFetcher(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{
		Client:  &http.Client{Timeout: 45 * time.Second},
		Base:    DefaultBase,
		Workers: 4,
		Delay:   50 * time.Millisecond,
		Logger:  logger,
	}
}

// TickURL is the feed URL of one hour. Months are zero based in the path.
func TickURL(base string, inst market.Instrument, hour time.Time) string {
	hour = hour.UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%02d/%02dh_ticks.bi5",
		strings.TrimRight(base, "/"),
		inst.FileName(),
		hour.Year(), int(hour.Month())-1, hour.Day(), hour.Hour())
}

// FetchTicks downloads every hour in [start, end) and returns the ticks in
// time order. Hours the feed doesn't have (404) contribute nothing.
func (f *Fetcher) FetchTicks(ctx context.Context, inst market.Instrument, start, end time.Time) ([]Tick, error) {
	start = start.UTC().Truncate(time.Hour)
	end = end.UTC()
	if !end.After(start) {
		return nil, fmt.Errorf("fetch %s: end must be after start", inst)
	}

	var hours []time.Time
	for h := start; h.Before(end); h = h.Add(time.Hour) {
		hours = append(hours, h)
	}

	workers := f.Workers
	if workers <= 0 {
		workers = 1
	}
	results := make([][]Tick, len(hours))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, h := range hours {
		g.Go(func() error {
			ticks, err := f.fetchHour(ctx, inst, h)
			if err != nil {
				return err
			}
			results[i] = ticks
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var out []Tick
	for _, ticks := range results {
		out = append(out, ticks...)
	}
	f.logger().Info("ticks fetched",
		zap.String("instrument", inst.String()),
		zap.Int("hours", len(hours)),
		zap.Int("ticks", len(out)))
	return out, nil
}

func (f *Fetcher) fetchHour(ctx context.Context, inst market.Instrument, hour time.Time) ([]Tick, error) {
	if f.Delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.Delay):
		}
	}

	url := TickURL(f.Base, inst, hour)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "backtester/1.0")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		f.logger().Debug("hour missing", zap.String("url", url))
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s: http status %d", url, resp.StatusCode)
	}

	ticks, err := DecodeBI5(resp.Body, inst, hour)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", url, err)
	}
	return ticks, nil
}

func (f *Fetcher) logger() *zap.Logger {
	if f.Logger == nil {
		return zap.NewNop()
	}
	return f.Logger
}
