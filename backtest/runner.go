package backtest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/journal"
	"github.com/rustyeddy/backtester/session"
	"github.com/rustyeddy/backtester/trader"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Runner drives one backtest: every minute of the timeline goes through the
// trader, the ledger's positions are published to the session and the
// recorder sees the result.
type Runner struct {
	Timeline *Timeline
	Trader   *trader.Trader
	Broker   broker.Broker
	Recorder journal.Recorder
	Session  *session.Session
	Logger   *zap.Logger
}

// Result summarizes a finished run from the ledger's point of view.
type Result struct {
	RunID string
	Ticks int

	Trades int // closed positions
	Wins   int
	Losses int
	Open   int

	NetProfit decimal.Decimal

	Start time.Time
	End   time.Time
}

func (r *Runner) validate() error {
	switch {
	case r.Timeline == nil:
		return errors.New("runner: timeline is required")
	case r.Trader == nil:
		return errors.New("runner: trader is required")
	case r.Broker == nil:
		return errors.New("runner: broker is required")
	case r.Session == nil:
		return errors.New("runner: session is required")
	}
	return nil
}

func (r *Runner) Run(ctx context.Context) (Result, error) {
	if err := r.validate(); err != nil {
		return Result{}, err
	}
	rec := r.Recorder
	if rec == nil {
		rec = journal.Nop{}
	}
	log := r.Logger
	if log == nil {
		log = zap.NewNop()
	}

	log.Info("backtest started",
		zap.String("run", r.Session.Run.ID.String()),
		zap.Time("start", r.Timeline.Start()),
		zap.Time("end", r.Timeline.End()),
		zap.Int("ticks", r.Timeline.Len()))

	var stats trader.TickStats
	ticks := 0
	r.Timeline.Reset()
	for {
		if err := ctx.Err(); err != nil {
			return r.result(ticks), err
		}
		snap, ok := r.Timeline.Next()
		if !ok {
			break
		}

		r.Session.SetSnapshot(snap)
		ts := r.Trader.Trade(r.Session)
		stats.Opened += ts.Opened
		stats.Closed += ts.Closed
		stats.Skipped += ts.Skipped

		r.Session.SetPositions(r.Broker.Positions())
		if err := rec.Record(ctx, r.Session); err != nil {
			return r.result(ticks), fmt.Errorf("record tick %d: %w", ticks, err)
		}
		ticks++
	}

	if err := rec.Final(ctx, r.Session); err != nil {
		return r.result(ticks), fmt.Errorf("final record: %w", err)
	}

	res := r.result(ticks)
	log.Info("backtest finished",
		zap.Int("ticks", res.Ticks),
		zap.Int("opened", stats.Opened),
		zap.Int("closed", stats.Closed),
		zap.Int("skipped", stats.Skipped),
		zap.String("net_profit", res.NetProfit.String()))
	return res, nil
}

func (r *Runner) result(ticks int) Result {
	res := Result{
		RunID:     r.Session.Run.ID.String(),
		Ticks:     ticks,
		NetProfit: decimal.Zero,
		Start:     r.Timeline.Start(),
		End:       r.Timeline.End(),
	}
	for _, p := range r.Broker.Positions() {
		profit, ok := p.Profit()
		if !ok {
			res.Open++
			continue
		}
		res.Trades++
		res.NetProfit = res.NetProfit.Add(profit)
		switch {
		case profit.IsPositive():
			res.Wins++
		case profit.IsNegative():
			res.Losses++
		}
	}
	return res
}
