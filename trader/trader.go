// Package trader runs the strategies for one tick and applies their
// proposals to the broker.
package trader

import (
	"github.com/rustyeddy/backtester/broker"
	"github.com/rustyeddy/backtester/session"
	"github.com/rustyeddy/backtester/strategies"
	"go.uber.org/zap"
)

// TickStats counts what happened to one tick's proposals.
type TickStats struct {
	Opened  int
	Closed  int
	Skipped int
}

func (t *TickStats) add(o TickStats) {
	t.Opened += o.Opened
	t.Closed += o.Closed
	t.Skipped += o.Skipped
}

type Trader struct {
	broker     broker.Broker
	strategies []strategies.Strategy
	logger     *zap.Logger
}

func New(b broker.Broker, strats []strategies.Strategy, logger *zap.Logger) *Trader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Trader{broker: b, strategies: strats, logger: logger}
}

func (t *Trader) Strategies() []strategies.Strategy { return t.strategies }

// Trade asks each strategy, in order, for a proposal and applies it before
// moving to the next one: opens first, then closes. A request the broker
// can't fill is skipped, never retried.
func (t *Trader) Trade(s *session.Session) TickStats {
	var stats TickStats
	for _, st := range t.strategies {
		stats.add(t.apply(s, st.Name(), st.Propose(s)))
	}
	return stats
}

func (t *Trader) apply(s *session.Session, name string, p strategies.Proposal) TickStats {
	var stats TickStats

	for _, req := range p.Opens {
		pos, ok := t.broker.Open(s, req.Instrument, req.Direction, req.Units)
		if !ok {
			stats.Skipped++
			t.logger.Debug("open rejected",
				zap.String("strategy", name),
				zap.String("instrument", req.Instrument.String()),
				zap.Stringer("direction", req.Direction))
			continue
		}
		stats.Opened++
		t.logger.Debug("opened",
			zap.String("strategy", name),
			zap.String("position", pos.ID),
			zap.String("price", pos.EntryPrice().String()))
	}

	for _, req := range p.Closes {
		pos, ok := t.broker.Close(s, req.PositionID)
		if !ok {
			stats.Skipped++
			t.logger.Debug("close rejected",
				zap.String("strategy", name),
				zap.String("position", req.PositionID))
			continue
		}
		stats.Closed++
		profit, _ := pos.Profit()
		t.logger.Debug("closed",
			zap.String("strategy", name),
			zap.String("position", pos.ID),
			zap.String("profit", profit.String()))
	}

	return stats
}
