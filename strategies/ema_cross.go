package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/indicators"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// EMACrossStrategy follows a fast/slow EMA crossover on the mid price.
// A cross up opens a buy, a cross down opens a sell; either way positions in
// the other direction are closed.
type EMACrossStrategy struct {
	Instrument market.Instrument
	Units      decimal.Decimal

	fast *indicators.EMA
	slow *indicators.EMA

	prevDiff int // sign of fast-slow on the last ready tick, 0 if unknown
}

func newEMACross(cfg config.StrategyConfig) (Strategy, error) {
	if err := requireTrade(cfg); err != nil {
		return nil, err
	}
	fast, slow := cfg.Fast, cfg.Slow
	if fast == 0 {
		fast = 20
	}
	if slow == 0 {
		slow = 50
	}
	if fast <= 0 || slow <= 0 || fast >= slow {
		return nil, fmt.Errorf("ema-cross: need 0 < fast < slow, got fast=%d slow=%d", fast, slow)
	}
	return NewEMACross(cfg.Instrument, cfg.Units, fast, slow), nil
}

func NewEMACross(inst market.Instrument, units decimal.Decimal, fast, slow int) *EMACrossStrategy {
	return &EMACrossStrategy{
		Instrument: inst,
		Units:      units,
		fast:       indicators.NewEMA(fast),
		slow:       indicators.NewEMA(slow),
	}
}

func (s *EMACrossStrategy) Name() string {
	return fmt.Sprintf("ema-cross(%d,%d)", s.fast.Warmup(), s.slow.Warmup())
}

func (s *EMACrossStrategy) Propose(sess *session.Session) Proposal {
	q, ok := sess.Quote(s.Instrument)
	if !ok {
		return Proposal{}
	}

	mid := q.Mid()
	s.fast.Update(mid)
	s.slow.Update(mid)
	if !s.fast.Ready() || !s.slow.Ready() {
		return Proposal{}
	}

	diff := s.fast.Value().Cmp(s.slow.Value())
	prev := s.prevDiff
	if diff != 0 {
		s.prevDiff = diff
	}
	if prev == 0 || diff == 0 || diff == prev {
		return Proposal{}
	}

	dir := market.Buy
	if diff < 0 {
		dir = market.Sell
	}

	p := Proposal{}
	holding := false
	for _, pos := range sess.OpenPositions(s.Instrument) {
		if pos.Direction == dir {
			holding = true
			continue
		}
		p.Closes = append(p.Closes, CloseRequest{PositionID: pos.ID})
	}
	if !holding {
		p.Opens = append(p.Opens, OpenRequest{Instrument: s.Instrument, Direction: dir, Units: s.Units})
	}
	return p
}
