package strategies

import (
	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// OpenOnceStrategy proposes a single open the first time its instrument is
// quoted. It's meant as a wiring test.
type OpenOnceStrategy struct {
	Instrument market.Instrument
	Direction  market.Direction
	Units      decimal.Decimal

	opened bool
}

func newOpenOnce(cfg config.StrategyConfig) (Strategy, error) {
	if err := requireTrade(cfg); err != nil {
		return nil, err
	}
	return &OpenOnceStrategy{Instrument: cfg.Instrument, Direction: cfg.Direction, Units: cfg.Units}, nil
}

func (s *OpenOnceStrategy) Name() string { return "open-once" }

func (s *OpenOnceStrategy) Propose(sess *session.Session) Proposal {
	if s.opened {
		return Proposal{}
	}
	if _, ok := sess.Quote(s.Instrument); !ok {
		return Proposal{}
	}
	s.opened = true
	return Proposal{Opens: []OpenRequest{{Instrument: s.Instrument, Direction: s.Direction, Units: s.Units}}}
}
