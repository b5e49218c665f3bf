package strategies

import (
	"fmt"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// HoldStrategy keeps one position of its instrument open for Hold ticks,
// closes it and opens a fresh one.
//
// It finds its position through the session, so it only sees positions
// published by the driving loop. Until the first open is published it keeps
// waiting rather than proposing again.
type HoldStrategy struct {
	Instrument market.Instrument
	Direction  market.Direction
	Units      decimal.Decimal
	Hold       int

	pending bool
	held    int
}

func newHold(cfg config.StrategyConfig) (Strategy, error) {
	if err := requireTrade(cfg); err != nil {
		return nil, err
	}
	if cfg.Hold <= 0 {
		return nil, fmt.Errorf("hold: hold must be positive")
	}
	return &HoldStrategy{
		Instrument: cfg.Instrument,
		Direction:  cfg.Direction,
		Units:      cfg.Units,
		Hold:       cfg.Hold,
	}, nil
}

func (s *HoldStrategy) Name() string { return fmt.Sprintf("hold(%d)", s.Hold) }

func (s *HoldStrategy) Propose(sess *session.Session) Proposal {
	if _, ok := sess.Quote(s.Instrument); !ok {
		return Proposal{}
	}

	open := sess.OpenPositions(s.Instrument)
	if len(open) == 0 {
		if s.pending {
			// the open was filled but not yet published, or it found no quote
			s.pending = false
			return Proposal{}
		}
		s.pending = true
		s.held = 0
		return Proposal{Opens: []OpenRequest{{Instrument: s.Instrument, Direction: s.Direction, Units: s.Units}}}
	}

	s.pending = false
	s.held++
	if s.held < s.Hold {
		return Proposal{}
	}

	p := Proposal{}
	for _, pos := range open {
		p.Closes = append(p.Closes, CloseRequest{PositionID: pos.ID})
	}
	return p
}
