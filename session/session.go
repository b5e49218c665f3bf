// Package session holds the state shared by strategies and the broker during
// one backtest run.
package session

import (
	"github.com/google/uuid"
	"github.com/rustyeddy/backtester/market"
)

type User struct {
	AccountID int64
	Name      string
}

type Run struct {
	ID   uuid.UUID
	Name string
}

// Session is owned by the driving loop. The loop swaps in each tick's
// snapshot and publishes the ledger's positions between ticks; strategies
// and the broker only read it within a tick.
type Session struct {
	User User
	Run  Run

	Snapshot  market.Snapshot
	Positions []*market.Position
}

// New starts a session with a fresh run ID.
func New(user User, runName string) *Session {
	return &Session{
		User:     user,
		Run:      Run{ID: uuid.New(), Name: runName},
		Snapshot: market.Snapshot{},
	}
}

func (s *Session) SetSnapshot(snap market.Snapshot) {
	if snap == nil {
		snap = market.Snapshot{}
	}
	s.Snapshot = snap
}

func (s *Session) SetPositions(ps []*market.Position) {
	s.Positions = ps
}

// Quote looks up the current quote of inst.
func (s *Session) Quote(inst market.Instrument) (market.Quote, bool) {
	return s.Snapshot.Quote(inst)
}

// OpenPositions filters Positions to those still open, optionally for one instrument.
func (s *Session) OpenPositions(filter ...market.Instrument) []*market.Position {
	return s.filter(market.PositionOpen, filter)
}

func (s *Session) ClosedPositions() []*market.Position {
	return s.filter(market.PositionClosed, nil)
}

func (s *Session) filter(status market.PositionStatus, insts []market.Instrument) []*market.Position {
	var out []*market.Position
	for _, p := range s.Positions {
		if p.Status != status {
			continue
		}
		if len(insts) > 0 && p.Instrument != insts[0] {
			continue
		}
		out = append(out, p)
	}
	return out
}
