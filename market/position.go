package market

import (
	"time"

	"github.com/shopspring/decimal"
)

type PositionStatus int

const (
	PositionOpen PositionStatus = iota
	PositionClosed
)

func (s PositionStatus) String() string {
	if s == PositionClosed {
		return "CLOSED"
	}
	return "OPEN"
}

// Position is a single simulated trade. It is created by a broker's Open
// and only ever mutated by that broker's Close.
type Position struct {
	ID         string
	Instrument Instrument
	Direction  Direction
	Units      decimal.Decimal

	OpenQuote Quote
	OpenTime  time.Time

	// Nil until the position is closed.
	CloseQuote *Quote
	CloseTime  *time.Time

	Status PositionStatus
}

func (p *Position) IsOpen() bool {
	return p.Status == PositionOpen
}

// ProfitAt values the position against an arbitrary quote without changing it.
//
//	BUY:  (q.Bid - open.Ask) * units
//	SELL: (open.Bid - q.Ask) * units
func (p *Position) ProfitAt(q Quote) decimal.Decimal {
	if p.Direction == Sell {
		return p.OpenQuote.Bid.Sub(q.Ask).Mul(p.Units)
	}
	return q.Bid.Sub(p.OpenQuote.Ask).Mul(p.Units)
}

// Profit is the realized profit. ok is false while the position is open.
func (p *Position) Profit() (decimal.Decimal, bool) {
	if p.Status != PositionClosed || p.CloseQuote == nil {
		return decimal.Zero, false
	}
	return p.ProfitAt(*p.CloseQuote), true
}

// EntryPrice is the price actually paid or received on open.
func (p *Position) EntryPrice() decimal.Decimal {
	return p.Direction.OpenPrice(p.OpenQuote)
}

// ExitPrice is the close side of the close quote; ok is false while open.
func (p *Position) ExitPrice() (decimal.Decimal, bool) {
	if p.CloseQuote == nil {
		return decimal.Zero, false
	}
	return p.Direction.ClosePrice(*p.CloseQuote), true
}
