package broker

import (
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// Broker executes market orders against the session's current snapshot.
//
// A false result is not an error: it means the instrument had no quote this
// tick, or the position ID is unknown.
type Broker interface {
	Open(s *session.Session, inst market.Instrument, dir market.Direction, units decimal.Decimal) (*market.Position, bool)
	Close(s *session.Session, positionID string) (*market.Position, bool)

	// Positions returns every position the broker knows, open or closed,
	// optionally restricted to a single instrument.
	Positions(filter ...market.Instrument) []*market.Position
}
