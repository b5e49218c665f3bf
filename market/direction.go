package market

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Direction is the stance of a position.
type Direction int

const (
	Buy Direction = iota
	Sell
)

func (d Direction) String() string {
	switch d {
	case Buy:
		return "BUY"
	case Sell:
		return "SELL"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

func ParseDirection(s string) (Direction, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return Buy, nil
	case "SELL", "SHORT":
		return Sell, nil
	default:
		return 0, fmt.Errorf("unknown direction: %q", s)
	}
}

// OpenPrice is the side a position of this direction is filled at.
// Longs pay the ASK, shorts receive the BID.
func (d Direction) OpenPrice(q Quote) decimal.Decimal {
	if d == Sell {
		return q.Bid
	}
	return q.Ask
}

// ClosePrice is the side a position of this direction exits at.
// Longs close on BID, shorts close on ASK.
func (d Direction) ClosePrice(q Quote) decimal.Decimal {
	if d == Sell {
		return q.Ask
	}
	return q.Bid
}

func (d *Direction) UnmarshalText(b []byte) error {
	v, err := ParseDirection(string(b))
	if err != nil {
		return err
	}
	*d = v
	return nil
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
