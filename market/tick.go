package market

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is the bid/ask of one instrument at one minute.
type Quote struct {
	Instrument Instrument
	Bid        decimal.Decimal
	Ask        decimal.Decimal
	Time       time.Time
}

func (q Quote) Mid() decimal.Decimal {
	return q.Bid.Add(q.Ask).Div(decimal.NewFromInt(2))
}

func (q Quote) Spread() decimal.Decimal {
	return q.Ask.Sub(q.Bid)
}

// Equal compares prices numerically, so 124.0 and 124.00 are the same quote.
func (q Quote) Equal(o Quote) bool {
	return q.Instrument == o.Instrument &&
		q.Bid.Equal(o.Bid) &&
		q.Ask.Equal(o.Ask) &&
		q.Time.Equal(o.Time)
}

// Snapshot holds the quotes of every instrument that had data at one instant.
// Instruments without data are simply absent.
type Snapshot map[Instrument]Quote

func (s Snapshot) Quote(inst Instrument) (Quote, bool) {
	q, ok := s[inst]
	return q, ok
}

// Instruments returns the quoted instruments in AllInstruments order.
func (s Snapshot) Instruments() []Instrument {
	out := make([]Instrument, 0, len(s))
	for _, inst := range AllInstruments() {
		if _, ok := s[inst]; ok {
			out = append(out, inst)
		}
	}
	return out
}
