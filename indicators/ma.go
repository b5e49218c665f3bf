package indicators

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// SMA is a streaming simple moving average over the last n values.
type SMA struct {
	n      int
	window []decimal.Decimal
	sum    decimal.Decimal
}

func NewSMA(period int) *SMA {
	if period <= 0 {
		panic("SMA period must be > 0")
	}
	return &SMA{n: period, window: make([]decimal.Decimal, 0, period)}
}

func (m *SMA) Name() string { return fmt.Sprintf("SMA(%d)", m.n) }
func (m *SMA) Warmup() int  { return m.n }
func (m *SMA) Ready() bool  { return len(m.window) >= m.n }

func (m *SMA) Update(x decimal.Decimal) {
	m.window = append(m.window, x)
	m.sum = m.sum.Add(x)
	if len(m.window) > m.n {
		m.sum = m.sum.Sub(m.window[0])
		m.window = m.window[1:]
	}
}

// Value is zero until the window is full.
func (m *SMA) Value() decimal.Decimal {
	if !m.Ready() {
		return decimal.Zero
	}
	return m.sum.Div(decimal.NewFromInt(int64(m.n)))
}

func (m *SMA) Reset() {
	m.window = m.window[:0]
	m.sum = decimal.Zero
}

const emaPlaces = 12

// EMA is a streaming exponential moving average, seeded with the first value.
type EMA struct {
	n     int
	alpha decimal.Decimal

	seen  int
	value decimal.Decimal
}

func NewEMA(period int) *EMA {
	if period <= 0 {
		panic("EMA period must be > 0")
	}
	return &EMA{
		n:     period,
		alpha: decimal.NewFromInt(2).Div(decimal.NewFromInt(int64(period + 1))),
	}
}

func (e *EMA) Name() string { return fmt.Sprintf("EMA(%d)", e.n) }
func (e *EMA) Warmup() int  { return e.n }
func (e *EMA) Ready() bool  { return e.seen >= e.n }

func (e *EMA) Update(x decimal.Decimal) {
	e.seen++
	if e.seen == 1 {
		e.value = x
		return
	}
	// alpha*x + (1-alpha)*prev, rounded so the digits don't grow every tick
	e.value = e.alpha.Mul(x).Add(decimal.NewFromInt(1).Sub(e.alpha).Mul(e.value)).Round(emaPlaces)
}

func (e *EMA) Value() decimal.Decimal { return e.value }

func (e *EMA) Reset() {
	e.seen = 0
	e.value = decimal.Zero
}
