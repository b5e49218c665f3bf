package sim

import (
	"sync"

	"github.com/rustyeddy/backtester/id"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Engine is the simulated broker. It fills at the current snapshot's bid/ask
// with no slippage and keeps every position it ever opened.
type Engine struct {
	mu     sync.Mutex
	trades map[string]*market.Position
	order  []string

	ids    *id.Generator
	logger *zap.Logger
}

type Option func(*Engine)

// WithIDs overrides the identifier source.
func WithIDs(g *id.Generator) Option {
	return func(e *Engine) { e.ids = g }
}

func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		trades: make(map[string]*market.Position),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open fills a market order at the current quote for inst.
// Longs enter on ASK, shorts on BID; both are kept in OpenQuote.
func (e *Engine) Open(s *session.Session, inst market.Instrument, dir market.Direction, units decimal.Decimal) (*market.Position, bool) {
	q, ok := s.Quote(inst)
	if !ok {
		e.logger.Debug("no quote, open skipped",
			zap.String("instrument", inst.String()),
			zap.Stringer("direction", dir))
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	p := &market.Position{
		ID:         e.newID(),
		Instrument: inst,
		Direction:  dir,
		Units:      units,
		OpenQuote:  q,
		OpenTime:   q.Time,
		Status:     market.PositionOpen,
	}
	e.trades[p.ID] = p
	e.order = append(e.order, p.ID)

	e.logger.Debug("position opened",
		zap.String("id", p.ID),
		zap.String("instrument", inst.String()),
		zap.Stringer("direction", dir),
		zap.Stringer("units", units),
		zap.Stringer("price", p.EntryPrice()),
		zap.Time("time", q.Time))
	return p, true
}

// Close closes the position at the current quote of its instrument and
// returns the same, now closed, position.
func (e *Engine) Close(s *session.Session, positionID string) (*market.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	p, ok := e.trades[positionID]
	if !ok {
		e.logger.Debug("unknown position, close skipped", zap.String("id", positionID))
		return nil, false
	}

	q, ok := s.Quote(p.Instrument)
	if !ok {
		e.logger.Debug("no quote, close skipped",
			zap.String("id", positionID),
			zap.String("instrument", p.Instrument.String()))
		return nil, false
	}

	closeTime := q.Time
	p.CloseQuote = &q
	p.CloseTime = &closeTime
	p.Status = market.PositionClosed

	pl, _ := p.Profit()
	e.logger.Debug("position closed",
		zap.String("id", p.ID),
		zap.String("instrument", p.Instrument.String()),
		zap.Stringer("profit", pl),
		zap.Time("time", closeTime))
	return p, true
}

// Positions lists positions in the order they were opened.
func (e *Engine) Positions(filter ...market.Instrument) []*market.Position {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]*market.Position, 0, len(e.order))
	for _, pid := range e.order {
		p := e.trades[pid]
		if len(filter) > 0 && p.Instrument != filter[0] {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Position looks up a single position by ID.
func (e *Engine) Position(positionID string) (*market.Position, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p, ok := e.trades[positionID]
	return p, ok
}

// IsTradeOpen reports whether the given position exists and is currently open.
func (e *Engine) IsTradeOpen(positionID string) bool {
	p, ok := e.Position(positionID)
	return ok && p.IsOpen()
}

func (e *Engine) newID() string {
	if e.ids != nil {
		return e.ids.New()
	}
	return id.New()
}
