package strategies

import (
	"fmt"
	"strings"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
)

// Strategy turns the current session into proposed orders. It never talks to
// the broker; the trader applies its proposal.
type Strategy interface {
	Name() string
	Propose(s *session.Session) Proposal
}

// OpenRequest asks for a new market position.
type OpenRequest struct {
	Instrument market.Instrument
	Direction  market.Direction
	Units      decimal.Decimal
}

// CloseRequest asks for an existing position to be closed. Units is a
// partial amount; the simulated broker always closes the whole position.
type CloseRequest struct {
	PositionID string
	Units      *decimal.Decimal
}

// Proposal is a strategy's orders for one tick. Opens are applied before
// closes.
type Proposal struct {
	Opens  []OpenRequest
	Closes []CloseRequest
}

func (p Proposal) Empty() bool {
	return len(p.Opens) == 0 && len(p.Closes) == 0
}

// Factory builds a strategy from its config block.
type Factory func(cfg config.StrategyConfig) (Strategy, error)

var registry = map[string]Factory{}

// Register makes a strategy available to StrategyByName.
func Register(name string, f Factory) {
	registry[strings.ToLower(name)] = f
}

func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	return out
}

// StrategyByName builds the named strategy.
func StrategyByName(cfg config.StrategyConfig) (Strategy, error) {
	f, ok := registry[strings.ToLower(strings.TrimSpace(cfg.Name))]
	if !ok {
		return nil, fmt.Errorf("unknown strategy %q", cfg.Name)
	}
	return f(cfg)
}

// FromConfig builds every configured strategy, keeping their order.
func FromConfig(cfgs []config.StrategyConfig) ([]Strategy, error) {
	out := make([]Strategy, 0, len(cfgs))
	for i, c := range cfgs {
		s, err := StrategyByName(c)
		if err != nil {
			return nil, fmt.Errorf("strategies[%d]: %w", i, err)
		}
		out = append(out, s)
	}
	return out, nil
}

func init() {
	Register("noop", func(config.StrategyConfig) (Strategy, error) { return NoopStrategy{}, nil })
	Register("open-once", newOpenOnce)
	Register("hold", newHold)
	Register("ema-cross", newEMACross)
}

func requireTrade(cfg config.StrategyConfig) error {
	if !cfg.Instrument.Valid() {
		return fmt.Errorf("%s: instrument is required", cfg.Name)
	}
	if !cfg.Units.IsPositive() {
		return fmt.Errorf("%s: units must be positive", cfg.Name)
	}
	return nil
}
