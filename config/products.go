package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

var ErrNoProducts = errors.New("no products defined")

// Product holds the trading parameters of one instrument. Price files only
// carry a single price, so the ask is synthesized from the bid and the
// simulated spread.
type Product struct {
	Instrument market.Instrument `yaml:"instrument" json:"instrument"`
	PipUnit    decimal.Decimal   `yaml:"pip_unit" json:"pip_unit"`
	SpreadPips decimal.Decimal   `yaml:"spread_pips" json:"spread_pips"`
}

// Spread is the simulated spread in price units.
func (p Product) Spread() decimal.Decimal {
	return p.PipUnit.Mul(p.SpreadPips)
}

// Products is the set of per instrument trading parameters.
type Products struct {
	byInstrument map[market.Instrument]Product
}

type productsFile struct {
	Products []Product `yaml:"products"`
}

func NewProducts(ps ...Product) *Products {
	m := make(map[market.Instrument]Product, len(ps))
	for _, p := range ps {
		m[p.Instrument] = p
	}
	return &Products{byInstrument: m}
}

// LoadProducts reads the products YAML file at path.
func LoadProducts(path string) (*Products, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read products file: %w", err)
	}
	return ParseProducts(data)
}

func ParseProducts(data []byte) (*Products, error) {
	var f productsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse products: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, ErrNoProducts
	}

	for i, p := range f.Products {
		if !p.Instrument.Valid() {
			return nil, fmt.Errorf("products[%d]: unknown instrument %q", i, p.Instrument)
		}
		if !p.PipUnit.IsPositive() {
			return nil, fmt.Errorf("products[%d]: pip_unit must be positive", i)
		}
		if p.SpreadPips.IsNegative() {
			return nil, fmt.Errorf("products[%d]: spread_pips must not be negative", i)
		}
	}
	return NewProducts(f.Products...), nil
}

// Product returns the parameters for inst, if any were configured.
func (p *Products) Product(inst market.Instrument) (Product, bool) {
	if p == nil {
		return Product{}, false
	}
	prod, ok := p.byInstrument[inst]
	return prod, ok
}

func (p *Products) Len() int {
	if p == nil {
		return 0
	}
	return len(p.byInstrument)
}
