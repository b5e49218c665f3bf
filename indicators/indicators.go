// Package indicators provides streaming indicators fed one price at a time.
package indicators

import "github.com/shopspring/decimal"

type Indicator interface {
	Name() string
	Warmup() int
	Ready() bool
	Update(x decimal.Decimal)
	Value() decimal.Decimal
	Reset()
}
