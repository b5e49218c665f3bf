package market

import (
	"fmt"
	"strings"
)

// Instrument is a tradable currency pair, e.g. "USD_JPY".
type Instrument string

const (
	USDJPY Instrument = "USD_JPY"
	EURJPY Instrument = "EUR_JPY"
	GBPJPY Instrument = "GBP_JPY"
	EURUSD Instrument = "EUR_USD"
	GBPUSD Instrument = "GBP_USD"
	EURGBP Instrument = "EUR_GBP"
)

type InstrumentMeta struct {
	Name          Instrument
	BaseCurrency  string
	QuoteCurrency string
	PipLocation   int
}

var Instruments = map[Instrument]InstrumentMeta{
	USDJPY: {Name: USDJPY, BaseCurrency: "USD", QuoteCurrency: "JPY", PipLocation: -2},
	EURJPY: {Name: EURJPY, BaseCurrency: "EUR", QuoteCurrency: "JPY", PipLocation: -2},
	GBPJPY: {Name: GBPJPY, BaseCurrency: "GBP", QuoteCurrency: "JPY", PipLocation: -2},
	EURUSD: {Name: EURUSD, BaseCurrency: "EUR", QuoteCurrency: "USD", PipLocation: -4},
	GBPUSD: {Name: GBPUSD, BaseCurrency: "GBP", QuoteCurrency: "USD", PipLocation: -4},
	EURGBP: {Name: EURGBP, BaseCurrency: "EUR", QuoteCurrency: "GBP", PipLocation: -4},
}

// AllInstruments lists the supported pairs in a fixed order.
func AllInstruments() []Instrument {
	return []Instrument{USDJPY, EURJPY, GBPJPY, EURUSD, GBPUSD, EURGBP}
}

// ParseInstrument accepts "USD_JPY", "USD/JPY", "USDJPY" or "UsdJpy" in any case.
func ParseInstrument(s string) (Instrument, error) {
	key := strings.ToUpper(strings.TrimSpace(s))
	key = strings.NewReplacer("_", "", "/", "", "-", "").Replace(key)
	for _, inst := range AllInstruments() {
		if inst.FileName() == key {
			return inst, nil
		}
	}
	return "", fmt.Errorf("unknown instrument: %q", s)
}

// Valid reports whether the instrument is one of the supported pairs.
func (i Instrument) Valid() bool {
	_, ok := Instruments[i]
	return ok
}

// FileName is the upper case pair without separator, used to name price files.
func (i Instrument) FileName() string {
	return strings.ToUpper(strings.ReplaceAll(string(i), "_", ""))
}

func (i Instrument) String() string {
	return string(i)
}

// UnmarshalText lets instruments be decoded from config in any accepted
// spelling. An empty value decodes to the empty instrument.
func (i *Instrument) UnmarshalText(b []byte) error {
	if strings.TrimSpace(string(b)) == "" {
		*i = ""
		return nil
	}
	inst, err := ParseInstrument(string(b))
	if err != nil {
		return err
	}
	*i = inst
	return nil
}

func (i Instrument) MarshalText() ([]byte, error) {
	return []byte(i), nil
}
