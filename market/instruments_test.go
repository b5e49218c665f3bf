package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstrumentFileName(t *testing.T) {
	assert.Equal(t, "USDJPY", USDJPY.FileName())
	assert.Equal(t, "EURJPY", EURJPY.FileName())
	assert.Equal(t, "GBPJPY", GBPJPY.FileName())
	assert.Equal(t, "EURUSD", EURUSD.FileName())
	assert.Equal(t, "GBPUSD", GBPUSD.FileName())
	assert.Equal(t, "EURGBP", EURGBP.FileName())
}

func TestParseInstrument(t *testing.T) {
	for _, in := range []string{"USD_JPY", "USD/JPY", "usdjpy", "UsdJpy", " usd-jpy "} {
		got, err := ParseInstrument(in)
		require.NoError(t, err, in)
		assert.Equal(t, USDJPY, got, in)
	}

	_, err := ParseInstrument("XAU_USD")
	assert.Error(t, err)
}

func TestInstrumentsTable(t *testing.T) {
	for _, inst := range AllInstruments() {
		meta, ok := Instruments[inst]
		require.True(t, ok, inst)
		assert.Equal(t, inst, meta.Name)
		assert.True(t, inst.Valid())
	}
	assert.False(t, Instrument("FOO").Valid())
}

func TestInstrumentText(t *testing.T) {
	var inst Instrument
	require.NoError(t, inst.UnmarshalText([]byte("gbp/usd")))
	assert.Equal(t, GBPUSD, inst)

	b, err := inst.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "GBP_USD", string(b))

	assert.Error(t, inst.UnmarshalText([]byte("nope")))
}
