package cmd

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/market/data"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDataDukascopy(t *testing.T) {
	hour := time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	var bi5 bytes.Buffer
	require.NoError(t, data.EncodeBI5(&bi5, market.USDJPY, hour, []data.Tick{
		{Time: hour.Add(10 * time.Second), Bid: decimal.RequireFromString("115.1"), Ask: decimal.RequireFromString("115.102")},
	}))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/USDJPY/2022/02/01/00h_ticks.bi5" {
			_, _ = w.Write(bi5.Bytes())
			return
		}
		http.NotFound(w, r)
	}))
	defer srv.Close()

	out := t.TempDir()
	stdout, err := execute(t, "data", "dukascopy",
		"-i", "USDJPY", "--start", "2022-03-01T00", "--end", "2022-03-01T02",
		"-o", out, "--base", srv.URL, "--workers", "2")
	require.NoError(t, err)
	assert.Contains(t, stdout, "USD_JPY: 1 ticks")

	got, err := os.ReadFile(filepath.Join(out, "USDJPY_2022_03.csv"))
	require.NoError(t, err)
	assert.Equal(t, "2022.03.01,00:00,115.1,115.1,115.1,115.1,1\n", string(got))

	_, err = execute(t, "data", "dukascopy", "-i", "XAUUSD", "--start", "2022-03-01T00", "--end", "2022-03-01T02")
	require.Error(t, err)
}
