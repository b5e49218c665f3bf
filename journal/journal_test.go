package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/config"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	openAt  = time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC)
	closeAt = time.Date(2022, 3, 1, 0, 5, 0, 0, time.UTC)
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func usdjpy(bid, ask string, at time.Time) market.Quote {
	return market.Quote{Instrument: market.USDJPY, Bid: d(bid), Ask: d(ask), Time: at}
}

func openPos(id string, dir market.Direction) *market.Position {
	return &market.Position{
		ID:         id,
		Instrument: market.USDJPY,
		Direction:  dir,
		Units:      d("10000"),
		OpenQuote:  usdjpy("115.000", "115.002", openAt),
		OpenTime:   openAt,
		Status:     market.PositionOpen,
	}
}

func closePos(p *market.Position, bid, ask string) {
	q := usdjpy(bid, ask, closeAt)
	at := closeAt
	p.CloseQuote = &q
	p.CloseTime = &at
	p.Status = market.PositionClosed
}

func newTestSession() *session.Session {
	return session.New(session.User{AccountID: 42, Name: "alice"}, "journal-test")
}

func TestNewPositionRecord(t *testing.T) {
	p := openPos("p1", market.Buy)

	rec := NewPositionRecord("run", p)
	assert.Equal(t, "p1", rec.PositionID)
	assert.Equal(t, "run", rec.RunID)
	assert.True(t, d("115.002").Equal(rec.OpenPrice), "buy enters on ask")
	assert.Equal(t, "OPEN", rec.Status)
	assert.False(t, rec.ClosePrice.Valid)
	assert.False(t, rec.Profit.Valid)
	assert.True(t, rec.CloseAt.IsZero())

	closePos(p, "115.100", "115.102")
	rec = NewPositionRecord("run", p)
	assert.Equal(t, "CLOSED", rec.Status)
	require.True(t, rec.ClosePrice.Valid)
	assert.True(t, d("115.100").Equal(rec.ClosePrice.Decimal), "buy exits on bid")
	require.True(t, rec.Profit.Valid)
	assert.True(t, d("980").Equal(rec.Profit.Decimal))
	assert.Equal(t, closeAt, rec.CloseAt)
}

func TestNewPositionRecord_Sell(t *testing.T) {
	p := openPos("p2", market.Sell)
	closePos(p, "115.100", "115.102")

	rec := NewPositionRecord("run", p)
	assert.True(t, d("115.000").Equal(rec.OpenPrice))
	assert.True(t, d("115.102").Equal(rec.ClosePrice.Decimal))
	assert.True(t, d("-1020").Equal(rec.Profit.Decimal))
}

func TestNew(t *testing.T) {
	dir := t.TempDir()

	r, err := New(config.JournalConfig{Type: "sqlite", DBPath: filepath.Join(dir, "j.sqlite")})
	require.NoError(t, err)
	assert.IsType(t, &SQLite{}, r)
	require.NoError(t, r.Close())

	r, err = New(config.JournalConfig{Type: "csv", PositionsFile: filepath.Join(dir, "p.csv")})
	require.NoError(t, err)
	assert.IsType(t, &CSV{}, r)
	require.NoError(t, r.Close())

	r, err = New(config.JournalConfig{Type: "none"})
	require.NoError(t, err)
	assert.Equal(t, Nop{}, r)

	_, err = New(config.JournalConfig{Type: "mongo"})
	require.Error(t, err)
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	s := newTestSession()
	assert.NoError(t, r.Record(context.Background(), s))
	assert.NoError(t, r.Final(context.Background(), s))
	assert.NoError(t, r.Close())
}

func TestTimeFormat(t *testing.T) {
	assert.Equal(t, "2022-03-01-00:05", formatTime(closeAt))
	assert.Equal(t, "", formatTime(time.Time{}))

	got, err := parseTime("2022-03-01-00:05")
	require.NoError(t, err)
	assert.Equal(t, closeAt, got)
}
