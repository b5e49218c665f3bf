package journal

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "test.sqlite")
	j, err := NewSQLite(path)
	require.NoError(t, err)
	j.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	t.Cleanup(func() { _ = j.Close() })

	return j, path
}

func countRows(t *testing.T, j *SQLite, table string) int {
	t.Helper()
	var n int
	require.NoError(t, j.db.QueryRow(`SELECT COUNT(*) FROM `+table).Scan(&n))
	return n
}

func TestSQLiteSchemaCreated(t *testing.T) {
	j, path := newTestSQLite(t)
	require.NoError(t, j.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='table'`)
	require.NoError(t, err)
	defer rows.Close()

	found := map[string]bool{}
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		found[name] = true
	}
	require.NoError(t, rows.Err())

	assert.True(t, found["users"])
	assert.True(t, found["runs"])
	assert.True(t, found["positions"])
}

func TestSQLiteRecordOnlyClosed(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestSQLite(t)
	s := newTestSession()

	open := openPos("open", market.Buy)
	closed := openPos("closed", market.Sell)
	closePos(closed, "115.100", "115.102")
	s.SetPositions([]*market.Position{open, closed})

	require.NoError(t, j.Record(ctx, s))
	assert.Equal(t, 1, countRows(t, j, "positions"))
	assert.Equal(t, 1, countRows(t, j, "runs"))
	assert.Equal(t, 1, countRows(t, j, "users"))

	rec, err := j.GetPosition(ctx, "closed")
	require.NoError(t, err)
	assert.Equal(t, s.Run.ID.String(), rec.RunID)
	assert.Equal(t, market.USDJPY, rec.Instrument)
	assert.Equal(t, market.Sell, rec.Direction)
	assert.True(t, d("10000").Equal(rec.Units))
	assert.True(t, d("115.000").Equal(rec.OpenPrice))
	assert.Equal(t, openAt, rec.OpenAt)
	assert.True(t, d("115.102").Equal(rec.ClosePrice.Decimal))
	assert.Equal(t, closeAt, rec.CloseAt)
	assert.Equal(t, "CLOSED", rec.Status)
	assert.True(t, d("-1020").Equal(rec.Profit.Decimal))

	_, err = j.GetPosition(ctx, "open")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLiteRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestSQLite(t)
	s := newTestSession()

	p := openPos("p", market.Buy)
	closePos(p, "115.100", "115.102")
	s.SetPositions([]*market.Position{p})

	for i := 0; i < 3; i++ {
		require.NoError(t, j.Record(ctx, s))
	}
	require.NoError(t, j.Final(ctx, s))
	assert.Equal(t, 1, countRows(t, j, "positions"))
	assert.Equal(t, 1, countRows(t, j, "runs"))
}

func TestSQLiteFinalWritesOpenAndUpdatesOnClose(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestSQLite(t)
	s := newTestSession()

	p := openPos("p", market.Buy)
	s.SetPositions([]*market.Position{p})

	require.NoError(t, j.Final(ctx, s))
	rec, err := j.GetPosition(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "OPEN", rec.Status)
	assert.False(t, rec.ClosePrice.Valid)
	assert.False(t, rec.Profit.Valid)
	assert.True(t, rec.CloseAt.IsZero())

	closePos(p, "115.100", "115.102")
	require.NoError(t, j.Record(ctx, s))

	rec, err = j.GetPosition(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, "CLOSED", rec.Status)
	assert.True(t, d("980").Equal(rec.Profit.Decimal))
	assert.Equal(t, 1, countRows(t, j, "positions"))
}

func TestSQLiteListPositionsAndRuns(t *testing.T) {
	ctx := context.Background()
	j, _ := newTestSQLite(t)

	s1 := newTestSession()
	s1.SetPositions([]*market.Position{openPos("a", market.Buy), openPos("b", market.Sell)})
	require.NoError(t, j.Final(ctx, s1))

	s2 := newTestSession()
	s2.Run.Name = "second"
	s2.SetPositions([]*market.Position{openPos("c", market.Buy)})
	require.NoError(t, j.Final(ctx, s2))

	got, err := j.ListPositions(ctx, s1.Run.ID.String())
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "a", got[0].PositionID)
	assert.Equal(t, "b", got[1].PositionID)

	got, err = j.ListPositions(ctx, "no-such-run")
	require.NoError(t, err)
	assert.Empty(t, got)

	runs, err := j.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, s1.Run.ID.String(), runs[0].RunID)
	assert.Equal(t, "journal-test", runs[0].Name)
	assert.Equal(t, int64(42), runs[0].AccountID)
	assert.Equal(t, "alice", runs[0].UserName)
	assert.Equal(t, "second", runs[1].Name)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), runs[0].Created)

	assert.Equal(t, 1, countRows(t, j, "users"))
}

func TestSQLiteInMemory(t *testing.T) {
	j, err := NewSQLite(":memory:")
	require.NoError(t, err)
	defer j.Close()

	s := newTestSession()
	s.SetPositions([]*market.Position{openPos("a", market.Buy)})
	require.NoError(t, j.Final(context.Background(), s))
	assert.Equal(t, 1, countRows(t, j, "positions"))
}
