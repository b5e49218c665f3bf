package journal

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rustyeddy/backtester/market"
	"github.com/rustyeddy/backtester/session"
)

// SQLite records runs and their positions in a SQLite database.
type SQLite struct {
	db  *sql.DB
	now func() time.Time

	runs     map[string]bool
	recorded map[string]bool
}

func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// one connection so ":memory:" databases are shared
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &SQLite{
		db:       db,
		now:      time.Now,
		runs:     make(map[string]bool),
		recorded: make(map[string]bool),
	}, nil
}

// Record upserts the closed positions of s that haven't been recorded yet.
func (j *SQLite) Record(ctx context.Context, s *session.Session) error {
	var recs []PositionRecord
	for _, p := range s.ClosedPositions() {
		if j.recorded[p.ID] {
			continue
		}
		recs = append(recs, NewPositionRecord(s.Run.ID.String(), p))
	}
	if len(recs) == 0 {
		return nil
	}
	return j.write(ctx, s, recs)
}

// Final upserts every position of s.
func (j *SQLite) Final(ctx context.Context, s *session.Session) error {
	recs := make([]PositionRecord, 0, len(s.Positions))
	for _, p := range s.Positions {
		recs = append(recs, NewPositionRecord(s.Run.ID.String(), p))
	}
	return j.write(ctx, s, recs)
}

func (j *SQLite) write(ctx context.Context, s *session.Session, recs []PositionRecord) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	runID := s.Run.ID.String()
	if !j.runs[runID] {
		if err := j.saveRun(ctx, tx, s); err != nil {
			return err
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO positions
		(position_id, run_id, instrument, direction, units, open_price, open_at, close_price, close_at, status, profit)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(position_id) DO UPDATE SET
			close_price = excluded.close_price,
			close_at = excluded.close_at,
			status = excluded.status,
			profit = excluded.profit`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range recs {
		_, err := stmt.ExecContext(ctx,
			r.PositionID, r.RunID, r.Instrument.String(), r.Direction.String(),
			r.Units.String(), r.OpenPrice.String(), formatTime(r.OpenAt),
			nullable(nullString(r.ClosePrice)), nullable(formatTime(r.CloseAt)),
			r.Status, nullable(nullString(r.Profit)),
		)
		if err != nil {
			return fmt.Errorf("upsert position %s: %w", r.PositionID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	j.runs[runID] = true
	for _, r := range recs {
		if r.Status == market.PositionClosed.String() {
			j.recorded[r.PositionID] = true
		}
	}
	return nil
}

func (j *SQLite) saveRun(ctx context.Context, tx *sql.Tx, s *session.Session) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO users (account_id, name) VALUES (?, ?)
		ON CONFLICT(account_id) DO UPDATE SET name = excluded.name`,
		s.User.AccountID, s.User.Name)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (run_id, name, account_id, created) VALUES (?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING`,
		s.Run.ID.String(), s.Run.Name, s.User.AccountID, j.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func (j *SQLite) Close() error {
	return j.db.Close()
}

func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
