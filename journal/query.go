package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
)

var ErrNotFound = errors.New("not found")

const positionColumns = `position_id, run_id, instrument, direction, units, open_price, open_at, close_price, close_at, status, profit`

type rowScanner interface {
	Scan(dest ...any) error
}

// GetPosition returns a single position by ID.
func (j *SQLite) GetPosition(ctx context.Context, positionID string) (PositionRecord, error) {
	row := j.db.QueryRowContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE position_id = ?`, positionID)

	rec, err := scanPosition(row)
	if errors.Is(err, sql.ErrNoRows) {
		return PositionRecord{}, fmt.Errorf("position %q: %w", positionID, ErrNotFound)
	}
	return rec, err
}

// ListPositions returns the positions of a run ordered by open time.
func (j *SQLite) ListPositions(ctx context.Context, runID string) ([]PositionRecord, error) {
	rows, err := j.db.QueryContext(ctx,
		`SELECT `+positionColumns+` FROM positions WHERE run_id = ? ORDER BY open_at ASC, rowid ASC`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PositionRecord
	for rows.Next() {
		rec, err := scanPosition(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListRuns returns every recorded run, oldest first.
func (j *SQLite) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT r.run_id, r.name, r.account_id, COALESCE(u.name, ''), r.created
		FROM runs r LEFT JOIN users u ON u.account_id = r.account_id
		ORDER BY r.created ASC, r.rowid ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var (
			rec     RunRecord
			created string
		)
		if err := rows.Scan(&rec.RunID, &rec.Name, &rec.AccountID, &rec.UserName, &created); err != nil {
			return nil, err
		}
		if rec.Created, err = time.Parse(time.RFC3339, created); err != nil {
			return nil, fmt.Errorf("run %s: created: %w", rec.RunID, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanPosition(row rowScanner) (PositionRecord, error) {
	var (
		rec                     PositionRecord
		inst, dir, units, open  string
		openAt                  string
		closePrice, closeAt, pl sql.NullString
	)
	err := row.Scan(&rec.PositionID, &rec.RunID, &inst, &dir, &units, &open, &openAt,
		&closePrice, &closeAt, &rec.Status, &pl)
	if err != nil {
		return PositionRecord{}, err
	}

	if rec.Instrument, err = market.ParseInstrument(inst); err != nil {
		return PositionRecord{}, err
	}
	if rec.Direction, err = market.ParseDirection(dir); err != nil {
		return PositionRecord{}, err
	}
	if rec.Units, err = decimal.NewFromString(units); err != nil {
		return PositionRecord{}, fmt.Errorf("units: %w", err)
	}
	if rec.OpenPrice, err = decimal.NewFromString(open); err != nil {
		return PositionRecord{}, fmt.Errorf("open_price: %w", err)
	}
	if rec.OpenAt, err = parseTime(openAt); err != nil {
		return PositionRecord{}, fmt.Errorf("open_at: %w", err)
	}
	if closeAt.Valid {
		if rec.CloseAt, err = parseTime(closeAt.String); err != nil {
			return PositionRecord{}, fmt.Errorf("close_at: %w", err)
		}
	}
	if rec.ClosePrice, err = parseNullDecimal(closePrice); err != nil {
		return PositionRecord{}, fmt.Errorf("close_price: %w", err)
	}
	if rec.Profit, err = parseNullDecimal(pl); err != nil {
		return PositionRecord{}, fmt.Errorf("profit: %w", err)
	}
	return rec, nil
}

func parseNullDecimal(s sql.NullString) (decimal.NullDecimal, error) {
	if !s.Valid || s.String == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(s.String)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(d), nil
}
