package journal

import (
	"context"
	"encoding/csv"
	"os"

	"github.com/rustyeddy/backtester/session"
)

var csvHeader = []string{
	"position_id", "run_id", "instrument", "direction", "units",
	"open_price", "open_at", "close_price", "close_at", "status", "profit",
}

// CSV appends positions to a single CSV file. A closed position is written
// once; Final adds whatever was still open.
type CSV struct {
	f       *os.File
	w       *csv.Writer
	written map[string]bool
}

func NewCSV(path string) (*CSV, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w := csv.NewWriter(f)
	if err := w.Write(csvHeader); err != nil {
		_ = f.Close()
		return nil, err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &CSV{f: f, w: w, written: make(map[string]bool)}, nil
}

func (j *CSV) Record(_ context.Context, s *session.Session) error {
	for _, p := range s.ClosedPositions() {
		if j.written[p.ID] {
			continue
		}
		if err := j.write(NewPositionRecord(s.Run.ID.String(), p)); err != nil {
			return err
		}
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) Final(_ context.Context, s *session.Session) error {
	for _, p := range s.Positions {
		if j.written[p.ID] {
			continue
		}
		if err := j.write(NewPositionRecord(s.Run.ID.String(), p)); err != nil {
			return err
		}
	}
	j.w.Flush()
	return j.w.Error()
}

func (j *CSV) write(r PositionRecord) error {
	err := j.w.Write([]string{
		r.PositionID,
		r.RunID,
		r.Instrument.String(),
		r.Direction.String(),
		r.Units.String(),
		r.OpenPrice.String(),
		formatTime(r.OpenAt),
		nullString(r.ClosePrice),
		formatTime(r.CloseAt),
		r.Status,
		nullString(r.Profit),
	})
	if err != nil {
		return err
	}
	j.written[r.PositionID] = true
	return nil
}

func (j *CSV) Close() error {
	j.w.Flush()
	if err := j.w.Error(); err != nil {
		_ = j.f.Close()
		return err
	}
	return j.f.Close()
}
