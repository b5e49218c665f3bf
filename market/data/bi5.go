// Package data imports historical prices from Dukascopy and writes them as
// the monthly minute files the backtester reads.
package data

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/rustyeddy/backtester/market"
	"github.com/shopspring/decimal"
	"github.com/ulikunitz/xz/lzma"
)

// bi5 records are 20 bytes, big endian: ms offset into the hour, ask, bid
// (both integer points), ask volume, bid volume (float32).
const recordSize = 20

type Tick struct {
	Time      time.Time
	Bid       decimal.Decimal
	Ask       decimal.Decimal
	BidVolume float32
	AskVolume float32
}

// pointExp is the decimal exponent of one Dukascopy point, a tenth of a pip.
func pointExp(inst market.Instrument) (int32, error) {
	meta, ok := market.Instruments[inst]
	if !ok {
		return 0, fmt.Errorf("unknown instrument %q", inst)
	}
	return int32(meta.PipLocation - 1), nil
}

// DecodeBI5 decompresses one hour of ticks. hour is the start of the hour
// the file belongs to. An empty file is an hour without ticks.
func DecodeBI5(r io.Reader, inst market.Instrument, hour time.Time) ([]Tick, error) {
	exp, err := pointExp(inst)
	if err != nil {
		return nil, err
	}

	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(compressed) == 0 {
		return nil, nil
	}

	lr, err := lzma.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	raw, err := io.ReadAll(lr)
	if err != nil {
		return nil, fmt.Errorf("lzma: %w", err)
	}
	if len(raw)%recordSize != 0 {
		return nil, fmt.Errorf("bi5: %d bytes is not a whole number of records", len(raw))
	}

	hour = hour.UTC()
	ticks := make([]Tick, 0, len(raw)/recordSize)
	for off := 0; off < len(raw); off += recordSize {
		rec := raw[off : off+recordSize]
		ms := binary.BigEndian.Uint32(rec[0:4])
		ticks = append(ticks, Tick{
			Time:      hour.Add(time.Duration(ms) * time.Millisecond),
			Ask:       decimal.New(int64(binary.BigEndian.Uint32(rec[4:8])), exp),
			Bid:       decimal.New(int64(binary.BigEndian.Uint32(rec[8:12])), exp),
			AskVolume: math.Float32frombits(binary.BigEndian.Uint32(rec[12:16])),
			BidVolume: math.Float32frombits(binary.BigEndian.Uint32(rec[16:20])),
		})
	}
	return ticks, nil
}

// EncodeBI5 is the inverse of DecodeBI5. It's used to build fixtures and
// local caches.
func EncodeBI5(w io.Writer, inst market.Instrument, hour time.Time, ticks []Tick) error {
	exp, err := pointExp(inst)
	if err != nil {
		return err
	}
	lw, err := lzma.NewWriter(w)
	if err != nil {
		return err
	}

	scale := decimal.New(1, -exp)
	rec := make([]byte, recordSize)
	for _, t := range ticks {
		ms := int64(t.Time.Sub(hour) / time.Millisecond)
		if ms < 0 || ms >= int64(time.Hour/time.Millisecond) {
			return fmt.Errorf("tick %s outside hour %s", t.Time, hour)
		}
		binary.BigEndian.PutUint32(rec[0:4], uint32(ms))
		binary.BigEndian.PutUint32(rec[4:8], uint32(t.Ask.Mul(scale).IntPart()))
		binary.BigEndian.PutUint32(rec[8:12], uint32(t.Bid.Mul(scale).IntPart()))
		binary.BigEndian.PutUint32(rec[12:16], math.Float32bits(t.AskVolume))
		binary.BigEndian.PutUint32(rec[16:20], math.Float32bits(t.BidVolume))
		if _, err := lw.Write(rec); err != nil {
			return err
		}
	}
	return lw.Close()
}
