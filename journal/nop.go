package journal

import (
	"context"

	"github.com/rustyeddy/backtester/session"
)

// Nop discards everything. Used for dry runs.
type Nop struct{}

func (Nop) Record(context.Context, *session.Session) error { return nil }
func (Nop) Final(context.Context, *session.Session) error  { return nil }
func (Nop) Close() error                                   { return nil }
