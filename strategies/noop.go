package strategies

import "github.com/rustyeddy/backtester/session"

// NoopStrategy never trades. Useful as a baseline.
type NoopStrategy struct{}

func (NoopStrategy) Name() string { return "noop" }

func (NoopStrategy) Propose(*session.Session) Proposal { return Proposal{} }
