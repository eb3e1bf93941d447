package state

import (
	"context"
	"time"
)

const (
	// DefaultTTL is how long an untouched conversation survives.
	DefaultTTL = 30 * time.Minute
	// DefaultSweepInterval is how often expired conversations are removed.
	DefaultSweepInterval = 5 * time.Minute
)

// Store holds one value of S per user. Implementations must be safe for
// concurrent use.
type Store[S any] interface {
	// Get returns the user's value, or false when no conversation is active.
	Get(userID int64) (S, bool)
	// Set replaces the user's value and refreshes its last-updated time.
	Set(ctx context.Context, userID int64, value S)
	// Delete removes the user's value. Missing entries are ignored.
	Delete(ctx context.Context, userID int64)
	// SweepExpired removes every entry idle for longer than the TTL.
	SweepExpired(ctx context.Context)
	// Len reports the number of active entries.
	Len() int
}

// Options configures a Memory store.
type Options struct {
	// TTL defaults to DefaultTTL.
	TTL time.Duration
	// SweepInterval defaults to DefaultSweepInterval.
	SweepInterval time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}
