package state

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/m3rciful/supportbot/core/logger"
)

type entry[S any] struct {
	value     S
	updatedAt time.Time
}

// Memory is an in-process Store with TTL expiry and a cron-driven sweeper.
type Memory[S any] struct {
	mu      sync.RWMutex
	entries map[int64]entry[S]

	ttl   time.Duration
	every time.Duration
	now   func() time.Time

	cronMu sync.Mutex
	cron   *cron.Cron
}

var _ Store[struct{}] = (*Memory[struct{}])(nil)

// NewMemory constructs an empty store. The sweeper is not running until Start.
func NewMemory[S any](opts Options) *Memory[S] {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.SweepInterval <= 0 {
		opts.SweepInterval = DefaultSweepInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Memory[S]{
		entries: make(map[int64]entry[S]),
		ttl:     opts.TTL,
		every:   opts.SweepInterval,
		now:     opts.Now,
	}
}

// Get returns the user's value without refreshing it.
func (m *Memory[S]) Get(userID int64) (S, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[userID]
	return e.value, ok
}

// Set stores value for the user and stamps it with the current time.
func (m *Memory[S]) Set(ctx context.Context, userID int64, value S) {
	m.mu.Lock()
	m.entries[userID] = entry[S]{value: value, updatedAt: m.now()}
	m.mu.Unlock()

	logger.Debug(ctx, logger.ComponentState, "state.set",
		slog.Int64("user_id", userID),
		slog.Any("state", value),
	)
}

// Delete removes the user's entry if present.
func (m *Memory[S]) Delete(ctx context.Context, userID int64) {
	m.mu.Lock()
	_, existed := m.entries[userID]
	delete(m.entries, userID)
	m.mu.Unlock()

	if existed {
		logger.Debug(ctx, logger.ComponentState, "state.delete",
			slog.Int64("user_id", userID),
		)
	}
}

// SweepExpired drops entries whose last update is older than the TTL.
func (m *Memory[S]) SweepExpired(ctx context.Context) {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	var expired []int64
	for userID, e := range m.entries {
		if e.updatedAt.Before(cutoff) {
			delete(m.entries, userID)
			expired = append(expired, userID)
		}
	}
	active := len(m.entries)
	m.mu.Unlock()

	for _, userID := range expired {
		logger.Info(ctx, logger.ComponentState, "state.expired",
			slog.Int64("user_id", userID),
		)
	}
	logger.Debug(ctx, logger.ComponentState, "state.sweep",
		slog.Int("expired", len(expired)),
		slog.Int("active", active),
	)
}

// Len reports the number of conversations in progress.
func (m *Memory[S]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Start schedules SweepExpired every SweepInterval. Calling Start twice is a no-op.
func (m *Memory[S]) Start() error {
	m.cronMu.Lock()
	defer m.cronMu.Unlock()
	if m.cron != nil {
		return nil
	}

	c := cron.New()
	schedule := fmt.Sprintf("@every %s", m.every)
	if _, err := c.AddFunc(schedule, func() {
		m.SweepExpired(context.Background())
	}); err != nil {
		return fmt.Errorf("state: invalid sweep schedule %q: %w", schedule, err)
	}
	c.Start()
	m.cron = c

	logger.Info(context.Background(), logger.ComponentState, "sweeper.start",
		slog.Duration("ttl", m.ttl),
		slog.String("schedule", schedule),
	)
	return nil
}

// Stop halts the sweeper and waits for a running sweep to finish.
func (m *Memory[S]) Stop() {
	m.cronMu.Lock()
	c := m.cron
	m.cron = nil
	m.cronMu.Unlock()
	if c == nil {
		return
	}
	<-c.Stop().Done()
	logger.Info(context.Background(), logger.ComponentState, "sweeper.stop")
}
