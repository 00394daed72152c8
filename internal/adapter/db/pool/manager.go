// Package pool owns the process-wide database connection pool. It keeps
// retrying the initial connection on a fixed delay and exposes a one-way
// readiness state: Initializing until the first successful connect, then Ready
// for the rest of the process lifetime.
package pool

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotReady is returned by DB while the pool has not been established yet.
var ErrNotReady = errors.New("database pool not ready")

// State is the readiness state of the pool.
type State int32

const (
	// StateInitializing means no connection attempt has succeeded yet.
	StateInitializing State = iota
	// StateReady means the pool is established. There is no way back.
	StateReady
)

// String returns a human readable state name
func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateReady:
		return "ready"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// Opener opens and verifies a new pool. It must return an error if the
// database cannot be reached.
type Opener func(ctx context.Context) (*gorm.DB, error)

// Manager owns the shared pool handle.
type Manager struct {
	open       Opener
	retryDelay time.Duration
	log        *zap.Logger

	state atomic.Int32
	db    atomic.Pointer[gorm.DB]
	ready chan struct{}

	mu      sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager creates a manager in the Initializing state. Nothing is opened until Start.
func NewManager(open Opener, retryDelay time.Duration, log *zap.Logger) *Manager {
	return &Manager{
		open:       open,
		retryDelay: retryDelay,
		log:        log,
		ready:      make(chan struct{}),
	}
}

// Start makes the first connection attempt synchronously. When it fails, the
// retry loop continues in the background until it succeeds or Close is called.
// Start returns the state reached after the first attempt.
func (m *Manager) Start(ctx context.Context) State {
	m.mu.Lock()
	if m.started || m.closed {
		m.mu.Unlock()
		return m.State()
	}
	m.started = true
	ctx, m.cancel = context.WithCancel(ctx)
	m.mu.Unlock()

	if m.attempt(ctx, 1) {
		return StateReady
	}

	m.wg.Add(1)
	go m.retry(ctx)

	return StateInitializing
}

func (m *Manager) retry(ctx context.Context) {
	defer m.wg.Done()

	timer := time.NewTimer(m.retryDelay)
	defer timer.Stop()

	for n := 2; ; n++ {
		select {
		case <-ctx.Done():
			m.log.Info("database connect loop stopped", zap.Int("attempts", n-1))
			return
		case <-timer.C:
		}

		if m.attempt(ctx, n) {
			return
		}
		timer.Reset(m.retryDelay)
	}
}

func (m *Manager) attempt(ctx context.Context, n int) bool {
	m.log.Info("connecting to database", zap.Int("attempt", n))

	db, err := m.open(ctx)
	if err != nil {
		m.log.Error("database connection failed",
			zap.Int("attempt", n),
			zap.Duration("retry_in", m.retryDelay),
			zap.Error(err),
		)
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		// Close won the race; do not leak the new pool.
		if err := closeDB(db); err != nil {
			m.log.Warn("failed to close pool opened during shutdown", zap.Error(err))
		}
		return true
	}

	m.db.Store(db)
	m.state.Store(int32(StateReady))
	close(m.ready)

	m.log.Info("database pool ready", zap.Int("attempt", n))
	return true
}

// State returns the current readiness state.
func (m *Manager) State() State {
	return State(m.state.Load())
}

// Ready reports whether the pool has been established.
func (m *Manager) Ready() bool {
	return m.State() == StateReady
}

// WaitReady blocks until the pool is ready or ctx is done.
func (m *Manager) WaitReady(ctx context.Context) error {
	select {
	case <-m.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// DB returns the shared handle. Each query on it acquires and releases one
// pooled connection.
func (m *Manager) DB() (*gorm.DB, error) {
	if m.State() != StateReady {
		return nil, ErrNotReady
	}
	return m.db.Load(), nil
}

// Stats returns connection pool statistics, or false when the pool is not ready.
func (m *Manager) Stats() (sql.DBStats, bool) {
	db, err := m.DB()
	if err != nil {
		return sql.DBStats{}, false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return sql.DBStats{}, false
	}
	return sqlDB.Stats(), true
}

// Close stops the connect loop and closes the pool, releasing every
// connection. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	cancel := m.cancel
	m.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	m.wg.Wait()

	db := m.db.Load()
	if db == nil {
		return nil
	}

	m.log.Info("closing database pool")
	if err := closeDB(db); err != nil {
		return fmt.Errorf("failed to close database pool: %w", err)
	}
	m.log.Info("database pool closed")
	return nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}
	return sqlDB.Close()
}
