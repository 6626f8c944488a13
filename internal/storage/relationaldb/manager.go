package relationaldb

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/LeJamon/goLPLockd/internal/events"
)

// Metrics receives journal instrumentation.
type Metrics interface {
	IncrementCounter(name string, tags map[string]string)
	RecordDuration(name string, duration time.Duration, tags map[string]string)
}

// NoOpMetrics provides a no-op metrics implementation
type NoOpMetrics struct{}

func (NoOpMetrics) IncrementCounter(string, map[string]string)              {}
func (NoOpMetrics) RecordDuration(string, time.Duration, map[string]string) {}

// Manager provides lifecycle management for the journal and records committed
// transactions.
type Manager struct {
	repoManager RepositoryManager
	config      *Config
	logger      *slog.Logger
	metrics     Metrics

	mu        sync.RWMutex
	connected bool
	lastError error
}

// ManagerOption defines functional options for Manager
type ManagerOption func(*Manager)

// WithLogger sets the logger for the manager
func WithLogger(logger *slog.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector for the manager
func WithMetrics(metrics Metrics) ManagerOption {
	return func(m *Manager) {
		if metrics != nil {
			m.metrics = metrics
		}
	}
}

// NewManager creates a new journal manager
func NewManager(repoManager RepositoryManager, config *Config, options ...ManagerOption) *Manager {
	m := &Manager{
		repoManager: repoManager,
		config:      config,
		logger:      slog.Default(),
		metrics:     NoOpMetrics{},
	}
	for _, option := range options {
		option(m)
	}
	m.logger = m.logger.With("component", "journal", "driver", config.Driver)
	return m
}

// Open opens the database, retrying connection failures, and checks that it
// answers.
func (m *Manager) Open(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return nil
	}

	err := m.ExecuteWithRetry(ctx, func() error {
		if err := m.repoManager.Open(ctx); err != nil {
			return err
		}
		return m.repoManager.System().Ping(ctx)
	})
	if err != nil {
		m.lastError = err
		m.logger.Error("failed to open journal", "error", err)
		m.metrics.IncrementCounter("journal.connection.failed", m.tags())
		return err
	}

	m.connected = true
	m.lastError = nil
	m.logger.Info("journal opened", "database", m.config.Database)
	m.metrics.IncrementCounter("journal.connection.opened", m.tags())
	return nil
}

// Close closes the database connection
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.connected {
		return nil
	}
	if err := m.repoManager.Close(ctx); err != nil {
		m.logger.Error("failed to close journal", "error", err)
		return WrapError(err, "close_database")
	}
	m.connected = false
	m.logger.Info("journal closed")
	return nil
}

// IsConnected returns whether the database is connected
func (m *Manager) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// LastError returns the last error encountered
func (m *Manager) LastError() error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastError
}

// HealthCheck pings the database.
func (m *Manager) HealthCheck(ctx context.Context) error {
	if !m.IsConnected() {
		return ErrDatabaseClosed
	}
	start := time.Now()
	err := m.repoManager.System().Ping(ctx)
	m.metrics.RecordDuration("journal.health_check.duration", time.Since(start), m.tags())
	if err != nil {
		m.mu.Lock()
		m.lastError = err
		m.mu.Unlock()
		m.metrics.IncrementCounter("journal.health_check.failed", m.tags())
		return WrapError(err, "health_check")
	}
	return nil
}

// ExecuteWithRetry runs operation, retrying retryable errors with a linear
// backoff of RetryDelay per attempt.
func (m *Manager) ExecuteWithRetry(ctx context.Context, operation func() error) error {
	var lastErr error

	for attempt := 0; attempt <= m.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(attempt) * m.config.RetryDelay
			m.logger.Debug("retrying operation", "attempt", attempt, "delay", delay, "last_error", lastErr)
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := operation()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			break
		}
		m.metrics.IncrementCounter("journal.operation.retryable_error", map[string]string{
			"driver":  m.config.Driver,
			"attempt": fmt.Sprintf("%d", attempt),
		})
	}
	return WrapError(lastErr, "execute_with_retry")
}

// Record stores a transaction and its events in one database transaction.
// Recording the same transaction twice fails with ErrDuplicateEntry and
// leaves the first record untouched.
func (m *Manager) Record(ctx context.Context, rec *TransactionRecord, evs []events.Event) error {
	if !m.IsConnected() {
		return ErrDatabaseClosed
	}
	start := time.Now()
	err := m.ExecuteWithRetry(ctx, func() error {
		return m.repoManager.WithTransaction(ctx, func(tc TransactionContext) error {
			if err := tc.Transaction().SaveTransaction(ctx, rec); err != nil {
				return err
			}
			for _, ev := range evs {
				if err := tc.Event().SaveEvent(ctx, EventRecordFrom(ev)); err != nil {
					return err
				}
			}
			return nil
		})
	})
	m.metrics.RecordDuration("journal.record.duration", time.Since(start), m.tags())
	if err != nil {
		m.metrics.IncrementCounter("journal.record.failed", m.tags())
		return err
	}
	return nil
}

// History returns lock events matching q, oldest first.
func (m *Manager) History(ctx context.Context, q HistoryQuery) ([]EventRecord, error) {
	if !m.IsConnected() {
		return nil, ErrDatabaseClosed
	}
	return m.repoManager.Event().GetHistory(ctx, q)
}

// FeeTotals sums the fee collections matching q.
func (m *Manager) FeeTotals(ctx context.Context, q HistoryQuery) (*FeeTotals, error) {
	if !m.IsConnected() {
		return nil, ErrDatabaseClosed
	}
	return m.repoManager.Event().GetFeeTotals(ctx, q)
}

// Transaction returns the recorded transaction with the given id.
func (m *Manager) Transaction(ctx context.Context, txID string) (*TransactionRecord, error) {
	if !m.IsConnected() {
		return nil, ErrDatabaseClosed
	}
	return m.repoManager.Transaction().GetTransaction(ctx, txID)
}

// GetRepositoryManager returns the underlying repository manager
func (m *Manager) GetRepositoryManager() RepositoryManager {
	return m.repoManager
}

func (m *Manager) tags() map[string]string {
	return map[string]string{"driver": m.config.Driver}
}

// EventRecordFrom converts a committed event to its journal row.
func EventRecordFrom(ev events.Event) *EventRecord {
	return &EventRecord{
		TxID:      ev.TxID,
		Kind:      string(ev.Kind),
		Owner:     ev.Owner.String(),
		LPMint:    ev.LPMint.String(),
		LockIndex: ev.Index,
		Amount:    ev.Amount,
		Permanent: ev.Permanent,
		Fee0:      ev.Fee0,
		Fee1:      ev.Fee1,
		Timestamp: ev.Timestamp,
	}
}
