// Package sqldb implements the journal repositories on database/sql for
// PostgreSQL (lib/pq) and SQLite (modernc.org/sqlite).
package sqldb

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/lib/pq"  // PostgreSQL driver
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

// RepositoryManager implements relationaldb.RepositoryManager
type RepositoryManager struct {
	mu      sync.RWMutex
	db      *sql.DB
	config  *relationaldb.Config
	dialect dialect

	transactionRepo *TransactionRepository
	eventRepo       *EventRepository
	systemRepo      *SystemRepository
}

// NewRepositoryManager creates a repository manager for the configured driver
func NewRepositoryManager(config *relationaldb.Config) (*RepositoryManager, error) {
	if err := config.Validate(); err != nil {
		return nil, relationaldb.NewConfigurationError("new_repository_manager", "invalid configuration", err)
	}
	return &RepositoryManager{
		config:  config,
		dialect: dialect{driver: config.Driver},
	}, nil
}

func (rm *RepositoryManager) Open(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.db != nil {
		return nil
	}

	connStr, err := rm.config.BuildConnectionString()
	if err != nil {
		return relationaldb.NewConfigurationError("open", "failed to build connection string", err)
	}

	sqlDB, err := sql.Open(rm.config.Driver, connStr)
	if err != nil {
		return relationaldb.NewConnectionError("open", "failed to open database connection", err)
	}

	sqlDB.SetMaxOpenConns(rm.config.MaxOpenConns)
	sqlDB.SetMaxIdleConns(rm.config.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(rm.config.ConnMaxLifetime)

	ctxTimeout, cancel := context.WithTimeout(ctx, rm.config.DefaultTimeout)
	defer cancel()

	if err := sqlDB.PingContext(ctxTimeout); err != nil {
		sqlDB.Close()
		return relationaldb.NewConnectionError("open", "failed to ping database", err)
	}

	for _, query := range rm.dialect.schema() {
		if _, err := sqlDB.ExecContext(ctxTimeout, query); err != nil {
			sqlDB.Close()
			return relationaldb.NewSchemaError("open", "failed to initialize schema", err)
		}
	}

	rm.db = sqlDB
	rm.transactionRepo = NewTransactionRepository(sqlDB, rm.dialect)
	rm.eventRepo = NewEventRepository(sqlDB, rm.dialect)
	rm.systemRepo = NewSystemRepository(sqlDB)
	return nil
}

func (rm *RepositoryManager) Close(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.db == nil {
		return nil
	}

	err := rm.db.Close()
	rm.db = nil
	rm.transactionRepo = nil
	rm.eventRepo = nil
	rm.systemRepo = nil

	if err != nil {
		return relationaldb.NewConnectionError("close", "failed to close database connection", err)
	}
	return nil
}

func (rm *RepositoryManager) Transaction() relationaldb.TransactionRepository {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.transactionRepo
}

func (rm *RepositoryManager) Event() relationaldb.EventRepository {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.eventRepo
}

func (rm *RepositoryManager) System() relationaldb.SystemRepository {
	rm.mu.RLock()
	defer rm.mu.RUnlock()
	return rm.systemRepo
}

func (rm *RepositoryManager) WithTransaction(ctx context.Context, fn func(relationaldb.TransactionContext) error) error {
	rm.mu.RLock()
	db := rm.db
	rm.mu.RUnlock()
	if db == nil {
		return relationaldb.ErrDatabaseClosed
	}

	sqlTx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return relationaldb.NewTransactionError("begin", "failed to begin transaction", err)
	}
	tc := NewTransactionContext(sqlTx, rm.dialect)

	defer func() {
		if p := recover(); p != nil {
			tc.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(tc); err != nil {
		tc.Rollback(ctx)
		return err
	}
	return tc.Commit(ctx)
}
