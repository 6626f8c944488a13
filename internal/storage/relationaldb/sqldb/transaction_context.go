package sqldb

import (
	"context"
	"database/sql"

	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

// TransactionContext implements relationaldb.TransactionContext
type TransactionContext struct {
	tx *sql.Tx

	transactionRepo *TransactionRepository
	eventRepo       *EventRepository
}

// NewTransactionContext creates a transaction context
func NewTransactionContext(tx *sql.Tx, d dialect) *TransactionContext {
	return &TransactionContext{
		tx:              tx,
		transactionRepo: NewTransactionRepositoryWithTx(tx, d),
		eventRepo:       NewEventRepositoryWithTx(tx, d),
	}
}

func (tc *TransactionContext) Commit(ctx context.Context) error {
	if tc.tx == nil {
		return relationaldb.ErrTransactionClosed
	}

	err := tc.tx.Commit()
	tc.tx = nil

	if err != nil {
		return relationaldb.NewTransactionError("commit", "failed to commit transaction", err)
	}
	return nil
}

func (tc *TransactionContext) Rollback(ctx context.Context) error {
	if tc.tx == nil {
		return nil // Already rolled back or committed
	}

	err := tc.tx.Rollback()
	tc.tx = nil

	if err != nil {
		return relationaldb.NewTransactionError("rollback", "failed to rollback transaction", err)
	}
	return nil
}

func (tc *TransactionContext) Transaction() relationaldb.TransactionRepository {
	return tc.transactionRepo
}

func (tc *TransactionContext) Event() relationaldb.EventRepository {
	return tc.eventRepo
}
