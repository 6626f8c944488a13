package sqldb

import (
	"context"
	"database/sql"
	"errors"

	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

// TransactionRepository stores submitted transactions
type TransactionRepository struct {
	db      *sql.DB
	tx      *sql.Tx // Optional transaction context
	dialect dialect
}

// NewTransactionRepository creates a transaction repository
func NewTransactionRepository(db *sql.DB, d dialect) *TransactionRepository {
	return &TransactionRepository{db: db, dialect: d}
}

// NewTransactionRepositoryWithTx creates a transaction repository within a transaction
func NewTransactionRepositoryWithTx(tx *sql.Tx, d dialect) *TransactionRepository {
	return &TransactionRepository{tx: tx, dialect: d}
}

// getExecutor returns the appropriate executor (db or tx)
func (r *TransactionRepository) getExecutor() executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *TransactionRepository) SaveTransaction(ctx context.Context, rec *relationaldb.TransactionRecord) error {
	query := r.dialect.rebind(`INSERT INTO transactions
		(tx_id, tx_type, account, result, applied, sequence, close_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.getExecutor().ExecContext(ctx, query,
		rec.TxID, rec.TxType, rec.Account, rec.Result, rec.Applied, rec.Sequence, rec.CloseTime)
	if isUniqueViolation(err) {
		return relationaldb.NewDataError("save_transaction", rec.TxID, relationaldb.ErrDuplicateEntry)
	}
	if err != nil {
		return relationaldb.NewQueryError("save_transaction", "failed to insert transaction", err)
	}
	return nil
}

func (r *TransactionRepository) GetTransaction(ctx context.Context, txID string) (*relationaldb.TransactionRecord, error) {
	query := r.dialect.rebind(`SELECT tx_id, tx_type, account, result, applied, sequence, close_time
		FROM transactions WHERE tx_id = ?`)

	var rec relationaldb.TransactionRecord
	err := r.getExecutor().QueryRowContext(ctx, query, txID).Scan(
		&rec.TxID, &rec.TxType, &rec.Account, &rec.Result, &rec.Applied, &rec.Sequence, &rec.CloseTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, relationaldb.ErrTransactionNotFound
	}
	if err != nil {
		return nil, relationaldb.NewQueryError("get_transaction", "failed to query transaction", err)
	}
	return &rec, nil
}

func (r *TransactionRepository) GetAccountTransactions(ctx context.Context, account string, limit int) ([]relationaldb.TransactionRecord, error) {
	if limit <= 0 {
		limit = 200
	}
	query := r.dialect.rebind(`SELECT tx_id, tx_type, account, result, applied, sequence, close_time
		FROM transactions WHERE account = ?
		ORDER BY sequence DESC LIMIT ?`)

	rows, err := r.getExecutor().QueryContext(ctx, query, account, limit)
	if err != nil {
		return nil, relationaldb.NewQueryError("get_account_transactions", "failed to query account transactions", err)
	}
	defer rows.Close()

	var out []relationaldb.TransactionRecord
	for rows.Next() {
		var rec relationaldb.TransactionRecord
		if err := rows.Scan(&rec.TxID, &rec.TxType, &rec.Account, &rec.Result, &rec.Applied, &rec.Sequence, &rec.CloseTime); err != nil {
			return nil, relationaldb.NewQueryError("get_account_transactions", "failed to scan transaction row", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, relationaldb.NewQueryError("get_account_transactions", "error iterating transaction rows", err)
	}
	return out, nil
}

func (r *TransactionRepository) GetTransactionCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.getExecutor().QueryRowContext(ctx, "SELECT COUNT(*) FROM transactions").Scan(&count)
	if err != nil {
		return 0, relationaldb.NewQueryError("get_transaction_count", "failed to count transactions", err)
	}
	return count, nil
}
