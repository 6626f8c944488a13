// Package relationaldb is the audit journal: a SQL record of every submitted
// transaction and every lock event it produced.
//
// The journal is written after the ledger commits and is never read by the
// engine. Implementations live in subpackages.
package relationaldb

import (
	"context"
)

// TransactionRecord is one submitted transaction and its outcome.
type TransactionRecord struct {
	TxID      string `json:"tx_id"`
	TxType    string `json:"tx_type"`
	Account   string `json:"account"`
	Result    string `json:"result"`
	Applied   bool   `json:"applied"`
	Sequence  uint64 `json:"sequence"`
	CloseTime uint64 `json:"close_time"`
}

// EventRecord is one lock event.
type EventRecord struct {
	ID        int64  `json:"id"`
	TxID      string `json:"tx_id"`
	Kind      string `json:"kind"`
	Owner     string `json:"owner"`
	LPMint    string `json:"lp_mint"`
	LockIndex uint64 `json:"lock_index"`
	Amount    uint64 `json:"amount"`
	Permanent bool   `json:"permanent"`
	Fee0      uint64 `json:"fee_0"`
	Fee1      uint64 `json:"fee_1"`
	Timestamp uint64 `json:"timestamp"`
}

// HistoryQuery selects lock events. Empty fields match everything.
type HistoryQuery struct {
	Owner     string
	LPMint    string
	LockIndex uint64
	Kind      string
	Limit     int
	Offset    int
}

// FeeTotals sums the fees collected by matching events.
type FeeTotals struct {
	Collections int64  `json:"collections"`
	Burned      uint64 `json:"burned"`
	Fee0        uint64 `json:"fee_0"`
	Fee1        uint64 `json:"fee_1"`
}

// TransactionRepository handles transaction records
type TransactionRepository interface {
	SaveTransaction(ctx context.Context, rec *TransactionRecord) error
	GetTransaction(ctx context.Context, txID string) (*TransactionRecord, error)
	GetAccountTransactions(ctx context.Context, account string, limit int) ([]TransactionRecord, error)
	GetTransactionCount(ctx context.Context) (int64, error)
}

// EventRepository handles lock event records
type EventRepository interface {
	SaveEvent(ctx context.Context, rec *EventRecord) error
	GetHistory(ctx context.Context, q HistoryQuery) ([]EventRecord, error)
	GetFeeTotals(ctx context.Context, q HistoryQuery) (*FeeTotals, error)
}

// SystemRepository handles system-level database operations
type SystemRepository interface {
	Ping(ctx context.Context) error
}

// TransactionContext represents a database transaction with repository access
type TransactionContext interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	Transaction() TransactionRepository
	Event() EventRepository
}

// RepositoryManager provides access to all repositories and transaction management
type RepositoryManager interface {
	Transaction() TransactionRepository
	Event() EventRepository
	System() SystemRepository

	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// WithTransaction runs fn in a database transaction, committing if fn
	// returns nil and rolling back otherwise.
	WithTransaction(ctx context.Context, fn func(TransactionContext) error) error
}
