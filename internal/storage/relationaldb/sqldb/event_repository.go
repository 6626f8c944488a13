package sqldb

import (
	"context"
	"database/sql"
	"strings"

	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

// EventRepository stores lock events
type EventRepository struct {
	db      *sql.DB
	tx      *sql.Tx
	dialect dialect
}

// NewEventRepository creates an event repository
func NewEventRepository(db *sql.DB, d dialect) *EventRepository {
	return &EventRepository{db: db, dialect: d}
}

// NewEventRepositoryWithTx creates an event repository within a transaction
func NewEventRepositoryWithTx(tx *sql.Tx, d dialect) *EventRepository {
	return &EventRepository{tx: tx, dialect: d}
}

func (r *EventRepository) getExecutor() executor {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *EventRepository) SaveEvent(ctx context.Context, rec *relationaldb.EventRecord) error {
	query := r.dialect.rebind(`INSERT INTO lock_events
		(tx_id, kind, owner, lp_mint, lock_index, amount, permanent, fee_0, fee_1, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.getExecutor().ExecContext(ctx, query,
		rec.TxID, rec.Kind, rec.Owner, rec.LPMint, rec.LockIndex,
		rec.Amount, rec.Permanent, rec.Fee0, rec.Fee1, rec.Timestamp)
	if isUniqueViolation(err) {
		return relationaldb.NewDataError("save_event", rec.TxID+":"+rec.Kind, relationaldb.ErrDuplicateEntry)
	}
	if err != nil {
		return relationaldb.NewQueryError("save_event", "failed to insert lock event", err)
	}
	return nil
}

// where builds the filter clause for q.
func where(q relationaldb.HistoryQuery) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if q.Owner != "" {
		conds = append(conds, "owner = ?")
		args = append(args, q.Owner)
	}
	if q.LPMint != "" {
		conds = append(conds, "lp_mint = ?")
		args = append(args, q.LPMint)
	}
	if q.LockIndex != 0 {
		conds = append(conds, "lock_index = ?")
		args = append(args, q.LockIndex)
	}
	if q.Kind != "" {
		conds = append(conds, "kind = ?")
		args = append(args, q.Kind)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *EventRepository) GetHistory(ctx context.Context, q relationaldb.HistoryQuery) ([]relationaldb.EventRecord, error) {
	clause, args := where(q)
	limit := q.Limit
	if limit <= 0 {
		limit = 200
	}
	args = append(args, limit, q.Offset)

	query := r.dialect.rebind(`SELECT id, tx_id, kind, owner, lp_mint, lock_index, amount, permanent, fee_0, fee_1, timestamp
		FROM lock_events` + clause + ` ORDER BY id ASC LIMIT ? OFFSET ?`)

	rows, err := r.getExecutor().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, relationaldb.NewQueryError("get_history", "failed to query lock events", err)
	}
	defer rows.Close()

	var out []relationaldb.EventRecord
	for rows.Next() {
		var rec relationaldb.EventRecord
		if err := rows.Scan(&rec.ID, &rec.TxID, &rec.Kind, &rec.Owner, &rec.LPMint, &rec.LockIndex,
			&rec.Amount, &rec.Permanent, &rec.Fee0, &rec.Fee1, &rec.Timestamp); err != nil {
			return nil, relationaldb.NewQueryError("get_history", "failed to scan lock event", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, relationaldb.NewQueryError("get_history", "error iterating lock events", err)
	}
	return out, nil
}

func (r *EventRepository) GetFeeTotals(ctx context.Context, q relationaldb.HistoryQuery) (*relationaldb.FeeTotals, error) {
	q.Kind = string(events.KindFeesCollected)
	clause, args := where(q)

	query := r.dialect.rebind(`SELECT COUNT(*), COALESCE(SUM(amount), 0), COALESCE(SUM(fee_0), 0), COALESCE(SUM(fee_1), 0)
		FROM lock_events` + clause)

	var totals relationaldb.FeeTotals
	var burned, fee0, fee1 int64
	err := r.getExecutor().QueryRowContext(ctx, query, args...).Scan(&totals.Collections, &burned, &fee0, &fee1)
	if err != nil {
		return nil, relationaldb.NewQueryError("get_fee_totals", "failed to sum fee collections", err)
	}
	totals.Burned = uint64(burned)
	totals.Fee0 = uint64(fee0)
	totals.Fee1 = uint64(fee1)
	return &totals, nil
}
