package sqldb

import (
	"context"
	"database/sql"

	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

// SystemRepository implements relationaldb.SystemRepository
type SystemRepository struct {
	db *sql.DB
}

// NewSystemRepository creates a system repository
func NewSystemRepository(db *sql.DB) *SystemRepository {
	return &SystemRepository{db: db}
}

func (r *SystemRepository) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return relationaldb.NewConnectionError("ping", "failed to ping database", err)
	}
	return nil
}
