package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/database/dbtest"
)

func TestMemoryDB(t *testing.T) {
	dbtest.Run(t, func(t *testing.T) database.DB { return New() })
}

func TestFailNextBatchWritesNothing(t *testing.T) {
	db := New()
	ctx := context.Background()
	boom := errors.New("disk full")

	db.FailNextBatch(boom)
	err := database.Put(ctx, db, []byte("a"), []byte("1"))
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, err, database.ErrBatchOperationFailed)
	assert.Equal(t, 0, db.Len())

	require.NoError(t, database.Put(ctx, db, []byte("a"), []byte("1")))
	assert.Equal(t, 1, db.Len())
}
