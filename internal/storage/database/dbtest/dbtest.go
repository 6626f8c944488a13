// Package dbtest holds the behaviour every database.DB backend must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
)

// Run exercises a backend. open must return a fresh, empty database.
func Run(t *testing.T, open func(t *testing.T) database.DB) {
	ctx := context.Background()

	t.Run("PutOverwriteDelete", func(t *testing.T) {
		db := open(t)

		_, err := db.Read(ctx, []byte("missing"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)

		for _, v := range []string{"v1", "v2"} {
			require.NoError(t, database.Put(ctx, db, []byte("k"), []byte(v)))
			got, err := db.Read(ctx, []byte("k"))
			require.NoError(t, err)
			assert.Equal(t, v, string(got))
		}

		require.NoError(t, database.Delete(ctx, db, []byte("k")))
		_, err = db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("ReadReturnsCopy", func(t *testing.T) {
		db := open(t)
		require.NoError(t, database.Put(ctx, db, []byte("k"), []byte("abc")))

		got, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		got[0] = 'x'

		again, err := db.Read(ctx, []byte("k"))
		require.NoError(t, err)
		assert.Equal(t, "abc", string(again))
	})

	t.Run("Batch", func(t *testing.T) {
		db := open(t)

		require.NoError(t, database.Put(ctx, db, []byte("gone"), []byte("x")))
		require.NoError(t, db.Batch(ctx, []database.Op{
			{Kind: database.OpPut, Key: []byte("a"), Value: []byte("1")},
			{Kind: database.OpPut, Key: []byte("b"), Value: []byte("2")},
			{Kind: database.OpDelete, Key: []byte("gone")},
		}))

		for k, want := range map[string]string{"a": "1", "b": "2"} {
			got, err := db.Read(ctx, []byte(k))
			require.NoError(t, err)
			assert.Equal(t, want, string(got))
		}
		_, err := db.Read(ctx, []byte("gone"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("BadOpWritesNothing", func(t *testing.T) {
		db := open(t)

		err := db.Batch(ctx, []database.Op{
			{Kind: database.OpPut, Key: []byte("a"), Value: []byte("1")},
			{Kind: database.OpKind(9), Key: []byte("b")},
		})
		assert.ErrorIs(t, err, database.ErrBatchOperationFailed)
		_, err = db.Read(ctx, []byte("a"))
		assert.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("IteratorRange", func(t *testing.T) {
		db := open(t)

		for _, k := range []string{"a", "b", "c", "d"} {
			require.NoError(t, database.Put(ctx, db, []byte(k), []byte(k+k)))
		}

		it, err := db.Iterator(ctx, []byte("b"), []byte("d"))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, string(it.Key())+string(it.Key()), string(it.Value()))
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"b", "c"}, keys)
	})

	t.Run("Closed", func(t *testing.T) {
		db := open(t)
		require.NoError(t, db.Close())

		_, err := db.Read(ctx, []byte("k"))
		assert.ErrorIs(t, err, database.ErrClosed)
		assert.ErrorIs(t, database.Put(ctx, db, []byte("k"), nil), database.ErrClosed)
	})
}
