package state

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/storage/compression"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/database/memory"
)

func newStore(t *testing.T) (*Store, *memory.DB) {
	t.Helper()
	db := memory.New()
	s, err := NewStore(db, Config{CacheSize: 16})
	require.NoError(t, err)
	return s, db
}

func key() keylet.Keylet {
	return keylet.Mint(solana.NewWallet().PublicKey())
}

func TestWritesStayPendingUntilCommit(t *testing.T) {
	s, db := newStore(t)
	k := key()

	require.NoError(t, s.Insert(k, []byte("v1")))
	assert.Equal(t, 1, s.Pending())
	assert.Equal(t, 0, db.Len())

	got, err := s.Read(k)
	require.NoError(t, err)
	assert.Equal(t, []byte("v1"), got)

	require.NoError(t, s.Commit(context.Background()))
	assert.Equal(t, 0, s.Pending())
	assert.Equal(t, 1, db.Len())

	raw, err := db.Read(context.Background(), k.Key[:])
	require.NoError(t, err)
	assert.NotEqual(t, []byte("v1"), raw, "stored form is framed by the compressor")
}

func TestDiscardDropsWrites(t *testing.T) {
	s, db := newStore(t)
	k := key()

	require.NoError(t, s.Insert(k, []byte("v1")))
	s.Discard()

	exists, err := s.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Equal(t, 0, db.Len())
}

func TestFailedCommitWritesNothing(t *testing.T) {
	s, db := newStore(t)
	a, b := key(), key()

	require.NoError(t, s.Insert(a, []byte("a")))
	require.NoError(t, s.Commit(context.Background()))

	require.NoError(t, s.Update(a, []byte("a2")))
	require.NoError(t, s.Insert(b, []byte("b")))
	db.FailNextBatch(errors.New("io error"))
	require.Error(t, s.Commit(context.Background()))

	got, err := s.Read(a)
	require.NoError(t, err)
	assert.Equal(t, []byte("a"), got)

	exists, err := s.Exists(b)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertUpdateEraseSemantics(t *testing.T) {
	s, _ := newStore(t)
	k := key()

	assert.ErrorIs(t, s.Update(k, []byte("x")), tx.ErrEntryNotFound)
	assert.ErrorIs(t, s.Erase(k), tx.ErrEntryNotFound)

	require.NoError(t, s.Insert(k, []byte("x")))
	assert.ErrorIs(t, s.Insert(k, []byte("y")), tx.ErrEntryExists)
	require.NoError(t, s.Commit(context.Background()))

	require.NoError(t, s.Erase(k))
	require.NoError(t, s.Commit(context.Background()))

	got, err := s.Read(k)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadPopulatesCache(t *testing.T) {
	db := memory.New()
	k := key()

	writer, err := NewStore(db, Config{})
	require.NoError(t, err)
	require.NoError(t, writer.Insert(k, []byte("cached")))
	require.NoError(t, writer.Commit(context.Background()))

	reader, err := NewStore(db, Config{})
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		got, err := reader.Read(k)
		require.NoError(t, err)
		assert.Equal(t, []byte("cached"), got)
	}
	assert.Equal(t, Stats{Hits: 2, Misses: 1}, reader.Stats())
}

func TestReadSurfacesDatabaseErrors(t *testing.T) {
	db := memory.New()
	s, err := NewStore(db, Config{})
	require.NoError(t, err)
	require.NoError(t, db.Close())

	_, err = s.Read(key())
	assert.ErrorIs(t, err, database.ErrClosed)
}

func TestUnknownCompressor(t *testing.T) {
	_, err := NewStore(memory.New(), Config{Compressor: "brotli"})
	assert.ErrorIs(t, err, compression.ErrUnknownCodec)
}
