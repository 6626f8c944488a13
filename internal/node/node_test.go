package node_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/lock"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/database/memory"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb/sqldb"
	lptest "github.com/LeJamon/goLPLockd/internal/testing"
)

func openJournal(t *testing.T) *relationaldb.Manager {
	t.Helper()
	cfg := relationaldb.SQLiteConfig(":memory:")
	rm, err := sqldb.NewRepositoryManager(cfg)
	require.NoError(t, err)
	m := relationaldb.NewManager(rm, cfg)
	require.NoError(t, m.Open(context.Background()))
	t.Cleanup(func() { m.Close(context.Background()) })
	return m
}

func TestReceipts(t *testing.T) {
	ctx := context.Background()
	env := lptest.NewTestEnv(t)
	n := env.Node()
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	r, err := n.CreateLock(ctx, alice.PublicKey, pool.ID, pool.LPMint, 1000, 60)
	require.NoError(t, err)
	assert.Equal(t, tx.TesSUCCESS, r.Result)
	assert.NotEmpty(t, r.TxID)
	ref := lock.Ref{Owner: alice.PublicKey, LPMint: pool.LPMint, Index: 1}
	assert.Equal(t, ref, r.Ref)
	assert.Equal(t, uint64(1000), r.Amount)

	env.Donate(pool, 100_000, 100_000)
	r, err = n.CollectFees(ctx, ref, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(91), r.Amount)
	assert.Equal(t, uint64(100), r.Fee0)
	assert.Equal(t, uint64(100), r.Fee1)

	r, err = n.Release(ctx, ref, pool.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, tx.ErrState)
	assert.Equal(t, tx.TecNOT_MATURE, r.Result)
	assert.Equal(t, tx.TecNOT_MATURE, tx.ResultOf(err, tx.TefINTERNAL))

	r, err = n.CreatePermanentLock(ctx, alice.PublicKey, pool.ID, pool.LPMint, 5000)
	require.NoError(t, err)
	assert.True(t, r.Permanent)
	assert.Equal(t, uint64(2), r.Ref.Index)
}

func TestReads(t *testing.T) {
	ctx := context.Background()
	env := lptest.NewTestEnv(t)
	n := env.Node()
	alice := lptest.NewAccount("alice")
	bob := lptest.NewAccount("bob")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	_, err := n.Locks(alice.PublicKey, pool.LPMint)
	assert.ErrorIs(t, err, tx.ErrEntryNotFound)
	_, err = n.Lock(lock.Ref{Owner: alice.PublicKey, LPMint: pool.LPMint, Index: 1})
	assert.ErrorIs(t, err, tx.ErrEntryNotFound)

	for _, amount := range []uint64{1000, 2000, 3000} {
		_, err := n.CreateLock(ctx, alice.PublicKey, pool.ID, pool.LPMint, amount, 60)
		require.NoError(t, err)
	}

	locks, err := n.Locks(alice.PublicKey, pool.LPMint)
	require.NoError(t, err)
	require.Len(t, locks, 3)
	for i, l := range locks {
		assert.Equal(t, uint64(i+1), l.Index)
		assert.Equal(t, uint64(i+1)*1000, l.LockAmount)
	}

	reg, err := n.Registry(alice.PublicKey, pool.LPMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(6000), reg.TotalLocked)

	bal, err := n.BalanceOf(alice.PublicKey, pool.LPMint)
	require.NoError(t, err)
	assert.Equal(t, uint64(999_900-6000), bal)

	bal, err = n.BalanceOf(bob.PublicKey, pool.LPMint)
	require.NoError(t, err)
	assert.Zero(t, bal)

	snap, err := n.Pool(pool.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000_000), snap.Reserve0)
	assert.Equal(t, uint64(1_000_000), snap.State.LPSupply)
}

func TestCommitFailureLeavesStateUntouched(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)
	db := env.DB().(*memory.DB)

	before := env.Snapshot()
	published := len(env.Published())

	db.FailNextBatch(errors.New("disk full"))
	res, err := env.Node().Submit(context.Background(), lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60))
	require.Error(t, err)
	assert.ErrorIs(t, err, database.ErrBatchOperationFailed)
	assert.Equal(t, tx.TefINTERNAL, res.Result)
	assert.False(t, res.Applied)

	lptest.RequireUnchanged(t, env, before)
	assert.Len(t, env.Published(), published)
	assert.Nil(t, env.Registry(alice, pool))

	lptest.RequireTxSuccess(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60)))
	assert.Equal(t, uint64(1), env.Registry(alice, pool).LockCount)
}

func TestPublishFailureDoesNotUndoCommit(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl)
	pub.EXPECT().Close().Return(nil).AnyTimes()

	env := lptest.NewTestEnv(t, node.WithPublisher(pub))
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	pub.EXPECT().
		Publish(gomock.Any(), gomock.AssignableToTypeOf(events.Event{})).
		DoAndReturn(func(_ context.Context, ev events.Event) error {
			assert.Equal(t, events.KindLocked, ev.Kind)
			assert.Equal(t, uint64(1), ev.Index)
			return errors.New("broker down")
		}).
		Times(1)

	lptest.RequireTxSuccess(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60)))
	assert.Equal(t, uint64(1000), env.Lock(alice, pool, 1).LockAmount)
}

func TestRejectedTransactionsPublishNothing(t *testing.T) {
	ctrl := gomock.NewController(t)
	pub := events.NewMockPublisher(ctrl)
	pub.EXPECT().Close().Return(nil).AnyTimes()
	pub.EXPECT().Publish(gomock.Any(), gomock.Any()).Times(0)

	env := lptest.NewTestEnv(t, node.WithPublisher(pub))
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	lptest.RequireTxFail(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 50, 60)), tx.TemAMOUNT_TOO_SMALL)
	lptest.RequireTxFail(t, env.Submit(lock.NewLockRelease(alice.PublicKey, pool.ID, pool.LPMint, 1)), tx.TecNO_ENTRY)
}

func TestJournal(t *testing.T) {
	ctx := context.Background()
	journal := openJournal(t)
	env := lptest.NewTestEnv(t, node.WithJournal(journal))
	n := env.Node()
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	res := env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60))
	lptest.RequireTxSuccess(t, res)
	env.Donate(pool, 100_000, 100_000)
	lptest.RequireTxSuccess(t, env.Submit(lock.NewLockCollectFees(alice.PublicKey, pool.ID, pool.LPMint, 1)))
	rejected := env.Submit(lock.NewLockCollectFees(alice.PublicKey, pool.ID, pool.LPMint, 1))
	lptest.RequireTxFail(t, rejected, tx.TecNO_FEES)

	q := relationaldb.HistoryQuery{Owner: alice.PublicKey.String(), LPMint: pool.LPMint.String(), LockIndex: 1}
	history, err := n.History(ctx, q)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, string(events.KindLocked), history[0].Kind)
	assert.Equal(t, res.TxID, history[0].TxID)
	assert.Equal(t, string(events.KindFeesCollected), history[1].Kind)
	assert.Equal(t, uint64(91), history[1].Amount)

	totals, err := n.FeeTotals(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, int64(1), totals.Collections)
	assert.Equal(t, uint64(91), totals.Burned)
	assert.Equal(t, uint64(100), totals.Fee0)
	assert.Equal(t, uint64(100), totals.Fee1)

	rec, err := journal.Transaction(ctx, res.TxID)
	require.NoError(t, err)
	assert.True(t, rec.Applied)
	assert.Equal(t, "LockCreate", rec.TxType)

	// Rejections are journaled without events.
	rec, err = journal.Transaction(ctx, rejected.TxID)
	require.NoError(t, err)
	assert.False(t, rec.Applied)
	assert.Equal(t, "tecNO_FEES", rec.Result)
}

func TestNoJournal(t *testing.T) {
	env := lptest.NewTestEnv(t)
	_, err := env.Node().History(context.Background(), relationaldb.HistoryQuery{})
	assert.ErrorIs(t, err, node.ErrNoJournal)
	_, err = env.Node().FeeTotals(context.Background(), relationaldb.HistoryQuery{})
	assert.ErrorIs(t, err, node.ErrNoJournal)
}

func TestClosedNode(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	require.NoError(t, env.Node().Close())
	require.NoError(t, env.Node().Close())

	_, err := env.Node().Submit(context.Background(), lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60))
	assert.ErrorIs(t, err, node.ErrClosed)
	assert.ErrorIs(t, env.Node().SetPoolStatus(context.Background(), pool.ID, 0), node.ErrClosed)
}

func TestConfigDefaults(t *testing.T) {
	n, err := node.New(memory.New(), node.Config{})
	require.NoError(t, err)
	defer n.Close()

	cfg := n.Config()
	assert.Equal(t, node.DefaultProgramID, cfg.ProgramID)
	assert.Equal(t, node.DefaultAMMProgramID, cfg.AMMProgramID)
	assert.Equal(t, tx.DefaultMinLockAmount, cfg.MinLockAmount)
	assert.Equal(t, tx.DefaultMaxLockDuration, cfg.MaxLockDuration)
	assert.Equal(t, node.DefaultTradeFeeRate, cfg.TradeFeeRate)
	assert.Equal(t, node.DefaultAMMProgramID, n.AMM().ProgramID())
}

func TestCustomLimits(t *testing.T) {
	env := lptest.NewTestEnvWithConfig(t, node.Config{MinLockAmount: 1000, MaxLockDuration: 3600})
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	lptest.RequireTxFail(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 60)), tx.TemAMOUNT_TOO_SMALL)
	lptest.RequireTxFail(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1001, 3600)), tx.TemDURATION_TOO_LONG)
	lptest.RequireTxSuccess(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1001, 3599)))
}

func TestOpenDatabase(t *testing.T) {
	for _, backend := range []string{database.BackendMemory, database.BackendPebble, database.BackendLevelDB} {
		t.Run(backend, func(t *testing.T) {
			db, closer, err := node.OpenDatabase(backend, filepath.Join(t.TempDir(), "data"))
			require.NoError(t, err)
			defer closer.Close()

			n, err := node.New(db, node.Config{})
			require.NoError(t, err)
			defer n.Close()

			mint := solana.NewWallet().PublicKey()
			owner := solana.NewWallet().PublicKey()
			require.NoError(t, n.CreateMint(context.Background(), mint, owner, 6))
			_, err = n.Mint(context.Background(), mint, owner, 42)
			require.NoError(t, err)

			bal, err := n.BalanceOf(owner, mint)
			require.NoError(t, err)
			assert.Equal(t, uint64(42), bal)
		})
	}

	_, _, err := node.OpenDatabase("rocksdb", t.TempDir())
	assert.ErrorIs(t, err, database.ErrUnknownBackend)
}
