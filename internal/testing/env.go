package testing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/escrow"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/lock"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/database/memory"
)

// TestEnv is a node over an in-memory database driven by a manual clock.
type TestEnv struct {
	t         *testing.T
	ctx       context.Context
	db        *memory.DB
	node      *node.Node
	clock     *ManualClock
	publisher *events.Recorder

	mintAuthority *Account
	mints         int
}

// Pool is a pool created by TestEnv.
type Pool struct {
	ID     solana.PublicKey
	LPMint solana.PublicKey
	Mint0  solana.PublicKey
	Mint1  solana.PublicKey
	Vault0 solana.PublicKey
	Vault1 solana.PublicKey
}

// NewTestEnv creates an environment with default limits.
func NewTestEnv(t *testing.T, opts ...node.Option) *TestEnv {
	return NewTestEnvWithConfig(t, node.Config{}, opts...)
}

// NewTestEnvWithConfig creates an environment from cfg. The clock and
// logger of cfg are replaced; options are applied after the default
// recording publisher.
func NewTestEnvWithConfig(t *testing.T, cfg node.Config, opts ...node.Option) *TestEnv {
	t.Helper()

	clock := NewManualClock()
	cfg.Clock = clock
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	recorder := events.NewRecorder()
	db := memory.New()
	n, err := node.New(db, cfg, append([]node.Option{node.WithPublisher(recorder)}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { n.Close() })

	return &TestEnv{
		t:             t,
		ctx:           context.Background(),
		db:            db,
		node:          n,
		clock:         clock,
		publisher:     recorder,
		mintAuthority: NewAccount("mint-authority"),
	}
}

// Node returns the node under test.
func (e *TestEnv) Node() *node.Node {
	return e.node
}

// DB returns the backing database.
func (e *TestEnv) DB() database.DB {
	return e.db
}

// Published returns the events delivered to the default publisher.
func (e *TestEnv) Published() []events.Event {
	return e.publisher.Events()
}

// Now returns the current close time.
func (e *TestEnv) Now() time.Time {
	return e.clock.Now()
}

// Unix returns the current close time in unix seconds.
func (e *TestEnv) Unix() uint64 {
	return e.clock.Unix()
}

// AdvanceTime moves the clock forward.
func (e *TestEnv) AdvanceTime(d time.Duration) {
	e.clock.Advance(d)
}

// SetTime moves the clock to t.
func (e *TestEnv) SetTime(t time.Time) {
	e.clock.Set(t)
}

// Submit applies a transaction.
func (e *TestEnv) Submit(t tx.Transaction) TxResult {
	e.t.Helper()
	res, err := e.node.Submit(e.ctx, t)
	require.NoError(e.t, err)
	return resultOf(res)
}

// NewMint creates a mint with 6 decimals.
func (e *TestEnv) NewMint() solana.PublicKey {
	e.t.Helper()
	e.mints++
	mint := NewAccount(fmt.Sprintf("mint-%d", e.mints)).PublicKey
	require.NoError(e.t, e.node.CreateMint(e.ctx, mint, e.mintAuthority.PublicKey, 6))
	return mint
}

// Fund mints amount of mint to the account's associated token account.
func (e *TestEnv) Fund(acc *Account, mint solana.PublicKey, amount uint64) solana.PublicKey {
	e.t.Helper()
	ata, err := e.node.Mint(e.ctx, mint, acc.PublicKey, amount)
	require.NoError(e.t, err)
	return ata
}

// CreatePool creates a pool of two new mints funded by creator with the
// given reserves, using the node's default fee rates.
func (e *TestEnv) CreatePool(creator *Account, amount0, amount1 uint64) *Pool {
	e.t.Helper()
	return e.CreatePoolWith(creator, node.PoolParams{AmountA: amount0, AmountB: amount1})
}

// CreatePoolWith creates a pool from p. Missing mints are created; amounts
// are assigned to the sorted mints so AmountA backs Mint0.
func (e *TestEnv) CreatePoolWith(creator *Account, p node.PoolParams) *Pool {
	e.t.Helper()
	if p.MintA.IsZero() || p.MintB.IsZero() {
		a, b := e.NewMint(), e.NewMint()
		p.MintA, p.MintB = a, b
		if p.MintA.String() > p.MintB.String() {
			p.MintA, p.MintB = b, a
		}
	}
	e.Fund(creator, p.MintA, p.AmountA)
	e.Fund(creator, p.MintB, p.AmountB)

	info, err := e.node.CreatePool(e.ctx, creator.PublicKey, p)
	require.NoError(e.t, err)

	snap, err := e.node.Pool(info.Pool)
	require.NoError(e.t, err)
	return &Pool{
		ID:     info.Pool,
		LPMint: info.LPMint,
		Mint0:  snap.State.Token0Mint,
		Mint1:  snap.State.Token1Mint,
		Vault0: snap.State.Token0Vault,
		Vault1: snap.State.Token1Vault,
	}
}

// Donate mints tokens straight into the pool vaults. The reserves grow
// without new LP shares, which is how trading fees accrue to holders.
func (e *TestEnv) Donate(p *Pool, amount0, amount1 uint64) {
	e.t.Helper()
	if amount0 > 0 {
		require.NoError(e.t, e.node.MintTo(e.ctx, p.Vault0, amount0))
	}
	if amount1 > 0 {
		require.NoError(e.t, e.node.MintTo(e.ctx, p.Vault1, amount1))
	}
}

// SetRegistry rewrites acc's registry for p, creating it if missing.
func (e *TestEnv) SetRegistry(acc *Account, p *Pool, mutate func(r *sle.RegistryEntry)) {
	e.t.Helper()
	k := keylet.Registry(acc.PublicKey, p.LPMint)
	err := e.node.Patch(e.ctx, func(view tx.LedgerView) error {
		r := &sle.RegistryEntry{Owner: acc.PublicKey, LPMint: p.LPMint}
		found, err := tx.ReadEntry(view, k, r)
		if err != nil {
			return err
		}
		mutate(r)
		if found {
			return tx.UpdateEntry(view, k, r)
		}
		return tx.InsertEntry(view, k, r)
	})
	require.NoError(e.t, err)
}

// SetPool rewrites the stored state of p.
func (e *TestEnv) SetPool(p *Pool, mutate func(s *sle.PoolState)) {
	e.t.Helper()
	err := e.node.Patch(e.ctx, func(view tx.LedgerView) error {
		s, err := e.node.AMM().Pool(view, p.ID)
		if err != nil {
			return err
		}
		mutate(s)
		return tx.UpdateEntry(view, keylet.Pool(p.ID), s)
	})
	require.NoError(e.t, err)
}

// Reserves returns the pool reserves net of protocol and fund fees.
func (e *TestEnv) Reserves(p *Pool) (uint64, uint64) {
	e.t.Helper()
	snap, err := e.node.Pool(p.ID)
	require.NoError(e.t, err)
	return snap.Reserve0, snap.Reserve1
}

// PoolState returns the stored pool.
func (e *TestEnv) PoolState(p *Pool) *sle.PoolState {
	e.t.Helper()
	snap, err := e.node.Pool(p.ID)
	require.NoError(e.t, err)
	return snap.State
}

// TokenBalance returns the balance of acc's associated account for mint.
func (e *TestEnv) TokenBalance(acc *Account, mint solana.PublicKey) uint64 {
	e.t.Helper()
	b, err := e.node.BalanceOf(acc.PublicKey, mint)
	require.NoError(e.t, err)
	return b
}

// LPBalance returns acc's LP share balance in p.
func (e *TestEnv) LPBalance(acc *Account, p *Pool) uint64 {
	return e.TokenBalance(acc, p.LPMint)
}

// AccountBalance returns the balance of a token account.
func (e *TestEnv) AccountBalance(addr solana.PublicKey) uint64 {
	e.t.Helper()
	b, err := e.node.Balance(addr)
	require.NoError(e.t, err)
	return b
}

// Lock returns a lock record, failing the test if it does not exist.
func (e *TestEnv) Lock(acc *Account, p *Pool, index uint64) *sle.LockEntry {
	e.t.Helper()
	l, err := e.node.Lock(lock.Ref{Owner: acc.PublicKey, LPMint: p.LPMint, Index: index})
	require.NoError(e.t, err)
	return l
}

// Registry returns acc's registry for p, or nil if there is none.
func (e *TestEnv) Registry(acc *Account, p *Pool) *sle.RegistryEntry {
	e.t.Helper()
	r, err := e.node.Registry(acc.PublicKey, p.LPMint)
	if err != nil {
		require.ErrorIs(e.t, err, tx.ErrEntryNotFound)
		return nil
	}
	return r
}

// VaultBalance returns the shares held in escrow for a lock.
func (e *TestEnv) VaultBalance(acc *Account, p *Pool, index uint64) uint64 {
	e.t.Helper()
	vault, err := escrow.VaultAddress(e.node.Config().ProgramID, acc.PublicKey, p.LPMint, index)
	require.NoError(e.t, err)
	return e.AccountBalance(vault)
}

// Snapshot copies every stored entry. Two equal snapshots mean the ledger
// did not change in between.
func (e *TestEnv) Snapshot() map[string]string {
	e.t.Helper()
	it, err := e.db.Iterator(e.ctx, nil, nil)
	require.NoError(e.t, err)
	defer it.Close()

	out := make(map[string]string)
	for it.Next() {
		out[string(it.Key())] = string(it.Value())
	}
	require.NoError(e.t, it.Error())
	return out
}

// Associated returns acc's associated token account for mint.
func (e *TestEnv) Associated(acc *Account, mint solana.PublicKey) solana.PublicKey {
	e.t.Helper()
	ata, err := token.Associated(acc.PublicKey, mint)
	require.NoError(e.t, err)
	return ata
}
