package lock_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/lock"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/node"
	lptest "github.com/LeJamon/goLPLockd/internal/testing"
)

// setup creates a 1,000,000 / 1,000,000 pool owned by alice. The LP supply
// is 1,000,000 and alice holds all of it but the 100 locked shares.
func setup(t *testing.T) (*lptest.TestEnv, *lptest.Account, *lptest.Pool) {
	t.Helper()
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)
	require.Equal(t, uint64(1_000_000), env.PoolState(pool).LPSupply)
	return env, alice, pool
}

func createLock(env *lptest.TestEnv, acc *lptest.Account, p *lptest.Pool, amount, duration uint64) lptest.TxResult {
	return env.Submit(lock.NewLockCreate(acc.PublicKey, p.ID, p.LPMint, amount, duration))
}

func collect(env *lptest.TestEnv, acc *lptest.Account, p *lptest.Pool, index uint64) lptest.TxResult {
	return env.Submit(lock.NewLockCollectFees(acc.PublicKey, p.ID, p.LPMint, index))
}

func release(env *lptest.TestEnv, acc *lptest.Account, p *lptest.Pool, index uint64) lptest.TxResult {
	return env.Submit(lock.NewLockRelease(acc.PublicKey, p.ID, p.LPMint, index))
}

func TestScenarioA_CreateLock(t *testing.T) {
	env, alice, pool := setup(t)
	lpBefore := env.LPBalance(alice, pool)

	res := createLock(env, alice, pool, 1000, 3600)
	lptest.RequireTxSuccess(t, res)

	l := env.Lock(alice, pool, 1)
	assert.Equal(t, uint64(1000), l.LockAmount)
	assert.Equal(t, uint64(1000), l.Principal0)
	assert.Equal(t, uint64(1000), l.Principal1)
	assert.Equal(t, uint64(1000), l.PrincipalLiquidity)
	assert.Equal(t, env.Unix()+3600, l.UnlockTime)
	assert.Equal(t, env.Unix(), l.CreatedAt)
	assert.False(t, l.Permanent)
	assert.Equal(t, sle.LockStateTimeLocked, l.State())

	assert.Equal(t, lpBefore-1000, env.LPBalance(alice, pool))
	assert.Equal(t, uint64(1000), env.VaultBalance(alice, pool, 1))

	reg := env.Registry(alice, pool)
	require.NotNil(t, reg)
	assert.Equal(t, uint64(1), reg.LockCount)
	assert.Equal(t, uint64(1000), reg.TotalLocked)

	ev, ok := res.Event()
	require.True(t, ok)
	assert.Equal(t, events.KindLocked, ev.Kind)
	assert.Equal(t, uint64(1), ev.Index)
	assert.Equal(t, uint64(1000), ev.Amount)
	assert.Equal(t, res.TxID, ev.TxID)
	assert.Equal(t, []events.Event{ev}, env.Published())
}

func TestScenarioB_CollectFees(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 3600))

	env.Donate(pool, 100_000, 100_000)
	lpBefore := env.LPBalance(alice, pool)
	supplyBefore := env.PoolState(pool).LPSupply

	res := collect(env, alice, pool, 1)
	lptest.RequireTxSuccess(t, res)

	ev, ok := res.Event()
	require.True(t, ok)
	assert.Equal(t, events.KindFeesCollected, ev.Kind)
	assert.Equal(t, uint64(91), ev.Amount)
	assert.Equal(t, uint64(100), ev.Fee0)
	assert.Equal(t, uint64(100), ev.Fee1)

	l := env.Lock(alice, pool, 1)
	assert.Equal(t, uint64(909), l.LockAmount)
	assert.Equal(t, uint64(1000), l.PrincipalLiquidity)
	assert.Equal(t, uint64(100), l.Fees0)
	assert.Equal(t, uint64(100), l.Fees1)

	// The extracted shares are burned, not handed to the owner.
	assert.Equal(t, lpBefore, env.LPBalance(alice, pool))
	assert.Equal(t, supplyBefore-91, env.PoolState(pool).LPSupply)
	assert.Equal(t, uint64(909), env.VaultBalance(alice, pool, 1))
	assert.Equal(t, uint64(100), env.TokenBalance(alice, pool.Mint0))
	assert.Equal(t, uint64(100), env.TokenBalance(alice, pool.Mint1))

	assert.Equal(t, uint64(909), env.Registry(alice, pool).TotalLocked)
}

func TestScenarioC_MinimumAmount(t *testing.T) {
	env, alice, pool := setup(t)
	before := env.Snapshot()

	res := createLock(env, alice, pool, 100, 3600)
	lptest.RequireTxFail(t, res, tx.TemAMOUNT_TOO_SMALL)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrValidation)
	lptest.RequireUnchanged(t, env, before)
	assert.Nil(t, env.Registry(alice, pool))

	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 101, 3600))
}

func TestScenarioD_ReleaseAtMaturity(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 3600))
	unlockTime := env.Lock(alice, pool, 1).UnlockTime

	// Rebase first so the released amount is the current lock amount.
	env.Donate(pool, 100_000, 100_000)
	lptest.RequireTxSuccess(t, collect(env, alice, pool, 1))

	env.SetTime(time.Unix(int64(unlockTime)-1, 0))
	before := env.Snapshot()
	res := release(env, alice, pool, 1)
	lptest.RequireTxFail(t, res, tx.TecNOT_MATURE)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrState)
	lptest.RequireUnchanged(t, env, before)

	env.SetTime(time.Unix(int64(unlockTime), 0))
	lpBefore := env.LPBalance(alice, pool)
	res = release(env, alice, pool, 1)
	lptest.RequireTxSuccess(t, res)

	ev, ok := res.Event()
	require.True(t, ok)
	assert.Equal(t, events.KindUnlocked, ev.Kind)
	assert.Equal(t, uint64(909), ev.Amount)
	assert.Equal(t, lpBefore+909, env.LPBalance(alice, pool))
	assert.Zero(t, env.VaultBalance(alice, pool, 1))

	l := env.Lock(alice, pool, 1)
	assert.True(t, l.Released)
	assert.Equal(t, sle.LockStateReleased, l.State())
	assert.Zero(t, env.Registry(alice, pool).TotalLocked)
}

func TestPrincipalInvarianceAndDerisking(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 50_000, 3600))
	principal := env.Lock(alice, pool, 1).PrincipalLiquidity

	amount := env.Lock(alice, pool, 1).LockAmount
	for _, growth := range []uint64{10_000, 25_000, 1_000, 300_000} {
		env.Donate(pool, growth, growth)
		lptest.RequireTxSuccess(t, collect(env, alice, pool, 1))

		l := env.Lock(alice, pool, 1)
		assert.Equal(t, principal, l.PrincipalLiquidity)
		assert.Less(t, l.LockAmount, amount)
		amount = l.LockAmount
		lptest.RequireRegistryConsistent(t, env, alice, pool)
	}
}

func TestRegistryConsistency(t *testing.T) {
	env, alice, pool := setup(t)

	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 60))
	lptest.RequireRegistryConsistent(t, env, alice, pool)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 5000, 7200))
	lptest.RequireRegistryConsistent(t, env, alice, pool)
	lptest.RequireTxSuccess(t, env.Submit(lock.NewPermanentLock(alice.PublicKey, pool.ID, pool.LPMint, 2500)))
	lptest.RequireRegistryConsistent(t, env, alice, pool)

	env.Donate(pool, 200_000, 200_000)
	for i := uint64(1); i <= 3; i++ {
		lptest.RequireTxSuccess(t, collect(env, alice, pool, i))
		lptest.RequireRegistryConsistent(t, env, alice, pool)
	}

	env.AdvanceTime(time.Hour)
	lptest.RequireTxSuccess(t, release(env, alice, pool, 1))
	lptest.RequireRegistryConsistent(t, env, alice, pool)

	// A failed release leaves the registry untouched.
	lptest.RequireTxFail(t, release(env, alice, pool, 2), tx.TecNOT_MATURE)
	lptest.RequireRegistryConsistent(t, env, alice, pool)

	reg := env.Registry(alice, pool)
	assert.Equal(t, uint64(3), reg.LockCount)
	assert.Equal(t, env.Lock(alice, pool, 2).LockAmount+env.Lock(alice, pool, 3).LockAmount, reg.TotalLocked)

	// Indices keep growing after a release.
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 200, 10))
	assert.Equal(t, uint64(4), env.Registry(alice, pool).LockCount)
	lptest.RequireRegistryConsistent(t, env, alice, pool)
}

func TestReleaseTwice(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 10))
	env.AdvanceTime(10 * time.Second)

	lptest.RequireTxSuccess(t, release(env, alice, pool, 1))

	before := env.Snapshot()
	res := release(env, alice, pool, 1)
	lptest.RequireTxFail(t, res, tx.TecALREADY_RELEASED)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrState)
	lptest.RequireUnchanged(t, env, before)

	// Fees can not be collected from a released lock either.
	env.Donate(pool, 1000, 1000)
	lptest.RequireTxFail(t, collect(env, alice, pool, 1), tx.TecALREADY_RELEASED)
}

func TestPermanentLock(t *testing.T) {
	env, alice, pool := setup(t)
	res := env.Submit(lock.NewPermanentLock(alice.PublicKey, pool.ID, pool.LPMint, 1000))
	lptest.RequireTxSuccess(t, res)

	ev, _ := res.Event()
	assert.True(t, ev.Permanent)

	l := env.Lock(alice, pool, 1)
	assert.True(t, l.Permanent)
	assert.Zero(t, l.UnlockTime)
	assert.Equal(t, sle.LockStatePermanent, l.State())

	for _, elapsed := range []time.Duration{0, time.Hour, 24 * 365 * 20 * time.Hour} {
		env.AdvanceTime(elapsed)
		lptest.RequireTxFail(t, release(env, alice, pool, 1), tx.TecLOCK_PERMANENT)
	}

	// Fees remain collectable.
	env.Donate(pool, 100_000, 100_000)
	lptest.RequireTxSuccess(t, collect(env, alice, pool, 1))
	assert.Equal(t, uint64(909), env.Lock(alice, pool, 1).LockAmount)
}

func TestNoGrowthNoop(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 3600))

	// Collecting right after creation is allowed and finds nothing.
	before := env.Snapshot()
	res := collect(env, alice, pool, 1)
	lptest.RequireTxFail(t, res, tx.TecNO_FEES)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrZeroResult)
	lptest.RequireUnchanged(t, env, before)

	env.Donate(pool, 100_000, 100_000)
	lptest.RequireTxSuccess(t, collect(env, alice, pool, 1))

	before = env.Snapshot()
	lptest.RequireTxFail(t, collect(env, alice, pool, 1), tx.TecNO_FEES)
	lptest.RequireUnchanged(t, env, before)
	assert.Len(t, env.Published(), 2)
}

func TestDurationLimits(t *testing.T) {
	env, alice, pool := setup(t)

	res := createLock(env, alice, pool, 1000, tx.DefaultMaxLockDuration)
	lptest.RequireTxFail(t, res, tx.TemDURATION_TOO_LONG)

	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, tx.DefaultMaxLockDuration-1))
	assert.Equal(t, env.Unix()+tx.DefaultMaxLockDuration-1, env.Lock(alice, pool, 1).UnlockTime)

	// A zero duration becomes one second.
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 0))
	assert.Equal(t, env.Unix()+1, env.Lock(alice, pool, 2).UnlockTime)
}

func TestValidate(t *testing.T) {
	_, alice, pool := setup(t)

	tests := []struct {
		name string
		tx   tx.Transaction
		code tx.Result
	}{
		{"missing account", lock.NewLockCreate(solana.PublicKey{}, pool.ID, pool.LPMint, 1000, 1), tx.TemBAD_SRC_ACCOUNT},
		{"zero amount", lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 0, 1), tx.TemBAD_AMOUNT},
		{"missing pool", lock.NewLockCreate(alice.PublicKey, solana.PublicKey{}, pool.LPMint, 1000, 1), tx.TemMALFORMED},
		{"permanent with duration", &lock.LockCreate{
			BaseTx: *tx.NewBaseTx(tx.TypeLockCreate, alice.PublicKey),
			Pool:   pool.ID, LPMint: pool.LPMint, Amount: 1000, Duration: 5, Permanent: true,
		}, tx.TemMALFORMED},
		{"collect index zero", lock.NewLockCollectFees(alice.PublicKey, pool.ID, pool.LPMint, 0), tx.TemMALFORMED},
		{"release index zero", lock.NewLockRelease(alice.PublicKey, pool.ID, pool.LPMint, 0), tx.TemMALFORMED},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tx.Validate()
			require.Error(t, err)
			assert.Equal(t, tt.code, tx.ResultOf(err, tx.TefINTERNAL))
		})
	}
}

func TestOnlyOwnerOperates(t *testing.T) {
	env, alice, pool := setup(t)
	bob := lptest.NewAccount("bob")
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 10))
	env.Donate(pool, 100_000, 100_000)
	env.AdvanceTime(time.Minute)

	before := env.Snapshot()
	lptest.RequireTxFail(t, collect(env, bob, pool, 1), tx.TecNO_ENTRY)
	lptest.RequireTxFail(t, release(env, bob, pool, 1), tx.TecNO_ENTRY)
	lptest.RequireUnchanged(t, env, before)

	assert.Equal(t, uint64(1000), env.Lock(alice, pool, 1).LockAmount)
}

func TestPoolMismatch(t *testing.T) {
	env, alice, pool := setup(t)
	other := env.CreatePool(alice, 500_000, 500_000)

	lptest.RequireTxFail(t, env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, other.LPMint, 1000, 10)), tx.TecPOOL_MISMATCH)

	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 10))
	env.Donate(pool, 100_000, 100_000)
	env.AdvanceTime(time.Minute)

	lptest.RequireTxFail(t, env.Submit(lock.NewLockCollectFees(alice.PublicKey, other.ID, pool.LPMint, 1)), tx.TecPOOL_MISMATCH)
	lptest.RequireTxFail(t, env.Submit(lock.NewLockRelease(alice.PublicKey, other.ID, pool.LPMint, 1)), tx.TecPOOL_MISMATCH)

	unknown := lptest.NewAccount("nowhere").PublicKey
	lptest.RequireTxFail(t, env.Submit(lock.NewLockCreate(alice.PublicKey, unknown, pool.LPMint, 1000, 10)), tx.TecNO_ENTRY)
}

func TestUnfundedLock(t *testing.T) {
	env, alice, pool := setup(t)
	before := env.Snapshot()

	res := createLock(env, alice, pool, env.LPBalance(alice, pool)+1, 10)
	lptest.RequireTxFail(t, res, tx.TecUNFUNDED)
	lptest.RequireUnchanged(t, env, before)
}

func TestZeroUnderlying(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	// isqrt(1e10 * 1) = 100,000 shares; 101 shares back 0 of token1.
	pool := env.CreatePool(alice, 10_000_000_000, 1)

	res := createLock(env, alice, pool, 101, 10)
	lptest.RequireTxFail(t, res, tx.TecZERO_TRADING_TOKENS)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrArithmetic)
}

func TestAMMFailureRollsBack(t *testing.T) {
	env, alice, pool := setup(t)
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 10))
	env.Donate(pool, 100_000, 100_000)

	require.NoError(t, env.Node().SetPoolStatus(context.Background(), pool.ID, sle.PoolStatusWithdrawDisabled))

	before := env.Snapshot()
	res := collect(env, alice, pool, 1)
	lptest.RequireTxFail(t, res, tx.TecAMM_FAILED)
	assert.ErrorIs(t, res.Code.Err(), tx.ErrExternal)

	// The bookkeeping done before the withdraw call is gone too.
	lptest.RequireUnchanged(t, env, before)
	assert.Equal(t, uint64(1000), env.Lock(alice, pool, 1).LockAmount)
	assert.Equal(t, uint64(1000), env.VaultBalance(alice, pool, 1))
	assert.Len(t, env.Published(), 1)

	require.NoError(t, env.Node().SetPoolStatus(context.Background(), pool.ID, 0))
	lptest.RequireTxSuccess(t, collect(env, alice, pool, 1))
}

func TestFeesFromSwaps(t *testing.T) {
	env, alice, pool := setup(t)
	bob := lptest.NewAccount("bob")
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 100_000, 3600))

	ctx := context.Background()
	env.Fund(bob, pool.Mint0, 100_000)
	_, err := env.Node().Swap(ctx, bob.PublicKey, pool.ID, pool.Mint0, 100_000, 1)
	require.NoError(t, err)
	out := env.TokenBalance(bob, pool.Mint1)
	require.NotZero(t, out)
	_, err = env.Node().Swap(ctx, bob.PublicKey, pool.ID, pool.Mint1, out, 1)
	require.NoError(t, err)

	res := collect(env, alice, pool, 1)
	lptest.RequireTxSuccess(t, res)
	ev, ok := res.Event()
	require.True(t, ok)
	assert.NotZero(t, ev.Amount)
	assert.NotZero(t, ev.Fee0)
	assert.NotZero(t, ev.Fee1)

	l := env.Lock(alice, pool, 1)
	assert.Equal(t, uint64(100_000), l.LockAmount+ev.Amount)
	assert.Equal(t, ev.Fee0, env.TokenBalance(alice, pool.Mint0))
	assert.Equal(t, ev.Fee1, env.TokenBalance(alice, pool.Mint1))
}

func TestRefKeylet(t *testing.T) {
	alice := lptest.NewAccount("alice")
	mint := lptest.NewAccount("mint").PublicKey
	a := lock.Ref{Owner: alice.PublicKey, LPMint: mint, Index: 1}
	b := lock.Ref{Owner: alice.PublicKey, LPMint: mint, Index: 2}
	assert.Equal(t, a.Keylet(), a.Keylet())
	assert.NotEqual(t, a.Keylet(), b.Keylet())
}

func TestCreateOverflow(t *testing.T) {
	tests := []struct {
		name     string
		registry func(r *sle.RegistryEntry)
	}{
		{"lock count", func(r *sle.RegistryEntry) { r.LockCount = math.MaxUint64 }},
		{"total locked", func(r *sle.RegistryEntry) { r.TotalLocked = math.MaxUint64 - 500 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, alice, pool := setup(t)
			env.SetRegistry(alice, pool, tt.registry)
			before := env.Snapshot()

			res := createLock(env, alice, pool, 1000, 3600)
			lptest.RequireTxFail(t, res, tx.TecOVERFLOW)
			assert.ErrorIs(t, res.Code.Err(), tx.ErrArithmetic)
			lptest.RequireUnchanged(t, env, before)
		})
	}

	t.Run("unlock time", func(t *testing.T) {
		env := lptest.NewTestEnvWithConfig(t, node.Config{MaxLockDuration: math.MaxUint64})
		alice := lptest.NewAccount("alice")
		pool := env.CreatePool(alice, 1_000_000, 1_000_000)
		before := env.Snapshot()

		res := createLock(env, alice, pool, 1000, math.MaxUint64-1)
		lptest.RequireTxFail(t, res, tx.TecOVERFLOW)
		lptest.RequireUnchanged(t, env, before)
		assert.Nil(t, env.Registry(alice, pool))
	})
}

func TestCollectArithmeticFailures(t *testing.T) {
	tests := []struct {
		name string
		// prepare runs after a 1000 share lock on the 1,000,000 pool.
		prepare func(env *lptest.TestEnv, alice *lptest.Account, pool *lptest.Pool)
		code    tx.Result
		err     error
	}{
		{
			// Half of each vault becomes protocol fees, so the locked
			// shares now need twice as many to carry the principal.
			name: "liquidity fell",
			prepare: func(env *lptest.TestEnv, _ *lptest.Account, pool *lptest.Pool) {
				env.SetPool(pool, func(s *sle.PoolState) {
					s.ProtocolFees0 = 500_000
					s.ProtocolFees1 = 500_000
				})
			},
			code: tx.TecUNDERFLOW,
			err:  tx.ErrArithmetic,
		},
		{
			name: "registry total below lock",
			prepare: func(env *lptest.TestEnv, alice *lptest.Account, pool *lptest.Pool) {
				env.Donate(pool, 100_000, 100_000)
				env.SetRegistry(alice, pool, func(r *sle.RegistryEntry) { r.TotalLocked = 0 })
			},
			code: tx.TecUNDERFLOW,
			err:  tx.ErrArithmetic,
		},
		{
			name: "reserve drained",
			prepare: func(env *lptest.TestEnv, _ *lptest.Account, pool *lptest.Pool) {
				env.SetPool(pool, func(s *sle.PoolState) { s.ProtocolFees0 = 1_000_000 })
			},
			code: tx.TecZERO_LIQUIDITY,
			err:  tx.ErrArithmetic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, alice, pool := setup(t)
			lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 3600))
			tt.prepare(env, alice, pool)
			before := env.Snapshot()

			res := collect(env, alice, pool, 1)
			lptest.RequireTxFail(t, res, tt.code)
			assert.ErrorIs(t, res.Code.Err(), tt.err)
			lptest.RequireUnchanged(t, env, before)
			assert.Equal(t, uint64(1000), env.Lock(alice, pool, 1).LockAmount)
		})
	}
}

func TestCollectZeroFeeAmount(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	// isqrt(1e9 * 1e3) = 1,000,000 shares; 1000 shares back 1e6 and 1.
	pool := env.CreatePoolWith(alice, node.PoolParams{AmountA: 1_000_000_000, AmountB: 1_000})
	lptest.RequireTxSuccess(t, createLock(env, alice, pool, 1000, 3600))
	require.Equal(t, uint64(1000), env.Lock(alice, pool, 1).PrincipalLiquidity)

	// Growth on token0 alone lifts the lock to 1001 liquidity. One share
	// is excess but redeems for none of token1.
	env.Donate(pool, 2_001_000, 0)
	before := env.Snapshot()

	res := collect(env, alice, pool, 1)
	lptest.RequireTxFail(t, res, tx.TecZERO_FEE_AMOUNT)
	lptest.RequireUnchanged(t, env, before)
}
