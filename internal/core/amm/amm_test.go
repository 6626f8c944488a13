package amm_test

import (
	"context"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/amm"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/state"
	lptest "github.com/LeJamon/goLPLockd/internal/testing"
)

// sandbox returns a throwaway view over the committed ledger.
func sandbox(t *testing.T, env *lptest.TestEnv) tx.LedgerView {
	t.Helper()
	store, err := state.NewStore(env.DB(), state.Config{})
	require.NoError(t, err)
	return tx.NewApplyStateTable(store, [32]byte{})
}

func TestPoolCreate(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 4_000_000)

	p := env.PoolState(pool)
	assert.Equal(t, uint64(2_000_000), p.LPSupply)
	assert.Equal(t, node.DefaultTradeFeeRate, p.TradeFeeRate)
	assert.Equal(t, env.Unix(), p.OpenTime)
	assert.Equal(t, env.Node().AMM().Authority(), p.Authority)
	assert.Equal(t, uint64(2_000_000)-amm.LockedLiquidity, env.LPBalance(alice, pool))

	r0, r1 := env.Reserves(pool)
	assert.Equal(t, uint64(1_000_000), r0)
	assert.Equal(t, uint64(4_000_000), r1)

	addr, err := env.Node().AMM().PoolAddress(pool.Mint0, pool.Mint1)
	require.NoError(t, err)
	assert.Equal(t, pool.ID, addr)

	env.Fund(alice, pool.Mint0, 1000)
	env.Fund(alice, pool.Mint1, 1000)
	_, err = env.Node().CreatePool(context.Background(), alice.PublicKey, node.PoolParams{
		MintA: pool.Mint1, MintB: pool.Mint0, AmountA: 1000, AmountB: 1000,
	})
	assert.Equal(t, tx.TecDUPLICATE, tx.ResultOf(err, tx.TefINTERNAL))
}

func TestPoolCreateRejects(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	a, b := env.NewMint(), env.NewMint()
	a0, a1 := amm.SortMints(a, b)
	env.Fund(alice, a, 500)
	env.Fund(alice, b, 500)

	tests := []struct {
		name   string
		create *amm.PoolCreate
		code   tx.Result
	}{
		{"same mint", &amm.PoolCreate{BaseTx: *tx.NewBaseTx(tx.TypePoolCreate, alice.PublicKey), Token0Mint: a0, Token1Mint: a0, Amount0: 1000, Amount1: 1000}, tx.TemMALFORMED},
		{"unsorted", &amm.PoolCreate{BaseTx: *tx.NewBaseTx(tx.TypePoolCreate, alice.PublicKey), Token0Mint: a1, Token1Mint: a0, Amount0: 1000, Amount1: 1000}, tx.TemMALFORMED},
		{"zero amount", amm.NewPoolCreate(alice.PublicKey, a, b, 0, 1000), tx.TemBAD_AMOUNT},
		{"fee rate", func() *amm.PoolCreate {
			c := amm.NewPoolCreate(alice.PublicKey, a, b, 1000, 1000)
			c.TradeFeeRate = 1_000_000
			return c
		}(), tx.TemBAD_FEE},
		{"dust liquidity", amm.NewPoolCreate(alice.PublicKey, a, b, 10, 10), tx.TecAMM_BALANCE},
		{"unfunded", amm.NewPoolCreate(alice.PublicKey, a, b, 1000, 1000), tx.TecUNFUNDED},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := env.Snapshot()
			lptest.RequireTxFail(t, env.Submit(tt.create), tt.code)
			lptest.RequireUnchanged(t, env, before)
		})
	}
}

func TestPoolDeposit(t *testing.T) {
	ctx := context.Background()
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	bob := lptest.NewAccount("bob")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)
	env.Fund(bob, pool.Mint0, 10_000)
	env.Fund(bob, pool.Mint1, 10_000)

	_, err := env.Node().Deposit(ctx, bob.PublicKey, pool.ID, 1000, 999, 1000)
	assert.Equal(t, tx.TecAMM_BALANCE, tx.ResultOf(err, tx.TefINTERNAL))

	_, err = env.Node().Deposit(ctx, bob.PublicKey, pool.ID, 1000, 1000, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), env.LPBalance(bob, pool))
	assert.Equal(t, uint64(9000), env.TokenBalance(bob, pool.Mint0))
	assert.Equal(t, uint64(1_001_000), env.PoolState(pool).LPSupply)

	_, err = env.Node().Deposit(ctx, bob.PublicKey, pool.ID, 1, 10, 10)
	require.NoError(t, err)
	assert.Equal(t, uint64(8999), env.TokenBalance(bob, pool.Mint0))

	require.NoError(t, env.Node().SetPoolStatus(ctx, pool.ID, sle.PoolStatusDepositDisabled))
	_, err = env.Node().Deposit(ctx, bob.PublicKey, pool.ID, 1000, 1000, 1000)
	assert.Equal(t, tx.TecFROZEN, tx.ResultOf(err, tx.TefINTERNAL))
}

func TestPoolSwap(t *testing.T) {
	ctx := context.Background()
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	bob := lptest.NewAccount("bob")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)
	env.Fund(bob, pool.Mint0, 10_000)

	_, err := env.Node().Swap(ctx, bob.PublicKey, pool.ID, pool.Mint0, 10_000, 9877)
	assert.Equal(t, tx.TecAMM_BALANCE, tx.ResultOf(err, tx.TefINTERNAL))

	_, err = env.Node().Swap(ctx, bob.PublicKey, pool.ID, pool.Mint0, 10_000, 9876)
	require.NoError(t, err)
	assert.Zero(t, env.TokenBalance(bob, pool.Mint0))
	assert.Equal(t, uint64(9876), env.TokenBalance(bob, pool.Mint1))

	// Fee of 25: 3 to the protocol, 1 to the fund, the rest to LP holders.
	p := env.PoolState(pool)
	assert.Equal(t, uint64(3), p.ProtocolFees0)
	assert.Equal(t, uint64(1), p.FundFees0)
	assert.Equal(t, uint64(1_000_000), p.LPSupply)

	r0, r1 := env.Reserves(pool)
	assert.Equal(t, uint64(1_009_996), r0)
	assert.Equal(t, uint64(990_124), r1)

	_, err = env.Node().Swap(ctx, bob.PublicKey, pool.ID, solana.NewWallet().PublicKey(), 100, 0)
	assert.Equal(t, tx.TecPOOL_MISMATCH, tx.ResultOf(err, tx.TefINTERNAL))

	require.NoError(t, env.Node().SetPoolStatus(ctx, pool.ID, sle.PoolStatusSwapDisabled))
	_, err = env.Node().Swap(ctx, bob.PublicKey, pool.ID, pool.Mint1, 100, 0)
	assert.Equal(t, tx.TecFROZEN, tx.ResultOf(err, tx.TefINTERNAL))
}

func TestPoolNotOpen(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePoolWith(alice, node.PoolParams{AmountA: 1_000_000, AmountB: 1_000_000, OpenTime: env.Unix() + 60})
	env.Fund(alice, pool.Mint0, 100)

	_, err := env.Node().Swap(context.Background(), alice.PublicKey, pool.ID, pool.Mint0, 100, 0)
	assert.Equal(t, tx.TecFROZEN, tx.ResultOf(err, tx.TefINTERNAL))
}

func TestWithdraw(t *testing.T) {
	env := lptest.NewTestEnv(t)
	alice := lptest.NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 2_000_000)
	program := env.Node().AMM()

	ownerLP := env.Associated(alice, pool.LPMint)
	token0 := env.Associated(alice, pool.Mint0)
	token1 := env.Associated(alice, pool.Mint1)
	params := func(amount uint64) tx.WithdrawParams {
		return tx.WithdrawParams{
			Pool:     pool.ID,
			Owner:    alice.PublicKey,
			OwnerLP:  ownerLP,
			Token0:   token0,
			Token1:   token1,
			LPAmount: amount,
		}
	}
	signers := tx.Signers{alice.PublicKey}

	t.Run("success", func(t *testing.T) {
		view := sandbox(t, env)
		require.NoError(t, program.Withdraw(view, params(1000), signers))

		snap, err := program.Snapshot(view, pool.ID)
		require.NoError(t, err)
		supply := uint64(1_414_213)
		assert.Equal(t, supply-1000, snap.State.LPSupply)
		// floor(1000 * 1e6 / supply), floor(1000 * 2e6 / supply)
		assert.Equal(t, uint64(1_000_000-707), snap.Reserve0)
		assert.Equal(t, uint64(2_000_000-1414), snap.Reserve1)

		bal, err := token.Balance(view, token0)
		require.NoError(t, err)
		assert.Equal(t, uint64(707), bal)
	})

	t.Run("missing signature", func(t *testing.T) {
		err := program.Withdraw(sandbox(t, env), params(1000), tx.Signers{})
		assert.ErrorIs(t, err, token.ErrMissingSignature)
	})

	t.Run("exceeds supply", func(t *testing.T) {
		err := program.Withdraw(sandbox(t, env), params(2_000_000), signers)
		assert.ErrorIs(t, err, amm.ErrExceedsSupply)
	})

	t.Run("dust", func(t *testing.T) {
		err := program.Withdraw(sandbox(t, env), params(1), signers)
		assert.ErrorIs(t, err, amm.ErrZeroTradingTokens)
	})

	t.Run("slippage", func(t *testing.T) {
		p := params(1000)
		p.MinAmount0 = 708
		err := program.Withdraw(sandbox(t, env), p, signers)
		assert.ErrorIs(t, err, amm.ErrSlippage)
	})

	t.Run("unknown pool", func(t *testing.T) {
		p := params(1000)
		p.Pool = solana.NewWallet().PublicKey()
		err := program.Withdraw(sandbox(t, env), p, signers)
		assert.ErrorIs(t, err, amm.ErrPoolNotFound)
		assert.ErrorIs(t, err, tx.ErrEntryNotFound)
	})

	t.Run("disabled", func(t *testing.T) {
		require.NoError(t, env.Node().SetPoolStatus(context.Background(), pool.ID, sle.PoolStatusWithdrawDisabled))
		err := program.Withdraw(sandbox(t, env), params(1000), signers)
		assert.ErrorIs(t, err, amm.ErrWithdrawDisabled)
	})
}
