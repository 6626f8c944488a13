package lock

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/events"
)

func init() {
	tx.Register(tx.TypeLockCollectFees, func() tx.Transaction {
		return &LockCollectFees{BaseTx: *tx.NewBaseTx(tx.TypeLockCollectFees, solana.PublicKey{})}
	})
}

// LockCollectFees extracts the LP shares a lock holds beyond its principal and
// redeems them through the pool for the underlying assets.
//
// The principal is the liquidity recorded at creation. At the current
// exchange rate it is carried by
//
//	principalShares = principalLiquidity * lockAmount / currentLiquidity
//
// shares; the rest of lockAmount is fee appreciation and is burned.
// Collection is not time-gated.
type LockCollectFees struct {
	tx.BaseTx

	Pool   solana.PublicKey `json:"pool" codec:"pool"`
	LPMint solana.PublicKey `json:"lp_mint" codec:"lp_mint"`
	Index  uint64           `json:"index" codec:"index"`
}

func NewLockCollectFees(owner, pool, lpMint solana.PublicKey, index uint64) *LockCollectFees {
	return &LockCollectFees{
		BaseTx: *tx.NewBaseTx(tx.TypeLockCollectFees, owner),
		Pool:   pool,
		LPMint: lpMint,
		Index:  index,
	}
}

func (c *LockCollectFees) TxType() tx.Type {
	return tx.TypeLockCollectFees
}

func (c *LockCollectFees) Validate() error {
	if err := c.BaseTx.Validate(); err != nil {
		return err
	}
	if c.Pool.IsZero() || c.LPMint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "pool and lp mint are required")
	}
	if c.Index == 0 {
		return tx.Errorf(tx.TemMALFORMED, "lock index starts at 1")
	}
	return nil
}

// Apply applies the LockCollectFees transaction to ledger state.
func (c *LockCollectFees) Apply(ctx *tx.ApplyContext) tx.Result {
	lock, res := loadLock(ctx, c.LPMint, c.Index)
	if res != tx.TesSUCCESS {
		return res
	}
	if lock.Released {
		return tx.TecALREADY_RELEASED
	}

	snap, res := loadPool(ctx, c.Pool, c.LPMint)
	if res != tx.TesSUCCESS {
		return res
	}
	pool := snap.State
	log := ctx.Logger.With("index", lock.Index)
	log.Debug("pool reserves", "reserve_0", snap.Reserve0, "reserve_1", snap.Reserve1, "lp_supply", pool.LPSupply)

	// Step 1: value of the shares currently locked
	cur, ok := curve.SharesToUnderlying(lock.LockAmount, pool.LPSupply, snap.Reserve0, snap.Reserve1, curve.Floor)
	if !ok {
		return tx.TecEMPTY_SUPPLY
	}
	cur0, cur1, ok := cur.Uint64()
	if !ok {
		return tx.TecOVERFLOW
	}
	curLiquidity := curve.LiquidityOf(cur0, cur1)
	if curLiquidity == 0 {
		return tx.TecZERO_LIQUIDITY
	}

	// Step 2: shares that still carry the principal
	principalShares, err := curve.PrincipalShares(lock.PrincipalLiquidity, lock.LockAmount, curLiquidity)
	switch {
	case errors.Is(err, curve.ErrZeroLiquidity):
		return tx.TecZERO_LIQUIDITY
	case err != nil:
		return tx.TecOVERFLOW
	}
	if principalShares > lock.LockAmount {
		return tx.TecUNDERFLOW
	}
	burn := lock.LockAmount - principalShares
	log.Debug("rebased principal",
		"lock_amount", lock.LockAmount,
		"current_liquidity", curLiquidity,
		"principal_liquidity", lock.PrincipalLiquidity,
		"principal_shares", principalShares,
		"burn", burn,
	)
	if burn == 0 {
		return tx.TecNO_FEES
	}

	// Step 3: what the excess shares redeem for
	fees, ok := curve.SharesToUnderlying(burn, pool.LPSupply, snap.Reserve0, snap.Reserve1, curve.Floor)
	if !ok {
		return tx.TecEMPTY_SUPPLY
	}
	fee0, fee1, ok := fees.Uint64()
	if !ok {
		return tx.TecOVERFLOW
	}
	fee0 = min(fee0, snap.Reserve0)
	fee1 = min(fee1, snap.Reserve1)
	if fee0 == 0 || fee1 == 0 {
		return tx.TecZERO_FEE_AMOUNT
	}

	// Step 4: bookkeeping
	reg, found, res := loadRegistry(ctx, c.LPMint)
	if res != tx.TesSUCCESS {
		return res
	}
	if !found {
		return tx.TefBAD_LEDGER
	}
	if reg.TotalLocked < lock.LockAmount {
		return tx.TecUNDERFLOW
	}
	reg.TotalLocked -= lock.LockAmount
	if reg.TotalLocked+principalShares < reg.TotalLocked {
		return tx.TecOVERFLOW
	}
	reg.TotalLocked += principalShares

	if lock.Fees0+fee0 < lock.Fees0 || lock.Fees1+fee1 < lock.Fees1 {
		return tx.TecOVERFLOW
	}
	lock.LockAmount = principalShares
	lock.Fees0 += fee0
	lock.Fees1 += fee1
	lock.LastUpdated = ctx.Now()

	if err := tx.UpdateEntry(ctx.View, keylet.Lock(lock.Owner, lock.LPMint, lock.Index), lock); err != nil {
		return tx.TefINTERNAL
	}
	if err := tx.UpdateEntry(ctx.View, keylet.Registry(lock.Owner, lock.LPMint), reg); err != nil {
		return tx.TefINTERNAL
	}

	// Step 5: move the excess to the owner and redeem it
	cust, res := custodian(ctx)
	if res != tx.TesSUCCESS {
		return res
	}
	ownerLP, res := releaseFromVault(ctx, cust, lock, burn)
	if res != tx.TesSUCCESS {
		return res
	}
	token0, err := token.EnsureAssociated(ctx.View, ctx.Account, pool.Token0Mint)
	if err != nil {
		return token.ResultOf(err)
	}
	token1, err := token.EnsureAssociated(ctx.View, ctx.Account, pool.Token1Mint)
	if err != nil {
		return token.ResultOf(err)
	}

	err = ctx.AMM().Withdraw(ctx.View, tx.WithdrawParams{
		Pool:     pool.ID,
		Owner:    ctx.Account,
		OwnerLP:  ownerLP,
		Token0:   token0,
		Token1:   token1,
		LPAmount: burn,
	}, ctx.Signers())
	if err != nil {
		log.Warn("amm withdraw failed", "burn", burn, "err", err)
		return tx.TecAMM_FAILED
	}

	ctx.Emit(events.Event{
		Kind:   events.KindFeesCollected,
		Owner:  ctx.Account,
		LPMint: c.LPMint,
		Index:  lock.Index,
		Amount: burn,
		Fee0:   fee0,
		Fee1:   fee1,
	})
	return tx.TesSUCCESS
}
