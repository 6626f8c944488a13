package amm

import (
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypePoolDeposit, func() tx.Transaction {
		return &PoolDeposit{BaseTx: *tx.NewBaseTx(tx.TypePoolDeposit, solana.PublicKey{})}
	})
}

// PoolDeposit buys LPAmount shares for both pool assets. The asset amounts are
// rounded up so the pool is never short-changed.
type PoolDeposit struct {
	tx.BaseTx

	Pool       solana.PublicKey `json:"pool" codec:"pool"`
	LPAmount   uint64           `json:"lp_amount" codec:"lp_amount"`
	MaxAmount0 uint64           `json:"max_amount_0" codec:"max_amount_0"`
	MaxAmount1 uint64           `json:"max_amount_1" codec:"max_amount_1"`
}

func NewPoolDeposit(account, pool solana.PublicKey, lpAmount, max0, max1 uint64) *PoolDeposit {
	return &PoolDeposit{
		BaseTx:     *tx.NewBaseTx(tx.TypePoolDeposit, account),
		Pool:       pool,
		LPAmount:   lpAmount,
		MaxAmount0: max0,
		MaxAmount1: max1,
	}
}

func (d *PoolDeposit) TxType() tx.Type {
	return tx.TypePoolDeposit
}

func (d *PoolDeposit) Validate() error {
	if err := d.BaseTx.Validate(); err != nil {
		return err
	}
	if d.Pool.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "pool is required")
	}
	if d.LPAmount == 0 {
		return tx.Errorf(tx.TemBAD_AMOUNT, "lp amount must be positive")
	}
	return nil
}

func (d *PoolDeposit) Apply(ctx *tx.ApplyContext) tx.Result {
	program, ok := programOf(ctx)
	if !ok {
		return tx.TemINVALID
	}
	snap, err := program.Snapshot(ctx.View, d.Pool)
	if err != nil {
		return snapshotResult(err)
	}
	pool := snap.State
	if !pool.Enabled(sle.PoolStatusDepositDisabled) {
		return tx.TecFROZEN
	}

	out, ok := curve.SharesToUnderlying(d.LPAmount, pool.LPSupply, snap.Reserve0, snap.Reserve1, curve.Ceiling)
	if !ok {
		return tx.TecEMPTY_SUPPLY
	}
	amount0, amount1, ok := out.Uint64()
	if !ok {
		return tx.TecOVERFLOW
	}
	if amount0 == 0 || amount1 == 0 {
		return tx.TecZERO_TRADING_TOKENS
	}
	if amount0 > d.MaxAmount0 || amount1 > d.MaxAmount1 {
		ctx.Logger.Debug("deposit exceeds slippage", "amount_0", amount0, "amount_1", amount1)
		return tx.TecAMM_BALANCE
	}
	if pool.LPSupply+d.LPAmount < pool.LPSupply {
		return tx.TecOVERFLOW
	}

	src0, err := token.Associated(ctx.Account, pool.Token0Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	src1, err := token.Associated(ctx.Account, pool.Token1Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := token.Transfer(ctx.View, src0, pool.Token0Vault, amount0, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}
	if err := token.Transfer(ctx.View, src1, pool.Token1Vault, amount1, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}

	ownerLP, err := token.EnsureAssociated(ctx.View, ctx.Account, pool.LPMint)
	if err != nil {
		return token.ResultOf(err)
	}
	if err := token.MintTo(ctx.View, pool.LPMint, ownerLP, d.LPAmount, tx.Signers{program.Authority()}); err != nil {
		return token.ResultOf(err)
	}

	pool.LPSupply += d.LPAmount
	if err := tx.UpdateEntry(ctx.View, keylet.Pool(pool.ID), pool); err != nil {
		return tx.TefINTERNAL
	}
	return tx.TesSUCCESS
}
