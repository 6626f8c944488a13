package amm

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

func init() {
	tx.Register(tx.TypePoolSwap, func() tx.Transaction {
		return &PoolSwap{BaseTx: *tx.NewBaseTx(tx.TypePoolSwap, solana.PublicKey{})}
	})
}

// PoolSwap trades an exact input amount of one pool asset for the other.
//
// The trade fee stays in the pool, except for the protocol and fund shares
// which are accrued separately and excluded from reserves. Swaps are what
// make LP shares appreciate.
type PoolSwap struct {
	tx.BaseTx

	Pool         solana.PublicKey `json:"pool" codec:"pool"`
	InputMint    solana.PublicKey `json:"input_mint" codec:"input_mint"`
	AmountIn     uint64           `json:"amount_in" codec:"amount_in"`
	MinAmountOut uint64           `json:"min_amount_out" codec:"min_amount_out"`
}

func NewPoolSwap(account, pool, inputMint solana.PublicKey, amountIn, minOut uint64) *PoolSwap {
	return &PoolSwap{
		BaseTx:       *tx.NewBaseTx(tx.TypePoolSwap, account),
		Pool:         pool,
		InputMint:    inputMint,
		AmountIn:     amountIn,
		MinAmountOut: minOut,
	}
}

func (s *PoolSwap) TxType() tx.Type {
	return tx.TypePoolSwap
}

func (s *PoolSwap) Validate() error {
	if err := s.BaseTx.Validate(); err != nil {
		return err
	}
	if s.Pool.IsZero() || s.InputMint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "pool and input mint are required")
	}
	if s.AmountIn == 0 {
		return tx.Errorf(tx.TemBAD_AMOUNT, "input amount must be positive")
	}
	return nil
}

func (s *PoolSwap) Apply(ctx *tx.ApplyContext) tx.Result {
	program, ok := programOf(ctx)
	if !ok {
		return tx.TemINVALID
	}
	snap, err := program.Snapshot(ctx.View, s.Pool)
	if err != nil {
		return snapshotResult(err)
	}
	pool := snap.State
	if !pool.Enabled(sle.PoolStatusSwapDisabled) || ctx.Now() < pool.OpenTime {
		return tx.TecFROZEN
	}

	var (
		inMint, outMint   = pool.Token0Mint, pool.Token1Mint
		inVault, outVault = pool.Token0Vault, pool.Token1Vault
		reserveIn         = snap.Reserve0
		reserveOut        = snap.Reserve1
		zeroForOne        = true
	)
	switch {
	case s.InputMint.Equals(pool.Token0Mint):
	case s.InputMint.Equals(pool.Token1Mint):
		inMint, outMint = outMint, inMint
		inVault, outVault = outVault, inVault
		reserveIn, reserveOut = reserveOut, reserveIn
		zeroForOne = false
	default:
		return tx.TecPOOL_MISMATCH
	}

	tradeFee := curve.TradingFee(s.AmountIn, pool.TradeFeeRate)
	protocolFee := curve.SplitFee(tradeFee, pool.ProtocolFeeRate)
	fundFee := curve.SplitFee(tradeFee, pool.FundFeeRate)
	if tradeFee >= s.AmountIn {
		return tx.TecZERO_TRADING_TOKENS
	}

	amountOut, ok := curve.SwapBaseInput(s.AmountIn-tradeFee, reserveIn, reserveOut)
	if !ok {
		return tx.TecOVERFLOW
	}
	if amountOut == 0 || amountOut >= reserveOut {
		return tx.TecZERO_TRADING_TOKENS
	}
	if amountOut < s.MinAmountOut {
		ctx.Logger.Debug("swap below minimum output", "out", amountOut, "min", s.MinAmountOut)
		return tx.TecAMM_BALANCE
	}

	src, err := token.Associated(ctx.Account, inMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	dst, err := token.EnsureAssociated(ctx.View, ctx.Account, outMint)
	if err != nil {
		return token.ResultOf(err)
	}
	if err := token.Transfer(ctx.View, src, inVault, s.AmountIn, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}
	if err := token.Transfer(ctx.View, outVault, dst, amountOut, tx.Signers{program.Authority()}); err != nil {
		return token.ResultOf(err)
	}

	if zeroForOne {
		pool.ProtocolFees0 += protocolFee
		pool.FundFees0 += fundFee
	} else {
		pool.ProtocolFees1 += protocolFee
		pool.FundFees1 += fundFee
	}
	if err := tx.UpdateEntry(ctx.View, keylet.Pool(pool.ID), pool); err != nil {
		return tx.TefINTERNAL
	}

	ctx.Logger.Debug("swap",
		"pool", pool.ID,
		"in", s.AmountIn,
		"out", amountOut,
		"trade_fee", tradeFee,
		"protocol_fee", protocolFee,
		"fund_fee", fundFee,
	)
	return tx.TesSUCCESS
}

// snapshotResult maps a Snapshot failure onto a result.
func snapshotResult(err error) tx.Result {
	switch {
	case errors.Is(err, ErrVaultFees), errors.Is(err, ErrInvalidVault):
		return tx.TecAMM_BALANCE
	default:
		return token.ResultOf(err)
	}
}
