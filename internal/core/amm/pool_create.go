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
	tx.Register(tx.TypePoolCreate, func() tx.Transaction {
		return &PoolCreate{BaseTx: *tx.NewBaseTx(tx.TypePoolCreate, solana.PublicKey{})}
	})
}

// PoolCreate initializes a pool for a mint pair and seeds it with the
// creator's first deposit.
type PoolCreate struct {
	tx.BaseTx

	Token0Mint solana.PublicKey `json:"token_0_mint" codec:"token_0_mint"`
	Token1Mint solana.PublicKey `json:"token_1_mint" codec:"token_1_mint"`
	Amount0    uint64           `json:"amount_0" codec:"amount_0"`
	Amount1    uint64           `json:"amount_1" codec:"amount_1"`

	TradeFeeRate    uint64 `json:"trade_fee_rate" codec:"trade_fee_rate"`
	ProtocolFeeRate uint64 `json:"protocol_fee_rate" codec:"protocol_fee_rate"`
	FundFeeRate     uint64 `json:"fund_fee_rate" codec:"fund_fee_rate"`

	// OpenTime is the first close time swaps are accepted at. 0 opens the pool immediately.
	OpenTime uint64 `json:"open_time,omitempty" codec:"open_time"`
}

// NewPoolCreate creates a PoolCreate. The mints are sorted.
func NewPoolCreate(account, mintA, mintB solana.PublicKey, amountA, amountB uint64) *PoolCreate {
	t0, t1 := SortMints(mintA, mintB)
	a0, a1 := amountA, amountB
	if !t0.Equals(mintA) {
		a0, a1 = amountB, amountA
	}
	return &PoolCreate{
		BaseTx:     *tx.NewBaseTx(tx.TypePoolCreate, account),
		Token0Mint: t0,
		Token1Mint: t1,
		Amount0:    a0,
		Amount1:    a1,
	}
}

func (p *PoolCreate) TxType() tx.Type {
	return tx.TypePoolCreate
}

// Validate validates the PoolCreate transaction
func (p *PoolCreate) Validate() error {
	if err := p.BaseTx.Validate(); err != nil {
		return err
	}
	if p.Token0Mint.IsZero() || p.Token1Mint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "both mints are required")
	}
	if p.Token0Mint.String() >= p.Token1Mint.String() {
		return tx.Errorf(tx.TemMALFORMED, "mints must be distinct and sorted")
	}
	if p.Amount0 == 0 || p.Amount1 == 0 {
		return tx.Errorf(tx.TemBAD_AMOUNT, "initial amounts must be positive")
	}
	if p.TradeFeeRate >= curve.FeeRateDenominator {
		return tx.Errorf(tx.TemBAD_FEE, "trade fee rate %d out of range", p.TradeFeeRate)
	}
	if p.ProtocolFeeRate+p.FundFeeRate > curve.FeeRateDenominator || p.ProtocolFeeRate+p.FundFeeRate < p.ProtocolFeeRate {
		return tx.Errorf(tx.TemBAD_FEE, "protocol and fund fee rates exceed the trade fee")
	}
	return nil
}

// Apply applies the PoolCreate transaction to ledger state.
func (p *PoolCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	program, ok := programOf(ctx)
	if !ok {
		return tx.TemINVALID
	}

	id, err := program.PoolAddress(p.Token0Mint, p.Token1Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	exists, err := ctx.View.Exists(keylet.Pool(id))
	if err != nil {
		return tx.TefINTERNAL
	}
	if exists {
		return tx.TecDUPLICATE
	}

	liquidity := curve.LiquidityOf(p.Amount0, p.Amount1)
	if liquidity <= LockedLiquidity {
		ctx.Logger.Debug("initial liquidity too small", "liquidity", liquidity)
		return tx.TecAMM_BALANCE
	}

	lpMint, err := program.LPMintAddress(id)
	if err != nil {
		return tx.TefINTERNAL
	}
	vault0, err := program.VaultAddress(id, p.Token0Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	vault1, err := program.VaultAddress(id, p.Token1Mint)
	if err != nil {
		return tx.TefINTERNAL
	}

	mint0, err := token.GetMint(ctx.View, p.Token0Mint)
	if err != nil {
		return token.ResultOf(err)
	}
	if _, err := token.GetMint(ctx.View, p.Token1Mint); err != nil {
		return token.ResultOf(err)
	}

	if err := token.CreateMint(ctx.View, lpMint, program.Authority(), mint0.Decimals); err != nil {
		return token.ResultOf(err)
	}
	if err := token.CreateAccount(ctx.View, vault0, p.Token0Mint, program.Authority()); err != nil {
		return token.ResultOf(err)
	}
	if err := token.CreateAccount(ctx.View, vault1, p.Token1Mint, program.Authority()); err != nil {
		return token.ResultOf(err)
	}

	src0, err := token.Associated(ctx.Account, p.Token0Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	src1, err := token.Associated(ctx.Account, p.Token1Mint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := token.Transfer(ctx.View, src0, vault0, p.Amount0, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}
	if err := token.Transfer(ctx.View, src1, vault1, p.Amount1, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}

	ownerLP, err := token.EnsureAssociated(ctx.View, ctx.Account, lpMint)
	if err != nil {
		return token.ResultOf(err)
	}
	if err := token.MintTo(ctx.View, lpMint, ownerLP, liquidity-LockedLiquidity, tx.Signers{program.Authority()}); err != nil {
		return token.ResultOf(err)
	}

	openTime := p.OpenTime
	if openTime == 0 {
		openTime = ctx.Now()
	}
	pool := &sle.PoolState{
		ID:              id,
		AMMConfig:       program.config,
		Authority:       program.Authority(),
		LPMint:          lpMint,
		Token0Mint:      p.Token0Mint,
		Token1Mint:      p.Token1Mint,
		Token0Vault:     vault0,
		Token1Vault:     vault1,
		LPSupply:        liquidity,
		TradeFeeRate:    p.TradeFeeRate,
		ProtocolFeeRate: p.ProtocolFeeRate,
		FundFeeRate:     p.FundFeeRate,
		OpenTime:        openTime,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Pool(id), pool); err != nil {
		return tx.TefINTERNAL
	}

	ctx.Logger.Debug("pool created", "pool", id, "lp_mint", lpMint, "liquidity", liquidity)
	return tx.TesSUCCESS
}
