package sle

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
)

// FeeRateDenominator is the denominator of every pool fee rate.
const FeeRateDenominator = curve.FeeRateDenominator

// Pool status bits. A set bit disables the operation.
const (
	PoolStatusDepositDisabled  uint8 = 1 << 0
	PoolStatusWithdrawDisabled uint8 = 1 << 1
	PoolStatusSwapDisabled     uint8 = 1 << 2
)

// PoolState is the constant-product pool owned by the AMM program.
//
// Vault balances include protocol and fund fees that belong to the pool
// operator; VaultAmountWithoutFee strips them to obtain the reserves that
// back LP shares.
type PoolState struct {
	ID        solana.PublicKey `codec:"id"`
	AMMConfig solana.PublicKey `codec:"amm_config"`
	Authority solana.PublicKey `codec:"authority"`

	LPMint      solana.PublicKey `codec:"lp_mint"`
	Token0Mint  solana.PublicKey `codec:"token_0_mint"`
	Token1Mint  solana.PublicKey `codec:"token_1_mint"`
	Token0Vault solana.PublicKey `codec:"token_0_vault"`
	Token1Vault solana.PublicKey `codec:"token_1_vault"`

	LPSupply uint64 `codec:"lp_supply"`

	ProtocolFees0 uint64 `codec:"protocol_fees_0"`
	ProtocolFees1 uint64 `codec:"protocol_fees_1"`
	FundFees0     uint64 `codec:"fund_fees_0"`
	FundFees1     uint64 `codec:"fund_fees_1"`

	// Rates are parts per FeeRateDenominator. Protocol and fund rates are
	// fractions of the trade fee, not of the input amount.
	TradeFeeRate    uint64 `codec:"trade_fee_rate"`
	ProtocolFeeRate uint64 `codec:"protocol_fee_rate"`
	FundFeeRate     uint64 `codec:"fund_fee_rate"`

	Status   uint8  `codec:"status"`
	OpenTime uint64 `codec:"open_time"`
}

func (p *PoolState) Type() entry.Type { return entry.TypePool }

func (p *PoolState) Validate() error {
	if p.ID.IsZero() {
		return errors.New("pool id is required")
	}
	if p.LPMint.IsZero() || p.Token0Mint.IsZero() || p.Token1Mint.IsZero() {
		return errors.New("pool mints are required")
	}
	if p.Token0Vault.IsZero() || p.Token1Vault.IsZero() {
		return errors.New("pool vaults are required")
	}
	if p.Token0Mint.Equals(p.Token1Mint) {
		return errors.New("pool mints must differ")
	}
	if p.TradeFeeRate >= FeeRateDenominator {
		return errors.New("trade fee rate must be below 100%")
	}
	if p.ProtocolFeeRate+p.FundFeeRate > FeeRateDenominator {
		return errors.New("protocol and fund fee rates exceed the trade fee")
	}
	return nil
}

// VaultAmountWithoutFee returns the vault balances minus accrued protocol and
// fund fees. It reports false if the accrued fees exceed a vault balance.
func (p *PoolState) VaultAmountWithoutFee(vault0, vault1 uint64) (uint64, uint64, bool) {
	fees0 := p.ProtocolFees0 + p.FundFees0
	fees1 := p.ProtocolFees1 + p.FundFees1
	if fees0 < p.ProtocolFees0 || fees1 < p.ProtocolFees1 {
		return 0, 0, false
	}
	if fees0 > vault0 || fees1 > vault1 {
		return 0, 0, false
	}
	return vault0 - fees0, vault1 - fees1, true
}

// Enabled reports whether the status bit for an operation is clear.
func (p *PoolState) Enabled(bit uint8) bool {
	return p.Status&bit == 0
}

// ParsePool parses a PoolState from serialized data.
func ParsePool(data []byte) (*PoolState, error) {
	p := &PoolState{}
	if err := Parse(data, p); err != nil {
		return nil, err
	}
	return p, nil
}
