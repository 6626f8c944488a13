// Package amm is the constant-product pool program the lock engine trades
// LP shares against.
//
// The pool owns its reserves, its LP mint and its LP supply. Vault transfers
// and LP minting are signed by a program-derived authority that only the
// CPMM value holds. The lock engine reaches the pool exclusively through the
// tx.AMMProgram interface: Snapshot to read state and Withdraw to redeem
// shares.
package amm

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

// Seeds
const (
	AuthoritySeed = "vault_and_lp_mint_auth_seed"
	ConfigSeed    = "amm_config"
	PoolSeed      = "pool"
	LPMintSeed    = "pool_lp_mint"
	VaultSeed     = "pool_vault"
)

// LockedLiquidity is the part of the initial liquidity that is counted in
// the LP supply but never minted, so the supply can not return to zero.
const LockedLiquidity uint64 = 100

var (
	ErrPoolNotFound      = fmt.Errorf("pool %w", tx.ErrEntryNotFound)
	ErrWithdrawDisabled  = errors.New("pool withdraw disabled")
	ErrEmptySupply       = errors.New("pool lp supply is zero")
	ErrExceedsSupply     = errors.New("lp amount exceeds pool supply")
	ErrZeroTradingTokens = errors.New("lp amount results in zero trading tokens")
	ErrSlippage          = errors.New("exceeds desired slippage limit")
	ErrVaultFees         = errors.New("accrued pool fees exceed vault balance")
	ErrInvalidVault      = errors.New("invalid vault account")
)

// CPMM is the constant-product pool program.
type CPMM struct {
	programID solana.PublicKey
	authority solana.PublicKey
	config    solana.PublicKey
}

var _ tx.AMMProgram = (*CPMM)(nil)

// NewCPMM derives the program authority and config of programID.
func NewCPMM(programID solana.PublicKey) (*CPMM, error) {
	auth, _, err := solana.FindProgramAddress([][]byte{[]byte(AuthoritySeed)}, programID)
	if err != nil {
		return nil, fmt.Errorf("derive pool authority: %w", err)
	}
	cfg, _, err := solana.FindProgramAddress([][]byte{[]byte(ConfigSeed), {0, 0}}, programID)
	if err != nil {
		return nil, fmt.Errorf("derive amm config: %w", err)
	}
	return &CPMM{programID: programID, authority: auth, config: cfg}, nil
}

// ProgramID returns the program id the pool addresses are derived under.
func (c *CPMM) ProgramID() solana.PublicKey { return c.programID }

// Authority returns the vault and LP mint authority.
func (c *CPMM) Authority() solana.PublicKey { return c.authority }

// PoolAddress derives the pool of a mint pair. Mints must be sorted.
func (c *CPMM) PoolAddress(token0, token1 solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(PoolSeed), c.config[:], token0[:], token1[:],
	}, c.programID)
	return addr, err
}

// LPMintAddress derives the LP mint of a pool.
func (c *CPMM) LPMintAddress(pool solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(LPMintSeed), pool[:]}, c.programID)
	return addr, err
}

// VaultAddress derives the vault of a pool for one of its mints.
func (c *CPMM) VaultAddress(pool, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(VaultSeed), pool[:], mint[:]}, c.programID)
	return addr, err
}

// SortMints orders a mint pair the way pools store them.
func SortMints(a, b solana.PublicKey) (solana.PublicKey, solana.PublicKey) {
	if a.String() > b.String() {
		return b, a
	}
	return a, b
}

// Pool loads a pool.
func (c *CPMM) Pool(view tx.LedgerView, id solana.PublicKey) (*sle.PoolState, error) {
	p := &sle.PoolState{}
	found, err := tx.ReadEntry(view, keylet.Pool(id), p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, id)
	}
	return p, nil
}

// Snapshot returns the pool with reserves net of protocol and fund fees.
func (c *CPMM) Snapshot(view tx.LedgerView, id solana.PublicKey) (tx.PoolSnapshot, error) {
	p, err := c.Pool(view, id)
	if err != nil {
		return tx.PoolSnapshot{}, err
	}
	v0, err := c.vaultBalance(view, p.Token0Vault, p.Token0Mint)
	if err != nil {
		return tx.PoolSnapshot{}, err
	}
	v1, err := c.vaultBalance(view, p.Token1Vault, p.Token1Mint)
	if err != nil {
		return tx.PoolSnapshot{}, err
	}
	r0, r1, ok := p.VaultAmountWithoutFee(v0, v1)
	if !ok {
		return tx.PoolSnapshot{}, fmt.Errorf("%w: pool %s", ErrVaultFees, id)
	}
	return tx.PoolSnapshot{State: p, Reserve0: r0, Reserve1: r1}, nil
}

func (c *CPMM) vaultBalance(view tx.LedgerView, vault, mint solana.PublicKey) (uint64, error) {
	acct, err := token.GetAccount(view, vault)
	if err != nil {
		return 0, err
	}
	if !acct.Mint.Equals(mint) || !acct.Owner.Equals(c.authority) {
		return 0, fmt.Errorf("%w: %s", ErrInvalidVault, vault)
	}
	return acct.Amount, nil
}

// Withdraw burns p.LPAmount shares from p.OwnerLP and pays the floor-rounded
// underlying amounts out of the vaults. signers must include the owner of
// p.OwnerLP.
func (c *CPMM) Withdraw(view tx.LedgerView, p tx.WithdrawParams, signers tx.Signers) error {
	snap, err := c.Snapshot(view, p.Pool)
	if err != nil {
		return err
	}
	pool := snap.State
	if !pool.Enabled(sle.PoolStatusWithdrawDisabled) {
		return ErrWithdrawDisabled
	}
	if pool.LPSupply == 0 {
		return ErrEmptySupply
	}
	if p.LPAmount > pool.LPSupply {
		return fmt.Errorf("%w: %d > %d", ErrExceedsSupply, p.LPAmount, pool.LPSupply)
	}

	out, ok := curve.SharesToUnderlying(p.LPAmount, pool.LPSupply, snap.Reserve0, snap.Reserve1, curve.Floor)
	if !ok {
		return ErrEmptySupply
	}
	amount0, amount1, ok := out.Uint64()
	if !ok {
		return ErrZeroTradingTokens
	}
	amount0 = min(amount0, snap.Reserve0)
	amount1 = min(amount1, snap.Reserve1)
	if amount0 == 0 || amount1 == 0 {
		return ErrZeroTradingTokens
	}
	if amount0 < p.MinAmount0 || amount1 < p.MinAmount1 {
		return fmt.Errorf("%w: got (%d, %d), want at least (%d, %d)",
			ErrSlippage, amount0, amount1, p.MinAmount0, p.MinAmount1)
	}

	lp, err := token.GetAccount(view, p.OwnerLP)
	if err != nil {
		return err
	}
	if !lp.Mint.Equals(pool.LPMint) {
		return fmt.Errorf("%w: %s is not an lp account of %s", token.ErrMintMismatch, p.OwnerLP, pool.ID)
	}
	if err := token.Burn(view, p.OwnerLP, p.LPAmount, signers); err != nil {
		return err
	}

	pool.LPSupply -= p.LPAmount
	if err := tx.UpdateEntry(view, keylet.Pool(pool.ID), pool); err != nil {
		return err
	}

	vaults := tx.Signers{c.authority}
	if err := token.Transfer(view, pool.Token0Vault, p.Token0, amount0, vaults); err != nil {
		return err
	}
	return token.Transfer(view, pool.Token1Vault, p.Token1, amount1, vaults)
}

// programOf returns the constant-product program configured on the engine.
func programOf(ctx *tx.ApplyContext) (*CPMM, bool) {
	c, ok := ctx.AMM().(*CPMM)
	return c, ok && c != nil
}
