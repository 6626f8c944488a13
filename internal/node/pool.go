package node

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/amm"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
)

// PoolParams describes a pool to create.
type PoolParams struct {
	MintA   solana.PublicKey
	MintB   solana.PublicKey
	AmountA uint64
	AmountB uint64

	// Zero rates take the node defaults.
	TradeFeeRate    uint64
	ProtocolFeeRate uint64
	FundFeeRate     uint64
	OpenTime        uint64
}

// PoolInfo identifies a created pool.
type PoolInfo struct {
	TxID   string           `json:"tx_id"`
	Pool   solana.PublicKey `json:"pool"`
	LPMint solana.PublicKey `json:"lp_mint"`
}

// CreatePool creates a pool for a mint pair funded by creator.
func (n *Node) CreatePool(ctx context.Context, creator solana.PublicKey, p PoolParams) (PoolInfo, error) {
	create := amm.NewPoolCreate(creator, p.MintA, p.MintB, p.AmountA, p.AmountB)
	create.TradeFeeRate = p.TradeFeeRate
	if create.TradeFeeRate == 0 {
		create.TradeFeeRate = n.cfg.TradeFeeRate
	}
	create.ProtocolFeeRate = p.ProtocolFeeRate
	if create.ProtocolFeeRate == 0 {
		create.ProtocolFeeRate = n.cfg.ProtocolFeeRate
	}
	create.FundFeeRate = p.FundFeeRate
	if create.FundFeeRate == 0 {
		create.FundFeeRate = n.cfg.FundFeeRate
	}
	create.OpenTime = p.OpenTime

	res, err := n.Submit(ctx, create)
	if err != nil {
		return PoolInfo{}, err
	}
	if err := res.Err(); err != nil {
		return PoolInfo{TxID: res.TxID()}, err
	}

	pool, err := n.amm.PoolAddress(create.Token0Mint, create.Token1Mint)
	if err != nil {
		return PoolInfo{}, err
	}
	lpMint, err := n.amm.LPMintAddress(pool)
	if err != nil {
		return PoolInfo{}, err
	}
	return PoolInfo{TxID: res.TxID(), Pool: pool, LPMint: lpMint}, nil
}

// Deposit mints lpAmount LP shares to owner for at most max0 and max1
// tokens.
func (n *Node) Deposit(ctx context.Context, owner, pool solana.PublicKey, lpAmount, max0, max1 uint64) (tx.ApplyResult, error) {
	res, err := n.Submit(ctx, amm.NewPoolDeposit(owner, pool, lpAmount, max0, max1))
	if err != nil {
		return res, err
	}
	return res, res.Err()
}

// Swap trades amountIn of inputMint through pool.
func (n *Node) Swap(ctx context.Context, owner, pool, inputMint solana.PublicKey, amountIn, minOut uint64) (tx.ApplyResult, error) {
	res, err := n.Submit(ctx, amm.NewPoolSwap(owner, pool, inputMint, amountIn, minOut))
	if err != nil {
		return res, err
	}
	return res, res.Err()
}

// CreateMint registers a mint controlled by authority.
func (n *Node) CreateMint(ctx context.Context, mint, authority solana.PublicKey, decimals uint8) error {
	return n.direct(ctx, func(view tx.LedgerView) error {
		return token.CreateMint(view, mint, authority, decimals)
	})
}

// MintTo issues amount of the account's mint into account, acting as the
// mint authority.
func (n *Node) MintTo(ctx context.Context, account solana.PublicKey, amount uint64) error {
	return n.direct(ctx, func(view tx.LedgerView) error {
		acct, err := token.GetAccount(view, account)
		if err != nil {
			return err
		}
		m, err := token.GetMint(view, acct.Mint)
		if err != nil {
			return err
		}
		return token.MintTo(view, acct.Mint, account, amount, tx.Signers{m.Authority})
	})
}

// Mint issues amount of mint to owner's associated account, creating the
// account if needed.
func (n *Node) Mint(ctx context.Context, mint, owner solana.PublicKey, amount uint64) (solana.PublicKey, error) {
	var ata solana.PublicKey
	err := n.direct(ctx, func(view tx.LedgerView) error {
		m, err := token.GetMint(view, mint)
		if err != nil {
			return err
		}
		ata, err = token.EnsureAssociated(view, owner, mint)
		if err != nil {
			return err
		}
		return token.MintTo(view, mint, ata, amount, tx.Signers{m.Authority})
	})
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("mint %d to %s: %w", amount, owner, err)
	}
	return ata, nil
}

// SetPoolStatus replaces the pool status bits, disabling deposits,
// withdrawals or swaps.
func (n *Node) SetPoolStatus(ctx context.Context, pool solana.PublicKey, status uint8) error {
	return n.direct(ctx, func(view tx.LedgerView) error {
		p, err := n.amm.Pool(view, pool)
		if err != nil {
			return err
		}
		p.Status = status
		return tx.UpdateEntry(view, keylet.Pool(pool), p)
	})
}

// Patch commits the writes fn makes outside any transaction. Nothing is
// journaled or published.
func (n *Node) Patch(ctx context.Context, fn func(view tx.LedgerView) error) error {
	return n.direct(ctx, fn)
}
