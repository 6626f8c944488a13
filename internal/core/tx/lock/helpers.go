// Package lock implements the LP lock operations: creating a timed or
// permanent lock, collecting the fees a locked position accrues, and
// releasing the principal once the lock has matured.
//
// Every operation is a transaction applied by tx.Engine. Failures are
// reported as result codes and leave the ledger untouched.
package lock

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/escrow"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

// Ref addresses one lock.
type Ref struct {
	Owner  solana.PublicKey `json:"owner"`
	LPMint solana.PublicKey `json:"lp_mint"`
	Index  uint64           `json:"index"`
}

// Keylet returns the ledger key of the lock record.
func (r Ref) Keylet() keylet.Keylet {
	return keylet.Lock(r.Owner, r.LPMint, r.Index)
}

// loadPool reads the pool through the AMM program and checks that it issues
// lpMint.
func loadPool(ctx *tx.ApplyContext, pool, lpMint solana.PublicKey) (tx.PoolSnapshot, tx.Result) {
	if ctx.AMM() == nil {
		return tx.PoolSnapshot{}, tx.TefINTERNAL
	}
	snap, err := ctx.AMM().Snapshot(ctx.View, pool)
	if errors.Is(err, tx.ErrEntryNotFound) {
		return tx.PoolSnapshot{}, tx.TecNO_ENTRY
	}
	if err != nil {
		ctx.Logger.Warn("pool snapshot failed", "pool", pool, "err", err)
		return tx.PoolSnapshot{}, tx.TecAMM_BALANCE
	}
	if !snap.State.LPMint.Equals(lpMint) {
		return tx.PoolSnapshot{}, tx.TecPOOL_MISMATCH
	}
	return snap, tx.TesSUCCESS
}

// loadLock reads the lock of the submitting account.
func loadLock(ctx *tx.ApplyContext, lpMint solana.PublicKey, index uint64) (*sle.LockEntry, tx.Result) {
	l := &sle.LockEntry{}
	found, err := tx.ReadEntry(ctx.View, keylet.Lock(ctx.Account, lpMint, index), l)
	if err != nil {
		return nil, tx.TefBAD_LEDGER
	}
	if !found {
		return nil, tx.TecNO_ENTRY
	}
	if !l.Owner.Equals(ctx.Account) || !l.LPMint.Equals(lpMint) {
		return nil, tx.TecNO_PERMISSION
	}
	return l, tx.TesSUCCESS
}

// loadRegistry reads the position registry. It reports false if absent.
func loadRegistry(ctx *tx.ApplyContext, lpMint solana.PublicKey) (*sle.RegistryEntry, bool, tx.Result) {
	r := &sle.RegistryEntry{}
	found, err := tx.ReadEntry(ctx.View, keylet.Registry(ctx.Account, lpMint), r)
	if err != nil {
		return nil, false, tx.TefBAD_LEDGER
	}
	return r, found, tx.TesSUCCESS
}

func custodian(ctx *tx.ApplyContext) (*escrow.Custodian, tx.Result) {
	c, err := escrow.NewCustodian(ctx.Config.ProgramID)
	if err != nil {
		ctx.Logger.Error("custodian unavailable", "err", err)
		return nil, tx.TefINTERNAL
	}
	return c, tx.TesSUCCESS
}

// releaseFromVault pays amount out of the lock vault into the owner's LP account.
func releaseFromVault(ctx *tx.ApplyContext, c *escrow.Custodian, l *sle.LockEntry, amount uint64) (solana.PublicKey, tx.Result) {
	vault, err := c.Vault(l.Owner, l.LPMint, l.Index)
	if err != nil {
		return solana.PublicKey{}, tx.TefINTERNAL
	}
	ownerLP, err := token.EnsureAssociated(ctx.View, l.Owner, l.LPMint)
	if err != nil {
		return solana.PublicKey{}, token.ResultOf(err)
	}
	if err := c.Withdraw(ctx.View, vault, ownerLP, amount, ctx.Signers()); err != nil {
		ctx.Logger.Error("vault withdraw failed", "vault", vault, "amount", amount, "err", err)
		if errors.Is(err, escrow.ErrVaultMismatch) {
			return solana.PublicKey{}, tx.TefBAD_LEDGER
		}
		return solana.PublicKey{}, token.ResultOf(err)
	}
	return ownerLP, tx.TesSUCCESS
}
