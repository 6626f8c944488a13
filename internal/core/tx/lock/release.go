package lock

import (
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/events"
)

func init() {
	tx.Register(tx.TypeLockRelease, func() tx.Transaction {
		return &LockRelease{BaseTx: *tx.NewBaseTx(tx.TypeLockRelease, solana.PublicKey{})}
	})
}

// LockRelease returns the remaining principal of a matured timed lock to its
// owner. The record is kept, marked released.
type LockRelease struct {
	tx.BaseTx

	Pool   solana.PublicKey `json:"pool" codec:"pool"`
	LPMint solana.PublicKey `json:"lp_mint" codec:"lp_mint"`
	Index  uint64           `json:"index" codec:"index"`
}

func NewLockRelease(owner, pool, lpMint solana.PublicKey, index uint64) *LockRelease {
	return &LockRelease{
		BaseTx: *tx.NewBaseTx(tx.TypeLockRelease, owner),
		Pool:   pool,
		LPMint: lpMint,
		Index:  index,
	}
}

func (r *LockRelease) TxType() tx.Type {
	return tx.TypeLockRelease
}

func (r *LockRelease) Validate() error {
	if err := r.BaseTx.Validate(); err != nil {
		return err
	}
	if r.Pool.IsZero() || r.LPMint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "pool and lp mint are required")
	}
	if r.Index == 0 {
		return tx.Errorf(tx.TemMALFORMED, "lock index starts at 1")
	}
	return nil
}

// Apply applies the LockRelease transaction to ledger state.
func (r *LockRelease) Apply(ctx *tx.ApplyContext) tx.Result {
	lock, res := loadLock(ctx, r.LPMint, r.Index)
	if res != tx.TesSUCCESS {
		return res
	}
	if lock.Permanent {
		return tx.TecLOCK_PERMANENT
	}
	if lock.Released {
		return tx.TecALREADY_RELEASED
	}
	now := ctx.Now()
	if now < lock.UnlockTime {
		return tx.TecNOT_MATURE
	}
	if _, res := loadPool(ctx, r.Pool, r.LPMint); res != tx.TesSUCCESS {
		return res
	}

	reg, found, res := loadRegistry(ctx, r.LPMint)
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

	lock.Released = true
	lock.LastUpdated = now
	if err := tx.UpdateEntry(ctx.View, keylet.Lock(lock.Owner, lock.LPMint, lock.Index), lock); err != nil {
		return tx.TefINTERNAL
	}
	if err := tx.UpdateEntry(ctx.View, keylet.Registry(lock.Owner, lock.LPMint), reg); err != nil {
		return tx.TefINTERNAL
	}

	cust, res := custodian(ctx)
	if res != tx.TesSUCCESS {
		return res
	}
	if _, res := releaseFromVault(ctx, cust, lock, lock.LockAmount); res != tx.TesSUCCESS {
		return res
	}

	ctx.Logger.Debug("lock released", "index", lock.Index, "amount", lock.LockAmount)
	ctx.Emit(events.Event{
		Kind:   events.KindUnlocked,
		Owner:  ctx.Account,
		LPMint: r.LPMint,
		Index:  lock.Index,
		Amount: lock.LockAmount,
	})
	return tx.TesSUCCESS
}
