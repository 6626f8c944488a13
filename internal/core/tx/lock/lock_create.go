package lock

import (
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/curve"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/events"
)

func init() {
	tx.Register(tx.TypeLockCreate, func() tx.Transaction {
		return &LockCreate{BaseTx: *tx.NewBaseTx(tx.TypeLockCreate, solana.PublicKey{})}
	})
}

// LockCreate moves LP shares from the owner into a new escrow vault and
// records the underlying value they represent.
type LockCreate struct {
	tx.BaseTx

	Pool   solana.PublicKey `json:"pool" codec:"pool"`
	LPMint solana.PublicKey `json:"lp_mint" codec:"lp_mint"`
	Amount uint64           `json:"amount" codec:"amount"`

	// Duration is in seconds and ignored for permanent locks.
	Duration  uint64 `json:"duration,omitempty" codec:"duration"`
	Permanent bool   `json:"permanent,omitempty" codec:"permanent"`
}

// NewLockCreate creates a timed lock. A zero duration is raised to one second.
func NewLockCreate(owner, pool, lpMint solana.PublicKey, amount, duration uint64) *LockCreate {
	if duration == 0 {
		duration = 1
	}
	return &LockCreate{
		BaseTx:   *tx.NewBaseTx(tx.TypeLockCreate, owner),
		Pool:     pool,
		LPMint:   lpMint,
		Amount:   amount,
		Duration: duration,
	}
}

// NewPermanentLock creates a lock that can never be released.
func NewPermanentLock(owner, pool, lpMint solana.PublicKey, amount uint64) *LockCreate {
	return &LockCreate{
		BaseTx:    *tx.NewBaseTx(tx.TypeLockCreate, owner),
		Pool:      pool,
		LPMint:    lpMint,
		Amount:    amount,
		Permanent: true,
	}
}

func (l *LockCreate) TxType() tx.Type {
	return tx.TypeLockCreate
}

// Validate validates the LockCreate transaction
func (l *LockCreate) Validate() error {
	if err := l.BaseTx.Validate(); err != nil {
		return err
	}
	if l.Pool.IsZero() || l.LPMint.IsZero() {
		return tx.Errorf(tx.TemMALFORMED, "pool and lp mint are required")
	}
	if l.Permanent && l.Duration != 0 {
		return tx.Errorf(tx.TemMALFORMED, "permanent lock takes no duration")
	}
	if l.Amount == 0 {
		return tx.Errorf(tx.TemBAD_AMOUNT, "amount is required")
	}
	return nil
}

// Apply applies the LockCreate transaction to ledger state.
func (l *LockCreate) Apply(ctx *tx.ApplyContext) tx.Result {
	cfg := ctx.Config
	if l.Amount <= cfg.MinLockAmount {
		return tx.TemAMOUNT_TOO_SMALL
	}
	duration := l.Duration
	if !l.Permanent {
		if duration == 0 {
			duration = 1
		}
		if duration >= cfg.MaxLockDuration {
			return tx.TemDURATION_TOO_LONG
		}
	}

	snap, res := loadPool(ctx, l.Pool, l.LPMint)
	if res != tx.TesSUCCESS {
		return res
	}

	out, ok := curve.SharesToUnderlying(l.Amount, snap.State.LPSupply, snap.Reserve0, snap.Reserve1, curve.Floor)
	if !ok {
		return tx.TecEMPTY_SUPPLY
	}
	principal0, principal1, ok := out.Uint64()
	if !ok {
		return tx.TecOVERFLOW
	}
	if principal0 == 0 || principal1 == 0 {
		return tx.TecZERO_TRADING_TOKENS
	}
	liquidity := curve.LiquidityOf(principal0, principal1)

	now := ctx.Now()
	var unlockTime uint64
	if !l.Permanent {
		unlockTime = now + duration
		if unlockTime < now {
			return tx.TecOVERFLOW
		}
	}

	reg, found, res := loadRegistry(ctx, l.LPMint)
	if res != tx.TesSUCCESS {
		return res
	}
	if !found {
		reg = &sle.RegistryEntry{Owner: ctx.Account, LPMint: l.LPMint}
	}
	index := reg.LockCount + 1
	if index == 0 {
		return tx.TecOVERFLOW
	}
	total := reg.TotalLocked + l.Amount
	if total < reg.TotalLocked {
		return tx.TecOVERFLOW
	}

	c, res := custodian(ctx)
	if res != tx.TesSUCCESS {
		return res
	}
	vault, err := c.OpenVault(ctx.View, ctx.Account, l.LPMint, index)
	if err != nil {
		return token.ResultOf(err)
	}
	ownerLP, err := token.Associated(ctx.Account, l.LPMint)
	if err != nil {
		return tx.TefINTERNAL
	}
	if err := c.Deposit(ctx.View, ownerLP, vault, l.Amount, ctx.Signers()); err != nil {
		return token.ResultOf(err)
	}

	record := &sle.LockEntry{
		Owner:              ctx.Account,
		LPMint:             l.LPMint,
		Index:              index,
		LockAmount:         l.Amount,
		UnlockTime:         unlockTime,
		Principal0:         principal0,
		Principal1:         principal1,
		PrincipalLiquidity: liquidity,
		Permanent:          l.Permanent,
		LastUpdated:        now,
		CreatedAt:          now,
	}
	if err := tx.InsertEntry(ctx.View, keylet.Lock(ctx.Account, l.LPMint, index), record); err != nil {
		return token.ResultOf(err)
	}

	reg.LockCount = index
	reg.TotalLocked = total
	regKey := keylet.Registry(ctx.Account, l.LPMint)
	if found {
		err = tx.UpdateEntry(ctx.View, regKey, reg)
	} else {
		err = tx.InsertEntry(ctx.View, regKey, reg)
	}
	if err != nil {
		return tx.TefINTERNAL
	}

	ctx.Logger.Debug("lock created",
		"index", index,
		"amount", l.Amount,
		"principal_0", principal0,
		"principal_1", principal1,
		"principal_liquidity", liquidity,
		"unlock_time", unlockTime,
	)
	ctx.Emit(events.Event{
		Kind:      events.KindLocked,
		Owner:     ctx.Account,
		LPMint:    l.LPMint,
		Index:     index,
		Amount:    l.Amount,
		Permanent: l.Permanent,
	})
	return tx.TesSUCCESS
}
