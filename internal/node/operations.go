package node

import (
	"context"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/lock"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/events"
)

// Receipt describes a committed lock operation.
type Receipt struct {
	TxID   string    `json:"tx_id"`
	Result tx.Result `json:"result"`
	Ref    lock.Ref  `json:"lock"`

	// Amount is the locked amount, the LP shares burned by a fee
	// collection, or the released amount.
	Amount    uint64 `json:"amount"`
	Permanent bool   `json:"permanent,omitempty"`
	Fee0      uint64 `json:"fee_0,omitempty"`
	Fee1      uint64 `json:"fee_1,omitempty"`
}

// receipt builds the receipt of res. A rejected transaction is returned as
// a *tx.ResultError.
func receipt(res tx.ApplyResult, err error) (Receipt, error) {
	if err != nil {
		return Receipt{}, err
	}
	r := Receipt{TxID: res.TxID(), Result: res.Result}
	if rerr := res.Err(); rerr != nil {
		return r, rerr
	}
	for _, ev := range Events(res) {
		r.Ref = lock.Ref{Owner: ev.Owner, LPMint: ev.LPMint, Index: ev.Index}
		r.Amount = ev.Amount
		r.Permanent = ev.Permanent
		r.Fee0 = ev.Fee0
		r.Fee1 = ev.Fee1
	}
	return r, nil
}

// CreateLock locks amount LP shares of pool for duration seconds.
func (n *Node) CreateLock(ctx context.Context, owner, pool, lpMint solana.PublicKey, amount, duration uint64) (Receipt, error) {
	return receipt(n.Submit(ctx, lock.NewLockCreate(owner, pool, lpMint, amount, duration)))
}

// CreatePermanentLock locks amount LP shares of pool forever.
func (n *Node) CreatePermanentLock(ctx context.Context, owner, pool, lpMint solana.PublicKey, amount uint64) (Receipt, error) {
	return receipt(n.Submit(ctx, lock.NewPermanentLock(owner, pool, lpMint, amount)))
}

// CollectFees pays out the fees a lock has accrued since it was created or
// last collected.
func (n *Node) CollectFees(ctx context.Context, ref lock.Ref, pool solana.PublicKey) (Receipt, error) {
	return receipt(n.Submit(ctx, lock.NewLockCollectFees(ref.Owner, pool, ref.LPMint, ref.Index)))
}

// Release returns the remaining shares of a matured lock to its owner.
func (n *Node) Release(ctx context.Context, ref lock.Ref, pool solana.PublicKey) (Receipt, error) {
	return receipt(n.Submit(ctx, lock.NewLockRelease(ref.Owner, pool, ref.LPMint, ref.Index)))
}

// Lock returns a lock record.
func (n *Node) Lock(ref lock.Ref) (*sle.LockEntry, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	l := &sle.LockEntry{}
	found, err := tx.ReadEntry(n.store, ref.Keylet(), l)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("lock %s/%s/%d: %w", ref.Owner, ref.LPMint, ref.Index, tx.ErrEntryNotFound)
	}
	return l, nil
}

// Registry returns the position registry of owner in the pool issuing lpMint.
func (n *Node) Registry(owner, lpMint solana.PublicKey) (*sle.RegistryEntry, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.registry(owner, lpMint)
}

func (n *Node) registry(owner, lpMint solana.PublicKey) (*sle.RegistryEntry, error) {
	r := &sle.RegistryEntry{}
	found, err := tx.ReadEntry(n.store, keylet.Registry(owner, lpMint), r)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("registry %s/%s: %w", owner, lpMint, tx.ErrEntryNotFound)
	}
	return r, nil
}

// Locks returns every lock owner created in the pool issuing lpMint, in
// index order, released ones included.
func (n *Node) Locks(owner, lpMint solana.PublicKey) ([]*sle.LockEntry, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	r, err := n.registry(owner, lpMint)
	if err != nil {
		return nil, err
	}
	out := make([]*sle.LockEntry, 0, r.LockCount)
	for i := uint64(1); i <= r.LockCount; i++ {
		l := &sle.LockEntry{}
		found, err := tx.ReadEntry(n.store, keylet.Lock(owner, lpMint, i), l)
		if err != nil {
			return nil, err
		}
		if !found {
			return nil, fmt.Errorf("lock %d of %d missing", i, r.LockCount)
		}
		out = append(out, l)
	}
	return out, nil
}

// Pool returns the pool state and its fee-exclusive reserves.
func (n *Node) Pool(pool solana.PublicKey) (tx.PoolSnapshot, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.amm.Snapshot(n.store, pool)
}

// MintInfo returns a mint.
func (n *Node) MintInfo(mint solana.PublicKey) (*sle.MintEntry, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return token.GetMint(n.store, mint)
}

// Balance returns the balance of a token account.
func (n *Node) Balance(account solana.PublicKey) (uint64, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return token.Balance(n.store, account)
}

// BalanceOf returns the balance of owner's associated account for mint.
// A missing account has a zero balance.
func (n *Node) BalanceOf(owner, mint solana.PublicKey) (uint64, error) {
	ata, err := token.Associated(owner, mint)
	if err != nil {
		return 0, err
	}
	n.mu.RLock()
	defer n.mu.RUnlock()
	acct, err := token.GetAccount(n.store, ata)
	if err != nil {
		if errors.Is(err, token.ErrAccountNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Amount, nil
}

// Events returns the notifications of a result.
func Events(res tx.ApplyResult) []events.Event {
	if res.Metadata == nil {
		return nil
	}
	return res.Metadata.Events
}
