package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/lock"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/node"
)

// lockTarget is the resolved owner, pool and node a lock command acts on.
type lockTarget struct {
	node   *node.Node
	owner  solana.PublicKey
	pool   solana.PublicKey
	lpMint solana.PublicKey
}

func (a *app) lockTarget(poolArg string) (lockTarget, error) {
	owner, err := a.ownerKey()
	if err != nil {
		return lockTarget{}, err
	}
	pool, err := parseKey("pool", poolArg)
	if err != nil {
		return lockTarget{}, err
	}
	n, err := a.node()
	if err != nil {
		return lockTarget{}, err
	}
	snap, err := n.Pool(pool)
	if err != nil {
		return lockTarget{}, fmt.Errorf("pool %s: %w", pool, err)
	}
	return lockTarget{node: n, owner: owner, pool: pool, lpMint: snap.State.LPMint}, nil
}

func (t lockTarget) ref(indexArg string) (lock.Ref, error) {
	index, err := parseAmount("lock index", indexArg)
	if err != nil {
		return lock.Ref{}, err
	}
	return lock.Ref{Owner: t.owner, LPMint: t.lpMint, Index: index}, nil
}

func receiptRecord(n *node.Node, r node.Receipt) record {
	rec := record{
		{"tx_id", r.TxID},
		{"result", r.Result.String()},
		{"owner", r.Ref.Owner.String()},
		{"lp_mint", r.Ref.LPMint.String()},
		{"index", r.Ref.Index},
		{"amount", amountWithDecimals(n, r.Ref.LPMint, r.Amount)},
	}
	if r.Permanent {
		rec = append(rec, field{"permanent", true})
	}
	return rec
}

func newLockCmd(a *app) *cobra.Command {
	var duration time.Duration
	cmd := &cobra.Command{
		Use:   "lock <pool> <amount>",
		Short: "Lock LP shares of a pool until a maturity time",
		Long: `Lock moves amount LP shares (in base units) from the owner's LP account
into escrow for the given duration. The owner keeps collecting the trading
fees the locked position earns and gets the shares back with unlock once the
lock matures.`,
		Example: `  lplockd lock <pool> 1000 --duration 720h`,
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			if duration < time.Second {
				return errors.New("duration must be at least one second")
			}
			r, err := t.node.CreateLock(cmd.Context(), t.owner, t.pool, t.lpMint, amount, uint64(duration/time.Second))
			if err != nil {
				return rejected(err, r.TxID)
			}
			return a.print(cmd, receiptRecord(t.node, r))
		},
	}
	cmd.Flags().DurationVarP(&duration, "duration", "d", 0, "lock duration, e.g. 720h")
	_ = cmd.MarkFlagRequired("duration")
	return cmd
}

func newPermanentLockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lock-permanent <pool> <amount>",
		Short: "Lock LP shares of a pool forever",
		Long: `Lock-permanent moves amount LP shares into escrow with no maturity. Fees
can still be collected; the shares can never be released.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			r, err := t.node.CreatePermanentLock(cmd.Context(), t.owner, t.pool, t.lpMint, amount)
			if err != nil {
				return rejected(err, r.TxID)
			}
			return a.print(cmd, receiptRecord(t.node, r))
		},
	}
}

func newCollectFeesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "collect-fees <pool> <index>",
		Short: "Collect the trading fees a lock has earned",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			ref, err := t.ref(args[1])
			if err != nil {
				return err
			}
			r, err := t.node.CollectFees(cmd.Context(), ref, t.pool)
			if err != nil {
				return rejected(err, r.TxID)
			}
			snap, err := t.node.Pool(t.pool)
			if err != nil {
				return err
			}
			rec := receiptRecord(t.node, r)
			rec = append(rec,
				field{"fee_0", amountWithDecimals(t.node, snap.State.Token0Mint, r.Fee0)},
				field{"fee_1", amountWithDecimals(t.node, snap.State.Token1Mint, r.Fee1)},
			)
			return a.print(cmd, rec)
		},
	}
}

func newUnlockCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "unlock <pool> <index>",
		Short: "Release the remaining shares of a matured lock",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			ref, err := t.ref(args[1])
			if err != nil {
				return err
			}
			r, err := t.node.Release(cmd.Context(), ref, t.pool)
			if err != nil {
				return rejected(err, r.TxID)
			}
			return a.print(cmd, receiptRecord(t.node, r))
		},
	}
}

func lockRecord(n *node.Node, snap tx.PoolSnapshot, l *sle.LockEntry) record {
	unlock := "never"
	if !l.Permanent {
		unlock = time.Unix(int64(l.UnlockTime), 0).UTC().Format(time.RFC3339)
	}
	return record{
		{"index", l.Index},
		{"state", l.State().String()},
		{"amount", amountWithDecimals(n, l.LPMint, l.LockAmount)},
		{"unlock_time", unlock},
		{"principal_0", amountWithDecimals(n, snap.State.Token0Mint, l.Principal0)},
		{"principal_1", amountWithDecimals(n, snap.State.Token1Mint, l.Principal1)},
		{"fees_0", amountWithDecimals(n, snap.State.Token0Mint, l.Fees0)},
		{"fees_1", amountWithDecimals(n, snap.State.Token1Mint, l.Fees1)},
		{"last_updated", l.LastUpdated},
	}
}

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pool> [index]",
		Short: "Show the owner's locks in a pool",
		Long: `Show prints one lock when an index is given, otherwise the owner's
position registry followed by every lock it created, released ones included.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			snap, err := t.node.Pool(t.pool)
			if err != nil {
				return err
			}
			if len(args) == 2 {
				ref, err := t.ref(args[1])
				if err != nil {
					return err
				}
				l, err := t.node.Lock(ref)
				if err != nil {
					return err
				}
				return a.print(cmd, lockRecord(t.node, snap, l))
			}

			reg, err := t.node.Registry(t.owner, t.lpMint)
			if errors.Is(err, tx.ErrEntryNotFound) {
				return a.printList(cmd, nil)
			}
			if err != nil {
				return err
			}
			locks, err := t.node.Locks(t.owner, t.lpMint)
			if err != nil {
				return err
			}
			out := []record{{
				{"owner", reg.Owner.String()},
				{"lp_mint", reg.LPMint.String()},
				{"lock_count", reg.LockCount},
				{"total_locked", amountWithDecimals(t.node, t.lpMint, reg.TotalLocked)},
			}}
			for _, l := range locks {
				out = append(out, lockRecord(t.node, snap, l))
			}
			return a.printList(cmd, out)
		},
	}
}
