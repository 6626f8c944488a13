package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

func newHistoryCmd(a *app) *cobra.Command {
	var (
		q      relationaldb.HistoryQuery
		all    bool
		totals bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List journaled lock events",
		Long: `History lists the lock events recorded in the journal, oldest first.
By default only the owner's events are listed; --all lists every owner.
With --totals it prints the sum of the fees collected instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all {
				owner, err := a.ownerKey()
				if err != nil {
					return err
				}
				q.Owner = owner.String()
			}
			n, err := a.node()
			if err != nil {
				return err
			}

			if totals {
				t, err := n.FeeTotals(cmd.Context(), q)
				if err != nil {
					return journalErr(err)
				}
				return a.print(cmd, record{
					{"collections", t.Collections},
					{"burned", t.Burned},
					{"fee_0", t.Fee0},
					{"fee_1", t.Fee1},
				})
			}

			evs, err := n.History(cmd.Context(), q)
			if err != nil {
				return journalErr(err)
			}
			out := make([]record, 0, len(evs))
			for _, ev := range evs {
				out = append(out, record{
					{"tx_id", ev.TxID},
					{"kind", ev.Kind},
					{"owner", ev.Owner},
					{"lp_mint", ev.LPMint},
					{"index", ev.LockIndex},
					{"amount", ev.Amount},
					{"permanent", ev.Permanent},
					{"fee_0", ev.Fee0},
					{"fee_1", ev.Fee1},
					{"timestamp", ev.Timestamp},
				})
			}
			return a.printList(cmd, out)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&q.LPMint, "lp-mint", "", "only events of this LP mint")
	flags.Uint64Var(&q.LockIndex, "index", 0, "only events of this lock index")
	flags.StringVar(&q.Kind, "kind", "", "only events of this kind (locked, unlocked, fees_collected)")
	flags.IntVar(&q.Limit, "limit", 50, "maximum number of events")
	flags.IntVar(&q.Offset, "offset", 0, "events to skip")
	flags.BoolVar(&all, "all", false, "include every owner")
	flags.BoolVar(&totals, "totals", false, "print fee totals instead of events")
	return cmd
}

func newTxCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tx <tx-id>",
		Short: "Show a journaled transaction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.services()
			if err != nil {
				return err
			}
			journal, err := p.Journal()
			if err != nil {
				return err
			}
			if journal == nil {
				return journalErr(node.ErrNoJournal)
			}
			rec, err := journal.Transaction(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd, record{
				{"tx_id", rec.TxID},
				{"type", rec.TxType},
				{"account", rec.Account},
				{"result", rec.Result},
				{"applied", rec.Applied},
				{"sequence", rec.Sequence},
				{"close_time", rec.CloseTime},
			})
		},
	}
}

func journalErr(err error) error {
	if errors.Is(err, node.ErrNoJournal) {
		return errors.New("the journal is disabled: set journal.enabled in the configuration")
	}
	return err
}
