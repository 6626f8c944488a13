package cli

import (
	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
	"github.com/LeJamon/goLPLockd/internal/node"
)

func newPoolCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Manage constant-product pools",
	}
	cmd.AddCommand(
		newPoolCreateCmd(a),
		newPoolDepositCmd(a),
		newPoolSwapCmd(a),
		newPoolShowCmd(a),
	)
	return cmd
}

func newPoolCreateCmd(a *app) *cobra.Command {
	var p node.PoolParams
	cmd := &cobra.Command{
		Use:   "create <mint-a> <mint-b> <amount-a> <amount-b>",
		Short: "Create a pool funded by the owner",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}
			if p.MintA, err = parseKey("mint-a", args[0]); err != nil {
				return err
			}
			if p.MintB, err = parseKey("mint-b", args[1]); err != nil {
				return err
			}
			if p.AmountA, err = parseAmount("amount-a", args[2]); err != nil {
				return err
			}
			if p.AmountB, err = parseAmount("amount-b", args[3]); err != nil {
				return err
			}
			n, err := a.node()
			if err != nil {
				return err
			}
			info, err := n.CreatePool(cmd.Context(), owner, p)
			if err != nil {
				return rejected(err, info.TxID)
			}
			return a.print(cmd, record{
				{"tx_id", info.TxID},
				{"pool", info.Pool.String()},
				{"lp_mint", info.LPMint.String()},
			})
		},
	}
	flags := cmd.Flags()
	flags.Uint64Var(&p.TradeFeeRate, "trade-fee-rate", 0, "trade fee, parts per million (default from configuration)")
	flags.Uint64Var(&p.ProtocolFeeRate, "protocol-fee-rate", 0, "protocol share of the trade fee, parts per million")
	flags.Uint64Var(&p.FundFeeRate, "fund-fee-rate", 0, "fund share of the trade fee, parts per million")
	flags.Uint64Var(&p.OpenTime, "open-time", 0, "unix time swaps open at")
	return cmd
}

func newPoolDepositCmd(a *app) *cobra.Command {
	var max0, max1 uint64
	cmd := &cobra.Command{
		Use:   "deposit <pool> <lp-amount>",
		Short: "Mint LP shares by depositing both pool tokens",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			lp, err := parseAmount("lp-amount", args[1])
			if err != nil {
				return err
			}
			res, err := t.node.Deposit(cmd.Context(), t.owner, t.pool, lp, max0, max1)
			if err != nil {
				return rejected(err, res.TxID())
			}
			rec := resultRecord(res)
			rec = append(rec, field{"lp_amount", amountWithDecimals(t.node, t.lpMint, lp)})
			return a.print(cmd, rec)
		},
	}
	cmd.Flags().Uint64Var(&max0, "max0", ^uint64(0), "maximum token 0 to deposit")
	cmd.Flags().Uint64Var(&max1, "max1", ^uint64(0), "maximum token 1 to deposit")
	return cmd
}

func newPoolSwapCmd(a *app) *cobra.Command {
	var minOut uint64
	cmd := &cobra.Command{
		Use:   "swap <pool> <input-mint> <amount-in>",
		Short: "Swap an exact input amount through a pool",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := a.lockTarget(args[0])
			if err != nil {
				return err
			}
			inputMint, err := parseKey("input-mint", args[1])
			if err != nil {
				return err
			}
			amountIn, err := parseAmount("amount-in", args[2])
			if err != nil {
				return err
			}
			res, err := t.node.Swap(cmd.Context(), t.owner, t.pool, inputMint, amountIn, minOut)
			if err != nil {
				return rejected(err, res.TxID())
			}
			return a.print(cmd, resultRecord(res))
		},
	}
	cmd.Flags().Uint64Var(&minOut, "min-out", 0, "minimum output amount")
	return cmd
}

func poolRecord(n *node.Node, p *sle.PoolState, reserve0, reserve1 uint64) record {
	return record{
		{"pool", p.ID.String()},
		{"lp_mint", p.LPMint.String()},
		{"token_0_mint", p.Token0Mint.String()},
		{"token_1_mint", p.Token1Mint.String()},
		{"reserve_0", amountWithDecimals(n, p.Token0Mint, reserve0)},
		{"reserve_1", amountWithDecimals(n, p.Token1Mint, reserve1)},
		{"lp_supply", amountWithDecimals(n, p.LPMint, p.LPSupply)},
		{"trade_fee_rate", p.TradeFeeRate},
		{"protocol_fee_rate", p.ProtocolFeeRate},
		{"fund_fee_rate", p.FundFeeRate},
		{"status", p.Status},
	}
}

func newPoolShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <pool>",
		Short: "Show pool reserves and LP supply",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := parseKey("pool", args[0])
			if err != nil {
				return err
			}
			n, err := a.node()
			if err != nil {
				return err
			}
			snap, err := n.Pool(pool)
			if err != nil {
				return err
			}
			return a.print(cmd, poolRecord(n, snap.State, snap.Reserve0, snap.Reserve1))
		},
	}
}
