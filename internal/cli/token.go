package cli

import (
	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
)

func newTokenCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Administer token mints and balances",
	}
	cmd.AddCommand(
		newCreateMintCmd(a),
		newMintCmd(a),
		newBalanceCmd(a),
	)
	return cmd
}

func newCreateMintCmd(a *app) *cobra.Command {
	var decimals uint8
	cmd := &cobra.Command{
		Use:   "create-mint",
		Short: "Create a mint with the owner as its authority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			owner, err := a.ownerKey()
			if err != nil {
				return err
			}
			key, err := solana.NewRandomPrivateKey()
			if err != nil {
				return err
			}
			mint := key.PublicKey()
			n, err := a.node()
			if err != nil {
				return err
			}
			if err := n.CreateMint(cmd.Context(), mint, owner, decimals); err != nil {
				return err
			}
			return a.print(cmd, record{
				{"mint", mint.String()},
				{"authority", owner.String()},
				{"decimals", decimals},
			})
		},
	}
	cmd.Flags().Uint8Var(&decimals, "decimals", 9, "decimal places of the mint")
	return cmd
}

func newMintCmd(a *app) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "mint <mint> <amount>",
		Short: "Issue tokens to an owner's associated account",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			amount, err := parseAmount("amount", args[1])
			if err != nil {
				return err
			}
			recipient, err := a.recipient(to)
			if err != nil {
				return err
			}
			n, err := a.node()
			if err != nil {
				return err
			}
			ata, err := n.Mint(cmd.Context(), mint, recipient, amount)
			if err != nil {
				return err
			}
			return a.print(cmd, record{
				{"account", ata.String()},
				{"owner", recipient.String()},
				{"amount", amountWithDecimals(n, mint, amount)},
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "recipient (defaults to the owner)")
	return cmd
}

func newBalanceCmd(a *app) *cobra.Command {
	var of string
	cmd := &cobra.Command{
		Use:   "balance <mint>",
		Short: "Show an owner's balance of a mint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mint, err := parseKey("mint", args[0])
			if err != nil {
				return err
			}
			holder, err := a.recipient(of)
			if err != nil {
				return err
			}
			n, err := a.node()
			if err != nil {
				return err
			}
			amount, err := n.BalanceOf(holder, mint)
			if err != nil {
				return err
			}
			return a.print(cmd, record{
				{"mint", mint.String()},
				{"owner", holder.String()},
				{"amount", amount},
				{"ui_amount", amountWithDecimals(n, mint, amount)},
			})
		},
	}
	cmd.Flags().StringVar(&of, "of", "", "holder (defaults to the owner)")
	return cmd
}

// recipient parses an explicit account or falls back to the owner.
func (a *app) recipient(value string) (solana.PublicKey, error) {
	if value != "" {
		return parseKey("account", value)
	}
	return a.ownerKey()
}
