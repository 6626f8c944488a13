package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/node"
)

type field struct {
	key   string
	value any
}

// record is an ordered set of fields printed as "key: value" lines or as a
// JSON object.
type record []field

func (r record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(f.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func (r record) writeText(w io.Writer) {
	for _, f := range r {
		fmt.Fprintf(w, "%s: %v\n", f.key, f.value)
	}
}

func (a *app) print(cmd *cobra.Command, r record) error {
	out := cmd.OutOrStdout()
	if a.opts.jsonOut {
		return writeJSON(out, r)
	}
	r.writeText(out)
	return nil
}

func (a *app) printList(cmd *cobra.Command, rs []record) error {
	out := cmd.OutOrStdout()
	if a.opts.jsonOut {
		if rs == nil {
			rs = []record{}
		}
		return writeJSON(out, rs)
	}
	for i, r := range rs {
		if i > 0 {
			fmt.Fprintln(out)
		}
		r.writeText(out)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// uiAmount renders a base-unit amount with the mint's decimals.
func uiAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// amountWithDecimals looks the decimals of mint up and renders amount, falling
// back to base units if the mint cannot be read.
func amountWithDecimals(n *node.Node, mint solana.PublicKey, amount uint64) string {
	m, err := n.MintInfo(mint)
	if err != nil {
		return strconv.FormatUint(amount, 10)
	}
	return uiAmount(amount, m.Decimals)
}

func parseKey(name, value string) (solana.PublicKey, error) {
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return key, nil
}

func parseAmount(name, value string) (uint64, error) {
	v, err := strconv.ParseUint(value, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be a whole number of base units", name, value)
	}
	return v, nil
}

// rejected decorates a rejection with the transaction id it was recorded
// under.
func rejected(err error, txID string) error {
	var re *tx.ResultError
	if txID == "" || !errors.As(err, &re) {
		return err
	}
	return fmt.Errorf("%w (tx %s)", err, txID)
}

func resultRecord(res tx.ApplyResult) record {
	return record{
		{"tx_id", res.TxID()},
		{"result", res.Result.String()},
	}
}
