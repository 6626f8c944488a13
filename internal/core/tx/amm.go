package tx

import (
	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

// PoolSnapshot is the pool state as the AMM program reports it.
// Reserves exclude protocol and fund fees.
type PoolSnapshot struct {
	State    *sle.PoolState
	Reserve0 uint64
	Reserve1 uint64
}

// WithdrawParams is the request for the AMM withdraw entry point.
type WithdrawParams struct {
	Pool  solana.PublicKey
	Owner solana.PublicKey

	// OwnerLP is burned from; Token0 and Token1 receive the assets.
	OwnerLP solana.PublicKey
	Token0  solana.PublicKey
	Token1  solana.PublicKey

	LPAmount   uint64
	MinAmount0 uint64
	MinAmount1 uint64
}

// AMMProgram is the external pool program the lock engine depends on.
// It owns pool reserves and LP supply. The engine reads pool state through
// it and delegates exactly one call, Withdraw.
type AMMProgram interface {
	// Snapshot returns the pool state and reserves. It returns an error
	// wrapping ErrEntryNotFound if the pool does not exist.
	Snapshot(view LedgerView, pool solana.PublicKey) (PoolSnapshot, error)

	// Withdraw burns LP shares from the owner's LP account and pays the
	// underlying assets out of the pool vaults. It mutates view directly;
	// the caller discards view if Withdraw fails.
	Withdraw(view LedgerView, p WithdrawParams, signers Signers) error
}
