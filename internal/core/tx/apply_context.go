package tx

import (
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/LeJamon/goLPLockd/internal/events"
)

// ApplyContext provides all the state and helpers needed to apply a transaction.
// It is passed to Appliable.Apply() instead of individual parameters.
type ApplyContext struct {
	// View provides read/write access to ledger state (the ApplyStateTable)
	View LedgerView

	// Account is the submitting owner
	Account solana.PublicKey

	// Config holds engine configuration (limits, clock, collaborators)
	Config EngineConfig

	// TxHash is the hash of the current transaction
	TxHash [32]byte

	// Metadata collects the events emitted by the transaction
	Metadata *Metadata

	// Engine provides access to shared helpers
	Engine *Engine

	Logger *slog.Logger
}

// Now returns the close time the transaction applies at, in unix seconds.
func (ctx *ApplyContext) Now() uint64 {
	return ctx.Config.CloseTime
}

// Signers returns the authorities the submitter holds: only its own account.
func (ctx *ApplyContext) Signers() Signers {
	return Signers{ctx.Account}
}

// AMM returns the pool program collaborator.
func (ctx *ApplyContext) AMM() AMMProgram {
	return ctx.Config.AMM
}

// Emit records a notification. It is delivered only if the transaction succeeds.
func (ctx *ApplyContext) Emit(ev events.Event) {
	if ev.TxID == "" {
		ev.TxID = base58.Encode(ctx.TxHash[:])
	}
	if ev.Timestamp == 0 {
		ev.Timestamp = ctx.Now()
	}
	ctx.Metadata.Events = append(ctx.Metadata.Events, ev)
}
