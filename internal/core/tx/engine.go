package tx

import (
	"encoding/binary"
	"log/slog"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"
	"github.com/ugorji/go/codec"

	crypto "github.com/LeJamon/goLPLockd/internal/crypto/common"
	"github.com/LeJamon/goLPLockd/internal/events"
)

// Lock limits
const (
	// DefaultMinLockAmount is the exclusive lower bound on a lock amount.
	DefaultMinLockAmount uint64 = 100

	// DefaultMaxLockDuration is the exclusive upper bound, in seconds, on a
	// timed lock's duration (five 365-day years).
	DefaultMaxLockDuration uint64 = 157_680_000
)

// txHashPrefix is "TXN\x00".
var txHashPrefix = []byte{0x54, 0x58, 0x4E, 0x00}

var txHandle = &codec.MsgpackHandle{}

// EngineConfig holds configuration for the transaction engine
type EngineConfig struct {
	// ProgramID is the lock program identity that escrow vaults and the
	// custodian authority are derived from.
	ProgramID solana.PublicKey

	// MinLockAmount: a lock amount must be strictly greater.
	MinLockAmount uint64

	// MaxLockDuration: a timed lock's duration must be strictly smaller.
	MaxLockDuration uint64

	// CloseTime is the time, in unix seconds, the transaction applies at.
	CloseTime uint64

	// AMM is the external pool program.
	AMM AMMProgram

	Logger *slog.Logger
}

// Engine processes transactions against a ledger view
type Engine struct {
	view   LedgerView
	config EngineConfig
}

// ApplyResult contains the result of applying a transaction
type ApplyResult struct {
	// Result is the transaction result code
	Result Result

	// Applied indicates if the transaction changed the ledger
	Applied bool

	// TxHash identifies the transaction
	TxHash [32]byte

	// Metadata contains the changes made by the transaction
	Metadata *Metadata

	// Message is a human-readable result message
	Message string
}

// TxID returns the base58 form of the transaction hash, empty when the
// transaction was rejected before it was hashed.
func (r ApplyResult) TxID() string {
	if r.TxHash == ([32]byte{}) {
		return ""
	}
	return base58.Encode(r.TxHash[:])
}

// Err returns nil on success and a *ResultError otherwise.
func (r ApplyResult) Err() error {
	if r.Result.IsSuccess() {
		return nil
	}
	return &ResultError{Code: r.Result, Detail: r.Message}
}

// Metadata tracks changes made by a transaction
type Metadata struct {
	// AffectedNodes lists all nodes that were created, modified, or deleted
	AffectedNodes []AffectedNode

	// TransactionResult is the result code
	TransactionResult Result

	// Events are the notifications emitted while applying
	Events []events.Event
}

// NewEngine creates a new transaction engine
func NewEngine(view LedgerView, config EngineConfig) *Engine {
	if config.MinLockAmount == 0 {
		config.MinLockAmount = DefaultMinLockAmount
	}
	if config.MaxLockDuration == 0 {
		config.MaxLockDuration = DefaultMaxLockDuration
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Engine{view: view, config: config}
}

// Config returns the engine configuration.
func (e *Engine) Config() EngineConfig {
	return e.config
}

// ComputeTransactionHash hashes the "TXN\x00" prefix, the transaction type
// and the msgpack encoding of the transaction.
func ComputeTransactionHash(t Transaction) ([32]byte, error) {
	var body []byte
	if err := codec.NewEncoderBytes(&body, txHandle).Encode(t); err != nil {
		return [32]byte{}, err
	}
	typ := make([]byte, 2)
	binary.BigEndian.PutUint16(typ, uint16(t.TxType()))
	return crypto.Sha512Half(txHashPrefix, typ, body), nil
}

// Apply processes a transaction and applies it to the ledger.
// The base view is modified only when the result is tesSUCCESS.
func (e *Engine) Apply(t Transaction) ApplyResult {
	log := e.config.Logger.With("tx_type", t.TxType().String())

	// Step 1: Preflight checks (syntax validation)
	if err := t.Validate(); err != nil {
		result := ResultOf(err, TemMALFORMED)
		log.Debug("preflight rejected", "result", result, "err", err)
		return ApplyResult{
			Result:  result,
			Message: err.Error(),
		}
	}

	// Step 2: Compute transaction hash
	txHash, err := ComputeTransactionHash(t)
	if err != nil {
		return ApplyResult{
			Result:  TefINTERNAL,
			Message: "failed to compute transaction hash: " + err.Error(),
		}
	}

	appliable, ok := t.(Appliable)
	if !ok {
		return ApplyResult{
			Result:  TemINVALID,
			TxHash:  txHash,
			Message: ErrUnknownTransactionType.Error(),
		}
	}

	// Step 3: Apply inside a sandbox
	metadata := &Metadata{TransactionResult: TesSUCCESS}
	table := NewApplyStateTable(e.view, txHash)
	ctx := &ApplyContext{
		View:     table,
		Account:  t.GetCommon().Account,
		Config:   e.config,
		TxHash:   txHash,
		Metadata: metadata,
		Engine:   e,
		Logger:   log.With("tx", base58.Encode(txHash[:])),
	}

	result := appliable.Apply(ctx)
	metadata.TransactionResult = result

	if !result.IsSuccess() {
		metadata.Events = nil
		log.Debug("transaction failed", "result", result)
		return ApplyResult{
			Result:   result,
			TxHash:   txHash,
			Metadata: metadata,
			Message:  result.Message(),
		}
	}

	// Step 4: Write the sandbox through to the base view
	nodes, err := table.Apply()
	if err != nil {
		metadata.TransactionResult = TefINTERNAL
		metadata.Events = nil
		return ApplyResult{
			Result:   TefINTERNAL,
			TxHash:   txHash,
			Metadata: metadata,
			Message:  "failed to apply state changes: " + err.Error(),
		}
	}
	metadata.AffectedNodes = nodes

	return ApplyResult{
		Result:   result,
		Applied:  true,
		TxHash:   txHash,
		Metadata: metadata,
		Message:  result.Message(),
	}
}
