package testing

import (
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/node"
)

// TxResult represents the result of applying a transaction.
type TxResult struct {
	// Code is the transaction engine result code.
	Code tx.Result

	// Success indicates whether the transaction was applied.
	Success bool

	// Message provides additional details about the result.
	Message string

	TxID   string
	Events []events.Event
}

// IsClaimed reports a tec result: well formed, rejected by ledger state.
func (r TxResult) IsClaimed() bool {
	return r.Code.IsTec()
}

// Event returns the single event of a successful lock operation.
func (r TxResult) Event() (events.Event, bool) {
	if len(r.Events) != 1 {
		return events.Event{}, false
	}
	return r.Events[0], true
}

func resultOf(res tx.ApplyResult) TxResult {
	out := TxResult{
		Code:    res.Result,
		Success: res.Applied,
		Message: res.Message,
	}
	if res.TxHash != ([32]byte{}) {
		out.TxID = res.TxID()
	}
	out.Events = node.Events(res)
	return out
}
