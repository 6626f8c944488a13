//go:generate mockgen -source=events.go -destination=mock_publisher.go -package=events

// Package events carries lock notifications out of the engine.
//
// Events are collected while a transaction applies and handed to a Publisher
// only after the transaction has been committed.
package events

import (
	"context"
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

// Kind identifies a notification.
type Kind string

const (
	KindLocked        Kind = "locked"
	KindUnlocked      Kind = "unlocked"
	KindFeesCollected Kind = "fees_collected"
)

// Event is a single lock notification.
type Event struct {
	Kind   Kind             `json:"kind"`
	TxID   string           `json:"tx_id,omitempty"`
	Owner  solana.PublicKey `json:"owner"`
	LPMint solana.PublicKey `json:"lp_mint"`
	Index  uint64           `json:"index"`

	// Amount is the locked amount for KindLocked, the released amount for
	// KindUnlocked and the LP shares burned for KindFeesCollected.
	Amount    uint64 `json:"amount"`
	Permanent bool   `json:"permanent,omitempty"`
	Fee0      uint64 `json:"fee_0,omitempty"`
	Fee1      uint64 `json:"fee_1,omitempty"`
	Timestamp uint64 `json:"timestamp"`
}

// MsgID is a stable identifier used for publish deduplication.
func (e Event) MsgID() string {
	return e.TxID + ":" + string(e.Kind)
}

// Encode returns the JSON wire form of the event.
func (e Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// Decode parses the JSON wire form of an event.
func Decode(data []byte) (Event, error) {
	var e Event
	err := json.Unmarshal(data, &e)
	return e, err
}

// Publisher delivers committed events.
type Publisher interface {
	Publish(ctx context.Context, ev Event) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Event) error { return nil }
func (Nop) Close() error                         { return nil }
