package sle

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
)

// LockState is the lifecycle state of a lock record.
type LockState int

const (
	LockStateTimeLocked LockState = iota
	LockStatePermanent
	LockStateReleased
)

func (s LockState) String() string {
	switch s {
	case LockStateTimeLocked:
		return "time-locked"
	case LockStatePermanent:
		return "permanent"
	case LockStateReleased:
		return "released"
	default:
		return "unknown"
	}
}

// LockEntry is one lock instance.
//
// PrincipalLiquidity is fixed at creation and is the reference every fee
// collection measures against; only LockAmount shrinks as fees are taken.
// Once Released is set the record is terminal and is kept as an audit trail.
type LockEntry struct {
	Owner      solana.PublicKey `codec:"owner"`
	LPMint     solana.PublicKey `codec:"lp_mint"`
	Index      uint64           `codec:"index"`
	LockAmount uint64           `codec:"lock_amount"`

	// UnlockTime is in unix seconds; 0 means permanent.
	UnlockTime uint64 `codec:"unlock_time"`

	Principal0         uint64 `codec:"principal_0"`
	Principal1         uint64 `codec:"principal_1"`
	PrincipalLiquidity uint64 `codec:"principal_liquidity"`

	Permanent bool   `codec:"permanent"`
	Fees0     uint64 `codec:"fees_0"`
	Fees1     uint64 `codec:"fees_1"`
	Released  bool   `codec:"released"`

	LastUpdated uint64 `codec:"last_updated"`
	CreatedAt   uint64 `codec:"created_at"`
}

func (l *LockEntry) Type() entry.Type { return entry.TypeLock }

func (l *LockEntry) Validate() error {
	if l.Owner.IsZero() {
		return errors.New("lock owner is required")
	}
	if l.LPMint.IsZero() {
		return errors.New("lock lp mint is required")
	}
	if l.Index == 0 {
		return errors.New("lock index starts at 1")
	}
	if l.Permanent && l.UnlockTime != 0 {
		return errors.New("permanent lock must not carry an unlock time")
	}
	if !l.Permanent && l.UnlockTime == 0 {
		return errors.New("timed lock requires an unlock time")
	}
	if l.Permanent && l.Released {
		return errors.New("permanent lock cannot be released")
	}
	return nil
}

// State returns the lifecycle state of the lock.
func (l *LockEntry) State() LockState {
	switch {
	case l.Released:
		return LockStateReleased
	case l.Permanent:
		return LockStatePermanent
	default:
		return LockStateTimeLocked
	}
}

// ParseLock parses a LockEntry from serialized data.
func ParseLock(data []byte) (*LockEntry, error) {
	l := &LockEntry{}
	if err := Parse(data, l); err != nil {
		return nil, err
	}
	return l, nil
}
