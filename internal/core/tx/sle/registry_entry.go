package sle

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
)

// RegistryEntry aggregates every lock one owner holds in one pool.
// LockCount never decreases and is the source of the next lock index.
// TotalLocked equals the sum of LockAmount over the owner's non-released locks.
type RegistryEntry struct {
	Owner       solana.PublicKey `codec:"owner"`
	LPMint      solana.PublicKey `codec:"lp_mint"`
	LockCount   uint64           `codec:"lock_count"`
	TotalLocked uint64           `codec:"total_locked"`
}

func (r *RegistryEntry) Type() entry.Type { return entry.TypeRegistry }

func (r *RegistryEntry) Validate() error {
	if r.Owner.IsZero() {
		return errors.New("registry owner is required")
	}
	if r.LPMint.IsZero() {
		return errors.New("registry lp mint is required")
	}
	return nil
}

// ParseRegistry parses a RegistryEntry from serialized data.
func ParseRegistry(data []byte) (*RegistryEntry, error) {
	r := &RegistryEntry{}
	if err := Parse(data, r); err != nil {
		return nil, err
	}
	return r, nil
}
