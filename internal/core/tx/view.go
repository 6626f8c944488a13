package tx

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

var (
	ErrEntryExists   = errors.New("entry already exists")
	ErrEntryNotFound = errors.New("entry not found")
)

// LedgerView provides read/write access to ledger state
type LedgerView interface {
	// Read returns the serialized entry, or nil if it does not exist
	Read(k keylet.Keylet) ([]byte, error)

	// Exists checks if an entry exists
	Exists(k keylet.Keylet) (bool, error)

	// Insert adds a new entry
	Insert(k keylet.Keylet, data []byte) error

	// Update modifies an existing entry
	Update(k keylet.Keylet, data []byte) error

	// Erase removes an entry
	Erase(k keylet.Keylet) error
}

// ReadEntry loads the entry at k into e. It reports false if there is none.
func ReadEntry(view LedgerView, k keylet.Keylet, e entry.Entry) (bool, error) {
	data, err := view.Read(k)
	if err != nil {
		return false, err
	}
	if data == nil {
		return false, nil
	}
	if err := sle.Parse(data, e); err != nil {
		return false, fmt.Errorf("parse %s %x: %w", k.Type, k.Key[:8], err)
	}
	return true, nil
}

// InsertEntry serializes and inserts a new entry.
func InsertEntry(view LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := sle.Serialize(e)
	if err != nil {
		return err
	}
	return view.Insert(k, data)
}

// UpdateEntry serializes and overwrites an existing entry.
func UpdateEntry(view LedgerView, k keylet.Keylet, e entry.Entry) error {
	data, err := sle.Serialize(e)
	if err != nil {
		return err
	}
	return view.Update(k, data)
}

// Signers is the set of authorities a transaction step acts with.
type Signers []solana.PublicKey

// Has reports whether key is among the signers.
func (s Signers) Has(key solana.PublicKey) bool {
	for _, k := range s {
		if k.Equals(key) {
			return true
		}
	}
	return false
}

// With returns a copy of s extended with key.
func (s Signers) With(key solana.PublicKey) Signers {
	out := make(Signers, 0, len(s)+1)
	out = append(out, s...)
	return append(out, key)
}
