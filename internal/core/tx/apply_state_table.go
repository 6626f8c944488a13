package tx

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

// Action represents the type of modification to a ledger entry
type Action int

const (
	// ActionCache means the entry was read but not modified
	ActionCache Action = iota
	// ActionInsert means a new entry was created
	ActionInsert
	// ActionModify means an existing entry was modified
	ActionModify
	// ActionErase means an entry was deleted
	ActionErase
)

func (a Action) String() string {
	switch a {
	case ActionInsert:
		return "CreatedNode"
	case ActionModify:
		return "ModifiedNode"
	case ActionErase:
		return "DeletedNode"
	default:
		return "Cached"
	}
}

// TrackedEntry represents a ledger entry being tracked for changes
type TrackedEntry struct {
	Type     entry.Type
	Action   Action
	Original []byte // Original state (nil for inserts)
	Current  []byte // Current state
}

// AffectedNode describes one entry changed by a transaction.
type AffectedNode struct {
	NodeType        string     `json:"node_type"`
	LedgerEntryType entry.Type `json:"ledger_entry_type"`
	LedgerIndex     string     `json:"ledger_index"`
}

// ApplyStateTable wraps a LedgerView and buffers every modification a
// transaction makes. Nothing reaches the base view until Apply is called, so
// a failed transaction is rolled back by dropping the table.
type ApplyStateTable struct {
	base   LedgerView
	items  map[[32]byte]*TrackedEntry
	txHash [32]byte
}

// NewApplyStateTable creates a new ApplyStateTable wrapping the given base view
func NewApplyStateTable(base LedgerView, txHash [32]byte) *ApplyStateTable {
	return &ApplyStateTable{
		base:   base,
		items:  make(map[[32]byte]*TrackedEntry),
		txHash: txHash,
	}
}

// Read reads a ledger entry, tracking it as cached
func (t *ApplyStateTable) Read(k keylet.Keylet) ([]byte, error) {
	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return nil, nil
		}
		return e.Current, nil
	}

	data, err := t.base.Read(k)
	if err != nil {
		return nil, err
	}

	// Only track entries that exist in the base
	if data != nil {
		t.items[k.Key] = &TrackedEntry{
			Type:     k.Type,
			Action:   ActionCache,
			Original: data,
			Current:  data,
		}
	}

	return data, nil
}

// Exists checks if an entry exists
func (t *ApplyStateTable) Exists(k keylet.Keylet) (bool, error) {
	if e, exists := t.items[k.Key]; exists {
		return e.Action != ActionErase, nil
	}
	return t.base.Exists(k)
}

// Insert adds a new entry
func (t *ApplyStateTable) Insert(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k.Key]; exists {
		if e.Action != ActionErase {
			return fmt.Errorf("insert %s: %w", k.Type, ErrEntryExists)
		}
		// Re-inserting a deleted entry becomes a modify
		e.Action = ActionModify
		e.Current = data
		return nil
	}

	exists, err := t.base.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("insert %s: %w", k.Type, ErrEntryExists)
	}

	t.items[k.Key] = &TrackedEntry{
		Type:    k.Type,
		Action:  ActionInsert,
		Current: data,
	}
	return nil
}

// Update modifies an existing entry
func (t *ApplyStateTable) Update(k keylet.Keylet, data []byte) error {
	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return fmt.Errorf("update %s: %w (deleted)", k.Type, ErrEntryNotFound)
		}
		if e.Action == ActionCache {
			e.Action = ActionModify
		}
		// For insert, keep it as insert with new data
		e.Current = data
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("update %s: %w", k.Type, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Type:     k.Type,
		Action:   ActionModify,
		Original: original,
		Current:  data,
	}
	return nil
}

// Erase removes an entry
func (t *ApplyStateTable) Erase(k keylet.Keylet) error {
	if e, exists := t.items[k.Key]; exists {
		if e.Action == ActionErase {
			return fmt.Errorf("erase %s: %w (deleted)", k.Type, ErrEntryNotFound)
		}
		if e.Action == ActionInsert {
			// Inserting then deleting = no change
			delete(t.items, k.Key)
			return nil
		}
		e.Action = ActionErase
		return nil
	}

	original, err := t.base.Read(k)
	if err != nil {
		return err
	}
	if original == nil {
		return fmt.Errorf("erase %s: %w", k.Type, ErrEntryNotFound)
	}

	t.items[k.Key] = &TrackedEntry{
		Type:     k.Type,
		Action:   ActionErase,
		Original: original,
		Current:  original,
	}
	return nil
}

// Apply writes all buffered changes to the base view and returns the
// affected nodes, ordered by ledger index.
//
// Apply is the only point where the base view is touched. If the base is
// itself a buffered store, a failure here is recovered by discarding it.
func (t *ApplyStateTable) Apply() ([]AffectedNode, error) {
	keys := make([][32]byte, 0, len(t.items))
	for key := range t.items {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		return bytes.Compare(keys[i][:], keys[j][:]) < 0
	})

	nodes := make([]AffectedNode, 0, len(keys))
	for _, key := range keys {
		e := t.items[key]
		k := keylet.Keylet{Type: e.Type, Key: key}

		var err error
		switch e.Action {
		case ActionCache:
			continue
		case ActionInsert:
			err = t.base.Insert(k, e.Current)
		case ActionModify:
			if bytes.Equal(e.Original, e.Current) {
				continue
			}
			err = t.base.Update(k, e.Current)
		case ActionErase:
			err = t.base.Erase(k)
		}
		if err != nil {
			return nil, fmt.Errorf("apply %s %s: %w", e.Action, e.Type, err)
		}

		nodes = append(nodes, AffectedNode{
			NodeType:        e.Action.String(),
			LedgerEntryType: entryType(e),
			LedgerIndex:     strings.ToUpper(hex.EncodeToString(key[:])),
		})
	}
	return nodes, nil
}

// entryType prefers the type recorded in the data over the keylet's.
func entryType(e *TrackedEntry) entry.Type {
	data := e.Current
	if data == nil {
		data = e.Original
	}
	if t, err := sle.EntryType(data); err == nil {
		return t
	}
	return e.Type
}
