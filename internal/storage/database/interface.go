// Package database defines the ordered key/value store ledger entries are
// persisted in. Backends live in subpackages and are selected by name.
package database

import (
	"context"
	"slices"
)

// DB is an ordered key/value store.
//
// The ledger writes only through Batch, so the entries of one transaction
// become visible together or not at all.
type DB interface {
	// Read returns a copy of the value under key, or ErrKeyNotFound.
	Read(ctx context.Context, key []byte) ([]byte, error)

	// Batch applies ops atomically.
	Batch(ctx context.Context, ops []Op) error

	// Iterator walks the keys in [start, end) in byte order. A nil bound
	// is open.
	Iterator(ctx context.Context, start, end []byte) (Iterator, error)

	Close() error
}

// Iterator walks a key range. Key and Value are valid until the next call
// to Next.
type Iterator interface {
	Next() bool
	Key() []byte
	Value() []byte
	Error() error
	Close() error
}

// OpKind says what an Op does.
type OpKind uint8

const (
	OpPut OpKind = iota
	OpDelete
)

// Op is one write of a batch.
type Op struct {
	Kind  OpKind
	Key   []byte
	Value []byte
}

// Put stores value under key as a batch of one.
func Put(ctx context.Context, db DB, key, value []byte) error {
	return db.Batch(ctx, []Op{{Kind: OpPut, Key: key, Value: value}})
}

// Delete removes key as a batch of one.
func Delete(ctx context.Context, db DB, key []byte) error {
	return db.Batch(ctx, []Op{{Kind: OpDelete, Key: key}})
}

// Backend names accepted by configuration.
const (
	BackendPebble  = "pebble"
	BackendLevelDB = "leveldb"
	BackendMemory  = "memory"
)

// Backends lists the backend names in order of preference.
var Backends = []string{BackendPebble, BackendLevelDB, BackendMemory}

// IsBackend reports whether name is a known backend.
func IsBackend(name string) bool {
	return slices.Contains(Backends, name)
}
