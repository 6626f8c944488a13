// Package memory provides an in-process database.DB for tests and
// throwaway standalone runs.
package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
)

type DB struct {
	mu     sync.RWMutex
	data   map[string][]byte
	closed bool

	// failBatch, when set, makes the next Batch call fail without writing.
	failBatch error
}

func New() *DB {
	return &DB{data: make(map[string][]byte)}
}

func (m *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrClosed
	}
	v, ok := m.data[string(key)]
	if !ok {
		return nil, database.ErrKeyNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *DB) Batch(ctx context.Context, ops []database.Op) error {
	if err := database.CheckBatch(ops); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return database.ErrClosed
	}
	if err := m.failBatch; err != nil {
		m.failBatch = nil
		return fmt.Errorf("%w: %w", database.ErrBatchOperationFailed, err)
	}
	for _, op := range ops {
		switch op.Kind {
		case database.OpPut:
			m.data[string(op.Key)] = append([]byte(nil), op.Value...)
		case database.OpDelete:
			delete(m.data, string(op.Key))
		}
	}
	return nil
}

// FailNextBatch makes the next Batch call return err without writing anything.
func (m *DB) FailNextBatch(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failBatch = err
}

// Len returns the number of stored keys.
func (m *DB) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

func (m *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.closed {
		return nil, database.ErrClosed
	}

	it := &Iterator{pos: -1}
	for k, v := range m.data {
		key := []byte(k)
		if start != nil && bytes.Compare(key, start) < 0 {
			continue
		}
		if end != nil && bytes.Compare(key, end) >= 0 {
			continue
		}
		it.keys = append(it.keys, key)
		it.values = append(it.values, append([]byte(nil), v...))
	}
	sort.Sort(it)
	return it, nil
}

func (m *DB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Iterator walks a snapshot taken when it was created.
type Iterator struct {
	keys   [][]byte
	values [][]byte
	pos    int
}

func (it *Iterator) Len() int           { return len(it.keys) }
func (it *Iterator) Less(i, j int) bool { return bytes.Compare(it.keys[i], it.keys[j]) < 0 }
func (it *Iterator) Swap(i, j int) {
	it.keys[i], it.keys[j] = it.keys[j], it.keys[i]
	it.values[i], it.values[j] = it.values[j], it.values[i]
}

func (it *Iterator) Next() bool {
	it.pos++
	return it.pos < len(it.keys)
}

func (it *Iterator) Key() []byte   { return it.keys[it.pos] }
func (it *Iterator) Value() []byte { return it.values[it.pos] }
func (it *Iterator) Error() error  { return nil }
func (it *Iterator) Close() error  { return nil }
