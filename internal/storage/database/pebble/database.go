// Package pebble provides a database.DB backed by cockroachdb/pebble.
package pebble

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
)

// DB owns one pebble database.
type DB struct {
	mu sync.RWMutex
	db *pebble.DB
}

// Open opens (or creates) the pebble database in dir.
func Open(dir string) (*DB, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}
	return &DB{db: db}, nil
}

func (p *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, database.ErrClosed
	}

	val, closer, err := p.db.Get(key)
	if errors.Is(err, pebble.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

// Batch commits ops with a synced write.
func (p *DB) Batch(ctx context.Context, ops []database.Op) error {
	if err := database.CheckBatch(ops); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return database.ErrClosed
	}

	batch := p.db.NewBatch()
	defer batch.Close()
	for _, op := range ops {
		var err error
		if op.Kind == database.OpPut {
			err = batch.Set(op.Key, op.Value, nil)
		} else {
			err = batch.Delete(op.Key, nil)
		}
		if err != nil {
			return fmt.Errorf("%w: %w", database.ErrBatchOperationFailed, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("%w: %w", database.ErrBatchOperationFailed, err)
	}
	return nil
}

func (p *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.db == nil {
		return nil, database.ErrClosed
	}

	iter, err := p.db.NewIter(&pebble.IterOptions{LowerBound: start, UpperBound: end})
	if err != nil {
		return nil, err
	}
	return &iterator{iter: iter}, nil
}

func (p *DB) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.db == nil {
		return nil
	}
	err := p.db.Close()
	p.db = nil
	return err
}

type iterator struct {
	iter    *pebble.Iterator
	started bool
}

func (it *iterator) Next() bool {
	if !it.started {
		it.started = true
		return it.iter.First()
	}
	return it.iter.Next()
}

func (it *iterator) Key() []byte   { return it.iter.Key() }
func (it *iterator) Value() []byte { return it.iter.Value() }
func (it *iterator) Error() error  { return it.iter.Error() }
func (it *iterator) Close() error  { return it.iter.Close() }
