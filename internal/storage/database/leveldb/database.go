// Package leveldb provides a database.DB backed by goleveldb.
package leveldb

import (
	"context"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/LeJamon/goLPLockd/internal/storage/database"
)

type DB struct {
	db *leveldb.DB
}

// Open opens (or creates) a leveldb database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

var syncWrite = &opt.WriteOptions{Sync: true}

func (l *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if l.db == nil {
		return nil, database.ErrClosed
	}
	val, err := l.db.Get(key, nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, database.ErrKeyNotFound
	}
	return val, err
}

// Batch commits ops as one synced leveldb write.
func (l *DB) Batch(ctx context.Context, ops []database.Op) error {
	if err := database.CheckBatch(ops); err != nil {
		return err
	}
	if l.db == nil {
		return database.ErrClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		if op.Kind == database.OpPut {
			batch.Put(op.Key, op.Value)
			continue
		}
		batch.Delete(op.Key)
	}
	if err := l.db.Write(batch, syncWrite); err != nil {
		return fmt.Errorf("%w: %w", database.ErrBatchOperationFailed, err)
	}
	return nil
}

func (l *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if l.db == nil {
		return nil, database.ErrClosed
	}
	return &Iterator{iter: l.db.NewIterator(&util.Range{Start: start, Limit: end}, nil)}, nil
}

func (l *DB) Close() error {
	if l.db == nil {
		return nil
	}
	err := l.db.Close()
	l.db = nil
	return err
}

type Iterator struct {
	iter iterator.Iterator
}

func (it *Iterator) Next() bool { return it.iter.Next() }

// Key and Value return copies; goleveldb reuses its buffers.
func (it *Iterator) Key() []byte { return append([]byte(nil), it.iter.Key()...) }

func (it *Iterator) Value() []byte { return append([]byte(nil), it.iter.Value()...) }

func (it *Iterator) Error() error { return it.iter.Error() }

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
