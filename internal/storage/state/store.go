// Package state persists ledger entries in a key/value database.
//
// A Store is a tx.LedgerView whose writes are buffered until Commit, which
// flushes them as one database batch. Discard drops the buffer. The host uses
// this to make each transaction all-or-nothing at the storage level.
package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/storage/compression"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
)

const defaultCacheSize = 4096

type pendingWrite struct {
	data    []byte
	deleted bool
}

// Config holds the Store tunables.
type Config struct {
	// CacheSize is the number of decoded entries kept in memory
	CacheSize int

	// Compressor names a codec of package compression; empty selects its default
	Compressor string

	Logger *slog.Logger
}

// Stats reports read cache effectiveness.
type Stats struct {
	Hits   uint64
	Misses uint64
}

// Store is a buffered LedgerView over a database.DB.
type Store struct {
	mu sync.Mutex

	db      database.DB
	codec   compression.Compressor
	cache   *lru.Cache[[32]byte, []byte]
	pending map[[32]byte]pendingWrite
	logger  *slog.Logger

	hits   uint64
	misses uint64
}

var _ tx.LedgerView = (*Store)(nil)

// NewStore creates a Store over db.
func NewStore(db database.DB, cfg Config) (*Store, error) {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	codec, err := compression.Get(cfg.Compressor)
	if err != nil {
		return nil, err
	}
	cache, err := lru.New[[32]byte, []byte](cfg.CacheSize)
	if err != nil {
		return nil, err
	}

	return &Store{
		db:      db,
		codec:   codec,
		cache:   cache,
		pending: make(map[[32]byte]pendingWrite),
		logger:  cfg.Logger.With("component", "state"),
	}, nil
}

// Read returns the entry at k, including uncommitted writes, or nil.
func (s *Store) Read(k keylet.Keylet) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(k.Key)
}

func (s *Store) read(key [32]byte) ([]byte, error) {
	if w, ok := s.pending[key]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.data, nil
	}

	if data, ok := s.cache.Get(key); ok {
		s.hits++
		return data, nil
	}
	s.misses++

	raw, err := s.db.Read(context.Background(), key[:])
	if errors.Is(err, database.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read state %x: %w", key[:8], err)
	}
	data, err := s.codec.Decompress(raw)
	if err != nil {
		return nil, fmt.Errorf("decode state %x: %w", key[:8], err)
	}
	s.cache.Add(key, data)
	return data, nil
}

// Exists checks if an entry exists
func (s *Store) Exists(k keylet.Keylet) (bool, error) {
	data, err := s.Read(k)
	return data != nil, err
}

// Insert buffers a new entry.
func (s *Store) Insert(k keylet.Keylet, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.read(k.Key)
	if err != nil {
		return err
	}
	if cur != nil {
		return fmt.Errorf("insert %s: %w", k.Type, tx.ErrEntryExists)
	}
	s.pending[k.Key] = pendingWrite{data: data}
	return nil
}

// Update buffers a replacement for an existing entry.
func (s *Store) Update(k keylet.Keylet, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.read(k.Key)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("update %s: %w", k.Type, tx.ErrEntryNotFound)
	}
	s.pending[k.Key] = pendingWrite{data: data}
	return nil
}

// Erase buffers a deletion.
func (s *Store) Erase(k keylet.Keylet) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, err := s.read(k.Key)
	if err != nil {
		return err
	}
	if cur == nil {
		return fmt.Errorf("erase %s: %w", k.Type, tx.ErrEntryNotFound)
	}
	s.pending[k.Key] = pendingWrite{deleted: true}
	return nil
}

// Pending returns the number of buffered writes.
func (s *Store) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Commit writes every buffered change in a single batch. The buffer is
// cleared whether or not the batch succeeds; on failure nothing was written.
func (s *Store) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.pending) == 0 {
		return nil
	}
	pending := s.pending
	s.pending = make(map[[32]byte]pendingWrite)

	ops := make([]database.Op, 0, len(pending))
	for key, w := range pending {
		key := key
		if w.deleted {
			ops = append(ops, database.Op{Kind: database.OpDelete, Key: key[:]})
			continue
		}
		enc, err := s.codec.Compress(w.data)
		if err != nil {
			return fmt.Errorf("encode state %x: %w", key[:8], err)
		}
		ops = append(ops, database.Op{Kind: database.OpPut, Key: key[:], Value: enc})
	}

	if err := s.db.Batch(ctx, ops); err != nil {
		s.logger.Error("state commit failed", "entries", len(ops), "err", err)
		return fmt.Errorf("commit state: %w", err)
	}

	for key, w := range pending {
		if w.deleted {
			s.cache.Remove(key)
		} else {
			s.cache.Add(key, w.data)
		}
	}
	s.logger.Debug("state committed", "entries", len(ops))
	return nil
}

// Discard drops every buffered change.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.pending); n > 0 {
		s.logger.Debug("state discarded", "entries", n)
	}
	s.pending = make(map[[32]byte]pendingWrite)
}

// Stats returns read cache counters.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{Hits: s.hits, Misses: s.misses}
}
