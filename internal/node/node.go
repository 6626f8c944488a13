// Package node hosts the lock engine.
//
// A Node owns the ledger store and serializes every submission. Each
// transaction runs in its own engine sandbox; on success the store commits
// the changes as a single database batch, otherwise the pending writes are
// dropped. Journal writes and event publishing happen after the commit and
// never undo it.
package node

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"golang.org/x/sync/errgroup"

	"github.com/LeJamon/goLPLockd/internal/core/amm"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/metrics"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
	"github.com/LeJamon/goLPLockd/internal/storage/state"

	// Transaction types register themselves with tx.
	_ "github.com/LeJamon/goLPLockd/internal/core/tx/lock"
)

// Default program ids.
var (
	DefaultProgramID    = solana.MustPublicKeyFromBase58("FFNVCqrn1yPZrfDsQ4eN2ctbSWFkuJo95FnXrVFeh2Et")
	DefaultAMMProgramID = solana.MustPublicKeyFromBase58("CPMMoo8L3F4NbTegBCKVNunggL7H1ZpdTHKxQB5qKP1C")
)

// Default pool fee rates, parts per million.
const (
	DefaultTradeFeeRate    uint64 = 2500
	DefaultProtocolFeeRate uint64 = 120000
	DefaultFundFeeRate     uint64 = 40000
)

// Clock supplies the close time transactions apply at.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Journal records processed transactions and answers history queries.
// *relationaldb.Manager implements it.
type Journal interface {
	Record(ctx context.Context, rec *relationaldb.TransactionRecord, evs []events.Event) error
	History(ctx context.Context, q relationaldb.HistoryQuery) ([]relationaldb.EventRecord, error)
	FeeTotals(ctx context.Context, q relationaldb.HistoryQuery) (*relationaldb.FeeTotals, error)
}

// ErrNoJournal is returned by history queries on a node without a journal.
var ErrNoJournal = errors.New("no journal configured")

// Config holds the node settings.
type Config struct {
	ProgramID       solana.PublicKey
	AMMProgramID    solana.PublicKey
	MinLockAmount   uint64
	MaxLockDuration uint64

	// Pool fee rates applied by CreatePool when the request leaves them zero.
	TradeFeeRate    uint64
	ProtocolFeeRate uint64
	FundFeeRate     uint64

	Store  state.Config
	Clock  Clock
	Logger *slog.Logger
}

// Option configures optional collaborators.
type Option func(*Node)

// WithJournal records every transaction in j.
func WithJournal(j Journal) Option {
	return func(n *Node) { n.journal = j }
}

// WithPublisher publishes committed events to p.
func WithPublisher(p events.Publisher) Option {
	return func(n *Node) { n.publisher = p }
}

// WithMetrics reports to m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Node) { n.metrics = m }
}

// Node serializes transactions against one ledger store.
type Node struct {
	mu sync.RWMutex

	cfg    Config
	store  *state.Store
	amm    *amm.CPMM
	logger *slog.Logger

	journal   Journal
	publisher events.Publisher
	metrics   *metrics.Metrics

	sequence uint64
	closed   bool
}

// New creates a node over db.
func New(db database.DB, cfg Config, opts ...Option) (*Node, error) {
	if cfg.ProgramID.IsZero() {
		cfg.ProgramID = DefaultProgramID
	}
	if cfg.AMMProgramID.IsZero() {
		cfg.AMMProgramID = DefaultAMMProgramID
	}
	if cfg.MinLockAmount == 0 {
		cfg.MinLockAmount = tx.DefaultMinLockAmount
	}
	if cfg.MaxLockDuration == 0 {
		cfg.MaxLockDuration = tx.DefaultMaxLockDuration
	}
	if cfg.TradeFeeRate == 0 {
		cfg.TradeFeeRate = DefaultTradeFeeRate
	}
	if cfg.ProtocolFeeRate == 0 {
		cfg.ProtocolFeeRate = DefaultProtocolFeeRate
	}
	if cfg.FundFeeRate == 0 {
		cfg.FundFeeRate = DefaultFundFeeRate
	}
	if cfg.Clock == nil {
		cfg.Clock = systemClock{}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Store.Logger == nil {
		cfg.Store.Logger = cfg.Logger
	}

	store, err := state.NewStore(db, cfg.Store)
	if err != nil {
		return nil, err
	}
	program, err := amm.NewCPMM(cfg.AMMProgramID)
	if err != nil {
		return nil, err
	}

	n := &Node{
		cfg:       cfg,
		store:     store,
		amm:       program,
		logger:    cfg.Logger.With("component", "node"),
		publisher: events.Nop{},
		sequence:  uint64(time.Now().UnixNano()),
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.metrics == nil {
		n.metrics = metrics.New(nil)
	}
	return n, nil
}

// Config returns the effective configuration.
func (n *Node) Config() Config {
	return n.cfg
}

// AMM returns the pool program.
func (n *Node) AMM() *amm.CPMM {
	return n.amm
}

// ErrClosed is returned by operations on a closed node.
var ErrClosed = errors.New("node is closed")

// History returns the journaled lock events matching q.
func (n *Node) History(ctx context.Context, q relationaldb.HistoryQuery) ([]relationaldb.EventRecord, error) {
	if n.journal == nil {
		return nil, ErrNoJournal
	}
	return n.journal.History(ctx, q)
}

// FeeTotals sums the journaled fee collections matching q.
func (n *Node) FeeTotals(ctx context.Context, q relationaldb.HistoryQuery) (*relationaldb.FeeTotals, error) {
	if n.journal == nil {
		return nil, ErrNoJournal
	}
	return n.journal.FeeTotals(ctx, q)
}

// Close closes the publisher. The database is owned by the caller.
func (n *Node) Close() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return nil
	}
	n.closed = true
	return n.publisher.Close()
}

// Submit applies t and commits it if it succeeds. The returned error is
// non-nil only when the node could not process t at all; rejections are
// reported in the result.
func (n *Node) Submit(ctx context.Context, t tx.Transaction) (tx.ApplyResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return tx.ApplyResult{}, ErrClosed
	}

	n.sequence++
	t.GetCommon().Sequence = n.sequence

	start := time.Now()
	closeTime := uint64(n.cfg.Clock.Now().Unix())
	engine := tx.NewEngine(n.store, tx.EngineConfig{
		ProgramID:       n.cfg.ProgramID,
		MinLockAmount:   n.cfg.MinLockAmount,
		MaxLockDuration: n.cfg.MaxLockDuration,
		CloseTime:       closeTime,
		AMM:             n.amm,
		Logger:          n.cfg.Logger,
	})

	res := engine.Apply(t)
	if res.Applied {
		if err := n.store.Commit(ctx); err != nil {
			n.metrics.ObserveTransaction(t.TxType().String(), tx.TefINTERNAL.String(), time.Since(start))
			n.logger.Error("commit failed", "tx", res.TxID(), "err", err)
			return tx.ApplyResult{Result: tx.TefINTERNAL, TxHash: res.TxHash, Message: err.Error()}, fmt.Errorf("commit %s: %w", res.TxID(), err)
		}
	} else {
		n.store.Discard()
	}
	n.metrics.ObserveTransaction(t.TxType().String(), res.Result.String(), time.Since(start))

	n.logger.Debug("transaction processed",
		"type", t.TxType().String(),
		"tx", res.TxID(),
		"result", res.Result.String(),
		"sequence", n.sequence)

	n.afterCommit(ctx, t, res, closeTime)
	return res, nil
}

// afterCommit journals the transaction and publishes its events.
// Preflight rejections carry no hash and are not journaled.
func (n *Node) afterCommit(ctx context.Context, t tx.Transaction, res tx.ApplyResult, closeTime uint64) {
	evs := Events(res)
	if res.Applied {
		n.metrics.ObserveEvents(evs)
	}

	g, gctx := errgroup.WithContext(ctx)
	if n.journal != nil && res.TxHash != ([32]byte{}) {
		rec := &relationaldb.TransactionRecord{
			TxID:      res.TxID(),
			TxType:    t.TxType().String(),
			Account:   t.GetCommon().Account.String(),
			Result:    res.Result.String(),
			Applied:   res.Applied,
			Sequence:  t.GetCommon().Sequence,
			CloseTime: closeTime,
		}
		g.Go(func() error {
			if err := n.journal.Record(gctx, rec, evs); err != nil {
				n.logger.Warn("journal write failed", "tx", rec.TxID, "err", err)
			}
			return nil
		})
	}
	for _, ev := range evs {
		g.Go(func() error {
			if err := n.publisher.Publish(gctx, ev); err != nil {
				n.metrics.IncPublishError()
				n.logger.Warn("publish failed", "event", ev.MsgID(), "err", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// direct runs fn against a sandbox of the store and commits it. It is used
// for administrative writes that are not transactions.
func (n *Node) direct(ctx context.Context, fn func(view tx.LedgerView) error) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return ErrClosed
	}

	table := tx.NewApplyStateTable(n.store, [32]byte{})
	if err := fn(table); err != nil {
		return err
	}
	if _, err := table.Apply(); err != nil {
		n.store.Discard()
		return err
	}
	return n.store.Commit(ctx)
}
