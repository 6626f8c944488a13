package di

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/config"
	"github.com/LeJamon/goLPLockd/internal/node"
	"github.com/LeJamon/goLPLockd/internal/storage/database"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

func TestContainer(t *testing.T) {
	c := New()
	c.Register("answer", 42)

	builds := 0
	c.RegisterBuilder("lazy", func(*Container) (interface{}, error) {
		builds++
		return "built", nil
	})

	assert.True(t, c.Has("answer"))
	assert.True(t, c.Has("lazy"))
	assert.False(t, c.Has("missing"))

	v, err := c.Get("answer")
	require.NoError(t, err)
	assert.Equal(t, 42, v)

	for range 2 {
		v, err = c.Get("lazy")
		require.NoError(t, err)
		assert.Equal(t, "built", v)
	}
	assert.Equal(t, 1, builds)

	_, err = c.Get("missing")
	assert.ErrorIs(t, err, ErrServiceNotFound)
}

func TestContainerBuilderError(t *testing.T) {
	c := New()
	boom := errors.New("boom")
	c.RegisterBuilder("broken", func(*Container) (interface{}, error) {
		return nil, boom
	})

	_, err := c.Get("broken")
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "build broken")
}

func TestContainerClose(t *testing.T) {
	c := New()
	var order []string
	boom := errors.New("boom")
	c.OnClose("first", func() error {
		order = append(order, "first")
		return nil
	})
	c.OnClose("second", func() error {
		order = append(order, "second")
		return boom
	})

	err := c.Close()
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "close second")
	assert.Equal(t, []string{"second", "first"}, order)

	// Closers run once.
	require.NoError(t, c.Close())
	assert.Len(t, order, 2)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig("")
	require.NoError(t, err)
	dir := t.TempDir()
	cfg.Database.Backend = database.BackendMemory
	cfg.Journal.Path = ":memory:"
	cfg.Log.Output = filepath.Join(dir, "lplockd.log")
	cfg.Metrics.Textfile = filepath.Join(dir, "lplockd.prom")
	return cfg
}

func TestProvider(t *testing.T) {
	cfg := testConfig(t)
	c := New()
	p := NewProvider(c, cfg)
	require.NoError(t, p.RegisterAll())

	for _, name := range []string{ServiceConfig, ServiceLogger, ServiceMetrics, ServiceStateDB, ServiceJournal, ServiceEventPublisher, ServiceNode} {
		assert.True(t, c.Has(name), name)
	}

	n, err := p.Node()
	require.NoError(t, err)
	again, err := p.Node()
	require.NoError(t, err)
	assert.Same(t, n, again)

	ncfg := n.Config()
	assert.Equal(t, node.DefaultProgramID, ncfg.ProgramID)
	assert.Equal(t, node.DefaultAMMProgramID, ncfg.AMMProgramID)
	assert.Equal(t, cfg.Lock.MinAmount, ncfg.MinLockAmount)
	assert.Equal(t, cfg.Lock.MaxDuration, ncfg.MaxLockDuration)
	assert.Equal(t, cfg.Pool.TradeFeeRate, ncfg.TradeFeeRate)
	assert.Equal(t, cfg.Database.CacheSize, ncfg.Store.CacheSize)

	journal, err := p.Journal()
	require.NoError(t, err)
	require.NotNil(t, journal)
	assert.True(t, journal.IsConnected())

	records, err := n.History(context.Background(), relationaldb.HistoryQuery{})
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, c.Close())
	assert.False(t, journal.IsConnected())

	_, err = os.Stat(cfg.Metrics.Textfile)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.Log.Output)
	assert.NoError(t, err)
}

func TestProviderJournalDisabled(t *testing.T) {
	cfg := testConfig(t)
	cfg.Journal.Enabled = false
	c := New()
	p := NewProvider(c, cfg)
	require.NoError(t, p.RegisterAll())
	t.Cleanup(func() { c.Close() })

	journal, err := p.Journal()
	require.NoError(t, err)
	assert.Nil(t, journal)

	n, err := p.Node()
	require.NoError(t, err)
	_, err = n.History(context.Background(), relationaldb.HistoryQuery{})
	assert.ErrorIs(t, err, node.ErrNoJournal)
}

func TestProviderBadBackend(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.Backend = "rocksdb"
	c := New()
	p := NewProvider(c, cfg)
	require.NoError(t, p.RegisterAll())
	t.Cleanup(func() { c.Close() })

	_, err := p.Node()
	assert.ErrorContains(t, err, "unknown database backend")
}
