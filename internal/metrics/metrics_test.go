package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/events"
	"github.com/LeJamon/goLPLockd/internal/storage/relationaldb"
)

var _ relationaldb.Metrics = (*Metrics)(nil)

func TestObserveTransaction(t *testing.T) {
	m := New(nil)
	m.ObserveTransaction("LockCreate", "tesSUCCESS", time.Millisecond)
	m.ObserveTransaction("LockCreate", "tesSUCCESS", time.Millisecond)
	m.ObserveTransaction("LockRelease", "tecNOT_MATURE", time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.transactions.WithLabelValues("LockCreate", "tesSUCCESS")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.transactions.WithLabelValues("LockRelease", "tecNOT_MATURE")))
}

func TestObserveEvents(t *testing.T) {
	m := New(nil)
	m.ObserveEvents([]events.Event{
		{Kind: events.KindLocked, Amount: 1000},
		{Kind: events.KindFeesCollected, Amount: 91, Fee0: 100, Fee1: 40},
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.lockEvents.WithLabelValues("locked")))
	assert.Equal(t, 100.0, testutil.ToFloat64(m.feesClaimed.WithLabelValues("token0")))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.feesClaimed.WithLabelValues("token1")))
}

func TestSharedRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.IncPublishError()
	m.IncrementCounter("journal.record.failed", map[string]string{"driver": "sqlite"})

	n, err := testutil.GatherAndCount(reg, "lplockd_publish_errors_total", "lplockd_journal_operations_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Registering twice on the same registry panics.
	assert.Panics(t, func() { New(reg) })
}

func TestWriteTextfile(t *testing.T) {
	m := New(nil)
	m.ObserveTransaction("PoolSwap", "tesSUCCESS", time.Millisecond)

	path := filepath.Join(t.TempDir(), "lplockd.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `lplockd_transactions_total{result="tesSUCCESS",type="PoolSwap"} 1`)
}
