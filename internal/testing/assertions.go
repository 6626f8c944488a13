package testing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

// RequireTxSuccess asserts that a transaction result indicates success.
func RequireTxSuccess(t *testing.T, result TxResult) {
	t.Helper()
	require.True(t, result.Success,
		"Expected transaction success, got %s: %s", result.Code, result.Message)
	require.Equal(t, tx.TesSUCCESS, result.Code)
}

// RequireTxFail asserts that a transaction failed with a specific code.
func RequireTxFail(t *testing.T, result TxResult, expected tx.Result) {
	t.Helper()
	require.False(t, result.Success,
		"Expected transaction failure with code %s, but transaction succeeded", expected)
	require.Equal(t, expected, result.Code,
		"Expected failure code %s, got %s: %s", expected, result.Code, result.Message)
	require.Empty(t, result.Events, "failed transaction emitted events")
}

// RequireUnchanged asserts that the ledger equals a previous Snapshot.
func RequireUnchanged(t *testing.T, env *TestEnv, before map[string]string) {
	t.Helper()
	after := env.Snapshot()
	require.Equal(t, len(before), len(after), "entry count changed")
	for k, v := range before {
		require.Equal(t, v, after[k], "entry %x changed", []byte(k))
	}
}

// RequireRegistryConsistent asserts that acc's registry for p counts every
// lock and that TotalLocked is the sum over the locks not yet released.
func RequireRegistryConsistent(t *testing.T, env *TestEnv, acc *Account, p *Pool) {
	t.Helper()
	reg := env.Registry(acc, p)
	require.NotNil(t, reg, "no registry for %s", acc.Name)

	locks, err := env.Node().Locks(acc.PublicKey, p.LPMint)
	require.NoError(t, err)
	require.Len(t, locks, int(reg.LockCount))

	var total uint64
	for i, l := range locks {
		require.Equal(t, uint64(i+1), l.Index)
		if !l.Released {
			total += l.LockAmount
		}
	}
	require.Equal(t, total, reg.TotalLocked, "registry total out of sync with locks")
}

// RequireLockState asserts the lifecycle state of a lock.
func RequireLockState(t *testing.T, env *TestEnv, acc *Account, p *Pool, index uint64, expected sle.LockState) {
	t.Helper()
	l := env.Lock(acc, p, index)
	require.Equal(t, expected, l.State(), "lock %d state", index)
}
