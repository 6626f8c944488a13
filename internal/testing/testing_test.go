package testing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	alice1 := NewAccount("alice")
	alice2 := NewAccount("alice")

	// Same name should produce same account
	assert.Equal(t, alice1.PublicKey, alice2.PublicKey)
	assert.Equal(t, alice1.PrivateKey, alice2.PrivateKey)

	bob := NewAccount("bob")
	assert.NotEqual(t, alice1.PublicKey, bob.PublicKey)
	assert.Contains(t, bob.String(), "bob(")
}

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	assert.Equal(t, DefaultTime, c.Now())

	c.Advance(90 * time.Second)
	assert.Equal(t, uint64(DefaultTime.Unix())+90, c.Unix())
	c.Advance(1500 * time.Millisecond)
	assert.Equal(t, uint64(DefaultTime.Unix())+91, c.Unix())

	at := time.Date(2030, 6, 1, 0, 0, 0, 0, time.UTC)
	c.Set(at)
	assert.Equal(t, at, c.Now())
}

func TestCreatePool(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")

	pool := env.CreatePool(alice, 1_000_000, 4_000_000)

	r0, r1 := env.Reserves(pool)
	assert.Equal(t, uint64(1_000_000), r0)
	assert.Equal(t, uint64(4_000_000), r1)

	// isqrt(1e6 * 4e6) = 2e6, of which 100 is never minted.
	assert.Equal(t, uint64(2_000_000), env.PoolState(pool).LPSupply)
	assert.Equal(t, uint64(1_999_900), env.LPBalance(alice, pool))
	assert.Zero(t, env.TokenBalance(alice, pool.Mint0))
}

func TestDonateGrowsReserves(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	pool := env.CreatePool(alice, 1_000_000, 1_000_000)

	before := env.PoolState(pool).LPSupply
	env.Donate(pool, 100_000, 50_000)

	r0, r1 := env.Reserves(pool)
	assert.Equal(t, uint64(1_100_000), r0)
	assert.Equal(t, uint64(1_050_000), r1)
	assert.Equal(t, before, env.PoolState(pool).LPSupply)
}

func TestSnapshotDetectsChange(t *testing.T) {
	env := NewTestEnv(t)
	alice := NewAccount("alice")
	mint := env.NewMint()

	before := env.Snapshot()
	env.Fund(alice, mint, 10)
	after := env.Snapshot()
	require.NotEqual(t, len(before), len(after))
	assert.Equal(t, uint64(10), env.TokenBalance(alice, mint))
}
