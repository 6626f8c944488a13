// Package testing provides test infrastructure for lock engine tests.
//
// # Overview
//
// The testing package provides:
//   - TestEnv: a node over an in-memory database with a manual clock
//   - Account: deterministic owners derived from a name
//   - Pool helpers: create pools, fund owners and grow reserves
//   - Assertions: result codes and registry consistency
//
// # Basic Usage
//
//	func TestLock(t *testing.T) {
//	    env := testing.NewTestEnv(t)
//
//	    alice := testing.NewAccount("alice")
//	    pool := env.CreatePool(alice, 1_000_000, 1_000_000)
//
//	    result := env.Submit(lock.NewLockCreate(alice.PublicKey, pool.ID, pool.LPMint, 1000, 3600))
//	    testing.RequireTxSuccess(t, result)
//	}
//
// # Time
//
// The clock starts at DefaultTime and only moves when AdvanceTime or SetTime
// is called, so unlock times are exact.
package testing
