package keylet

import (
	"encoding/binary"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
	crypto "github.com/LeJamon/goLPLockd/internal/crypto/common"
)

// Space identifiers for keylet generation.
// Each ledger entry type hashes under its own namespace so keys never collide
// across types even when the hashed fields are identical.
const (
	spaceRegistry     uint16 = 'c' // Position registry (owner, lp mint)
	spaceLock         uint16 = 'l' // Lock record (owner, lp mint, index)
	spacePool         uint16 = 'P' // AMM pool state
	spaceTokenAccount uint16 = 't' // Token account
	spaceMint         uint16 = 'm' // Token mint
)

// Keylet represents an addressable location in the ledger state.
// It combines a type identifier with a 256-bit key.
type Keylet struct {
	Type entry.Type
	Key  [32]byte
}

// indexHash computes a keylet key by hashing the space and provided data.
func indexHash(space uint16, data ...[]byte) [32]byte {
	// Prepend the space identifier as a 2-byte big-endian value
	spaceBytes := make([]byte, 2)
	binary.BigEndian.PutUint16(spaceBytes, space)

	inputs := make([][]byte, 0, len(data)+1)
	inputs = append(inputs, spaceBytes)
	inputs = append(inputs, data...)

	return crypto.Sha512Half(inputs...)
}

// Registry returns the keylet for the position registry of an owner in one pool.
func Registry(owner, lpMint solana.PublicKey) Keylet {
	return Keylet{
		Type: entry.TypeRegistry,
		Key:  indexHash(spaceRegistry, owner[:], lpMint[:]),
	}
}

// Lock returns the keylet for a lock record.
// The index is the 1-based lock number taken from the owner's registry.
func Lock(owner, lpMint solana.PublicKey, index uint64) Keylet {
	idx := make([]byte, 8)
	binary.BigEndian.PutUint64(idx, index)

	return Keylet{
		Type: entry.TypeLock,
		Key:  indexHash(spaceLock, owner[:], lpMint[:], idx),
	}
}

// Pool returns the keylet for an AMM pool state entry.
func Pool(poolID solana.PublicKey) Keylet {
	return Keylet{
		Type: entry.TypePool,
		Key:  indexHash(spacePool, poolID[:]),
	}
}

// TokenAccount returns the keylet for a token account.
func TokenAccount(address solana.PublicKey) Keylet {
	return Keylet{
		Type: entry.TypeTokenAccount,
		Key:  indexHash(spaceTokenAccount, address[:]),
	}
}

// Mint returns the keylet for a token mint.
func Mint(mint solana.PublicKey) Keylet {
	return Keylet{
		Type: entry.TypeMint,
		Key:  indexHash(spaceMint, mint[:]),
	}
}
