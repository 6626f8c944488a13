package entry

import (
	"fmt"
)

// Type represents a ledger entry type
type Type uint16

// All known ledger entry types
const (
	// Lock bookkeeping
	TypeRegistry Type = 0x0063 // Position registry per (owner, LP mint)
	TypeLock     Type = 0x006c // Lock record per (owner, LP mint, index)

	// Token primitives
	TypeMint         Type = 0x006d // Token mint
	TypeTokenAccount Type = 0x0074 // Token account (balances, escrow vaults)

	// External AMM
	TypePool Type = 0x0050 // Constant-product pool state
)

// String returns the string representation of the Type
func (t Type) String() string {
	switch t {
	case TypeRegistry:
		return "Registry"
	case TypeLock:
		return "Lock"
	case TypeMint:
		return "Mint"
	case TypeTokenAccount:
		return "TokenAccount"
	case TypePool:
		return "Pool"
	default:
		return fmt.Sprintf("Unknown(%#x)", uint16(t))
	}
}

// Entry defines the interface for all ledger entries
type Entry interface {
	Type() Type
	Validate() error
}
