package sle

import (
	"errors"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
)

// MintEntry describes a fungible token.
type MintEntry struct {
	Address   solana.PublicKey `codec:"address"`
	Authority solana.PublicKey `codec:"authority"`
	Supply    uint64           `codec:"supply"`
	Decimals  uint8            `codec:"decimals"`
}

func (m *MintEntry) Type() entry.Type { return entry.TypeMint }

func (m *MintEntry) Validate() error {
	if m.Address.IsZero() {
		return errors.New("mint address is required")
	}
	return nil
}

// ParseMint parses a MintEntry from serialized data.
func ParseMint(data []byte) (*MintEntry, error) {
	m := &MintEntry{}
	if err := Parse(data, m); err != nil {
		return nil, err
	}
	return m, nil
}

// TokenAccount holds a balance of one mint on behalf of Owner.
// Only a signer holding Owner may move tokens out of it.
type TokenAccount struct {
	Address solana.PublicKey `codec:"address"`
	Mint    solana.PublicKey `codec:"mint"`
	Owner   solana.PublicKey `codec:"owner"`
	Amount  uint64           `codec:"amount"`
}

func (a *TokenAccount) Type() entry.Type { return entry.TypeTokenAccount }

func (a *TokenAccount) Validate() error {
	if a.Address.IsZero() {
		return errors.New("token account address is required")
	}
	if a.Mint.IsZero() {
		return errors.New("token account mint is required")
	}
	if a.Owner.IsZero() {
		return errors.New("token account owner is required")
	}
	return nil
}

// ParseTokenAccount parses a TokenAccount from serialized data.
func ParseTokenAccount(data []byte) (*TokenAccount, error) {
	a := &TokenAccount{}
	if err := Parse(data, a); err != nil {
		return nil, err
	}
	return a, nil
}
