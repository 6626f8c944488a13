// Package token implements the fungible token primitives the lock ledger
// moves value with: mints, accounts, transfers, minting and burning.
//
// Authority is modelled by signer sets. Moving tokens out of an account
// requires the account owner among the signers; minting requires the mint
// authority.
package token

import (
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/keylet"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
	"github.com/LeJamon/goLPLockd/internal/core/tx/sle"
)

var (
	ErrAccountNotFound   = fmt.Errorf("token account %w", tx.ErrEntryNotFound)
	ErrMintNotFound      = fmt.Errorf("mint %w", tx.ErrEntryNotFound)
	ErrAccountExists     = errors.New("token account already exists")
	ErrMintExists        = errors.New("mint already exists")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrMissingSignature  = errors.New("owner signature missing")
	ErrMintMismatch      = errors.New("mint mismatch")
	ErrOverflow          = errors.New("amount overflow")
)

// Associated returns the associated token account address of owner for mint.
func Associated(owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive associated account: %w", err)
	}
	return addr, nil
}

// GetMint loads a mint.
func GetMint(view tx.LedgerView, mint solana.PublicKey) (*sle.MintEntry, error) {
	m := &sle.MintEntry{}
	found, err := tx.ReadEntry(view, keylet.Mint(mint), m)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrMintNotFound, mint)
	}
	return m, nil
}

// CreateMint registers a new mint with zero supply.
func CreateMint(view tx.LedgerView, mint, authority solana.PublicKey, decimals uint8) error {
	k := keylet.Mint(mint)
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrMintExists, mint)
	}
	return tx.InsertEntry(view, k, &sle.MintEntry{
		Address:   mint,
		Authority: authority,
		Decimals:  decimals,
	})
}

// GetAccount loads a token account.
func GetAccount(view tx.LedgerView, addr solana.PublicKey) (*sle.TokenAccount, error) {
	a := &sle.TokenAccount{}
	found, err := tx.ReadEntry(view, keylet.TokenAccount(addr), a)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s", ErrAccountNotFound, addr)
	}
	return a, nil
}

// Balance returns the amount held by a token account.
func Balance(view tx.LedgerView, addr solana.PublicKey) (uint64, error) {
	a, err := GetAccount(view, addr)
	if err != nil {
		return 0, err
	}
	return a.Amount, nil
}

// CreateAccount opens an empty token account for mint, owned by owner.
func CreateAccount(view tx.LedgerView, addr, mint, owner solana.PublicKey) error {
	if _, err := GetMint(view, mint); err != nil {
		return err
	}
	k := keylet.TokenAccount(addr)
	exists, err := view.Exists(k)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrAccountExists, addr)
	}
	return tx.InsertEntry(view, k, &sle.TokenAccount{
		Address: addr,
		Mint:    mint,
		Owner:   owner,
	})
}

// EnsureAssociated returns owner's associated account for mint, creating it
// if absent. An existing account must hold the same mint and owner.
func EnsureAssociated(view tx.LedgerView, owner, mint solana.PublicKey) (solana.PublicKey, error) {
	addr, err := Associated(owner, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	a, err := GetAccount(view, addr)
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return addr, CreateAccount(view, addr, mint, owner)
	case err != nil:
		return solana.PublicKey{}, err
	}
	if !a.Mint.Equals(mint) || !a.Owner.Equals(owner) {
		return solana.PublicKey{}, fmt.Errorf("%w: associated account %s", ErrMintMismatch, addr)
	}
	return addr, nil
}

// Transfer moves amount from one account to another of the same mint.
// The source owner must be among the signers.
func Transfer(view tx.LedgerView, from, to solana.PublicKey, amount uint64, signers tx.Signers) error {
	src, err := GetAccount(view, from)
	if err != nil {
		return err
	}
	dst, err := GetAccount(view, to)
	if err != nil {
		return err
	}
	if !signers.Has(src.Owner) {
		return fmt.Errorf("%w: transfer from %s", ErrMissingSignature, from)
	}
	if !src.Mint.Equals(dst.Mint) {
		return fmt.Errorf("%w: %s -> %s", ErrMintMismatch, src.Mint, dst.Mint)
	}
	if src.Amount < amount {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, src.Amount, amount)
	}
	if from.Equals(to) {
		return nil
	}
	if dst.Amount+amount < dst.Amount {
		return ErrOverflow
	}

	src.Amount -= amount
	dst.Amount += amount
	if err := tx.UpdateEntry(view, keylet.TokenAccount(from), src); err != nil {
		return err
	}
	return tx.UpdateEntry(view, keylet.TokenAccount(to), dst)
}

// MintTo creates amount new tokens in dest. The mint authority must sign.
func MintTo(view tx.LedgerView, mint, dest solana.PublicKey, amount uint64, signers tx.Signers) error {
	m, err := GetMint(view, mint)
	if err != nil {
		return err
	}
	if !signers.Has(m.Authority) {
		return fmt.Errorf("%w: mint authority of %s", ErrMissingSignature, mint)
	}
	a, err := GetAccount(view, dest)
	if err != nil {
		return err
	}
	if !a.Mint.Equals(mint) {
		return fmt.Errorf("%w: %s holds %s", ErrMintMismatch, dest, a.Mint)
	}
	if m.Supply+amount < m.Supply || a.Amount+amount < a.Amount {
		return ErrOverflow
	}

	m.Supply += amount
	a.Amount += amount
	if err := tx.UpdateEntry(view, keylet.Mint(mint), m); err != nil {
		return err
	}
	return tx.UpdateEntry(view, keylet.TokenAccount(dest), a)
}

// Burn destroys amount tokens held in account. The account owner must sign.
func Burn(view tx.LedgerView, account solana.PublicKey, amount uint64, signers tx.Signers) error {
	a, err := GetAccount(view, account)
	if err != nil {
		return err
	}
	if !signers.Has(a.Owner) {
		return fmt.Errorf("%w: burn from %s", ErrMissingSignature, account)
	}
	if a.Amount < amount {
		return fmt.Errorf("%w: have %d, burn %d", ErrInsufficientFunds, a.Amount, amount)
	}
	m, err := GetMint(view, a.Mint)
	if err != nil {
		return err
	}
	if m.Supply < amount {
		return fmt.Errorf("%w: supply %d below burn %d", ErrInsufficientFunds, m.Supply, amount)
	}

	a.Amount -= amount
	m.Supply -= amount
	if err := tx.UpdateEntry(view, keylet.TokenAccount(account), a); err != nil {
		return err
	}
	return tx.UpdateEntry(view, keylet.Mint(a.Mint), m)
}

// ResultOf maps a token error onto a transaction result. Errors that are not
// token errors map to tefINTERNAL.
func ResultOf(err error) tx.Result {
	switch {
	case err == nil:
		return tx.TesSUCCESS
	case errors.Is(err, ErrInsufficientFunds):
		return tx.TecUNFUNDED
	case errors.Is(err, ErrMissingSignature):
		return tx.TecNO_PERMISSION
	case errors.Is(err, ErrMintMismatch):
		return tx.TecPOOL_MISMATCH
	case errors.Is(err, ErrAccountExists), errors.Is(err, ErrMintExists), errors.Is(err, tx.ErrEntryExists):
		return tx.TecDUPLICATE
	case errors.Is(err, tx.ErrEntryNotFound):
		return tx.TecNO_ENTRY
	case errors.Is(err, ErrOverflow):
		return tx.TecOVERFLOW
	default:
		return tx.TefINTERNAL
	}
}
