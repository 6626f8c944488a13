// Package escrow implements the custody accounts locked LP shares are held in.
//
// A vault address is derived from (owner, lp mint, lock index) under the lock
// program id, so anyone can recompute it. Every vault is owned by a single
// program-derived authority; only a Custodian built from the same program id
// can sign for it.
package escrow

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"github.com/LeJamon/goLPLockd/internal/core/token"
	"github.com/LeJamon/goLPLockd/internal/core/tx"
)

// Seeds
const (
	VaultSeed     = "lock_lp_vault"
	AuthoritySeed = "lock_lp_auth_seed"
)

var ErrVaultMismatch = errors.New("escrow vault does not belong to the lock")

// VaultAddress derives the escrow vault of lock index for (owner, lpMint).
func VaultAddress(programID, owner, lpMint solana.PublicKey, index uint64) (solana.PublicKey, error) {
	idx := make([]byte, 8)
	binary.LittleEndian.PutUint64(idx, index)
	addr, _, err := solana.FindProgramAddress([][]byte{
		[]byte(VaultSeed),
		owner[:],
		lpMint[:],
		idx,
	}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive vault: %w", err)
	}
	return addr, nil
}

// AuthorityAddress derives the custodian authority of programID.
func AuthorityAddress(programID solana.PublicKey) (solana.PublicKey, error) {
	addr, _, err := solana.FindProgramAddress([][]byte{[]byte(AuthoritySeed)}, programID)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive authority: %w", err)
	}
	return addr, nil
}

// Custodian is the only holder of the vault authority.
// The engine builds one per operation; owners never receive one.
type Custodian struct {
	programID solana.PublicKey
	authority solana.PublicKey
}

// NewCustodian derives the authority for programID.
func NewCustodian(programID solana.PublicKey) (*Custodian, error) {
	auth, err := AuthorityAddress(programID)
	if err != nil {
		return nil, err
	}
	return &Custodian{programID: programID, authority: auth}, nil
}

// Authority returns the address every vault is owned by.
func (c *Custodian) Authority() solana.PublicKey {
	return c.authority
}

// Sign extends signers with the vault authority.
func (c *Custodian) Sign(signers tx.Signers) tx.Signers {
	return signers.With(c.authority)
}

// Vault derives the vault of a lock.
func (c *Custodian) Vault(owner, lpMint solana.PublicKey, index uint64) (solana.PublicKey, error) {
	return VaultAddress(c.programID, owner, lpMint, index)
}

// OpenVault creates the empty vault of a lock, owned by the authority.
func (c *Custodian) OpenVault(view tx.LedgerView, owner, lpMint solana.PublicKey, index uint64) (solana.PublicKey, error) {
	vault, err := c.Vault(owner, lpMint, index)
	if err != nil {
		return solana.PublicKey{}, err
	}
	if err := token.CreateAccount(view, vault, lpMint, c.authority); err != nil {
		return solana.PublicKey{}, err
	}
	return vault, nil
}

// Deposit moves amount from an owner account into the vault. The owner signs.
func (c *Custodian) Deposit(view tx.LedgerView, from, vault solana.PublicKey, amount uint64, owner tx.Signers) error {
	if err := c.checkVault(view, vault); err != nil {
		return err
	}
	return token.Transfer(view, from, vault, amount, owner)
}

// Withdraw moves amount out of the vault. The authority is added to signers.
func (c *Custodian) Withdraw(view tx.LedgerView, vault, to solana.PublicKey, amount uint64, signers tx.Signers) error {
	if err := c.checkVault(view, vault); err != nil {
		return err
	}
	return token.Transfer(view, vault, to, amount, c.Sign(signers))
}

func (c *Custodian) checkVault(view tx.LedgerView, vault solana.PublicKey) error {
	acct, err := token.GetAccount(view, vault)
	if err != nil {
		return err
	}
	if !acct.Owner.Equals(c.authority) {
		return fmt.Errorf("%w: %s is owned by %s", ErrVaultMismatch, vault, acct.Owner)
	}
	return nil
}
