package testing

import (
	"crypto/ed25519"
	"crypto/sha512"

	"github.com/gagliardetto/solana-go"
)

// Account represents a test owner with a keypair.
type Account struct {
	// Name is a human-readable identifier for the account (used for debugging).
	Name string

	PrivateKey solana.PrivateKey
	PublicKey  solana.PublicKey
}

// NewAccount creates an account whose keypair is derived from name.
// Using the same name will always produce the same account.
func NewAccount(name string) *Account {
	seed := sha512.Sum512([]byte(name))
	priv := solana.PrivateKey(ed25519.NewKeyFromSeed(seed[:ed25519.SeedSize]))
	return &Account{
		Name:       name,
		PrivateKey: priv,
		PublicKey:  priv.PublicKey(),
	}
}

// Address returns the base58 public key.
func (a *Account) Address() string {
	return a.PublicKey.String()
}

func (a *Account) String() string {
	return a.Name + "(" + a.PublicKey.String() + ")"
}
