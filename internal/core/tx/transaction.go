package tx

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Common errors
var (
	ErrUnknownTransactionType = errors.New("unknown transaction type")
	ErrMissingAccount         = errors.New("missing source account")
)

// Type identifies a transaction kind.
type Type uint16

const (
	TypeLockCreate      Type = 1
	TypeLockCollectFees Type = 2
	TypeLockRelease     Type = 3

	TypePoolCreate  Type = 20
	TypePoolDeposit Type = 21
	TypePoolSwap    Type = 22
)

var typeNames = map[Type]string{
	TypeLockCreate:      "LockCreate",
	TypeLockCollectFees: "LockCollectFees",
	TypeLockRelease:     "LockRelease",
	TypePoolCreate:      "PoolCreate",
	TypePoolDeposit:     "PoolDeposit",
	TypePoolSwap:        "PoolSwap",
}

func (t Type) String() string {
	if n, ok := typeNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Type(%d)", uint16(t))
}

// TypeFromName returns the transaction type for a name.
func TypeFromName(name string) (Type, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Transaction is the interface that all transaction types must implement
type Transaction interface {
	// TxType returns the transaction type
	TxType() Type

	// GetCommon returns the common transaction fields
	GetCommon() *Common

	// Validate checks the transaction without looking at ledger state.
	// Failures should be *ResultError values carrying a tem or tec code.
	Validate() error
}

// Appliable is implemented by transaction types that can apply themselves to ledger state.
type Appliable interface {
	Apply(ctx *ApplyContext) Result
}

// Common contains fields common to all transaction types
type Common struct {
	// Account is the submitting owner. It is the only signer the engine
	// grants to the transaction.
	Account solana.PublicKey `json:"account" codec:"account"`

	TransactionType string `json:"transaction_type" codec:"transaction_type"`

	// Sequence is assigned by the host and makes otherwise identical
	// submissions hash differently.
	Sequence uint64 `json:"sequence,omitempty" codec:"sequence"`
}

// BaseTx is embedded by every transaction type.
type BaseTx struct {
	Common
}

// NewBaseTx creates the common part of a transaction.
func NewBaseTx(t Type, account solana.PublicKey) *BaseTx {
	return &BaseTx{Common: Common{Account: account, TransactionType: t.String()}}
}

// GetCommon returns the common fields.
func (b *BaseTx) GetCommon() *Common {
	return &b.Common
}

// Validate checks the common fields.
func (b *BaseTx) Validate() error {
	if b.Account.IsZero() {
		return &ResultError{Code: TemBAD_SRC_ACCOUNT, Detail: ErrMissingAccount.Error()}
	}
	if _, ok := TypeFromName(b.TransactionType); !ok {
		return Errorf(TemINVALID, "unknown transaction type %q", b.TransactionType)
	}
	return nil
}

var (
	registryMu sync.RWMutex
	registry   = map[Type]func() Transaction{}
)

// Register makes a transaction type constructible by NewFromType.
// It is called from the init function of each transaction package.
func Register(t Type, factory func() Transaction) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[t] = factory
}

// NewFromType creates an empty transaction of the given type
func NewFromType(t Type) (Transaction, error) {
	registryMu.RLock()
	factory, ok := registry[t]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTransactionType, t)
	}
	return factory(), nil
}
