package tx

import (
	"errors"
	"fmt"
)

// Result represents a transaction result code
type Result int

// Transaction result codes.
// These are organized by category: tes, tec, tef, tem.
// Nothing but tesSUCCESS mutates state.
const (
	// tesSUCCESS (0)
	TesSUCCESS Result = 0

	// tec codes (100-199): the transaction was well formed but the ledger
	// state did not allow it
	TecUNFUNDED            Result = 129
	TecFROZEN              Result = 137
	TecNO_PERMISSION       Result = 139
	TecNO_ENTRY            Result = 140
	TecDUPLICATE           Result = 149
	TecNOT_MATURE          Result = 152
	TecAMM_BALANCE         Result = 163
	TecAMM_FAILED          Result = 164
	TecPOOL_MISMATCH       Result = 174
	TecLOCK_PERMANENT      Result = 175
	TecALREADY_RELEASED    Result = 176
	TecOVERFLOW            Result = 177
	TecUNDERFLOW           Result = 178
	TecEMPTY_SUPPLY        Result = 179
	TecZERO_LIQUIDITY      Result = 180
	TecZERO_TRADING_TOKENS Result = 181
	TecNO_FEES             Result = 182
	TecZERO_FEE_AMOUNT     Result = 183

	// tef codes (-199 to -100): the engine could not process the transaction
	TefFAILURE    Result = -199
	TefBAD_LEDGER Result = -195
	TefINTERNAL   Result = -192

	// tem codes (-299 to -200): malformed transaction
	TemMALFORMED         Result = -299
	TemBAD_AMOUNT        Result = -298
	TemBAD_FEE           Result = -295
	TemBAD_SRC_ACCOUNT   Result = -281
	TemINVALID           Result = -277
	TemAMOUNT_TOO_SMALL  Result = -251
	TemDURATION_TOO_LONG Result = -250
)

var resultNames = map[Result]string{
	TesSUCCESS:             "tesSUCCESS",
	TecUNFUNDED:            "tecUNFUNDED",
	TecFROZEN:              "tecFROZEN",
	TecNO_PERMISSION:       "tecNO_PERMISSION",
	TecNO_ENTRY:            "tecNO_ENTRY",
	TecDUPLICATE:           "tecDUPLICATE",
	TecNOT_MATURE:          "tecNOT_MATURE",
	TecAMM_BALANCE:         "tecAMM_BALANCE",
	TecAMM_FAILED:          "tecAMM_FAILED",
	TecPOOL_MISMATCH:       "tecPOOL_MISMATCH",
	TecLOCK_PERMANENT:      "tecLOCK_PERMANENT",
	TecALREADY_RELEASED:    "tecALREADY_RELEASED",
	TecOVERFLOW:            "tecOVERFLOW",
	TecUNDERFLOW:           "tecUNDERFLOW",
	TecEMPTY_SUPPLY:        "tecEMPTY_SUPPLY",
	TecZERO_LIQUIDITY:      "tecZERO_LIQUIDITY",
	TecZERO_TRADING_TOKENS: "tecZERO_TRADING_TOKENS",
	TecNO_FEES:             "tecNO_FEES",
	TecZERO_FEE_AMOUNT:     "tecZERO_FEE_AMOUNT",
	TefFAILURE:             "tefFAILURE",
	TefBAD_LEDGER:          "tefBAD_LEDGER",
	TefINTERNAL:            "tefINTERNAL",
	TemMALFORMED:           "temMALFORMED",
	TemBAD_AMOUNT:          "temBAD_AMOUNT",
	TemBAD_FEE:             "temBAD_FEE",
	TemBAD_SRC_ACCOUNT:     "temBAD_SRC_ACCOUNT",
	TemINVALID:             "temINVALID",
	TemAMOUNT_TOO_SMALL:    "temAMOUNT_TOO_SMALL",
	TemDURATION_TOO_LONG:   "temDURATION_TOO_LONG",
}

// String returns the string representation of the result code
func (r Result) String() string {
	if name, ok := resultNames[r]; ok {
		return name
	}
	return fmt.Sprintf("result(%d)", int(r))
}

// ResultFromString looks a result up by its name.
func ResultFromString(name string) (Result, bool) {
	for r, n := range resultNames {
		if n == name {
			return r, true
		}
	}
	return 0, false
}

// IsSuccess returns true if the result indicates success
func (r Result) IsSuccess() bool {
	return r == TesSUCCESS
}

// IsTec returns true if this is a tec code
func (r Result) IsTec() bool {
	return r >= 100 && r < 200
}

// IsTef returns true if this is a tef (failure) code
func (r Result) IsTef() bool {
	return r >= -199 && r <= -100
}

// IsTem returns true if this is a tem (malformed) code
func (r Result) IsTem() bool {
	return r >= -299 && r <= -200
}

// IsApplied returns true if the transaction changed the ledger.
func (r Result) IsApplied() bool {
	return r.IsSuccess()
}

// Message returns a human-readable message for the result
func (r Result) Message() string {
	switch r {
	case TesSUCCESS:
		return "The transaction was applied."
	case TemAMOUNT_TOO_SMALL:
		return "Lock amount must exceed the minimum."
	case TemDURATION_TOO_LONG:
		return "Lock duration exceeds the maximum."
	case TecPOOL_MISMATCH:
		return "Pool identity does not match the lock or its vaults."
	case TecNO_PERMISSION:
		return "Only the lock owner may operate on the lock."
	case TecUNFUNDED:
		return "Insufficient token balance."
	case TecNO_ENTRY:
		return "No such ledger entry."
	case TecLOCK_PERMANENT:
		return "Lock is permanent and cannot be released."
	case TecALREADY_RELEASED:
		return "Lock was already released."
	case TecNOT_MATURE:
		return "Unlock time has not been reached."
	case TecOVERFLOW:
		return "Arithmetic overflow."
	case TecUNDERFLOW:
		return "Arithmetic underflow."
	case TecEMPTY_SUPPLY:
		return "Pool has no LP supply."
	case TecZERO_LIQUIDITY:
		return "Position has zero liquidity."
	case TecZERO_TRADING_TOKENS:
		return "Shares represent zero underlying tokens."
	case TecNO_FEES:
		return "No fees accrued since the last collection."
	case TecZERO_FEE_AMOUNT:
		return "Fee amount rounds to zero."
	case TecAMM_FAILED:
		return "The AMM withdraw call failed."
	case TecAMM_BALANCE:
		return "AMM balances do not satisfy the request."
	case TecFROZEN:
		return "The pool has this operation disabled."
	case TecDUPLICATE:
		return "The entry already exists."
	case TefINTERNAL:
		return "Internal error."
	case TefBAD_LEDGER:
		return "Ledger state is corrupt."
	default:
		return r.String()
	}
}

// Category classifies a result for callers deciding what to do next.
type Category int

const (
	CategoryNone Category = iota
	// CategoryValidation: fix the request and resubmit.
	CategoryValidation
	// CategoryState: the lock is in a state that forbids the operation.
	CategoryState
	// CategoryArithmetic: counters or pool state make the math impossible.
	CategoryArithmetic
	// CategoryZeroResult: valid request, nothing to do.
	CategoryZeroResult
	// CategoryExternal: the delegated AMM call failed.
	CategoryExternal
	// CategoryInternal: storage or encoding failure.
	CategoryInternal
)

// Category sentinels usable with errors.Is.
var (
	ErrValidation = errors.New("validation error")
	ErrState      = errors.New("state error")
	ErrArithmetic = errors.New("arithmetic error")
	ErrZeroResult = errors.New("zero result")
	ErrExternal   = errors.New("external call failed")
	ErrInternal   = errors.New("internal error")
)

func (c Category) String() string {
	if err := c.Sentinel(); err != nil {
		return err.Error()
	}
	return "none"
}

// Sentinel returns the category's error sentinel, nil for CategoryNone.
func (c Category) Sentinel() error {
	switch c {
	case CategoryValidation:
		return ErrValidation
	case CategoryState:
		return ErrState
	case CategoryArithmetic:
		return ErrArithmetic
	case CategoryZeroResult:
		return ErrZeroResult
	case CategoryExternal:
		return ErrExternal
	case CategoryInternal:
		return ErrInternal
	default:
		return nil
	}
}

// Category returns the category a result belongs to.
func (r Result) Category() Category {
	switch r {
	case TesSUCCESS:
		return CategoryNone
	case TecPOOL_MISMATCH, TecNO_PERMISSION, TecUNFUNDED, TecNO_ENTRY, TecDUPLICATE, TecFROZEN, TecAMM_BALANCE:
		return CategoryValidation
	case TecLOCK_PERMANENT, TecALREADY_RELEASED, TecNOT_MATURE:
		return CategoryState
	case TecOVERFLOW, TecUNDERFLOW, TecEMPTY_SUPPLY, TecZERO_LIQUIDITY, TecZERO_TRADING_TOKENS:
		return CategoryArithmetic
	case TecNO_FEES, TecZERO_FEE_AMOUNT:
		return CategoryZeroResult
	case TecAMM_FAILED:
		return CategoryExternal
	}
	switch {
	case r.IsTem():
		return CategoryValidation
	default:
		return CategoryInternal
	}
}

// ResultError is a non-success result carried as an error.
type ResultError struct {
	Code   Result
	Detail string
}

// Errorf builds a ResultError with a formatted detail message.
func Errorf(code Result, format string, args ...any) *ResultError {
	return &ResultError{Code: code, Detail: fmt.Sprintf(format, args...)}
}

func (e *ResultError) Error() string {
	if e.Detail == "" {
		return e.Code.String() + ": " + e.Code.Message()
	}
	return e.Code.String() + ": " + e.Detail
}

// Is matches category sentinels and other ResultErrors with the same code.
func (e *ResultError) Is(target error) bool {
	if other, ok := target.(*ResultError); ok {
		return other.Code == e.Code
	}
	sentinel := e.Code.Category().Sentinel()
	return sentinel != nil && target == sentinel
}

// Err returns nil for tesSUCCESS and a *ResultError otherwise.
func (r Result) Err() error {
	if r.IsSuccess() {
		return nil
	}
	return &ResultError{Code: r}
}

// ResultOf extracts the result code carried by err.
// Errors that carry no code map to fallback.
func ResultOf(err error, fallback Result) Result {
	if err == nil {
		return TesSUCCESS
	}
	var re *ResultError
	if errors.As(err, &re) {
		return re.Code
	}
	return fallback
}
