package relationaldb

import (
	"context"
	"errors"
	"fmt"
)

// Configuration errors
var (
	ErrMissingHost           = errors.New("database host is required")
	ErrMissingDatabase       = errors.New("database name is required")
	ErrMissingUsername       = errors.New("database username is required")
	ErrInvalidPort           = errors.New("invalid database port")
	ErrInvalidDriver         = errors.New("invalid database driver")
	ErrInvalidMaxOpenConns   = errors.New("max open connections must be >= 0")
	ErrMaxIdleExceedsMaxOpen = errors.New("max idle connections cannot exceed max open connections")
	ErrInvalidTimeout        = errors.New("timeout must be positive")
	ErrInvalidRetry          = errors.New("retry settings must be >= 0")
)

// Journal errors
var (
	ErrDatabaseClosed      = errors.New("journal database is closed")
	ErrTransactionClosed   = errors.New("journal transaction already finished")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrDuplicateEntry      = errors.New("duplicate entry")
)

// Kind says which layer a DatabaseError came from.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindConfiguration
	KindConnection
	KindTransaction
	KindData
	KindQuery
	KindSchema
)

var kindNames = [...]string{"unknown", "configuration", "connection", "transaction", "data", "query", "schema"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", k)
}

// DatabaseError is a journal failure tagged with the operation that hit it.
type DatabaseError struct {
	Kind   Kind
	Op     string
	Detail string
	Err    error
}

func (e *DatabaseError) Error() string {
	msg := e.Kind.String() + " error in " + e.Op
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DatabaseError) Unwrap() error { return e.Err }

func newError(kind Kind, op, detail string, err error) *DatabaseError {
	return &DatabaseError{Kind: kind, Op: op, Detail: detail, Err: err}
}

func NewConfigurationError(op, detail string, err error) *DatabaseError {
	return newError(KindConfiguration, op, detail, err)
}

func NewConnectionError(op, detail string, err error) *DatabaseError {
	return newError(KindConnection, op, detail, err)
}

func NewTransactionError(op, detail string, err error) *DatabaseError {
	return newError(KindTransaction, op, detail, err)
}

func NewDataError(op, detail string, err error) *DatabaseError {
	return newError(KindData, op, detail, err)
}

func NewQueryError(op, detail string, err error) *DatabaseError {
	return newError(KindQuery, op, detail, err)
}

func NewSchemaError(op, detail string, err error) *DatabaseError {
	return newError(KindSchema, op, detail, err)
}

// IsRetryable reports whether a journal write that failed with err may
// succeed on another attempt. Only connection and transaction failures
// qualify, and never once the caller's context is done.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var dbErr *DatabaseError
	if !errors.As(err, &dbErr) {
		return false
	}
	return dbErr.Kind == KindConnection || dbErr.Kind == KindTransaction
}

// WrapError tags err with op unless it already is a DatabaseError.
func WrapError(err error, op string) error {
	var dbErr *DatabaseError
	if err == nil || errors.As(err, &dbErr) {
		return err
	}
	return newError(KindUnknown, op, "", err)
}
