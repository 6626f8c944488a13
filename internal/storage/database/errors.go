package database

import (
	"errors"
	"fmt"
)

// Errors shared by every backend.
var (
	ErrClosed      = errors.New("database is closed")
	ErrKeyNotFound = errors.New("key not found")

	// ErrBatchOperationFailed wraps a rejected batch. None of its
	// operations were written.
	ErrBatchOperationFailed = errors.New("batch operation failed")

	ErrUnknownBackend = errors.New("unknown database backend")
)

// CheckBatch rejects a batch holding an operation of unknown kind.
func CheckBatch(ops []Op) error {
	for i, op := range ops {
		if op.Kind != OpPut && op.Kind != OpDelete {
			return fmt.Errorf("%w: op %d has unknown kind %d", ErrBatchOperationFailed, i, op.Kind)
		}
	}
	return nil
}
