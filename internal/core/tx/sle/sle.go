// Package sle defines the ledger entries stored by the lock ledger and their
// binary encoding.
//
// Every serialized entry starts with its two-byte big-endian entry type
// followed by a msgpack body. Parse refuses data whose type prefix does not
// match the destination entry.
package sle

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/ugorji/go/codec"

	"github.com/LeJamon/goLPLockd/internal/core/ledger/entry"
)

var (
	// ErrTruncated is returned for data shorter than the type prefix.
	ErrTruncated = errors.New("sle: truncated entry")

	// ErrTypeMismatch is returned when the stored type differs from the requested one.
	ErrTypeMismatch = errors.New("sle: entry type mismatch")
)

var handle = func() *codec.MsgpackHandle {
	h := &codec.MsgpackHandle{}
	h.WriteExt = true
	h.Canonical = true
	return h
}()

// Serialize encodes an entry with its type prefix.
func Serialize(e entry.Entry) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s entry: %w", e.Type(), err)
	}

	// NewEncoderBytes writes from the start of its buffer, so the body is
	// encoded on its own and appended to the prefix.
	var body []byte
	if err := codec.NewEncoderBytes(&body, handle).Encode(e); err != nil {
		return nil, fmt.Errorf("encode %s entry: %w", e.Type(), err)
	}
	buf := make([]byte, 2, 2+len(body))
	binary.BigEndian.PutUint16(buf, uint16(e.Type()))
	return append(buf, body...), nil
}

// EntryType returns the type stored in the prefix of serialized data.
func EntryType(data []byte) (entry.Type, error) {
	if len(data) < 2 {
		return 0, ErrTruncated
	}
	return entry.Type(binary.BigEndian.Uint16(data)), nil
}

// Parse decodes serialized data into e after checking the type prefix.
func Parse(data []byte, e entry.Entry) error {
	t, err := EntryType(data)
	if err != nil {
		return err
	}
	if t != e.Type() {
		return fmt.Errorf("%w: stored %s, want %s", ErrTypeMismatch, t, e.Type())
	}
	if err := codec.NewDecoderBytes(data[2:], handle).Decode(e); err != nil {
		return fmt.Errorf("decode %s entry: %w", t, err)
	}
	return nil
}
