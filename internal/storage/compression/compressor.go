// Package compression holds the codecs stored ledger entries pass through.
package compression

import (
	"errors"
	"fmt"
	"slices"
)

// Codec names.
const (
	None = "none"
	LZ4  = "lz4"

	Default = LZ4
)

var ErrUnknownCodec = errors.New("unknown compressor")

// Compressor turns an encoded ledger entry into its stored form and back.
type Compressor interface {
	Name() string
	Compress(data []byte) ([]byte, error)
	Decompress(data []byte) ([]byte, error)
}

// The codecs are stateless, so one value of each is shared.
var codecs = map[string]Compressor{
	None: NoCompressor{},
	LZ4:  LZ4Compressor{},
}

// Get returns the codec called name. The empty name selects Default.
func Get(name string) (Compressor, error) {
	if name == "" {
		name = Default
	}
	c, ok := codecs[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownCodec, name)
	}
	return c, nil
}

// Available returns the codec names, sorted.
func Available() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsAvailable reports whether Get accepts name.
func IsAvailable(name string) bool {
	_, err := Get(name)
	return err == nil
}
