package compression

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/pierrec/lz4"
)

// Frame markers written as the first byte of every LZ4Compressor output.
const (
	frameRaw byte = 0
	frameLZ4 byte = 1
)

// maxDecodedSize bounds the size prefix so corrupt data cannot force a huge allocation.
const maxDecodedSize = 64 << 20

var ErrCorrupt = errors.New("corrupt compressed data")

// NoCompressor stores entries as they are.
type NoCompressor struct{}

func (NoCompressor) Name() string { return None }

func (NoCompressor) Compress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

func (NoCompressor) Decompress(data []byte) ([]byte, error) {
	return append([]byte(nil), data...), nil
}

// LZ4Compressor compresses with LZ4 blocks.
//
// Output is a marker byte, the uvarint length of the original data and the
// payload. Data LZ4 cannot shrink is stored raw behind frameRaw.
type LZ4Compressor struct{}

func (LZ4Compressor) Name() string { return LZ4 }

// Compress compresses data using LZ4.
func (LZ4Compressor) Compress(data []byte) ([]byte, error) {
	header := make([]byte, 1+binary.MaxVarintLen64)
	n := 1 + binary.PutUvarint(header[1:], uint64(len(data)))

	out := make([]byte, n+lz4.CompressBlockBound(len(data)))
	size, err := lz4.CompressBlock(data, out[n:], nil)
	if err != nil {
		return nil, fmt.Errorf("lz4 compression failed: %w", err)
	}

	// CompressBlock reports 0 for incompressible input
	if size == 0 || size >= len(data) {
		header[0] = frameRaw
		return append(header[:n:n], data...), nil
	}

	header[0] = frameLZ4
	copy(out, header[:n])
	return out[:n+size], nil
}

// Decompress reverses Compress.
func (LZ4Compressor) Decompress(data []byte) ([]byte, error) {
	if len(data) < 2 {
		return nil, ErrCorrupt
	}
	size, n := binary.Uvarint(data[1:])
	if n <= 0 || size > maxDecodedSize {
		return nil, ErrCorrupt
	}
	payload := data[1+n:]

	switch data[0] {
	case frameRaw:
		if uint64(len(payload)) != size {
			return nil, ErrCorrupt
		}
		return append([]byte(nil), payload...), nil
	case frameLZ4:
		out := make([]byte, size)
		got, err := lz4.UncompressBlock(payload, out)
		if err != nil {
			return nil, fmt.Errorf("lz4 decompression failed: %w", err)
		}
		if uint64(got) != size {
			return nil, ErrCorrupt
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: unknown frame %d", ErrCorrupt, data[0])
	}
}
