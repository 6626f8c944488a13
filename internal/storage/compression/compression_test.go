package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	assert.True(t, IsAvailable(LZ4))
	assert.True(t, IsAvailable(None))
	assert.True(t, IsAvailable(""))
	assert.False(t, IsAvailable("zstd"))
	assert.Equal(t, []string{"lz4", "none"}, Available())

	c, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, Default, c.Name())

	_, err = Get("zstd")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestLZ4RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"short", []byte("abc")},
		{"repetitive", bytes.Repeat([]byte("lock-record"), 200)},
		{"random-ish", []byte("\x01\x9f\x33\x07\xee\x42\x10\xaa\x5c\x81")},
	}

	c, err := Get("lz4")
	require.NoError(t, err)

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			enc, err := c.Compress(tc.data)
			require.NoError(t, err)

			dec, err := c.Decompress(enc)
			require.NoError(t, err)
			assert.Equal(t, len(tc.data), len(dec))
			assert.True(t, bytes.Equal(tc.data, dec))
		})
	}
}

func TestLZ4ShrinksRepetitiveData(t *testing.T) {
	data := bytes.Repeat([]byte{0}, 4096)
	enc, err := LZ4Compressor{}.Compress(data)
	require.NoError(t, err)
	assert.Less(t, len(enc), len(data))
	assert.Equal(t, frameLZ4, enc[0])
}

func TestLZ4RejectsCorruptInput(t *testing.T) {
	c := LZ4Compressor{}
	for _, data := range [][]byte{nil, {0}, {7, 3, 1, 2, 3}, {frameRaw, 5, 1}} {
		_, err := c.Decompress(data)
		assert.ErrorIs(t, err, ErrCorrupt)
	}
}
