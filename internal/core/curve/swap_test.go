package curve

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTradingFeeRoundsUp(t *testing.T) {
	assert.Equal(t, uint64(25), TradingFee(10_000, 2500))
	assert.Equal(t, uint64(1), TradingFee(1, 2500))
	assert.Equal(t, uint64(0), TradingFee(0, 2500))
	assert.Equal(t, uint64(0), TradingFee(10_000, 0))
}

func TestSplitFeeRoundsDown(t *testing.T) {
	assert.Equal(t, uint64(3), SplitFee(25, 120_000))
	assert.Equal(t, uint64(0), SplitFee(1, 120_000))
}

func TestSwapBaseInput(t *testing.T) {
	out, ok := SwapBaseInput(1000, 1_000_000, 1_000_000)
	require.True(t, ok)
	assert.Equal(t, uint64(999), out)

	// product never decreases
	out, ok = SwapBaseInput(500_000, 1_000_000, 1_000_000)
	require.True(t, ok)
	assert.Equal(t, uint64(333_333), out)
	assert.GreaterOrEqual(t, (1_000_000+500_000)*(1_000_000-out), uint64(1_000_000*1_000_000))

	_, ok = SwapBaseInput(0, 0, 10)
	assert.False(t, ok)
}
