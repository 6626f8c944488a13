package curve

import (
	"github.com/holiman/uint256"
)

// FeeRateDenominator is the denominator every fee rate is expressed against.
const FeeRateDenominator uint64 = 1_000_000

// TradingFee returns ceil(amount * rate / FeeRateDenominator).
func TradingFee(amount, rate uint64) uint64 {
	return mulDivCeil(amount, rate, FeeRateDenominator)
}

// SplitFee returns floor(tradeFee * rate / FeeRateDenominator): the share of a
// trade fee set aside for the protocol or the fund.
func SplitFee(tradeFee, rate uint64) uint64 {
	num := new(uint256.Int).Mul(uint256.NewInt(tradeFee), uint256.NewInt(rate))
	return num.Div(num, uint256.NewInt(FeeRateDenominator)).Uint64()
}

// SwapBaseInput returns the constant-product output for an input that has
// already had its fee removed:
//
//	out = reserveOut * amountIn / (reserveIn + amountIn)
//
// It reports false if the denominator overflows or is zero.
func SwapBaseInput(amountIn, reserveIn, reserveOut uint64) (uint64, bool) {
	den := new(uint256.Int).AddUint64(uint256.NewInt(reserveIn), amountIn)
	if den.IsZero() {
		return 0, false
	}
	num := new(uint256.Int).Mul(uint256.NewInt(reserveOut), uint256.NewInt(amountIn))
	return num.Div(num, den).Uint64(), true
}

func mulDivCeil(a, b, d uint64) uint64 {
	num := new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
	den := uint256.NewInt(d)
	q, r := new(uint256.Int).DivMod(num, den, new(uint256.Int))
	if !r.IsZero() {
		q.AddUint64(q, 1)
	}
	return q.Uint64()
}
