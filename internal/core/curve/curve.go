// Package curve converts LP share amounts into the underlying pool assets
// they represent and measures the liquidity of an asset pair.
//
// All arithmetic is integer arithmetic on 256-bit intermediates. Divisions
// truncate unless a caller explicitly asks for Ceiling.
package curve

import (
	"errors"

	"github.com/holiman/uint256"
)

var (
	// ErrZeroLiquidity is returned when a rebasing step would divide by zero liquidity.
	ErrZeroLiquidity = errors.New("curve: zero liquidity")

	// ErrOverflow is returned when a result does not fit in 64 bits.
	ErrOverflow = errors.New("curve: result overflows u64")
)

// RoundDirection selects how a share-to-asset division is rounded.
type RoundDirection int

const (
	// Floor truncates toward zero. The lock engine only ever uses Floor.
	Floor RoundDirection = iota
	// Ceiling rounds a non-zero quotient with a remainder up by one.
	Ceiling
)

func (d RoundDirection) String() string {
	if d == Ceiling {
		return "ceiling"
	}
	return "floor"
}

// TradingTokens is the pair of underlying asset amounts backing some LP shares.
// Amounts are kept wide until the caller converts them with Uint64.
type TradingTokens struct {
	Token0 uint256.Int
	Token1 uint256.Int
}

// Uint64 narrows both amounts, reporting false if either exceeds 64 bits.
func (t TradingTokens) Uint64() (amount0, amount1 uint64, ok bool) {
	if !t.Token0.IsUint64() || !t.Token1.IsUint64() {
		return 0, 0, false
	}
	return t.Token0.Uint64(), t.Token1.Uint64(), true
}

// SharesToUnderlying computes reserveX * shares / supply for both reserves.
// It reports false when supply is zero.
func SharesToUnderlying(shares, supply, reserve0, reserve1 uint64, dir RoundDirection) (TradingTokens, bool) {
	var out TradingTokens
	if supply == 0 {
		return out, false
	}

	s := uint256.NewInt(shares)
	d := uint256.NewInt(supply)

	scale(&out.Token0, s, d, reserve0, dir)
	scale(&out.Token1, s, d, reserve1, dir)
	return out, true
}

// scale sets z = shares * reserve / supply with the requested rounding.
// shares and reserve are both below 2^64, so the product cannot overflow 256 bits.
func scale(z, shares, supply *uint256.Int, reserve uint64, dir RoundDirection) {
	num := new(uint256.Int).Mul(shares, uint256.NewInt(reserve))
	z.Div(num, supply)
	if dir == Ceiling && !z.IsZero() {
		if !new(uint256.Int).Mod(num, supply).IsZero() {
			z.AddUint64(z, 1)
		}
	}
}

// LiquidityOf returns floor(sqrt(amount0 * amount1)), or 0 if either amount is 0.
// The square root of a product of two u64 values always fits in a u64.
func LiquidityOf(amount0, amount1 uint64) uint64 {
	if amount0 == 0 || amount1 == 0 {
		return 0
	}
	product := new(uint256.Int).Mul(uint256.NewInt(amount0), uint256.NewInt(amount1))
	return new(uint256.Int).Sqrt(product).Uint64()
}

// PrincipalShares returns floor(principalLiquidity * lockAmount / currentLiquidity):
// the number of shares that, at the current exchange rate, carry exactly the
// liquidity the lock started with.
func PrincipalShares(principalLiquidity, lockAmount, currentLiquidity uint64) (uint64, error) {
	if currentLiquidity == 0 {
		return 0, ErrZeroLiquidity
	}
	num := new(uint256.Int).Mul(uint256.NewInt(principalLiquidity), uint256.NewInt(lockAmount))
	q := num.Div(num, uint256.NewInt(currentLiquidity))
	if !q.IsUint64() {
		return 0, ErrOverflow
	}
	return q.Uint64(), nil
}
