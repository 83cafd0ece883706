// Package wide provides overflow-checked 64-bit arithmetic and multiply-then-divide
// helpers that keep their intermediates in 256-bit integers, so a product of two
// 64-bit operands never truncates before the division.
package wide

import (
	"errors"
	"math/bits"

	"github.com/holiman/uint256"
)

var (
	ErrOverflow     = errors.New("number overflow")
	ErrDivideByZero = errors.New("division by zero")
)

func Add64(a, b uint64) (uint64, bool) {
	v, carry := bits.Add64(a, b, 0)
	return v, carry == 0
}

func Sub64(a, b uint64) (uint64, bool) {
	v, borrow := bits.Sub64(a, b, 0)
	return v, borrow == 0
}

func Mul64(a, b uint64) (uint64, bool) {
	hi, lo := bits.Mul64(a, b)
	return lo, hi == 0
}

// Mul returns the exact product of a and b.
func Mul(a, b uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(a), uint256.NewInt(b))
}

// MulDiv returns floor(a*b/c).
func MulDiv(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivideByZero
	}
	q := Mul(a, b)
	q.Div(q, uint256.NewInt(c))
	return Uint64(q)
}

// MulDivCeil returns ceil(a*b/c).
func MulDivCeil(a, b, c uint64) (uint64, error) {
	if c == 0 {
		return 0, ErrDivideByZero
	}
	q := Mul(a, b)
	q.Add(q, uint256.NewInt(c-1))
	q.Div(q, uint256.NewInt(c))
	return Uint64(q)
}

// Uint64 narrows x, failing when the value does not fit.
func Uint64(x *uint256.Int) (uint64, error) {
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// CmpRatio compares an/ad with bn/bd without rounding. Denominators must be non-zero.
func CmpRatio(an, ad, bn, bd uint64) int {
	return Mul(an, bd).Cmp(Mul(bn, ad))
}

// Msb returns the index of the most significant set bit, or -1 for zero.
func Msb(x uint64) int {
	return bits.Len64(x) - 1
}
