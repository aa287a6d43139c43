// Package curve holds the pricing function behind every pool.
package curve

import (
	"math"

	"github.com/holiman/uint256"
)

// MaxPoolValue is the exclusive ceiling for any reserve or fee balance.
const MaxPoolValue uint64 = math.MaxUint64

// Price returns floor(amountIn * reserveOut / (reserveIn + amountIn)). It is
// the pricing function every pool uses; PriceWide must agree with it wherever
// both reserves fit in 64 bits.
//
// The product and the sum are computed in 256 bits so neither can wrap. The
// result never exceeds reserveOut and therefore always fits in 64 bits. A zero
// denominator yields zero.
func Price(amountIn, reserveIn, reserveOut uint64) uint64 {
	if amountIn == 0 {
		return 0
	}

	num := new(uint256.Int).Mul(uint256.NewInt(amountIn), uint256.NewInt(reserveOut))
	den := new(uint256.Int).Add(uint256.NewInt(reserveIn), uint256.NewInt(amountIn))
	if den.IsZero() {
		return 0
	}
	return num.Div(num, den).Uint64()
}

// VirtualReserve adds the bootstrap offset to a settlement reserve. The offset
// only ever feeds pricing and is never credited to a real reserve.
func VirtualReserve(settlementReserve, offset uint64) *uint256.Int {
	return new(uint256.Int).Add(uint256.NewInt(settlementReserve), uint256.NewInt(offset))
}

// PriceWide is Price with a reserve that may already exceed 64 bits, which
// happens once the bootstrap offset is added to a large settlement reserve.
func PriceWide(amountIn uint64, reserveIn, reserveOut *uint256.Int) uint64 {
	if amountIn == 0 {
		return 0
	}

	in := uint256.NewInt(amountIn)
	num := new(uint256.Int).Mul(in, reserveOut)
	den := new(uint256.Int).Add(reserveIn, in)
	if den.IsZero() {
		return 0
	}
	out := num.Div(num, den)
	if !out.IsUint64() {
		// saturate; callers reject payouts above the real reserve
		return math.MaxUint64
	}
	return out.Uint64()
}

// PriceOffset prices against reserves that each carry a virtual offset. It
// takes the 64-bit Price path whenever both virtual reserves fit.
func PriceOffset(amountIn, reserveIn, offsetIn, reserveOut, offsetOut uint64) uint64 {
	in := VirtualReserve(reserveIn, offsetIn)
	out := VirtualReserve(reserveOut, offsetOut)
	if in.IsUint64() && out.IsUint64() {
		return Price(amountIn, in.Uint64(), out.Uint64())
	}
	return PriceWide(amountIn, in, out)
}

// Fee returns floor(amount * numerator / denominator) and the remainder.
func Fee(amount, numerator, denominator uint64) (fee, net uint64) {
	if denominator == 0 {
		return 0, amount
	}
	f := new(uint256.Int).Mul(uint256.NewInt(amount), uint256.NewInt(numerator))
	f.Div(f, uint256.NewInt(denominator))
	fee = f.Uint64()
	return fee, amount - fee
}

// AddChecked returns a+b, or false when the sum reaches MaxPoolValue.
func AddChecked(a, b uint64) (uint64, bool) {
	sum := a + b
	if sum < a || sum >= MaxPoolValue {
		return 0, false
	}
	return sum, true
}
