package stats

import (
	"math/big"
)

const ratioScale = 18

func formatTokenAmount(value *big.Int, decimals uint8) string {
	if value == nil {
		return "0"
	}
	if decimals == 0 {
		return value.String()
	}
	sign := value.Sign()
	abs := new(big.Int).Abs(value)
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
	rat := new(big.Rat).SetFrac(abs, denom)
	text := rat.FloatString(int(decimals))
	if sign < 0 {
		return "-" + text
	}
	return text
}

// spotPrice is the marginal settlement price of one whole token, including
// the virtual settlement offset. It is nil for a drained pool.
func spotPrice(settlementReserve, tokenReserve, offset uint64, settlementDecimals, tokenDecimals uint8) *string {
	if tokenReserve == 0 {
		return nil
	}
	num := new(big.Int).SetUint64(settlementReserve)
	num.Add(num, new(big.Int).SetUint64(offset))
	num.Mul(num, pow10(tokenDecimals))

	den := new(big.Int).SetUint64(tokenReserve)
	den.Mul(den, pow10(settlementDecimals))

	val := new(big.Rat).SetFrac(num, den).FloatString(ratioScale)
	return &val
}

func pow10(decimals uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(decimals)), nil)
}

func formatUint(value uint64, decimals uint8) string {
	return formatTokenAmount(new(big.Int).SetUint64(value), decimals)
}
