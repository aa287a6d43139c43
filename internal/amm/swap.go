package amm

import (
	"fmt"

	"github.com/CasuinoOfficial/bonding-curve/internal/curve"
)

// SwapResult is the outcome of pricing one swap against a reserve pair.
type SwapResult struct {
	// AmountIn is the full amount the trader sends.
	AmountIn uint64
	// AmountOut is what the trader receives after fees.
	AmountOut uint64
	// Fee is routed to the fee vault in the settlement asset.
	Fee uint64

	SettlementReserve uint64
	TokenReserve      uint64
}

// SettlementForToken prices a settlement-in swap. The fee comes off the input
// before pricing.
func SettlementForToken(p Params, settlementReserve, tokenReserve, settlementIn uint64) (SwapResult, error) {
	if settlementIn == 0 {
		return SwapResult{}, fmt.Errorf("settlement in: %w", ErrIncorrectAmount)
	}
	if settlementReserve == 0 || tokenReserve == 0 {
		return SwapResult{}, ErrReservesEmpty
	}

	fee, net := curve.Fee(settlementIn, SwapFeeNumerator, SwapFeeDenominator)
	out := curve.PriceOffset(net, settlementReserve, p.BootstrapOffset, tokenReserve, 0)
	if out >= tokenReserve {
		return SwapResult{}, fmt.Errorf("token payout %d against reserve %d: %w", out, tokenReserve, ErrReservesEmpty)
	}

	nextSettlement, ok := curve.AddChecked(settlementReserve, net)
	if !ok {
		return SwapResult{}, fmt.Errorf("settlement reserve %d + %d: %w", settlementReserve, net, ErrPoolFull)
	}

	return SwapResult{
		AmountIn:          settlementIn,
		AmountOut:         out,
		Fee:               fee,
		SettlementReserve: nextSettlement,
		TokenReserve:      tokenReserve - out,
	}, nil
}

// TokenForSettlement prices a token-in swap. The whole input is priced and the
// fee comes off the settlement output.
func TokenForSettlement(p Params, settlementReserve, tokenReserve, tokenIn uint64) (SwapResult, error) {
	if tokenIn == 0 {
		return SwapResult{}, fmt.Errorf("token in: %w", ErrIncorrectAmount)
	}
	if settlementReserve == 0 || tokenReserve == 0 {
		return SwapResult{}, ErrReservesEmpty
	}

	gross := curve.PriceOffset(tokenIn, tokenReserve, 0, settlementReserve, p.BootstrapOffset)
	if gross > settlementReserve {
		return SwapResult{}, fmt.Errorf("settlement payout %d against reserve %d: %w", gross, settlementReserve, ErrReservesEmpty)
	}

	nextToken, ok := curve.AddChecked(tokenReserve, tokenIn)
	if !ok {
		return SwapResult{}, fmt.Errorf("token reserve %d + %d: %w", tokenReserve, tokenIn, ErrPoolFull)
	}

	fee, net := curve.Fee(gross, SwapFeeNumerator, SwapFeeDenominator)
	return SwapResult{
		AmountIn:          tokenIn,
		AmountOut:         net,
		Fee:               fee,
		SettlementReserve: settlementReserve - gross,
		TokenReserve:      nextToken,
	}, nil
}

// QuoteSettlementForToken estimates the tokens bought with amount, without fees.
func QuoteSettlementForToken(p Params, settlementReserve, tokenReserve, amount uint64) uint64 {
	return curve.PriceOffset(amount, settlementReserve, p.BootstrapOffset, tokenReserve, 0)
}

// QuoteTokenForSettlement estimates the settlement received for amount tokens, without fees.
func QuoteTokenForSettlement(p Params, settlementReserve, tokenReserve, amount uint64) uint64 {
	return curve.PriceOffset(amount, tokenReserve, 0, settlementReserve, p.BootstrapOffset)
}
