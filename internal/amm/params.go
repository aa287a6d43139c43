package amm

import (
	"fmt"

	"github.com/CasuinoOfficial/bonding-curve/internal/curve"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

const (
	// DefaultSupply is the exact token amount a pool must be created with.
	DefaultSupply uint64 = 1_000_000_000_000_000_000
	// DefaultCreationFee is charged once per pool, in settlement base units.
	DefaultCreationFee uint64 = 1_000_000_000
	// DefaultBootstrapOffset is the virtual settlement reserve used for pricing.
	DefaultBootstrapOffset uint64 = 4_200_000_000_000
	// DefaultTokenDecimals is the fractional-unit convention tokens must follow.
	DefaultTokenDecimals uint8 = 9

	SwapFeeNumerator   uint64 = 1
	SwapFeeDenominator uint64 = 100

	// seedReserve is the opening settlement reserve of a seeded pool.
	seedReserve uint64 = 1
)

// Params fixes the economic constants of an engine.
type Params struct {
	Supply          uint64
	CreationFee     uint64
	BootstrapOffset uint64
	TokenDecimals   uint8
}

func DefaultParams() Params {
	return Params{
		Supply:          DefaultSupply,
		CreationFee:     DefaultCreationFee,
		BootstrapOffset: DefaultBootstrapOffset,
		TokenDecimals:   DefaultTokenDecimals,
	}
}

// Validate rejects parameters no pool could be created under.
func (p Params) Validate() error {
	if p.Supply == 0 || p.Supply >= curve.MaxPoolValue {
		return fmt.Errorf("supply must be in (0, %d)", curve.MaxPoolValue)
	}
	if p.CreationFee >= curve.MaxPoolValue-1 {
		return fmt.Errorf("creation fee too large: %d", p.CreationFee)
	}
	return nil
}

// ValidateTokenMeta checks a token's decimals against the expected convention.
func (p Params) ValidateTokenMeta(meta model.TokenMeta) error {
	if meta.Decimals != p.TokenDecimals {
		return fmt.Errorf("token %s has %d decimals, want %d: %w", meta.Address, meta.Decimals, p.TokenDecimals, ErrIncorrectDecimalMetadata)
	}
	return nil
}
