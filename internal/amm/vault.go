package amm

import (
	"fmt"

	"github.com/CasuinoOfficial/bonding-curve/internal/curve"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// FeeVault accumulates protocol fees in the settlement asset.
type FeeVault struct {
	balance     uint64
	creationFee uint64
}

func (v *FeeVault) Balance() uint64 { return v.balance }
func (v *FeeVault) CreationFee() uint64 { return v.creationFee }

func (v *FeeVault) Snapshot() model.Vault {
	return model.Vault{
		SettlementFeeBalance: v.balance,
		CreationFee:          v.creationFee,
	}
}

// afterCredit returns the balance the vault would hold after crediting amount.
func (v *FeeVault) afterCredit(amount uint64) (uint64, error) {
	next, ok := curve.AddChecked(v.balance, amount)
	if !ok {
		return 0, fmt.Errorf("fee vault balance %d + %d: %w", v.balance, amount, ErrPoolFull)
	}
	return next, nil
}
