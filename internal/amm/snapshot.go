package amm

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CasuinoOfficial/bonding-curve/internal/curve"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Snapshot is the full persisted state of an engine.
type Snapshot struct {
	Vault   model.Vault  `json:"vault"`
	Pools   []model.Pool `json:"pools"`
	Created uint64       `json:"created"`
}

// Snapshot copies the engine state.
func (e *Engine) Snapshot() Snapshot {
	pools := e.Pools()
	out := Snapshot{
		Vault:   e.vault.Snapshot(),
		Pools:   make([]model.Pool, 0, len(pools)),
		Created: e.created,
	}
	for _, pool := range pools {
		out.Pools = append(out.Pools, pool.Snapshot())
	}
	return out
}

// Restore rebuilds an engine from a snapshot and mints a fresh AdminCap for
// the restoring host.
func Restore(params Params, snap Snapshot, notifier Notifier) (*Engine, *AdminCap, error) {
	e, admin, err := New(params, notifier)
	if err != nil {
		return nil, nil, err
	}
	if snap.Vault.SettlementFeeBalance >= curve.MaxPoolValue {
		return nil, nil, fmt.Errorf("restore vault: %w", ErrPoolFull)
	}
	if snap.Vault.CreationFee >= curve.MaxPoolValue-1 {
		return nil, nil, fmt.Errorf("restore creation fee %d: %w", snap.Vault.CreationFee, ErrIncorrectAmount)
	}
	e.vault.balance = snap.Vault.SettlementFeeBalance
	e.vault.creationFee = snap.Vault.CreationFee
	e.created = snap.Created

	for _, p := range snap.Pools {
		if !common.IsHexAddress(p.Token) {
			return nil, nil, fmt.Errorf("restore pool: invalid token %q", p.Token)
		}
		token := common.HexToAddress(p.Token)
		if _, ok := e.pools[token]; ok {
			return nil, nil, fmt.Errorf("restore pool %s: %w", p.Token, ErrPoolExists)
		}
		if p.SettlementReserve >= curve.MaxPoolValue || p.TokenReserve >= curve.MaxPoolValue {
			return nil, nil, fmt.Errorf("restore pool %s: %w", p.Token, ErrPoolFull)
		}
		e.pools[token] = &Pool{
			id:                common.HexToHash(p.ID),
			token:             token,
			creator:           common.HexToAddress(p.Creator),
			settlementReserve: p.SettlementReserve,
			tokenReserve:      p.TokenReserve,
			tradingEnabled:    p.TradingEnabled,
		}
	}
	if uint64(len(e.pools)) > e.created {
		e.created = uint64(len(e.pools))
	}
	return e, admin, nil
}
