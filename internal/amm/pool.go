package amm

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Pool is the reserve pair for one token. Only the Engine mutates it.
type Pool struct {
	id                common.Hash
	token             common.Address
	creator           common.Address
	settlementReserve uint64
	tokenReserve      uint64
	tradingEnabled    bool
}

func (p *Pool) ID() common.Hash { return p.id }
func (p *Pool) Token() common.Address { return p.token }
func (p *Pool) Creator() common.Address { return p.creator }
func (p *Pool) SettlementReserve() uint64 { return p.settlementReserve }
func (p *Pool) TokenReserve() uint64 { return p.tokenReserve }
func (p *Pool) TradingEnabled() bool { return p.tradingEnabled }

// Snapshot copies the pool into its persisted form.
func (p *Pool) Snapshot() model.Pool {
	return model.Pool{
		ID:                p.id.Hex(),
		Token:             p.token.Hex(),
		Creator:           p.creator.Hex(),
		SettlementReserve: p.settlementReserve,
		TokenReserve:      p.tokenReserve,
		TradingEnabled:    p.tradingEnabled,
	}
}

// poolID derives a pool identifier from its token and the engine's creation counter.
func poolID(token common.Address, nonce uint64) common.Hash {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], nonce)
	return crypto.Keccak256Hash(token.Bytes(), buf[:])
}
