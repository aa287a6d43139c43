package stats

import (
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Accumulator holds aggregate values for a pool window.
type Accumulator struct {
	PoolID            string
	Token             string
	WindowStart       uint64
	WindowEnd         uint64
	SwapCount         uint64
	BuyCount          uint64
	SellCount         uint64
	SettlementVolume  *big.Int
	TokenVolume       *big.Int
	SettlementFees    *big.Int
	SettlementReserve uint64
	TokenReserve      uint64
	HasReserves       bool
	LastTS            uint64
	LastSeq           uint64
}

func NewAccumulator(record model.EventRecord, windowStart, windowEnd uint64) *Accumulator {
	return &Accumulator{
		PoolID:           record.PoolID,
		Token:            record.Token,
		WindowStart:      windowStart,
		WindowEnd:        windowEnd,
		SettlementVolume: big.NewInt(0),
		TokenVolume:      big.NewInt(0),
		SettlementFees:   big.NewInt(0),
		LastTS:           record.Timestamp,
		LastSeq:          record.Seq,
	}
}

// carryReserves starts a window from the closing reserves of the previous one.
func (a *Accumulator) carryReserves(prev *Accumulator) {
	if prev == nil || !prev.HasReserves {
		return
	}
	a.SettlementReserve = prev.SettlementReserve
	a.TokenReserve = prev.TokenReserve
	a.HasReserves = true
}

func (a *Accumulator) AddEvent(record model.EventRecord) error {
	switch record.EventName {
	case model.EventSwap:
		var swap model.SwapEventData
		if err := json.Unmarshal(record.Decoded, &swap); err != nil {
			return fmt.Errorf("decode swap: %w", err)
		}
		if err := a.applySwap(swap); err != nil {
			return err
		}
		a.setReserves(record, swap.SettlementReserve, swap.TokenReserve)
	case model.EventPoolCreated:
		var created model.PoolCreatedEventData
		if err := json.Unmarshal(record.Decoded, &created); err != nil {
			return fmt.Errorf("decode pool created: %w", err)
		}
		a.setReserves(record, created.SettlementReserve, created.TokenReserve)
	case model.EventMigrate:
		a.setReserves(record, 0, 0)
	}
	return nil
}

func (a *Accumulator) applySwap(swap model.SwapEventData) error {
	switch swap.Direction {
	case model.DirectionSettlementToToken:
		a.BuyCount++
	case model.DirectionTokenToSettlement:
		a.SellCount++
	default:
		return fmt.Errorf("unknown swap direction %q", swap.Direction)
	}
	a.SwapCount++
	a.SettlementVolume.Add(a.SettlementVolume, new(big.Int).SetUint64(swap.SettlementAmount))
	a.TokenVolume.Add(a.TokenVolume, new(big.Int).SetUint64(swap.TokenAmount))
	a.SettlementFees.Add(a.SettlementFees, new(big.Int).SetUint64(swap.Fee))
	return nil
}

// setReserves keeps the reserves of the latest event seen, ordered by seq.
func (a *Accumulator) setReserves(record model.EventRecord, settlement, token uint64) {
	if a.HasReserves && record.Seq < a.LastSeq {
		return
	}
	a.SettlementReserve = settlement
	a.TokenReserve = token
	a.HasReserves = true
	a.LastSeq = record.Seq
	if record.Timestamp > a.LastTS {
		a.LastTS = record.Timestamp
	}
}
