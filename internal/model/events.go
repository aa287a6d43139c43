package model

// Event names emitted by the engine.
const (
	EventPoolCreated = "pool_created"
	EventSwap        = "swap"
	EventMigrate     = "migrate"
)

// Swap directions recorded on SwapEventData.
const (
	DirectionSettlementToToken = "settlement_to_token"
	DirectionTokenToSettlement = "token_to_settlement"
)

// PoolCreatedEventData is the payload of a pool creation.
type PoolCreatedEventData struct {
	Creator           string `json:"creator"`
	SettlementReserve uint64 `json:"settlement_reserve,string"`
	TokenReserve      uint64 `json:"token_reserve,string"`
	CreationFee       uint64 `json:"creation_fee,string"`
	Seeded            bool   `json:"seeded"`
}

// SwapEventData is the payload of a swap in either direction.
type SwapEventData struct {
	Sender            string `json:"sender"`
	Direction         string `json:"direction"`
	SettlementAmount  uint64 `json:"settlement_amount,string"`
	TokenAmount       uint64 `json:"token_amount,string"`
	Fee               uint64 `json:"fee,string"`
	SettlementReserve uint64 `json:"settlement_reserve,string"`
	TokenReserve      uint64 `json:"token_reserve,string"`
}

// MigrateEventData is the payload of a full liquidity removal.
type MigrateEventData struct {
	SettlementAmount uint64 `json:"settlement_amount,string"`
	TokenAmount      uint64 `json:"token_amount,string"`
}
