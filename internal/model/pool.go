package model

// Pool is a point-in-time copy of a pool's state for persistence.
type Pool struct {
	ID                string `json:"id"`
	Token             string `json:"token"`
	Creator           string `json:"creator"`
	SettlementReserve uint64 `json:"settlement_reserve,string"`
	TokenReserve      uint64 `json:"token_reserve,string"`
	TradingEnabled    bool   `json:"trading_enabled"`
}

// Vault is a point-in-time copy of the fee vault.
type Vault struct {
	SettlementFeeBalance uint64 `json:"settlement_fee_balance,string"`
	CreationFee          uint64 `json:"creation_fee,string"`
}
