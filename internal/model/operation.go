package model

// Operation kinds accepted by the replay runner.
const (
	OpCreate          = "create"
	OpCreateAndSeed   = "create_and_seed"
	OpAddLiquidity    = "add_liquidity"
	OpRemoveLiquidity = "remove_liquidity"
	OpSwapSettlement  = "swap_settlement"
	OpSwapToken       = "swap_token"
	OpSetTrading      = "set_trading"
	OpWithdrawFees    = "withdraw_fees"
	OpSetCreationFee  = "set_creation_fee"
)

// Operation is one line of an operations file. Timestamp is unix seconds; a
// zero Timestamp means the time the operation is applied.
type Operation struct {
	Seq              uint64 `json:"seq"`
	Op               string `json:"op"`
	Actor            string `json:"actor"`
	Token            string `json:"token,omitempty"`
	TokenAmount      uint64 `json:"token_amount,string,omitempty"`
	SettlementAmount uint64 `json:"settlement_amount,string,omitempty"`
	Enabled          bool   `json:"enabled,omitempty"`
	Timestamp        uint64 `json:"ts,omitempty"`
	// Admin controls whether the runner presents its capability. Nil means yes.
	Admin    *bool  `json:"admin,omitempty"`
	Decimals *uint8 `json:"decimals,omitempty"`
}

// PresentsAdmin reports whether the operation should carry the admin capability.
func (o Operation) PresentsAdmin() bool {
	return o.Admin == nil || *o.Admin
}
