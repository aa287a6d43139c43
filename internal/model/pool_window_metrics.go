package model

import "time"

// PoolWindowMetrics stores aggregated trading metrics for a pool window.
type PoolWindowMetrics struct {
	PoolID            string
	Token             string
	WindowSizeSecs    int64
	WindowStart       time.Time
	WindowEnd         time.Time
	SwapCount         uint64
	BuyCount          uint64
	SellCount         uint64
	SettlementVolume  string
	TokenVolume       string
	SettlementFees    string
	SettlementReserve string
	TokenReserve      string
	ClosePrice        *string
}
