package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// QuoteConfig holds configuration for a one-off price quote.
type QuoteConfig struct {
	SettlementReserve uint64
	TokenReserve      uint64
	Amount            uint64
	Direction         string
	LogLevel          string
	Engine            EngineConfig
}

// LoadQuote merges config file, environment variables, and flags into QuoteConfig.
func LoadQuote(cfgFile string, flags *pflag.FlagSet) (QuoteConfig, error) {
	v, err := newViper(cfgFile, flags, engineDefaults(map[string]interface{}{
		"direction": "settlement",
	}))
	if err != nil {
		return QuoteConfig{}, err
	}

	engine, err := loadEngine(v)
	if err != nil {
		return QuoteConfig{}, err
	}

	direction, err := ParseDirection(v.GetString("direction"))
	if err != nil {
		return QuoteConfig{}, err
	}

	return QuoteConfig{
		SettlementReserve: v.GetUint64("settlement-reserve"),
		TokenReserve:      v.GetUint64("token-reserve"),
		Amount:            v.GetUint64("amount"),
		Direction:         direction,
		LogLevel:          v.GetString("log-level"),
		Engine:            engine,
	}, nil
}

// ParseDirection maps the input side of a swap to a swap direction.
func ParseDirection(input string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "settlement", model.DirectionSettlementToToken:
		return model.DirectionSettlementToToken, nil
	case "token", model.DirectionTokenToSettlement:
		return model.DirectionTokenToSettlement, nil
	default:
		return "", fmt.Errorf("invalid direction %q, want settlement or token", input)
	}
}
