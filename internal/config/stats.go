package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
)

// StatsConfig holds configuration for window statistics.
type StatsConfig struct {
	Input              string
	Window             string
	PGDSN              string
	BatchSize          int
	StateFile          string
	RecomputeFrom      string
	SettlementDecimals uint8
	LogLevel           string
	Engine             EngineConfig
}

// LoadStats merges config file, environment variables, and flags into StatsConfig.
func LoadStats(cfgFile string, flags *pflag.FlagSet) (StatsConfig, error) {
	v, err := newViper(cfgFile, flags, engineDefaults(map[string]interface{}{
		"batch-size":          1000,
		"window":              "5m",
		"settlement-decimals": uint(9),
	}))
	if err != nil {
		return StatsConfig{}, err
	}

	engine, err := loadEngine(v)
	if err != nil {
		return StatsConfig{}, err
	}
	settlementDecimals := v.GetUint("settlement-decimals")
	if settlementDecimals > 255 {
		return StatsConfig{}, fmt.Errorf("settlement-decimals out of range: %d", settlementDecimals)
	}

	return StatsConfig{
		Input:              v.GetString("in"),
		Window:             v.GetString("window"),
		PGDSN:              v.GetString("pg-dsn"),
		BatchSize:          v.GetInt("batch-size"),
		StateFile:          v.GetString("state-file"),
		RecomputeFrom:      v.GetString("recompute-from"),
		SettlementDecimals: uint8(settlementDecimals),
		LogLevel:           v.GetString("log-level"),
		Engine:             engine,
	}, nil
}

// ParseTimestamp parses a timestamp value (unix seconds or RFC3339).
func ParseTimestamp(input string) (uint64, error) {
	if strings.TrimSpace(input) == "" {
		return 0, nil
	}

	if isNumeric(input) {
		val, err := strconv.ParseUint(input, 10, 64)
		if err != nil {
			return 0, err
		}
		return val, nil
	}

	tm, err := time.Parse(time.RFC3339, input)
	if err != nil {
		return 0, err
	}
	return uint64(tm.Unix()), nil
}

func isNumeric(input string) bool {
	for _, r := range input {
		if r < '0' || r > '9' {
			return false
		}
	}
	return input != ""
}
