package config

import (
	"testing"

	"github.com/spf13/pflag"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

func TestLoadRunDefaults(t *testing.T) {
	flags := pflag.NewFlagSet("run", pflag.ContinueOnError)
	flags.String("in", "", "")
	if err := flags.Parse([]string{"--in", "ops.jsonl"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadRun("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.In != "ops.jsonl" || cfg.BatchSize != 500 || !cfg.CheckpointEnabled {
		t.Fatalf("unexpected config: %+v", cfg)
	}
	params, err := cfg.Engine.Params()
	if err != nil {
		t.Fatalf("params: %v", err)
	}
	if params != amm.DefaultParams() {
		t.Fatalf("unexpected params: %+v", params)
	}
}

func TestLoadRunEnvOverrides(t *testing.T) {
	t.Setenv("CURVE_CREATION_FEE", "5")
	t.Setenv("CURVE_BATCH_SIZE", "7")

	cfg, err := LoadRun("", pflag.NewFlagSet("run", pflag.ContinueOnError))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.CreationFee != 5 || cfg.BatchSize != 7 {
		t.Fatalf("env not applied: %+v", cfg)
	}
}

func TestLoadQuote(t *testing.T) {
	flags := pflag.NewFlagSet("quote", pflag.ContinueOnError)
	flags.Uint64("settlement-reserve", 0, "")
	flags.Uint64("token-reserve", 0, "")
	flags.Uint64("amount", 0, "")
	flags.String("direction", "settlement", "")
	err := flags.Parse([]string{
		"--settlement-reserve", "1000000000",
		"--token-reserve", "1000000000000000000",
		"--amount", "42",
		"--direction", "token",
	})
	if err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := LoadQuote("", flags)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.SettlementReserve != 1_000_000_000 || cfg.TokenReserve != 1_000_000_000_000_000_000 || cfg.Amount != 42 {
		t.Fatalf("unexpected amounts: %+v", cfg)
	}
	if cfg.Direction != model.DirectionTokenToSettlement {
		t.Fatalf("unexpected direction: %s", cfg.Direction)
	}
}

func TestParseDirection(t *testing.T) {
	if _, err := ParseDirection("sideways"); err == nil {
		t.Fatalf("expected error")
	}
	dir, err := ParseDirection(" Settlement ")
	if err != nil || dir != model.DirectionSettlementToToken {
		t.Fatalf("unexpected direction %q err=%v", dir, err)
	}
}

func TestEngineConfigRejectsZeroSupply(t *testing.T) {
	if _, err := (EngineConfig{Supply: 0}).Params(); err == nil {
		t.Fatalf("expected error for zero supply")
	}
}

func TestParseTimestamp(t *testing.T) {
	ts, err := ParseTimestamp("1700000000")
	if err != nil || ts != 1_700_000_000 {
		t.Fatalf("unix: %d %v", ts, err)
	}
	ts, err = ParseTimestamp("2023-11-14T22:13:20Z")
	if err != nil || ts != 1_700_000_000 {
		t.Fatalf("rfc3339: %d %v", ts, err)
	}
	if _, err := ParseTimestamp("yesterday"); err == nil {
		t.Fatalf("expected error")
	}
}
