package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "curve",
		Short:        "Bonding-curve pool engine",
		SilenceUsage: true,
	}

	root.PersistentFlags().String("config", "", "config file path")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Replay an operations file through the engine",
		RunE:  runReplay,
	}

	runCmd.Flags().String("in", "", "input operations JSONL")
	runCmd.Flags().String("out", "./data/events.jsonl", "output events JSONL")
	runCmd.Flags().String("errors", "./data/op_errors.jsonl", "aborted operations JSONL")
	runCmd.Flags().String("checkpoint", "./data/checkpoint.json", "checkpoint file path")
	runCmd.Flags().Bool("checkpoint-enabled", true, "enable checkpointing")
	runCmd.Flags().Int("batch-size", 500, "operations per batch")
	runCmd.Flags().String("pg-dsn", "", "optional Postgres DSN for events and pool state")
	runCmd.Flags().String("rpc", "", "optional RPC URL for token metadata lookups")
	runCmd.Flags().Int("max-retries", 5, "maximum retry attempts for RPC calls")
	runCmd.Flags().Duration("retry-backoff", 500*time.Millisecond, "initial retry backoff")
	addEngineFlags(runCmd)

	root.AddCommand(runCmd)

	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price a swap against given reserves",
		RunE:  runQuote,
	}

	quoteCmd.Flags().Uint64("settlement-reserve", 0, "real settlement reserve")
	quoteCmd.Flags().Uint64("token-reserve", 0, "token reserve")
	quoteCmd.Flags().Uint64("amount", 0, "amount in")
	quoteCmd.Flags().String("direction", "settlement", "input side (settlement, token)")
	addEngineFlags(quoteCmd)

	root.AddCommand(quoteCmd)

	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Aggregate events into pool window metrics",
		RunE:  runStats,
	}

	statsCmd.Flags().String("in", "", "input events JSONL")
	statsCmd.Flags().String("window", "5m", "aggregation window (e.g. 1m, 5m, 1h)")
	statsCmd.Flags().String("pg-dsn", "", "Postgres DSN")
	statsCmd.Flags().Int("batch-size", 1000, "batch size for DB writes")
	statsCmd.Flags().String("state-file", "", "optional local state file for progress tracking")
	statsCmd.Flags().String("recompute-from", "", "recompute from timestamp (unix seconds or RFC3339)")
	statsCmd.Flags().Uint("settlement-decimals", 9, "settlement asset decimals")
	addEngineFlags(statsCmd)

	root.AddCommand(statsCmd)

	return root
}

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().Uint64("default-supply", amm.DefaultSupply, "exact token amount a pool is created with")
	cmd.Flags().Uint64("creation-fee", amm.DefaultCreationFee, "initial pool creation fee")
	cmd.Flags().Uint64("bootstrap-offset", amm.DefaultBootstrapOffset, "virtual settlement reserve used for pricing")
	cmd.Flags().Uint("token-decimals", uint(amm.DefaultTokenDecimals), "required token decimals")
	cmd.Flags().String("log-level", "info", "log level (debug, info, warn, error)")
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
