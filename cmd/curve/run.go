package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/chain"
	"github.com/CasuinoOfficial/bonding-curve/internal/config"
	"github.com/CasuinoOfficial/bonding-curve/internal/replay"
	"github.com/CasuinoOfficial/bonding-curve/internal/storage"
	"github.com/CasuinoOfficial/bonding-curve/internal/storage/postgres"
	"github.com/CasuinoOfficial/bonding-curve/internal/tokenmeta"
)

func runReplay(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadRun(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if cfg.In == "" {
		return fmt.Errorf("input path is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}
	if cfg.Errors == "" {
		return fmt.Errorf("errors path is required")
	}

	params, err := cfg.Engine.Params()
	if err != nil {
		return fmt.Errorf("engine params: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputFile, err := os.Open(cfg.In)
	if err != nil {
		return fmt.Errorf("open input: %w", err)
	}
	defer inputFile.Close()

	errWriter, err := newJSONLWriter(cfg.Errors, true)
	if err != nil {
		return err
	}
	defer errWriter.Close()

	sinks := storage.Multi{storage.NewJsonlStorage(cfg.Out)}
	var snapshots replay.SnapshotSink
	if cfg.PGDSN != "" {
		store, err := postgres.NewStore(ctx, cfg.PGDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer store.Close()
		if err := store.EnsureSchema(ctx); err != nil {
			return err
		}
		pgSink := &postgres.EventSink{Ctx: ctx, Store: store}
		sinks = append(sinks, pgSink)
		snapshots = pgSink
	}

	var resolver tokenmeta.Resolver
	if cfg.RPCURL != "" {
		chainClient, err := chain.NewClient(ctx, cfg.RPCURL)
		if err != nil {
			return fmt.Errorf("connect rpc: %w", err)
		}
		defer chainClient.Close()
		resolver = tokenmeta.NewChainResolver(chainClient, cfg.MaxRetries, cfg.RetryBackoff, logger)
	}

	runner := replay.NewRunner(replay.RunConfig{
		Params:            params,
		BatchSize:         cfg.BatchSize,
		CheckpointPath:    cfg.Checkpoint,
		CheckpointEnabled: cfg.CheckpointEnabled,
	}, resolver, sinks, errWriter, snapshots, logger)

	logger.Info("replay start",
		zap.String("in", cfg.In),
		zap.String("out", cfg.Out),
		zap.String("errors", cfg.Errors),
		zap.Int("batch_size", cfg.BatchSize),
		zap.Bool("checkpoint_enabled", cfg.CheckpointEnabled),
		zap.String("checkpoint", cfg.Checkpoint),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
		zap.Bool("rpc_metadata", cfg.RPCURL != ""),
	)

	summary, err := runner.Run(ctx, inputFile)
	if err != nil {
		return err
	}

	logger.Info("replay complete",
		zap.Int("total", summary.Total),
		zap.Int("applied", summary.Applied),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped),
		zap.Uint64("last_seq", summary.LastSeq),
	)
	return nil
}
