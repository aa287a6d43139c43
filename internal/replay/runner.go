// Package replay drives an engine from an operations log, checkpointing the
// engine state so a restarted run resumes where the last one stopped.
package replay

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/CasuinoOfficial/bonding-curve/internal/amm"
	"github.com/CasuinoOfficial/bonding-curve/internal/ledger"
	"github.com/CasuinoOfficial/bonding-curve/internal/model"
	"github.com/CasuinoOfficial/bonding-curve/internal/storage"
	"github.com/CasuinoOfficial/bonding-curve/internal/tokenmeta"
)

// OpErrorSink receives operations that aborted.
type OpErrorSink interface {
	PutOpErrors(errs []model.OpError) error
}

// SnapshotSink receives the engine state after every batch.
type SnapshotSink interface {
	PutSnapshot(snap amm.Snapshot) error
}

// RunConfig holds runtime settings for the replay.
type RunConfig struct {
	Params            amm.Params
	BatchSize         int
	CheckpointPath    string
	CheckpointEnabled bool
}

// Summary counts what a run did.
type Summary struct {
	Total   int
	Applied int
	Failed  int
	Skipped int
	LastSeq uint64
}

// Runner applies operations to an engine and writes the results out.
type Runner struct {
	cfg        RunConfig
	resolver   tokenmeta.Resolver
	storage    storage.Storage
	errors     OpErrorSink
	snapshots  SnapshotSink
	logger     *zap.Logger
	checkpoint *CheckpointStore
}

// NewRunner builds a Runner. A nil resolver accepts every token at the
// configured decimals; errors and snapshots may be nil.
func NewRunner(cfg RunConfig, resolver tokenmeta.Resolver, storageSink storage.Storage, errSink OpErrorSink, snapshots SnapshotSink, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if resolver == nil {
		resolver = tokenmeta.StaticResolver{Decimals: cfg.Params.TokenDecimals}
	}
	return &Runner{
		cfg:        cfg,
		resolver:   resolver,
		storage:    storageSink,
		errors:     errSink,
		snapshots:  snapshots,
		logger:     logger,
		checkpoint: NewCheckpointStore(cfg.CheckpointPath, cfg.CheckpointEnabled),
	}
}

// Run reads operations from in until EOF.
func (r *Runner) Run(ctx context.Context, in io.Reader) (Summary, error) {
	var summary Summary
	if r.storage == nil {
		return summary, fmt.Errorf("storage is nil")
	}
	if r.cfg.BatchSize <= 0 {
		return summary, fmt.Errorf("batch size must be greater than zero")
	}

	engine, admin, last, err := r.open()
	if err != nil {
		return summary, err
	}
	summary.LastSeq = last
	x := ledger.NewExecutor(engine, admin, r.logger)

	scanner := bufio.NewScanner(in)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 10*1024*1024)

	var opErrors []model.OpError
	pending := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		summary.Total++

		var op model.Operation
		if err := json.Unmarshal(line, &op); err != nil {
			summary.Failed++
			opErrors = append(opErrors, model.OpError{Error: fmt.Sprintf("parse operation: %v", err)})
			continue
		}
		if op.Seq == 0 {
			summary.Failed++
			opErrors = append(opErrors, model.OpError{
				Op:    op.Op,
				Actor: op.Actor,
				Token: op.Token,
				Error: "missing seq",
			})
			continue
		}
		if op.Seq <= summary.LastSeq {
			summary.Skipped++
			continue
		}

		if err := r.apply(ctx, x, r.cfg.Params, op); err != nil {
			summary.Failed++
			opErrors = append(opErrors, model.OpError{
				Seq:   op.Seq,
				Op:    op.Op,
				Actor: op.Actor,
				Token: op.Token,
				Error: err.Error(),
			})
		} else {
			summary.Applied++
		}
		summary.LastSeq = op.Seq
		pending++

		if pending >= r.cfg.BatchSize {
			if err := r.flush(x, summary.LastSeq, opErrors); err != nil {
				return summary, err
			}
			opErrors = opErrors[:0]
			pending = 0
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}
	}
	if err := scanner.Err(); err != nil {
		return summary, fmt.Errorf("scan operations: %w", err)
	}

	if pending > 0 || len(opErrors) > 0 {
		if err := r.flush(x, summary.LastSeq, opErrors); err != nil {
			return summary, err
		}
	}
	return summary, nil
}

func (r *Runner) open() (*amm.Engine, *amm.AdminCap, uint64, error) {
	cp, ok, err := r.checkpoint.Load()
	if err != nil {
		return nil, nil, 0, err
	}
	if !ok {
		engine, admin, err := amm.New(r.cfg.Params, nil)
		return engine, admin, 0, err
	}

	engine, admin, err := amm.Restore(r.cfg.Params, cp.State, nil)
	if err != nil {
		return nil, nil, 0, fmt.Errorf("restore checkpoint: %w", err)
	}
	r.logger.Info("resume from checkpoint",
		zap.Uint64("last_processed", cp.LastProcessedSeq),
		zap.Int("pools", len(cp.State.Pools)),
	)
	return engine, admin, cp.LastProcessedSeq, nil
}

// flush writes events before the checkpoint, so a crash in between replays
// the batch rather than losing it.
func (r *Runner) flush(x *ledger.Executor, lastSeq uint64, opErrors []model.OpError) error {
	events := x.Drain()
	if err := r.storage.PutEventBatch(events); err != nil {
		return fmt.Errorf("store events: %w", err)
	}
	if r.errors != nil && len(opErrors) > 0 {
		if err := r.errors.PutOpErrors(opErrors); err != nil {
			return fmt.Errorf("store op errors: %w", err)
		}
	}

	snap := x.Snapshot()
	if r.snapshots != nil {
		if err := r.snapshots.PutSnapshot(snap); err != nil {
			return fmt.Errorf("store snapshot: %w", err)
		}
	}
	if err := r.checkpoint.Save(lastSeq, snap); err != nil {
		return err
	}

	r.logger.Info("batch complete",
		zap.Int("events", len(events)),
		zap.Int("failed", len(opErrors)),
		zap.Uint64("last_seq", lastSeq),
	)
	return nil
}
