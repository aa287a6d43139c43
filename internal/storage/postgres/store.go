package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CasuinoOfficial/bonding-curve/internal/model"
)

// Store provides Postgres persistence for events, pool state and metrics.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// EnsureSchema creates the tables the store writes to.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// InsertEvents appends committed events. Replayed events are ignored.
func (s *Store) InsertEvents(ctx context.Context, events []model.Event) error {
	if len(events) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	ordinals := make(map[uint64]int)
	for _, event := range events {
		payload, err := json.Marshal(event.Decoded)
		if err != nil {
			return fmt.Errorf("marshal event payload: %w", err)
		}
		ordinal := ordinals[event.Seq]
		ordinals[event.Seq] = ordinal + 1

		batch.Queue(`
			INSERT INTO pool_events (
				seq, ordinal, event_name, pool_id, token, actor, event_ts, payload, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
			ON CONFLICT (seq, ordinal) DO NOTHING
		`,
			strconv.FormatUint(event.Seq, 10),
			ordinal,
			event.EventName,
			event.PoolID,
			event.Token,
			event.Actor,
			int64(event.Timestamp),
			payload,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// UpsertPools inserts or updates pool reserve snapshots.
func (s *Store) UpsertPools(ctx context.Context, pools []model.Pool) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, pool := range pools {
		batch.Queue(`
			INSERT INTO pools (
				pool_id, token, creator, settlement_reserve, token_reserve, trading_enabled, created_at, updated_at
			) VALUES ($1, $2, $3, $4, $5, $6, now(), now())
			ON CONFLICT (pool_id)
			DO UPDATE SET
				settlement_reserve = EXCLUDED.settlement_reserve,
				token_reserve = EXCLUDED.token_reserve,
				trading_enabled = EXCLUDED.trading_enabled,
				updated_at = now()
		`,
			pool.ID,
			pool.Token,
			pool.Creator,
			strconv.FormatUint(pool.SettlementReserve, 10),
			strconv.FormatUint(pool.TokenReserve, 10),
			pool.TradingEnabled,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// SaveVault upserts the single fee vault row.
func (s *Store) SaveVault(ctx context.Context, vault model.Vault) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO fee_vault (id, settlement_fee_balance, creation_fee, updated_at)
		VALUES (1, $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET settlement_fee_balance = EXCLUDED.settlement_fee_balance,
			creation_fee = EXCLUDED.creation_fee,
			updated_at = now()
	`, strconv.FormatUint(vault.SettlementFeeBalance, 10), strconv.FormatUint(vault.CreationFee, 10))
	return err
}

// UpsertWindowMetrics inserts or updates window metrics.
func (s *Store) UpsertWindowMetrics(ctx context.Context, metrics []model.PoolWindowMetrics) error {
	if len(metrics) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, m := range metrics {
		batch.Queue(`
			INSERT INTO pool_window_metrics (
				pool_id, token, window_size_seconds, window_start_ts, window_end_ts,
				swap_count, buy_count, sell_count, settlement_volume, token_volume, settlement_fees,
				settlement_reserve, token_reserve, close_price, created_at, updated_at
			) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,now(),now())
			ON CONFLICT (pool_id, window_size_seconds, window_start_ts)
			DO UPDATE SET
				window_end_ts = EXCLUDED.window_end_ts,
				swap_count = EXCLUDED.swap_count,
				buy_count = EXCLUDED.buy_count,
				sell_count = EXCLUDED.sell_count,
				settlement_volume = EXCLUDED.settlement_volume,
				token_volume = EXCLUDED.token_volume,
				settlement_fees = EXCLUDED.settlement_fees,
				settlement_reserve = EXCLUDED.settlement_reserve,
				token_reserve = EXCLUDED.token_reserve,
				close_price = EXCLUDED.close_price,
				updated_at = now()
		`,
			m.PoolID,
			m.Token,
			m.WindowSizeSecs,
			m.WindowStart,
			m.WindowEnd,
			int64(m.SwapCount),
			int64(m.BuyCount),
			int64(m.SellCount),
			m.SettlementVolume,
			m.TokenVolume,
			m.SettlementFees,
			m.SettlementReserve,
			m.TokenReserve,
			m.ClosePrice,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range metrics {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns the progress value stored under name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var value int64
	row := s.pool.QueryRow(ctx, `SELECT last_processed FROM runner_state WHERE name=$1`, name)
	if err := row.Scan(&value); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(value), true, nil
}

// SaveState upserts the progress value for name.
func (s *Store) SaveState(ctx context.Context, name string, value uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO runner_state (name, last_processed, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed = EXCLUDED.last_processed, updated_at = now()
	`, name, int64(value))
	return err
}
