package postgres

// Reserve and fee columns are NUMERIC because they span the full uint64 range.
const schema = `
CREATE TABLE IF NOT EXISTS pool_events (
	seq        NUMERIC(20) NOT NULL,
	ordinal    INTEGER     NOT NULL,
	event_name TEXT        NOT NULL,
	pool_id    TEXT        NOT NULL,
	token      TEXT        NOT NULL,
	actor      TEXT        NOT NULL,
	event_ts   BIGINT      NOT NULL,
	payload    JSONB       NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (seq, ordinal)
);

CREATE TABLE IF NOT EXISTS pools (
	pool_id            TEXT PRIMARY KEY,
	token              TEXT        NOT NULL UNIQUE,
	creator            TEXT        NOT NULL,
	settlement_reserve NUMERIC(20) NOT NULL,
	token_reserve      NUMERIC(20) NOT NULL,
	trading_enabled    BOOLEAN     NOT NULL,
	created_at         TIMESTAMPTZ NOT NULL,
	updated_at         TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS fee_vault (
	id                     SMALLINT PRIMARY KEY,
	settlement_fee_balance NUMERIC(20) NOT NULL,
	creation_fee           NUMERIC(20) NOT NULL,
	updated_at             TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pool_window_metrics (
	pool_id             TEXT        NOT NULL,
	token               TEXT        NOT NULL,
	window_size_seconds BIGINT      NOT NULL,
	window_start_ts     TIMESTAMPTZ NOT NULL,
	window_end_ts       TIMESTAMPTZ NOT NULL,
	swap_count          BIGINT      NOT NULL,
	buy_count           BIGINT      NOT NULL,
	sell_count          BIGINT      NOT NULL,
	settlement_volume   NUMERIC     NOT NULL,
	token_volume        NUMERIC     NOT NULL,
	settlement_fees     NUMERIC     NOT NULL,
	settlement_reserve  NUMERIC     NOT NULL,
	token_reserve       NUMERIC     NOT NULL,
	close_price         NUMERIC,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pool_id, window_size_seconds, window_start_ts)
);

CREATE TABLE IF NOT EXISTS runner_state (
	name           TEXT PRIMARY KEY,
	last_processed BIGINT      NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
`
