package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"tickrange/internal/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS tick_ranges (
	range_key TEXT PRIMARY KEY,
	starting_mcap_usd NUMERIC NOT NULL,
	ending_mcap_usd NUMERIC NOT NULL,
	fee INTEGER NOT NULL,
	token_supply NUMERIC NOT NULL,
	numeraire_usd NUMERIC NOT NULL,
	rounding_direction SMALLINT NOT NULL,
	tick_spacing INTEGER NOT NULL,
	starting_tick INTEGER NOT NULL,
	ending_tick INTEGER NOT NULL,
	realized_starting_mcap_usd NUMERIC NOT NULL,
	realized_ending_mcap_usd NUMERIC NOT NULL,
	encoded TEXT NOT NULL,
	pool_address TEXT NOT NULL DEFAULT '',
	computed_at TIMESTAMPTZ NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Store provides Postgres persistence for tick range records.
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

// EnsureSchema creates the tick_ranges table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// UpsertTickRanges inserts or updates records by range key.
func (s *Store) UpsertTickRanges(ctx context.Context, records []model.TickRangeRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range records {
		batch.Queue(`
			INSERT INTO tick_ranges (
				range_key, starting_mcap_usd, ending_mcap_usd, fee, token_supply, numeraire_usd,
				rounding_direction, tick_spacing, starting_tick, ending_tick,
				realized_starting_mcap_usd, realized_ending_mcap_usd, encoded, pool_address,
				computed_at, created_at, updated_at
			) VALUES (
				$1, $2::text::numeric, $3::text::numeric, $4, $5::text::numeric, $6::text::numeric,
				$7, $8, $9, $10,
				$11::text::numeric, $12::text::numeric, $13, $14,
				$15::text::timestamptz, now(), now()
			)
			ON CONFLICT (range_key)
			DO UPDATE SET
				starting_tick = EXCLUDED.starting_tick,
				ending_tick = EXCLUDED.ending_tick,
				realized_starting_mcap_usd = EXCLUDED.realized_starting_mcap_usd,
				realized_ending_mcap_usd = EXCLUDED.realized_ending_mcap_usd,
				encoded = EXCLUDED.encoded,
				computed_at = EXCLUDED.computed_at,
				updated_at = now()
		`,
			r.Key,
			r.StartingMarketCapUSD,
			r.EndingMarketCapUSD,
			int64(r.Fee),
			r.TokenSupply,
			r.NumeraireUSD,
			r.RoundingDirection,
			r.TickSpacing,
			r.StartingTick,
			r.EndingTick,
			r.RealizedStartingMarketCapUSD,
			r.RealizedEndingMarketCapUSD,
			r.Encoded,
			r.Pool,
			r.ComputedAt,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// LoadEncoded returns the last stored encoding for a range key.
func (s *Store) LoadEncoded(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, fmt.Errorf("range key required")
	}
	var encoded string
	row := s.pool.QueryRow(ctx, `SELECT encoded FROM tick_ranges WHERE range_key=$1`, key)
	if err := row.Scan(&encoded); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return encoded, true, nil
}
