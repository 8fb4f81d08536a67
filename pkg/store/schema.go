package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

const schema = `
CREATE TABLE IF NOT EXISTS price_updates (
	id                UUID PRIMARY KEY,
	feed_id           BYTEA NOT NULL UNIQUE,
	account_data      BYTEA NOT NULL,
	verification_kind SMALLINT NOT NULL,
	num_signatures    SMALLINT NOT NULL,
	publish_time      BIGINT NOT NULL,
	posted_slot       BIGINT NOT NULL,
	updated_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS price_updates_publish_time_idx
	ON price_updates (publish_time);
`

func ensureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, schema); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}
	return nil
}
