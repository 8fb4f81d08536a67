// Package store caches the latest verified price update per feed in
// PostgreSQL so downstream consumers can read prices without refetching
// accounts. The trust and staleness policy from pkg/price is applied again on
// the way out of the cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/rain-foundation/pyth-solana-receiver-sdk/pkg/price"
)

var (
	ErrNotFound = errors.New("no update stored for feed")
	ErrStaleRow = errors.New("stored row is older than the incoming update")
)

// Repository defines the persistence interface for cached price updates.
type Repository interface {
	// SaveUpdate upserts the update for its feed, keeping the row with the
	// highest posted slot.
	SaveUpdate(ctx context.Context, update *price.PriceUpdate) error

	// GetLatest returns the most recently posted update for the feed.
	GetLatest(ctx context.Context, feedID price.FeedID) (*price.PriceUpdate, error)

	// GetPrice loads the latest update for the feed and applies the trust and
	// staleness checks before returning the price.
	GetPrice(ctx context.Context, feedID price.FeedID, currentTime int64, maximumAge uint64, requiredLevel price.VerificationLevel) (price.Price, error)

	// ListFeeds returns the feed ids with a cached update.
	ListFeeds(ctx context.Context) ([]price.FeedID, error)

	// DeleteOlderThan removes rows whose publish time is before cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error)

	Close()
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresRepository connects to PostgreSQL and ensures the schema exists.
func NewPostgresRepository(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresRepository, error) {
	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnLifetime = time.Hour
	config.MaxConnIdleTime = 30 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	if err := ensureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	return &PostgresRepository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close releases all database resources.
func (r *PostgresRepository) Close() {
	r.pool.Close()
}

// SaveUpdate persists the update, replacing any older row for the same feed.
// Rows are stored as the raw account encoding plus indexed columns, so the
// cache round-trips byte-for-byte through the account codec.
func (r *PostgresRepository) SaveUpdate(ctx context.Context, update *price.PriceUpdate) error {
	data, err := update.MarshalAccount()
	if err != nil {
		return fmt.Errorf("encoding update: %w", err)
	}

	query := `
		INSERT INTO price_updates (
			id, feed_id, account_data, verification_kind, num_signatures,
			publish_time, posted_slot, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		)
		ON CONFLICT (feed_id) DO UPDATE SET
			account_data = EXCLUDED.account_data,
			verification_kind = EXCLUDED.verification_kind,
			num_signatures = EXCLUDED.num_signatures,
			publish_time = EXCLUDED.publish_time,
			posted_slot = EXCLUDED.posted_slot,
			updated_at = EXCLUDED.updated_at
		WHERE EXCLUDED.posted_slot >= price_updates.posted_slot`

	tag, err := r.pool.Exec(ctx, query,
		uuid.New().String(),
		update.PriceMessage.FeedID.Bytes(),
		data,
		int16(update.VerificationLevel.Kind),
		int16(update.VerificationLevel.NumSignatures),
		update.PriceMessage.PublishTime,
		int64(update.PostedSlot),
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting price update: %w", err)
	}

	if tag.RowsAffected() == 0 {
		r.logger.Debug("Skipping update older than cached row",
			zap.String("feed_id", update.PriceMessage.FeedID.String()),
			zap.Uint64("posted_slot", update.PostedSlot))
		return ErrStaleRow
	}

	return nil
}

// GetLatest retrieves the cached update for a feed.
func (r *PostgresRepository) GetLatest(ctx context.Context, feedID price.FeedID) (*price.PriceUpdate, error) {
	query := `
		SELECT account_data
		FROM price_updates
		WHERE feed_id = $1`

	var data []byte
	err := r.pool.QueryRow(ctx, query, feedID.Bytes()).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying price update: %w", err)
	}

	update, err := price.ParsePriceUpdateAccount(data)
	if err != nil {
		return nil, fmt.Errorf("decoding cached update: %w", err)
	}
	return update, nil
}

// GetPrice loads the latest update for the feed and applies the verification
// level and maximum age checks before handing the price to the caller.
func (r *PostgresRepository) GetPrice(
	ctx context.Context,
	feedID price.FeedID,
	currentTime int64,
	maximumAge uint64,
	requiredLevel price.VerificationLevel,
) (price.Price, error) {
	update, err := r.GetLatest(ctx, feedID)
	if err != nil {
		return price.Price{}, err
	}
	return update.GetPriceNoOlderThanWithCustomVerificationLevel(currentTime, maximumAge, feedID, requiredLevel)
}

// ListFeeds returns all feed ids present in the cache.
func (r *PostgresRepository) ListFeeds(ctx context.Context) ([]price.FeedID, error) {
	rows, err := r.pool.Query(ctx, `SELECT feed_id FROM price_updates ORDER BY feed_id`)
	if err != nil {
		return nil, fmt.Errorf("querying feeds: %w", err)
	}
	defer rows.Close()

	var feeds []price.FeedID
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning feed id: %w", err)
		}
		var id price.FeedID
		copy(id[:], raw)
		feeds = append(feeds, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating feed rows: %w", err)
	}

	return feeds, nil
}

// DeleteOlderThan prunes rows published before cutoff (Unix seconds).
func (r *PostgresRepository) DeleteOlderThan(ctx context.Context, cutoff int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM price_updates WHERE publish_time < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning price updates: %w", err)
	}

	removed := tag.RowsAffected()
	if removed > 0 {
		r.logger.Info("Pruned stale price updates",
			zap.Int64("removed", removed),
			zap.Int64("cutoff", cutoff))
	}
	return removed, nil
}
