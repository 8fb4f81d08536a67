// Package monitor polls price update accounts on a schedule, enforces each
// feed's trust and staleness policy, and caches accepted updates.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rain-foundation/pyth-solana-receiver-sdk/pkg/price"
	"github.com/rain-foundation/pyth-solana-receiver-sdk/pkg/store"
	"github.com/rain-foundation/pyth-solana-receiver-sdk/pkg/utils"
)

// Feed is one monitored price update account together with the policy its
// consumers require.
type Feed struct {
	// Account is the address of the price update account written by the
	// receiver program.
	Account solana.PublicKey

	// ID is the feed the account must belong to.
	ID price.FeedID

	// Alias is a human-readable name for logs ("SOL/USD").
	Alias string

	// MaximumAge is the staleness bound in seconds.
	MaximumAge uint64

	// RequiredLevel is the minimum verification level to accept.
	RequiredLevel price.VerificationLevel
}

// Metrics tracks monitor activity.
type Metrics struct {
	UpdatesAccepted int64
	UpdatesRejected int64
	FetchFailures   int64
	LastPoll        time.Time
	mu              sync.RWMutex
}

// Snapshot returns a copy of the current counters.
func (m *Metrics) Snapshot() Metrics {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Metrics{
		UpdatesAccepted: m.UpdatesAccepted,
		UpdatesRejected: m.UpdatesRejected,
		FetchFailures:   m.FetchFailures,
		LastPoll:        m.LastPoll,
	}
}

// Monitor periodically fetches the configured accounts and stores the updates
// that pass their feed's checks.
type Monitor struct {
	cron     *cron.Cron
	fetcher  Fetcher
	repo     store.Repository
	feeds    []Feed
	schedule string
	logger   *zap.Logger
	metrics  *Metrics

	// PruneAfter, when non-zero, removes cached updates published more than
	// this many seconds ago at the end of each poll.
	PruneAfter uint64

	// Retry controls backoff for transient fetch failures.
	Retry *utils.RetryConfig

	// now supplies the current Unix time; overridable in tests.
	now func() int64
}

// NewMonitor creates a monitor polling feeds on the given cron schedule
// (with a seconds field, e.g. "*/10 * * * * *").
func NewMonitor(fetcher Fetcher, repo store.Repository, feeds []Feed, schedule string, logger *zap.Logger) *Monitor {
	return &Monitor{
		cron:     cron.New(cron.WithSeconds()),
		fetcher:  fetcher,
		repo:     repo,
		feeds:    feeds,
		schedule: schedule,
		logger:   logger,
		metrics:  &Metrics{},
		Retry:    utils.DefaultRetryConfig(),
		now:      func() int64 { return time.Now().Unix() },
	}
}

// Metrics returns the monitor's activity counters.
func (m *Monitor) Metrics() Metrics {
	return m.metrics.Snapshot()
}

// Start schedules polling. The supplied context bounds each poll.
func (m *Monitor) Start(ctx context.Context) error {
	if len(m.feeds) == 0 {
		return errors.New("no feeds configured")
	}

	_, err := m.cron.AddFunc(m.schedule, func() {
		m.Poll(ctx)
	})
	if err != nil {
		return fmt.Errorf("scheduling poll: %w", err)
	}

	m.cron.Start()
	m.logger.Info("Monitor started",
		zap.String("schedule", m.schedule),
		zap.Int("feeds", len(m.feeds)))
	return nil
}

// Stop halts scheduling and waits for a running poll to finish.
func (m *Monitor) Stop() {
	stopCtx := m.cron.Stop()
	<-stopCtx.Done()
	m.logger.Info("Monitor stopped")
}

// Poll checks every configured feed once.
func (m *Monitor) Poll(ctx context.Context) {
	for _, feed := range m.feeds {
		if err := m.checkFeed(ctx, feed); err != nil {
			m.logger.Warn("Feed check failed",
				zap.String("alias", feed.Alias),
				zap.String("feed_id", feed.ID.String()),
				zap.Error(err))
		}
	}

	if m.PruneAfter > 0 {
		cutoff := saturatingSub(m.now(), m.PruneAfter)
		if _, err := m.repo.DeleteOlderThan(ctx, cutoff); err != nil {
			m.logger.Warn("Pruning cache failed", zap.Error(err))
		}
	}

	m.metrics.mu.Lock()
	m.metrics.LastPoll = time.Now().UTC()
	m.metrics.mu.Unlock()
}

func saturatingSub(now int64, seconds uint64) int64 {
	const minInt64 = -1 << 63
	if seconds > 1<<63-1 || now < minInt64+int64(seconds) {
		return minInt64
	}
	return now - int64(seconds)
}

func (m *Monitor) checkFeed(ctx context.Context, feed Feed) error {
	var data []byte
	err := utils.RetryWithBackoff(ctx, func() error {
		var fetchErr error
		data, fetchErr = m.fetcher.AccountData(ctx, feed.Account)
		return fetchErr
	}, m.Retry)
	if err != nil {
		m.count(&m.metrics.FetchFailures)
		return fmt.Errorf("fetching account %s: %w", feed.Account, err)
	}

	update, err := price.ParsePriceUpdateAccount(data)
	if err != nil {
		m.count(&m.metrics.UpdatesRejected)
		return err
	}

	// The checks run here so a bad update never reaches the cache, and again
	// inside the repository when prices are read back out.
	if _, err := update.GetPriceNoOlderThanWithCustomVerificationLevel(
		m.now(), feed.MaximumAge, feed.ID, feed.RequiredLevel,
	); err != nil {
		m.count(&m.metrics.UpdatesRejected)
		return err
	}

	if err := m.repo.SaveUpdate(ctx, update); err != nil {
		if errors.Is(err, store.ErrStaleRow) {
			// A newer update is already cached.
			return nil
		}
		return fmt.Errorf("caching update: %w", err)
	}

	m.count(&m.metrics.UpdatesAccepted)
	m.logger.Debug("Cached price update",
		zap.String("alias", feed.Alias),
		zap.Uint64("posted_slot", update.PostedSlot),
		zap.Int64("publish_time", update.PriceMessage.PublishTime))
	return nil
}

func (m *Monitor) count(field *int64) {
	m.metrics.mu.Lock()
	*field++
	m.metrics.mu.Unlock()
}
