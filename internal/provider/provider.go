package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wonny/jreit-finder/internal/contracts"
	"github.com/wonny/jreit-finder/pkg/logger"
	"github.com/wonny/jreit-finder/pkg/redis"
)

// Fetcher downloads the full J-REIT table from the source site
type Fetcher interface {
	Source() string
	FetchTable(ctx context.Context) ([]contracts.Entity, error)
}

// SnapshotStore is the persisted fallback used when the source is unreachable
type SnapshotStore interface {
	Latest(ctx context.Context) (time.Time, []contracts.Entity, error)
}

// Provider serves the current J-REIT table with a TTL cache in front of the scraper
// ⭐ SSOT: Selection 입력 테이블은 여기서만 조달
type Provider struct {
	fetcher   Fetcher
	cache     *redis.Cache
	ttl       time.Duration
	snapshots SnapshotStore
	logger    *logger.Logger
}

// Option configures a Provider
type Option func(*Provider)

// WithSnapshots enables falling back to the latest stored snapshot
func WithSnapshots(store SnapshotStore) Option {
	return func(p *Provider) {
		p.snapshots = store
	}
}

// New creates a provider; a nil cache disables caching
func New(fetcher Fetcher, cache *redis.Cache, ttl time.Duration, log *logger.Logger, opts ...Option) *Provider {
	if cache == nil {
		cache = redis.NewCache(redis.Disabled(), "jreit")
	}
	if ttl <= 0 {
		ttl = redis.DefaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}

	p := &Provider{
		fetcher: fetcher,
		cache:   cache,
		ttl:     ttl,
		logger:  log.WithComponent("provider"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Provider) cacheKey() string {
	return redis.EntitiesKey(p.fetcher.Source())
}

// fetch scrapes the table and rejects it unless every row is valid
func (p *Provider) fetch(ctx context.Context) ([]contracts.Entity, error) {
	table, err := p.fetcher.FetchTable(ctx)
	if err != nil {
		return nil, err
	}
	if err := contracts.ValidateTable(table); err != nil {
		return nil, err
	}
	return table, nil
}

// Entities returns the cached table, fetching it when the cache is cold.
// If the fetch fails and a snapshot store is configured, the latest snapshot is returned instead.
func (p *Provider) Entities(ctx context.Context) ([]contracts.Entity, error) {
	var (
		table    []contracts.Entity
		fetched  []contracts.Entity
		fetchErr error
	)

	err := p.cache.GetOrSet(ctx, p.cacheKey(), &table, p.ttl, func() (interface{}, error) {
		fetched, fetchErr = p.fetch(ctx)
		return fetched, fetchErr
	})
	switch {
	case err == nil:
		return table, nil
	case fetchErr != nil:
		return p.fallback(ctx, fetchErr)
	case fetched != nil:
		// the fetch succeeded and only the cache round-trip failed
		p.logger.WithError(err).Warn("Failed to cache table")
		return fetched, nil
	default:
		return nil, fmt.Errorf("load J-REIT table: %w", err)
	}
}

// Refresh drops the cached table and fetches a fresh copy.
// It never falls back to a snapshot: callers that persist or report the
// result must see the fetch failure.
func (p *Provider) Refresh(ctx context.Context) ([]contracts.Entity, error) {
	if err := p.cache.Delete(ctx, p.cacheKey()); err != nil {
		p.logger.WithError(err).Warn("Failed to drop cached table")
	}

	table, err := p.fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh J-REIT table: %w", err)
	}

	if err := p.cache.Set(ctx, p.cacheKey(), table, p.ttl); err != nil {
		p.logger.WithError(err).Warn("Failed to cache table")
	}

	p.logger.WithField("count", len(table)).Info("Refreshed J-REIT table")
	return table, nil
}

func (p *Provider) fallback(ctx context.Context, fetchErr error) ([]contracts.Entity, error) {
	if p.snapshots == nil {
		return nil, fmt.Errorf("fetch J-REIT table: %w", fetchErr)
	}

	// A malformed page is not an outage; serving stale data would hide it
	var schemaErr *contracts.SchemaError
	if errors.As(fetchErr, &schemaErr) {
		return nil, fetchErr
	}

	date, table, err := p.snapshots.Latest(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch J-REIT table: %w (snapshot fallback: %v)", fetchErr, err)
	}

	p.logger.WithError(fetchErr).WithFields(map[string]interface{}{
		"snapshot_date": date.Format("2006-01-02"),
		"count":         len(table),
	}).Warn("Source unavailable, serving snapshot")

	return table, nil
}
