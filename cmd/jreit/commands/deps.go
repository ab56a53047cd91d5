package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/jreit-finder/internal/external/japanreit"
	"github.com/wonny/jreit-finder/internal/provider"
	"github.com/wonny/jreit-finder/internal/snapshot"
	"github.com/wonny/jreit-finder/pkg/config"
	"github.com/wonny/jreit-finder/pkg/database"
	"github.com/wonny/jreit-finder/pkg/httputil"
	"github.com/wonny/jreit-finder/pkg/logger"
	"github.com/wonny/jreit-finder/pkg/redis"
)

// app holds the wired collaborators shared by every command
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	provider  *provider.Provider
	snapshots *snapshot.Repository // nil when DATABASE_URL is unset

	db    *database.DB
	redis *redis.Client
}

// newApp loads config and wires scraper, cache and optional snapshot store
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	log := logger.New(cfg)

	redisClient, err := redis.New(ctx, cfg)
	if err != nil {
		// The cache is an optimization; run uncached rather than fail
		log.WithError(err).Warn("Redis unavailable, caching disabled")
		redisClient = redis.Disabled()
	}

	a := &app{cfg: cfg, log: log, redis: redisClient}

	var opts []provider.Option
	db, err := database.New(ctx, cfg)
	switch {
	case errors.Is(err, database.ErrDisabled):
		log.Debug("DATABASE_URL not set, snapshots disabled")
	case err != nil:
		redisClient.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	default:
		a.db = db
		a.snapshots = snapshot.NewRepository(db.Pool)
		if err := a.snapshots.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, err
		}
		opts = append(opts, provider.WithSnapshots(a.snapshots))
	}

	httpClient := httputil.New(cfg, log)
	scraper := japanreit.NewClient(httpClient, log, cfg.Source.URL)
	cache := redis.NewCache(redisClient, "jreit")
	a.provider = provider.New(scraper, cache, cfg.Source.CacheTTL, log, opts...)

	return a, nil
}

// Close releases the database pool and redis connection
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}
