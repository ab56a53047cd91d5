package snapshot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/jreit-finder/internal/contracts"
)

// ErrNoSnapshot is returned when no snapshot has been saved yet
var ErrNoSnapshot = errors.New("no snapshot stored")

// Repository persists daily copies of the scraped J-REIT table
// ⭐ SSOT: 스냅샷 저장/조회는 여기서만
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new snapshot repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const schemaDDL = `
	CREATE SCHEMA IF NOT EXISTS jreit;

	CREATE TABLE IF NOT EXISTS jreit.snapshots (
		snapshot_date         DATE        NOT NULL,
		code                  TEXT        NOT NULL,
		position              INTEGER     NOT NULL,
		name                  TEXT        NOT NULL,
		category              TEXT        NOT NULL,
		distribution_yield    DOUBLE PRECISION NOT NULL,
		nav_ratio             DOUBLE PRECISION NOT NULL,
		market_cap            DOUBLE PRECISION NOT NULL,
		asset_size            DOUBLE PRECISION NOT NULL,
		building_count        INTEGER     NOT NULL,
		average_building_age  DOUBLE PRECISION NOT NULL,
		leverage_ratio        DOUBLE PRECISION NOT NULL,
		roe                   DOUBLE PRECISION NOT NULL,
		noi_yield             DOUBLE PRECISION NOT NULL,
		unrealized_gain_ratio DOUBLE PRECISION NOT NULL,
		annual_distribution   DOUBLE PRECISION NOT NULL,
		created_at            TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (snapshot_date, code)
	);`

// EnsureSchema creates the snapshot table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

// Save upserts the table under the given date; position keeps the scraped row order
func (r *Repository) Save(ctx context.Context, date time.Time, table []contracts.Entity) error {
	if len(table) == 0 {
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Rows that disappeared from the source must not linger in the day's snapshot
	if _, err := tx.Exec(ctx, "DELETE FROM jreit.snapshots WHERE snapshot_date = $1", date); err != nil {
		return fmt.Errorf("failed to delete old snapshot: %w", err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO jreit.snapshots (
			snapshot_date, code, position, name, category,
			distribution_yield, nav_ratio, market_cap, asset_size,
			building_count, average_building_age, leverage_ratio, roe,
			noi_yield, unrealized_gain_ratio, annual_distribution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (snapshot_date, code) DO UPDATE SET
			position = EXCLUDED.position,
			name = EXCLUDED.name,
			category = EXCLUDED.category,
			distribution_yield = EXCLUDED.distribution_yield,
			nav_ratio = EXCLUDED.nav_ratio,
			market_cap = EXCLUDED.market_cap,
			asset_size = EXCLUDED.asset_size,
			building_count = EXCLUDED.building_count,
			average_building_age = EXCLUDED.average_building_age,
			leverage_ratio = EXCLUDED.leverage_ratio,
			roe = EXCLUDED.roe,
			noi_yield = EXCLUDED.noi_yield,
			unrealized_gain_ratio = EXCLUDED.unrealized_gain_ratio,
			annual_distribution = EXCLUDED.annual_distribution,
			created_at = NOW()`

	for i, e := range table {
		batch.Queue(query, date, e.Code, i, e.Name, string(e.Category),
			e.DistributionYield, e.NAVRatio, e.MarketCap, e.AssetSize,
			e.BuildingCount, e.AverageBuildingAge, e.LeverageRatio, e.ROE,
			e.NOIYield, e.UnrealizedGainRatio, e.AnnualDistribution)
	}

	br := tx.SendBatch(ctx, batch)
	for range table {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert snapshot row: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Latest returns the newest snapshot and its date
func (r *Repository) Latest(ctx context.Context) (time.Time, []contracts.Entity, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, "SELECT MAX(snapshot_date) FROM jreit.snapshots").Scan(&date)
	if err != nil {
		return time.Time{}, nil, fmt.Errorf("failed to query latest snapshot date: %w", err)
	}
	if date == nil {
		return time.Time{}, nil, ErrNoSnapshot
	}

	table, err := r.At(ctx, *date)
	if err != nil {
		return time.Time{}, nil, err
	}
	return *date, table, nil
}

// At returns the snapshot saved for the given date in scraped order
func (r *Repository) At(ctx context.Context, date time.Time) ([]contracts.Entity, error) {
	query := `
		SELECT code, name, category,
			distribution_yield, nav_ratio, market_cap, asset_size,
			building_count, average_building_age, leverage_ratio, roe,
			noi_yield, unrealized_gain_ratio, annual_distribution
		FROM jreit.snapshots
		WHERE snapshot_date = $1
		ORDER BY position`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	defer rows.Close()

	var table []contracts.Entity
	for rows.Next() {
		var e contracts.Entity
		var category string
		if err := rows.Scan(
			&e.Code, &e.Name, &category,
			&e.DistributionYield, &e.NAVRatio, &e.MarketCap, &e.AssetSize,
			&e.BuildingCount, &e.AverageBuildingAge, &e.LeverageRatio, &e.ROE,
			&e.NOIYield, &e.UnrealizedGainRatio, &e.AnnualDistribution,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		e.Category = contracts.Category(category)
		table = append(table, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshot rows: %w", err)
	}

	if len(table) == 0 {
		return nil, ErrNoSnapshot
	}

	return table, nil
}
