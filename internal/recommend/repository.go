// Package recommend persists scan output keyed by (as_of_date, sector,
// rank).
package recommend

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jshaw/alphascan/internal/contracts"
)

// upsertBatchSize bounds statements per batch to respect payload limits
const upsertBatchSize = 200

// Repository handles recommendation persistence
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new recommendation repository
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the recommendations table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS daily_recommendations (
			as_of_date  DATE NOT NULL,
			sector      TEXT NOT NULL,
			rank        INT  NOT NULL,
			ticker      TEXT NOT NULL,
			alpha_score INT  NOT NULL,
			final_score DOUBLE PRECISION NOT NULL DEFAULT 0,
			factors     JSONB NOT NULL,
			targets     JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (as_of_date, sector, rank)
		)
	`

	if _, err := r.pool.Exec(ctx, query); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// UpsertBatch writes all rows in one transaction, batched in groups of at
// most 200 statements. Re-running the same date replaces rows idempotently
// via the composite key. Any failure rolls the whole run back: a run
// either upserts everything or is failed.
func (r *Repository) UpsertBatch(ctx context.Context, rows []contracts.Recommendation) error {
	if len(rows) == 0 {
		return fmt.Errorf("no rows to upsert")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO daily_recommendations (
			as_of_date, sector, rank, ticker, alpha_score, final_score, factors, targets
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (as_of_date, sector, rank) DO UPDATE SET
			ticker = EXCLUDED.ticker,
			alpha_score = EXCLUDED.alpha_score,
			final_score = EXCLUDED.final_score,
			factors = EXCLUDED.factors,
			targets = EXCLUDED.targets,
			created_at = NOW()
	`

	for start := 0; start < len(rows); start += upsertBatchSize {
		end := start + upsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := &pgx.Batch{}
		for _, rec := range rows[start:end] {
			factorsJSON, err := json.Marshal(rec.Factors)
			if err != nil {
				return fmt.Errorf("marshal factors for %s: %w", rec.Ticker, err)
			}
			targetsJSON, err := json.Marshal(rec.Targets)
			if err != nil {
				return fmt.Errorf("marshal targets for %s: %w", rec.Ticker, err)
			}

			batch.Queue(query,
				rec.AsOfDate, rec.Sector, rec.Rank, rec.Ticker,
				rec.AlphaScore, rec.FinalScore, factorsJSON, targetsJSON,
			)
		}

		results := tx.SendBatch(ctx, batch)
		if err := results.Close(); err != nil {
			return fmt.Errorf("execute upsert batch: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// ListByDateSector returns recommendations for a date and sector ordered
// by rank. An empty result is valid: no data for that partition yet.
func (r *Repository) ListByDateSector(ctx context.Context, date time.Time, sector string, limit int) ([]contracts.Recommendation, error) {
	query := `
		SELECT as_of_date, sector, rank, ticker, alpha_score, final_score, factors, targets
		FROM daily_recommendations
		WHERE as_of_date = $1 AND sector = $2
		ORDER BY rank ASC
		LIMIT $3
	`

	rows, err := r.pool.Query(ctx, query, date, sector, limit)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// ListByDate returns all recommendations for a date ordered by sector and
// rank
func (r *Repository) ListByDate(ctx context.Context, date time.Time) ([]contracts.Recommendation, error) {
	query := `
		SELECT as_of_date, sector, rank, ticker, alpha_score, final_score, factors, targets
		FROM daily_recommendations
		WHERE as_of_date = $1
		ORDER BY sector ASC, rank ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query recommendations: %w", err)
	}
	defer rows.Close()

	return scanRecommendations(rows)
}

// LatestDate returns the most recent as_of_date present in the store. A
// zero time with nil error means the table is empty.
func (r *Repository) LatestDate(ctx context.Context) (time.Time, error) {
	var date *time.Time
	err := r.pool.QueryRow(ctx, "SELECT MAX(as_of_date) FROM daily_recommendations").Scan(&date)
	if err != nil {
		return time.Time{}, fmt.Errorf("query latest date: %w", err)
	}
	if date == nil {
		return time.Time{}, nil
	}
	return *date, nil
}

func scanRecommendations(rows pgx.Rows) ([]contracts.Recommendation, error) {
	results := make([]contracts.Recommendation, 0)

	for rows.Next() {
		var rec contracts.Recommendation
		var factorsJSON, targetsJSON []byte

		err := rows.Scan(
			&rec.AsOfDate, &rec.Sector, &rec.Rank, &rec.Ticker,
			&rec.AlphaScore, &rec.FinalScore, &factorsJSON, &targetsJSON,
		)
		if err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		if err := json.Unmarshal(factorsJSON, &rec.Factors); err != nil {
			return nil, fmt.Errorf("unmarshal factors: %w", err)
		}
		if err := json.Unmarshal(targetsJSON, &rec.Targets); err != nil {
			return nil, fmt.Errorf("unmarshal targets: %w", err)
		}

		results = append(results, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return results, nil
}
