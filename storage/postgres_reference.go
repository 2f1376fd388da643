package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"jaikod-scoring/models"
	"jaikod-scoring/utils"
)

// distributionWindow bounds how many recent comparables feed one distribution.
const distributionWindow = 500

// PostgresReference stores comparables and scored listings in PostgreSQL and
// serves them back as reference distributions.
type PostgresReference struct {
	db *sql.DB
}

// NewPostgresReference opens a connection to PostgreSQL, waits for it to come
// up, runs schema migrations and returns a ready-to-use store.
func NewPostgresReference(ctx context.Context, dsn string, retry *utils.RetryConfig) (*PostgresReference, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}

	if err := retry.Do(ctx, "postgres ping", func() error { return db.PingContext(ctx) }); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}

	pr := &PostgresReference{db: db}
	if err := pr.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres: migrate: %w", err)
	}

	return pr, nil
}

func (pr *PostgresReference) migrate(ctx context.Context) error {
	_, err := pr.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS price_history (
			id          BIGSERIAL PRIMARY KEY,
			category    VARCHAR(100)  NOT NULL,
			price       NUMERIC(12,2) NOT NULL,
			region      VARCHAR(100)  NOT NULL DEFAULT '',
			condition   VARCHAR(20)   NOT NULL DEFAULT '',
			url         TEXT          UNIQUE NOT NULL,
			created_at  TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_price_history_category ON price_history(category, created_at DESC);

		CREATE TABLE IF NOT EXISTS region_multipliers (
			region      VARCHAR(100) PRIMARY KEY,
			multiplier  NUMERIC(6,3) NOT NULL CHECK (multiplier > 0)
		);

		CREATE TABLE IF NOT EXISTS assessments (
			id               BIGSERIAL PRIMARY KEY,
			item_id          TEXT          NOT NULL,
			category         VARCHAR(100)  NOT NULL DEFAULT '',
			price            NUMERIC(12,2) NOT NULL DEFAULT 0,
			price_status     VARCHAR(32)   NOT NULL,
			percentile       NUMERIC(6,2)  NOT NULL DEFAULT 0,
			condition_score  INT           NOT NULL,
			trust_score      INT           NOT NULL,
			trust_level      VARCHAR(32)   NOT NULL,
			boost_type       VARCHAR(32)   NOT NULL DEFAULT '',
			boost_cost       NUMERIC(12,2) NOT NULL DEFAULT 0,
			created_at       TIMESTAMPTZ   NOT NULL DEFAULT NOW()
		);

		CREATE INDEX IF NOT EXISTS idx_assessments_item ON assessments(item_id);
	`)
	return err
}

// Write batch-inserts comparables. A URL seen before keeps its row but takes
// the newer price.
func (pr *PostgresReference) Write(points []*models.PricePoint) error {
	if len(points) == 0 {
		return nil
	}

	const batchSize = 50
	for i := 0; i < len(points); i += batchSize {
		end := i + batchSize
		if end > len(points) {
			end = len(points)
		}
		if err := pr.insertBatch(points[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (pr *PostgresReference) insertBatch(batch []*models.PricePoint) error {
	valueStrings := make([]string, 0, len(batch))
	valueArgs := make([]interface{}, 0, len(batch)*5)

	for idx, p := range batch {
		base := idx * 5
		valueStrings = append(valueStrings,
			fmt.Sprintf("($%d,$%d,$%d,$%d,$%d)", base+1, base+2, base+3, base+4, base+5))
		valueArgs = append(valueArgs, pricePointArgs(p)...)
	}

	query := fmt.Sprintf(`
		INSERT INTO price_history (category, price, region, condition, url)
		VALUES %s
		ON CONFLICT (url) DO UPDATE SET price = EXCLUDED.price, created_at = NOW()
	`, strings.Join(valueStrings, ","))

	if _, err := pr.db.Exec(query, valueArgs...); err != nil {
		return fmt.Errorf("postgres: insert price history: %w", err)
	}
	return nil
}

// Distribution returns the most recent comparable prices for category.
func (pr *PostgresReference) Distribution(ctx context.Context, category string) ([]float64, error) {
	rows, err := pr.db.QueryContext(ctx, `
		SELECT price FROM price_history
		WHERE category = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, distributionArgs(category)...)
	if err != nil {
		return nil, fmt.Errorf("postgres: distribution %q: %w", category, err)
	}
	defer rows.Close()

	var prices []float64
	for rows.Next() {
		var p float64
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("postgres: scan price: %w", err)
		}
		prices = append(prices, p)
	}
	return prices, rows.Err()
}

// Categories are stored and queried under the same key the in-memory tables use.
func pricePointArgs(p *models.PricePoint) []interface{} {
	return []interface{}{categoryKey(p.Category), p.Price, p.Region, string(p.Condition), p.URL}
}

func distributionArgs(category string) []interface{} {
	return []interface{}{categoryKey(category), distributionWindow}
}

func (pr *PostgresReference) RegionMultipliers(ctx context.Context) (map[string]float64, error) {
	rows, err := pr.db.QueryContext(ctx, `SELECT region, multiplier FROM region_multipliers`)
	if err != nil {
		return nil, fmt.Errorf("postgres: region multipliers: %w", err)
	}
	defer rows.Close()

	out := make(map[string]float64)
	for rows.Next() {
		var region string
		var m float64
		if err := rows.Scan(&region, &m); err != nil {
			return nil, fmt.Errorf("postgres: scan multiplier: %w", err)
		}
		out[region] = m
	}
	return out, rows.Err()
}

// SeedRegionMultipliers upserts multipliers.
func (pr *PostgresReference) SeedRegionMultipliers(ctx context.Context, multipliers map[string]float64) error {
	tx, err := pr.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for region, m := range multipliers {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO region_multipliers (region, multiplier) VALUES ($1, $2)
			ON CONFLICT (region) DO UPDATE SET multiplier = EXCLUDED.multiplier
		`, region, m); err != nil {
			return fmt.Errorf("postgres: seed region %q: %w", region, err)
		}
	}
	return tx.Commit()
}

// WriteAssessments appends scored listings.
func (pr *PostgresReference) WriteAssessments(assessments []models.Assessment) error {
	if len(assessments) == 0 {
		return nil
	}

	tx, err := pr.db.Begin()
	if err != nil {
		return fmt.Errorf("postgres: begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(`
		INSERT INTO assessments
			(item_id, category, price, price_status, percentile, condition_score,
			 trust_score, trust_level, boost_type, boost_cost, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`)
	if err != nil {
		return fmt.Errorf("postgres: prepare: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, a := range assessments {
		boostType, boostCost := "", "0"
		if a.Boost != nil {
			boostType = string(a.Boost.BoostType)
			boostCost = a.Boost.Cost.StringFixed(2)
		}
		if _, err := stmt.Exec(
			a.ItemID, a.Price.Category, a.Price.Price, string(a.Price.Status), a.Price.Percentile,
			a.Condition.Score, a.Trust.TotalScore, string(a.Trust.Level), boostType, boostCost, now,
		); err != nil {
			return fmt.Errorf("postgres: insert assessment %q: %w", a.ItemID, err)
		}
	}
	return tx.Commit()
}

func (pr *PostgresReference) Close() error {
	return pr.db.Close()
}
