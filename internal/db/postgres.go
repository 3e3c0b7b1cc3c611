package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS mutation_runs (
	run_id TEXT PRIMARY KEY,
	started_at TIMESTAMPTZ NOT NULL,
	profile TEXT NOT NULL,
	commit_sha TEXT NOT NULL DEFAULT '',
	branch TEXT NOT NULL DEFAULT '',
	total_mutants INTEGER NOT NULL,
	killed_mutants INTEGER NOT NULL,
	survived_mutants INTEGER NOT NULL,
	excluded_mutants INTEGER NOT NULL,
	mutation_score DOUBLE PRECISION NOT NULL,
	high_risk_score DOUBLE PRECISION NOT NULL,
	passed BOOLEAN NOT NULL,
	runtime_seconds DOUBLE PRECISION NOT NULL,
	summary JSONB NOT NULL,
	saved_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_mutation_runs_started_at ON mutation_runs (started_at DESC);
`

// PostgresStore persists run history in Postgres.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to Postgres and ensures the history schema.
func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Configure pool
	poolCfg.MaxConns = 25
	poolCfg.MinConns = 5

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, pgSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Info().Str("host", poolCfg.ConnConfig.Host).Msg("connected to history database")

	return &PostgresStore{pool: pool}, nil
}

// SaveRun persists a finalized run summary.
func (s *PostgresStore) SaveRun(ctx context.Context, summary *model.RunSummary) error {
	doc, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO mutation_runs (run_id, started_at, profile, commit_sha, branch,
			total_mutants, killed_mutants, survived_mutants, excluded_mutants,
			mutation_score, high_risk_score, passed, runtime_seconds, summary)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`, summary.RunID, summary.StartedAt, summary.Profile, summary.CommitSHA, summary.Branch,
		summary.TotalMutants, summary.KilledMutants, summary.SurvivedMutants, summary.ExcludedMutants,
		summary.MutationScorePct, summary.HighRiskScorePct, summary.Passed, summary.RuntimeSeconds, doc)

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun gets a stored run by ID.
func (s *PostgresStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	var doc []byte
	var savedAt time.Time

	err := s.pool.QueryRow(ctx, `
		SELECT summary, saved_at FROM mutation_runs WHERE run_id = $1
	`, runID).Scan(&doc, &savedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeRecord(doc, savedAt)
}

// LatestRun returns the most recently started run.
func (s *PostgresStore) LatestRun(ctx context.Context) (*model.RunRecord, error) {
	var doc []byte
	var savedAt time.Time

	err := s.pool.QueryRow(ctx, `
		SELECT summary, saved_at FROM mutation_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&doc, &savedAt)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return decodeRecord(doc, savedAt)
}

// ListRuns returns stored runs, most recently started first.
func (s *PostgresStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.pool.Query(ctx, `
		SELECT summary, saved_at FROM mutation_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	records := make([]model.RunRecord, 0)
	for rows.Next() {
		var doc []byte
		var savedAt time.Time
		if err := rows.Scan(&doc, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec, err := decodeRecord(doc, savedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, nil
}

// Stats aggregates all stored runs.
func (s *PostgresStore) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	err := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN passed THEN 1 ELSE 0 END), 0),
			COALESCE(AVG(mutation_score), 0),
			COALESCE(MAX(mutation_score), 0),
			COALESCE(MIN(mutation_score), 0)
		FROM mutation_runs
	`).Scan(&stats.TotalRuns, &stats.PassedRuns, &stats.AvgScore, &stats.BestScore, &stats.WorstScore)

	if err != nil {
		return nil, fmt.Errorf("failed to aggregate runs: %w", err)
	}

	return stats, nil
}

// Ping verifies database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
