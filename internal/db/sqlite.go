package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

// Fixed-width RFC 3339 so lexicographic order in SQLite matches time order.
const sqliteTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS mutation_runs (
	run_id TEXT PRIMARY KEY,
	started_at TEXT NOT NULL,
	profile TEXT NOT NULL,
	commit_sha TEXT NOT NULL DEFAULT '',
	branch TEXT NOT NULL DEFAULT '',
	total_mutants INTEGER NOT NULL,
	killed_mutants INTEGER NOT NULL,
	survived_mutants INTEGER NOT NULL,
	excluded_mutants INTEGER NOT NULL,
	mutation_score REAL NOT NULL,
	high_risk_score REAL NOT NULL,
	passed INTEGER NOT NULL,
	runtime_seconds REAL NOT NULL,
	summary TEXT NOT NULL,
	saved_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_mutation_runs_started_at ON mutation_runs (started_at DESC);
`

// SQLiteStore persists run history in an embedded SQLite file. It is the
// default backend and needs no server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens the history database at path, creating the file and
// its parent directory when missing.
func NewSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create history directory: %w", err)
		}
	}

	sdb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	// The embedded driver serializes writers; a single connection avoids
	// SQLITE_BUSY under concurrent access.
	sdb.SetMaxOpenConns(1)

	if _, err := sdb.Exec(sqliteSchema); err != nil {
		sdb.Close()
		return nil, fmt.Errorf("failed to ensure schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("opened history database")

	return &SQLiteStore{db: sdb}, nil
}

// SaveRun persists a finalized run summary.
func (s *SQLiteStore) SaveRun(ctx context.Context, summary *model.RunSummary) error {
	doc, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO mutation_runs (run_id, started_at, profile, commit_sha, branch,
			total_mutants, killed_mutants, survived_mutants, excluded_mutants,
			mutation_score, high_risk_score, passed, runtime_seconds, summary, saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, summary.RunID, summary.StartedAt.UTC().Format(sqliteTimeLayout), summary.Profile,
		summary.CommitSHA, summary.Branch,
		summary.TotalMutants, summary.KilledMutants, summary.SurvivedMutants, summary.ExcludedMutants,
		summary.MutationScorePct, summary.HighRiskScorePct, boolToInt(summary.Passed),
		summary.RuntimeSeconds, string(doc), time.Now().UTC().Format(sqliteTimeLayout))

	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

// GetRun gets a stored run by ID.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*model.RunRecord, error) {
	var doc, savedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT summary, saved_at FROM mutation_runs WHERE run_id = ?
	`, runID).Scan(&doc, &savedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return decodeRecord([]byte(doc), parseStoredTime(savedAt))
}

// LatestRun returns the most recently started run.
func (s *SQLiteStore) LatestRun(ctx context.Context) (*model.RunRecord, error) {
	var doc, savedAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT summary, saved_at FROM mutation_runs
		ORDER BY started_at DESC
		LIMIT 1
	`).Scan(&doc, &savedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return decodeRecord([]byte(doc), parseStoredTime(savedAt))
}

// ListRuns returns stored runs, most recently started first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT summary, saved_at FROM mutation_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	records := make([]model.RunRecord, 0)
	for rows.Next() {
		var doc, savedAt string
		if err := rows.Scan(&doc, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		rec, err := decodeRecord([]byte(doc), parseStoredTime(savedAt))
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}

	return records, nil
}

// Stats aggregates all stored runs.
func (s *SQLiteStore) Stats(ctx context.Context) (*RunStats, error) {
	stats := &RunStats{}

	err := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(passed), 0),
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

// Ping verifies the database file is usable.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database file.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseStoredTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
