// Package db persists gate run history. Two backends share one Store
// interface: an embedded SQLite file for local use and Postgres for
// teams that centralize results on a shared server.
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mutgate-hq/mutgate/internal/config"
	"github.com/mutgate-hq/mutgate/pkg/model"
)

// defaultListLimit bounds ListRuns when the caller passes no limit.
const defaultListLimit = 20

// Store provides run history operations.
type Store interface {
	// SaveRun persists a finalized run summary.
	SaveRun(ctx context.Context, summary *model.RunSummary) error

	// GetRun returns a stored run by ID, or nil when not found.
	GetRun(ctx context.Context, runID string) (*model.RunRecord, error)

	// LatestRun returns the most recently started run, or nil when the
	// history is empty.
	LatestRun(ctx context.Context) (*model.RunRecord, error)

	// ListRuns returns stored runs, most recently started first.
	ListRuns(ctx context.Context, limit int) ([]model.RunRecord, error)

	// Stats aggregates all stored runs.
	Stats(ctx context.Context) (*RunStats, error)

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	Close() error
}

// RunStats aggregates stored runs for trend reporting.
type RunStats struct {
	TotalRuns  int     `json:"total_runs"`
	PassedRuns int     `json:"passed_runs"`
	AvgScore   float64 `json:"avg_score"`
	BestScore  float64 `json:"best_score"`
	WorstScore float64 `json:"worst_score"`
}

// Open selects the history backend: Postgres when a database URL is
// configured, the embedded SQLite file otherwise.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	if cfg.DatabaseURL != "" {
		return NewPostgres(ctx, cfg.DatabaseURL)
	}
	if cfg.HistoryPath == "" {
		return nil, fmt.Errorf("no history backend configured")
	}
	return NewSQLite(cfg.HistoryPath)
}

// decodeRecord rebuilds a run record from the stored summary document.
func decodeRecord(doc []byte, savedAt time.Time) (*model.RunRecord, error) {
	rec := &model.RunRecord{SavedAt: savedAt}
	if err := json.Unmarshal(doc, &rec.RunSummary); err != nil {
		return nil, fmt.Errorf("failed to decode summary: %w", err)
	}
	return rec, nil
}
