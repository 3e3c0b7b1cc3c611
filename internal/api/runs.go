package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

// RunListItem is one row of the run listing, without survivor detail
type RunListItem struct {
	RunID            string  `json:"run_id"`
	StartedAt        string  `json:"started_at"`
	Profile          string  `json:"profile"`
	CommitSHA        string  `json:"commit_sha,omitempty"`
	Branch           string  `json:"branch,omitempty"`
	TotalMutants     int     `json:"total_mutants"`
	KilledMutants    int     `json:"killed_mutants"`
	SurvivedMutants  int     `json:"survived_mutants"`
	MutationScorePct float64 `json:"mutation_score_pct"`
	HighRiskScorePct float64 `json:"high_risk_score_pct"`
	Quality          string  `json:"quality"`
	Passed           bool    `json:"passed"`
}

// listRuns lists stored runs, most recent first
func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := s.store.ListRuns(r.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("failed to list runs")
		respondError(w, http.StatusInternalServerError, "failed to list runs")
		return
	}

	items := make([]*RunListItem, len(records))
	for i := range records {
		items[i] = runToListItem(&records[i])
	}

	respondJSON(w, http.StatusOK, items)
}

// getRun returns one stored run with full survivor detail
func (s *Server) getRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")
	if _, err := uuid.Parse(runID); err != nil {
		respondError(w, http.StatusBadRequest, "invalid run ID")
		return
	}

	rec, err := s.store.GetRun(r.Context(), runID)
	if err != nil {
		log.Error().Err(err).Msg("failed to get run")
		respondError(w, http.StatusInternalServerError, "failed to get run")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "run not found")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// latestRun returns the most recently started run
func (s *Server) latestRun(w http.ResponseWriter, r *http.Request) {
	rec, err := s.store.LatestRun(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to get latest run")
		respondError(w, http.StatusInternalServerError, "failed to get latest run")
		return
	}
	if rec == nil {
		respondError(w, http.StatusNotFound, "no runs recorded")
		return
	}

	respondJSON(w, http.StatusOK, rec)
}

// getStats returns aggregate statistics over all stored runs
func (s *Server) getStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to aggregate runs")
		respondError(w, http.StatusInternalServerError, "failed to aggregate runs")
		return
	}

	respondJSON(w, http.StatusOK, stats)
}

func runToListItem(rec *model.RunRecord) *RunListItem {
	return &RunListItem{
		RunID:            rec.RunID,
		StartedAt:        rec.StartedAt.UTC().Format(time.RFC3339),
		Profile:          rec.Profile,
		CommitSHA:        rec.CommitSHA,
		Branch:           rec.Branch,
		TotalMutants:     rec.TotalMutants,
		KilledMutants:    rec.KilledMutants,
		SurvivedMutants:  rec.SurvivedMutants,
		MutationScorePct: rec.MutationScorePct,
		HighRiskScorePct: rec.HighRiskScorePct,
		Quality:          rec.Quality(),
		Passed:           rec.Passed,
	}
}
