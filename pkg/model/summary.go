// Package model defines the public result model of a mutation gate run -
// the JSON contract shared by the report writer, the history store, the
// HTTP API, and anything downstream that consumes run artifacts.
package model

import "time"

// MutantStatus classifies one attempted mutant.
type MutantStatus string

const (
	StatusKilled   MutantStatus = "killed"
	StatusSurvived MutantStatus = "survived"
)

// KillKind sub-classifies a killed mutant. Informational only: it never
// changes kill/survive status, it distinguishes "the suite caught a real
// behavioral change" from "the mutation broke the build".
type KillKind string

const (
	KillSemantic     KillKind = "semantic"
	KillTimeout      KillKind = "timeout"
	KillCompileError KillKind = "compile-error"
)

// Score quality bands for display purposes.
const (
	ThresholdGood       = 80.0
	ThresholdAcceptable = 60.0
)

// SurvivingMutant is one row of the report's survivors table: a mutation
// the test suite failed to notice.
type SurvivingMutant struct {
	File        string `json:"file"`
	Line        int    `json:"line"`
	Kind        string `json:"kind"`
	Original    string `json:"original"`
	Replacement string `json:"replacement"`
	Snippet     string `json:"snippet,omitempty"`

	// MutatedSnippet is the same line after the mutation was applied,
	// captured while the mutant was on disk
	MutatedSnippet string `json:"mutated_snippet,omitempty"`
}

// RunSummary is the finalized outcome of one gate run.
type RunSummary struct {
	// Identity
	RunID     string    `json:"run_id"`
	StartedAt time.Time `json:"started_at"`
	Profile   string    `json:"profile"`
	CommitSHA string    `json:"commit_sha,omitempty"`
	Branch    string    `json:"branch,omitempty"`

	// Counters; TotalMutants counts attempted mutants only, excluded
	// mutants are never attempted
	TotalMutants        int `json:"total_mutants"`
	KilledMutants       int `json:"killed_mutants"`
	SurvivedMutants     int `json:"survived_mutants"`
	TimedOutMutants     int `json:"timed_out_mutants"`
	CompileErrorMutants int `json:"compile_error_mutants"`
	ExcludedMutants     int `json:"excluded_mutants"`

	// High-risk subset
	HighRiskTotal  int `json:"high_risk_total"`
	HighRiskKilled int `json:"high_risk_killed"`

	// Scores, percentages to two decimals
	MutationScorePct float64 `json:"mutation_score_pct"`
	HighRiskScorePct float64 `json:"high_risk_score_pct"`

	// Runtime
	RuntimeSeconds  float64 `json:"runtime_seconds"`
	RuntimeExceeded bool    `json:"runtime_exceeded"`

	// Gate decision
	Passed     bool     `json:"passed"`
	Violations []string `json:"violations,omitempty"`

	// Most recent survivors, bounded for reporting
	Survivors []SurvivingMutant `json:"survivors,omitempty"`
}

// Quality returns a display label for the mutation score.
func (s *RunSummary) Quality() string {
	if s.MutationScorePct >= ThresholdGood {
		return "good"
	}
	if s.MutationScorePct >= ThresholdAcceptable {
		return "acceptable"
	}
	return "poor"
}

// Attempted reports whether any mutant was actually run.
func (s *RunSummary) Attempted() bool {
	return s.TotalMutants > 0
}

// RunRecord is a run summary as persisted by the history store.
type RunRecord struct {
	RunSummary
	SavedAt time.Time `json:"saved_at"`
}
