package mutation

import (
	"math"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

// maxSurvivorsKept bounds the survivor detail carried into reports.
// When more mutants survive, the most recent ones are kept.
const maxSurvivorsKept = 25

// Tally accumulates per-mutant outcomes across a run. Excluded
// candidates are counted separately and never enter the totals, so the
// score denominator is attempted mutants only.
type Tally struct {
	Total         int
	Killed        int
	Survived      int
	TimedOut      int
	CompileErrors int
	Excluded      int

	HighTotal  int
	HighKilled int

	survivors []model.SurvivingMutant
}

// NewTally returns an empty accumulator.
func NewTally() *Tally {
	return &Tally{}
}

// Record folds one attempted mutant into the tally. highRisk marks
// mutants from high-risk targets, which feed the separate score.
func (t *Tally) Record(out Outcome, highRisk bool) {
	t.Total++
	if highRisk {
		t.HighTotal++
	}

	switch out.Status {
	case model.StatusKilled:
		t.Killed++
		if highRisk {
			t.HighKilled++
		}
		switch out.Kill {
		case model.KillTimeout:
			t.TimedOut++
		case model.KillCompileError:
			t.CompileErrors++
		}
	case model.StatusSurvived:
		t.Survived++
		t.recordSurvivor(out)
	}
}

// RecordExcluded counts a candidate suppressed by the exclusion list.
func (t *Tally) RecordExcluded() {
	t.Excluded++
}

func (t *Tally) recordSurvivor(out Outcome) {
	sm := model.SurvivingMutant{
		File:           out.Candidate.File,
		Line:           out.Candidate.Line,
		Kind:           string(out.Candidate.Kind),
		Original:       out.Candidate.OriginalText,
		Replacement:    out.Candidate.ReplacementText,
		Snippet:        out.Candidate.ContextSnippet,
		MutatedSnippet: out.MutatedSnippet,
	}
	if len(t.survivors) == maxSurvivorsKept {
		copy(t.survivors, t.survivors[1:])
		t.survivors[len(t.survivors)-1] = sm
		return
	}
	t.survivors = append(t.survivors, sm)
}

// MutationScore is killed over attempted, in percent. An empty run
// scores zero rather than dividing by zero.
func (t *Tally) MutationScore() float64 {
	if t.Total == 0 {
		return 0
	}
	return roundPct(float64(t.Killed) / float64(t.Total) * 100)
}

// HighRiskScore is the kill rate over high-risk mutants, in percent.
// With no high-risk mutants attempted it reports 100 so the high-risk
// threshold cannot fail a run that never touched high-risk code.
func (t *Tally) HighRiskScore() float64 {
	if t.HighTotal == 0 {
		return 100
	}
	return roundPct(float64(t.HighKilled) / float64(t.HighTotal) * 100)
}

// Summary snapshots the tally into the public result model. Identity,
// runtime, and gate fields are filled by the caller.
func (t *Tally) Summary() model.RunSummary {
	survivors := make([]model.SurvivingMutant, len(t.survivors))
	copy(survivors, t.survivors)

	return model.RunSummary{
		TotalMutants:        t.Total,
		KilledMutants:       t.Killed,
		SurvivedMutants:     t.Survived,
		TimedOutMutants:     t.TimedOut,
		CompileErrorMutants: t.CompileErrors,
		ExcludedMutants:     t.Excluded,
		HighRiskTotal:       t.HighTotal,
		HighRiskKilled:      t.HighKilled,
		MutationScorePct:    t.MutationScore(),
		HighRiskScorePct:    t.HighRiskScore(),
		Survivors:           survivors,
	}
}

// roundPct rounds to two decimal places, the precision reports use.
func roundPct(v float64) float64 {
	return math.Round(v*100) / 100
}
