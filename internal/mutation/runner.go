package mutation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mutgate-hq/mutgate/internal/gitmeta"
	"github.com/mutgate-hq/mutgate/internal/parser"
	"github.com/mutgate-hq/mutgate/internal/targets"
	"github.com/mutgate-hq/mutgate/pkg/model"
)

// RestoreError means a mutated file could not be restored. The working
// tree is dirty at that point, so the run aborts instead of continuing
// over corrupted sources.
type RestoreError struct {
	File string
	Err  error
}

func (e *RestoreError) Error() string {
	return fmt.Sprintf("failed to restore %s after mutation: %v", e.File, e.Err)
}

func (e *RestoreError) Unwrap() error { return e.Err }

// Gate orchestrates a mutation run end to end: collect candidates per
// target, apply each mutant, run the target's test command, restore
// the file, and fold the outcome into the score.
type Gate struct {
	cfg        GateConfig
	parser     *parser.Parser
	executor   *Executor
	classifier FailureClassifier
}

// NewGate validates the config and assembles the engine with the
// default failure classifier.
func NewGate(cfg GateConfig) (*Gate, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Gate{
		cfg:        cfg,
		parser:     parser.NewParser(),
		executor:   NewExecutor(cfg.WorkDir),
		classifier: DefaultClassifier(),
	}, nil
}

// SetClassifier swaps the failure classifier, for toolchains whose
// diagnostics the default signatures miss.
func (g *Gate) SetClassifier(fc FailureClassifier) {
	if fc != nil {
		g.classifier = fc
	}
}

// Run executes the gate and returns the finalized summary. The error
// return covers fatal conditions only: unreadable inputs or a failed
// restore. Threshold violations are a normal result, reported through
// the summary's Passed and Violations fields.
//
// Mutants run strictly one at a time; at most one mutation is on disk
// at any moment, and it is restored before the next attempt starts.
func (g *Gate) Run(ctx context.Context) (*model.RunSummary, error) {
	start := time.Now()
	runID := uuid.New().String()

	targetList, err := targets.LoadTargets(g.cfg.TargetsPath)
	if err != nil {
		return nil, err
	}

	var excludes *targets.ExcludeSet
	if g.cfg.ExcludesPath != "" {
		excludes, err = targets.LoadExcludes(g.cfg.ExcludesPath)
		if err != nil {
			return nil, err
		}
	} else {
		excludes = targets.NewExcludeSet(nil)
	}

	highRisk := g.highRiskSet(targetList)

	log.Info().
		Str("run_id", runID).
		Str("profile", string(g.cfg.Profile)).
		Int("targets", len(targetList)).
		Int("excludes", excludes.Len()).
		Msg("mutation gate starting")

	tally := NewTally()
	exceeded := false

	for _, tgt := range targetList {
		if exceeded {
			break
		}

		tlog := log.With().Str("target", tgt.SourceFile).Logger()

		original, candidates, cerr := g.collectTarget(ctx, tgt)
		if cerr != nil {
			tlog.Warn().Err(cerr).Msg("skipping target")
			continue
		}
		if len(candidates) == 0 {
			tlog.Info().Msg("no mutation candidates")
			continue
		}
		tlog.Debug().Int("candidates", len(candidates)).Msg("candidates collected")

		for _, cand := range candidates {
			if time.Since(start) >= g.cfg.RuntimeBudget {
				exceeded = true
				log.Warn().
					Dur("elapsed", time.Since(start)).
					Msg("runtime budget exceeded, stopping early")
				break
			}

			if excl, ok := excludes.Lookup(cand.File, cand.Line); ok {
				tally.RecordExcluded()
				tlog.Debug().
					Int("line", cand.Line).
					Str("reason", excl.Reason).
					Msg("candidate excluded")
				continue
			}

			outcome, aerr := g.attempt(ctx, tgt, original, cand)
			if aerr != nil {
				var rerr *RestoreError
				if errors.As(aerr, &rerr) {
					return nil, rerr
				}
				tlog.Warn().Err(aerr).Int("line", cand.Line).Msg("skipping mutant")
				continue
			}

			tally.Record(outcome, highRisk[tgt.SourceFile])
			tlog.Debug().
				Int("line", cand.Line).
				Str("kind", string(cand.Kind)).
				Str("status", string(outcome.Status)).
				Msg("mutant attempted")
		}
	}

	elapsed := time.Since(start)

	summary := tally.Summary()
	summary.RunID = runID
	summary.StartedAt = start
	summary.Profile = string(g.cfg.Profile)
	summary.RuntimeSeconds = roundPct(elapsed.Seconds())
	summary.RuntimeExceeded = exceeded

	if info, gerr := gitmeta.Describe(g.cfg.WorkDir); gerr == nil {
		summary.CommitSHA = info.CommitSHA
		summary.Branch = info.Branch
	} else {
		log.Debug().Err(gerr).Msg("run not stamped with repository metadata")
	}

	summary.Violations = g.violations(&summary)
	summary.Passed = !(len(summary.Violations) > 0 && g.cfg.FailOnThreshold)

	if werr := WriteMarkdown(g.cfg.ReportPath, &summary); werr != nil {
		log.Error().Err(werr).Str("path", g.cfg.ReportPath).Msg("failed to write markdown report")
	}
	if g.cfg.JSONPath != "" {
		if werr := WriteJSON(g.cfg.JSONPath, &summary); werr != nil {
			log.Error().Err(werr).Str("path", g.cfg.JSONPath).Msg("failed to write json summary")
		}
	}

	log.Info().
		Str("run_id", runID).
		Int("total", summary.TotalMutants).
		Int("killed", summary.KilledMutants).
		Int("survived", summary.SurvivedMutants).
		Float64("score", summary.MutationScorePct).
		Bool("passed", summary.Passed).
		Dur("elapsed", elapsed).
		Msg("mutation gate complete")

	return &summary, nil
}

// resolve joins relative paths onto the working directory. Candidate
// and exclusion identity keeps the path exactly as written in the
// targets file; only disk access goes through here.
func (g *Gate) resolve(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(g.cfg.WorkDir, p)
}

// collectTarget parses one target and returns its original content
// alongside the first N candidates in source order.
func (g *Gate) collectTarget(ctx context.Context, tgt targets.Target) ([]byte, []Candidate, error) {
	parsed, err := g.parser.ParseFile(ctx, g.resolve(tgt.SourceFile))
	if err != nil {
		return nil, nil, err
	}
	defer parsed.Close()

	candidates := Collect(parsed, g.cfg.Profile)
	if len(candidates) > g.cfg.MaxMutantsPerFile {
		candidates = candidates[:g.cfg.MaxMutantsPerFile]
	}
	for i := range candidates {
		candidates[i].File = tgt.SourceFile
	}
	return parsed.Source, candidates, nil
}

// highRiskSet resolves the high-risk file set: the configured list, or
// the first three targets when none is configured.
func (g *Gate) highRiskSet(list []targets.Target) map[string]bool {
	set := make(map[string]bool)
	if len(g.cfg.HighRisk) > 0 {
		for _, f := range g.cfg.HighRisk {
			set[f] = true
		}
		return set
	}
	for i, tgt := range list {
		if i == 3 {
			break
		}
		set[tgt.SourceFile] = true
	}
	return set
}

// attempt runs one mutant through apply, execute, restore, classify.
// Once the mutant is on disk the restore runs on every path; a restore
// failure surfaces as *RestoreError and overrides any other error.
func (g *Gate) attempt(ctx context.Context, tgt targets.Target, original []byte, cand Candidate) (out Outcome, err error) {
	mutated, ok := Apply(original, cand)
	if !ok {
		return out, fmt.Errorf("stale candidate at %s:%d, file changed since collection", cand.File, cand.Line)
	}

	diskPath := g.resolve(cand.File)
	mode := fileMode(diskPath)
	if werr := os.WriteFile(diskPath, mutated, mode); werr != nil {
		return out, fmt.Errorf("failed to write mutant: %w", werr)
	}
	defer func() {
		if rerr := os.WriteFile(diskPath, original, mode); rerr != nil {
			err = &RestoreError{File: cand.File, Err: rerr}
		}
	}()

	result, runErr := g.executor.Run(ctx, tgt.TestCommand, g.cfg.MutantTimeout)
	if runErr != nil {
		return out, runErr
	}

	out = classifyOutcome(cand, result, g.classifier)
	out.MutatedSnippet = snippetAt(mutated, cand.ByteOffset)
	return out, nil
}

func fileMode(path string) fs.FileMode {
	if info, err := os.Stat(path); err == nil {
		return info.Mode().Perm()
	}
	return 0644
}

// classifyOutcome maps an execution result onto kill/survive, with
// kills sub-classified for reporting.
func classifyOutcome(cand Candidate, result RunResult, fc FailureClassifier) Outcome {
	out := Outcome{Candidate: cand}
	if !result.Killed() {
		out.Status = model.StatusSurvived
		return out
	}

	out.Status = model.StatusKilled
	switch {
	case result.TimedOut:
		out.Kill = model.KillTimeout
	case fc.Classify(result.CombinedOutput) == FailureCompile:
		out.Kill = model.KillCompileError
	default:
		out.Kill = model.KillSemantic
	}
	return out
}

// violations compares a finalized summary against the configured
// thresholds. Score thresholds apply only when mutants were attempted,
// so an empty corpus cannot fail the gate on its zero score.
func (g *Gate) violations(s *model.RunSummary) []string {
	var v []string
	if s.Attempted() && s.MutationScorePct < g.cfg.MinScore {
		v = append(v, fmt.Sprintf("mutation score %.2f%% below minimum %.2f%%", s.MutationScorePct, g.cfg.MinScore))
	}
	if s.HighRiskScorePct < g.cfg.MinHighRiskScore {
		v = append(v, fmt.Sprintf("high-risk score %.2f%% below minimum %.2f%%", s.HighRiskScorePct, g.cfg.MinHighRiskScore))
	}
	if s.RuntimeExceeded {
		v = append(v, fmt.Sprintf("runtime budget %s exceeded after %.1fs", g.cfg.RuntimeBudget, s.RuntimeSeconds))
	}
	return v
}
