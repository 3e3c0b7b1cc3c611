// Package mutation implements the mutation gate engine: candidate
// discovery over tree-sitter syntax trees, mutant application and
// restore, test execution, scoring, and report generation.
package mutation

import (
	"fmt"
	"time"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

// Profile selects which mutation operators are enabled for a run.
type Profile string

const (
	// ProfileStable enables boolean literal flips and equality swaps only.
	ProfileStable Profile = "stable"

	// ProfileStrict adds logical connective swaps and relational
	// boundary swaps on top of the stable set.
	ProfileStrict Profile = "strict"
)

// ParseProfile validates a profile name from config or flags.
func ParseProfile(s string) (Profile, error) {
	switch Profile(s) {
	case ProfileStable, ProfileStrict:
		return Profile(s), nil
	default:
		return "", fmt.Errorf("unknown profile %q (expected stable or strict)", s)
	}
}

// Kind identifies the operator family that produced a candidate.
type Kind string

const (
	KindBoolLiteral Kind = "bool-literal"
	KindEquality    Kind = "equality"
	KindConnective  Kind = "connective"
	KindBoundary    Kind = "boundary"
)

// Candidate is a single point mutation discovered in a source file. The
// byte span refers to the file content at collection time; Apply
// revalidates it before anything is written.
type Candidate struct {
	// File is the path of the source file the candidate lives in
	File string `json:"file"`

	// Line and Column are 1-based and point at the mutated token
	Line   int `json:"line"`
	Column int `json:"column"`

	// ByteOffset and ByteEnd delimit the original text, half-open
	ByteOffset int `json:"byte_offset"`
	ByteEnd    int `json:"byte_end"`

	// OriginalText is the exact text being replaced
	OriginalText string `json:"original_text"`

	// ReplacementText is what gets written in its place
	ReplacementText string `json:"replacement_text"`

	// Kind is the operator family that produced the candidate
	Kind Kind `json:"kind"`

	// ContextSnippet is the trimmed source line, for reports
	ContextSnippet string `json:"context_snippet"`
}

// RunResult captures one test command execution. Test failures are
// encoded here, never as Go errors.
type RunResult struct {
	// ExitCode is the command's exit status; -1 on timeout
	ExitCode int `json:"exit_code"`

	// CombinedOutput interleaves stdout and stderr
	CombinedOutput string `json:"combined_output,omitempty"`

	// TimedOut reports that the per-mutant timeout fired
	TimedOut bool `json:"timed_out"`
}

// Killed reports whether this execution kills a mutant. Exit code zero
// means the suite passed and the mutant survived; everything else,
// timeouts included, is a kill.
func (r RunResult) Killed() bool {
	return r.TimedOut || r.ExitCode != 0
}

// Outcome is the classification of one attempted mutant.
type Outcome struct {
	Candidate Candidate
	Status    model.MutantStatus

	// Kill is set only when Status is killed
	Kill model.KillKind

	// MutatedSnippet is the trimmed source line after mutation
	MutatedSnippet string
}

// GateConfig holds the resolved settings of one gate run after
// defaults, project config, and flags have been merged.
type GateConfig struct {
	// TargetsPath points at the source_file|test_command list
	TargetsPath string

	// ExcludesPath points at the source_file|line|reason list; empty
	// means no exclusions
	ExcludesPath string

	// ReportPath is where the markdown report is written
	ReportPath string

	// JSONPath is where the machine-readable summary is written;
	// empty disables it
	JSONPath string

	// WorkDir is the directory test commands run in
	WorkDir string

	// MaxMutantsPerFile caps candidates per target, first N in
	// source order
	MaxMutantsPerFile int

	// MutantTimeout bounds a single test command execution
	MutantTimeout time.Duration

	// RuntimeBudget bounds the whole run; when exceeded the run
	// stops early and reports partial results
	RuntimeBudget time.Duration

	// HighRisk lists source files whose kills are scored separately;
	// empty means the first three targets
	HighRisk []string

	// Profile selects the enabled operator set
	Profile Profile

	// MinScore is the overall mutation score threshold in percent
	MinScore float64

	// MinHighRiskScore is the high-risk score threshold in percent
	MinHighRiskScore float64

	// FailOnThreshold makes threshold violations fail the gate
	FailOnThreshold bool
}

// DefaultGateConfig returns the gate defaults.
func DefaultGateConfig() GateConfig {
	return GateConfig{
		TargetsPath:       "targets.txt",
		ReportPath:        "mutation-report.md",
		WorkDir:           ".",
		MaxMutantsPerFile: 4,
		MutantTimeout:     45 * time.Second,
		RuntimeBudget:     300 * time.Second,
		Profile:           ProfileStable,
		MinScore:          75,
		MinHighRiskScore:  85,
		FailOnThreshold:   true,
	}
}

// Validate checks the config before a run starts. Violations here are
// fatal; nothing has been mutated yet.
func (c *GateConfig) Validate() error {
	if c.TargetsPath == "" {
		return fmt.Errorf("targets path is required")
	}
	if c.MaxMutantsPerFile <= 0 {
		return fmt.Errorf("max mutants per file must be positive, got %d", c.MaxMutantsPerFile)
	}
	if c.MutantTimeout <= 0 {
		return fmt.Errorf("mutant timeout must be positive, got %s", c.MutantTimeout)
	}
	if c.RuntimeBudget <= 0 {
		return fmt.Errorf("runtime budget must be positive, got %s", c.RuntimeBudget)
	}
	if _, err := ParseProfile(string(c.Profile)); err != nil {
		return err
	}
	if c.MinScore < 0 || c.MinScore > 100 {
		return fmt.Errorf("min score must be between 0 and 100, got %.2f", c.MinScore)
	}
	if c.MinHighRiskScore < 0 || c.MinHighRiskScore > 100 {
		return fmt.Errorf("min high-risk score must be between 0 and 100, got %.2f", c.MinHighRiskScore)
	}
	return nil
}
