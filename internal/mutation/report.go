package mutation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/mutgate-hq/mutgate/pkg/model"
)

// BuildMarkdown renders the run report: a metrics table followed by
// the surviving mutants, if any.
func BuildMarkdown(s *model.RunSummary) string {
	var b strings.Builder

	b.WriteString("# Mutation Gate Report\n\n")
	b.WriteString(fmt.Sprintf("- Run: `%s`\n", s.RunID))
	b.WriteString(fmt.Sprintf("- Date: %s\n", s.StartedAt.Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf("- Profile: %s\n", s.Profile))
	if s.CommitSHA != "" {
		short := s.CommitSHA
		if len(short) > 12 {
			short = short[:12]
		}
		b.WriteString(fmt.Sprintf("- Commit: `%s`", short))
		if s.Branch != "" {
			b.WriteString(fmt.Sprintf(" on `%s`", s.Branch))
		}
		b.WriteString("\n")
	}
	verdict := "PASSED"
	if !s.Passed {
		verdict = "FAILED"
	}
	b.WriteString(fmt.Sprintf("- Gate: **%s**\n\n", verdict))

	b.WriteString("| Metric | Value |\n")
	b.WriteString("|--------|-------|\n")
	b.WriteString(fmt.Sprintf("| Total mutants | %d |\n", s.TotalMutants))
	b.WriteString(fmt.Sprintf("| Killed | %d |\n", s.KilledMutants))
	b.WriteString(fmt.Sprintf("| Survived | %d |\n", s.SurvivedMutants))
	b.WriteString(fmt.Sprintf("| Timed out | %d |\n", s.TimedOutMutants))
	b.WriteString(fmt.Sprintf("| Compile errors | %d |\n", s.CompileErrorMutants))
	b.WriteString(fmt.Sprintf("| Excluded | %d |\n", s.ExcludedMutants))
	b.WriteString(fmt.Sprintf("| Mutation score | %.2f%% |\n", s.MutationScorePct))
	b.WriteString(fmt.Sprintf("| High-risk score | %.2f%% |\n", s.HighRiskScorePct))
	b.WriteString(fmt.Sprintf("| Runtime | %.1fs |\n", s.RuntimeSeconds))
	b.WriteString("\n")

	if s.RuntimeExceeded {
		b.WriteString("> Runtime budget exceeded; results are partial.\n\n")
	}

	if len(s.Violations) > 0 {
		b.WriteString("## Threshold Violations\n\n")
		for _, v := range s.Violations {
			b.WriteString(fmt.Sprintf("- %s\n", v))
		}
		b.WriteString("\n")
	}

	if len(s.Survivors) > 0 {
		b.WriteString("## Surviving Mutants\n\n")
		b.WriteString("| File | Line | Kind | Mutation | Context |\n")
		b.WriteString("|------|------|------|----------|--------|\n")
		for _, sm := range s.Survivors {
			b.WriteString(fmt.Sprintf("| %s | %d | %s | `%s` -> `%s` | `%s` |\n",
				sm.File, sm.Line, sm.Kind, sm.Original, sm.Replacement, sm.Snippet))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// WriteMarkdown writes the markdown report, creating parent
// directories as needed.
func WriteMarkdown(path string, s *model.RunSummary) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(BuildMarkdown(s)), 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// WriteJSON writes the machine-readable summary.
func WriteJSON(path string, s *model.RunSummary) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal summary: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

// LoadSummary reads back a summary written by WriteJSON.
func LoadSummary(path string) (*model.RunSummary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read summary: %w", err)
	}
	var s model.RunSummary
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse summary: %w", err)
	}
	return &s, nil
}

// RenderConsole prints the metrics table to the given writer.
func RenderConsole(w io.Writer, s *model.RunSummary) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Metric", "Value"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	table.AppendBulk([][]string{
		{"Total mutants", strconv.Itoa(s.TotalMutants)},
		{"Killed", strconv.Itoa(s.KilledMutants)},
		{"Survived", strconv.Itoa(s.SurvivedMutants)},
		{"Timed out", strconv.Itoa(s.TimedOutMutants)},
		{"Compile errors", strconv.Itoa(s.CompileErrorMutants)},
		{"Excluded", strconv.Itoa(s.ExcludedMutants)},
		{"Mutation score", fmt.Sprintf("%.2f%% (%s)", s.MutationScorePct, s.Quality())},
		{"High-risk score", fmt.Sprintf("%.2f%%", s.HighRiskScorePct)},
		{"Runtime", fmt.Sprintf("%.1fs", s.RuntimeSeconds)},
	})
	table.Render()
}

// SurvivorDiff renders a unified diff of a surviving mutant's source
// line before and after mutation.
func SurvivorDiff(sm model.SurvivingMutant) (string, error) {
	mutated := sm.MutatedSnippet
	if mutated == "" {
		mutated = strings.Replace(sm.Snippet, sm.Original, sm.Replacement, 1)
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(sm.Snippet + "\n"),
		B:        difflib.SplitLines(mutated + "\n"),
		FromFile: fmt.Sprintf("%s:%d", sm.File, sm.Line),
		ToFile:   fmt.Sprintf("%s:%d (mutated)", sm.File, sm.Line),
		Context:  1,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("failed to render diff: %w", err)
	}
	return text, nil
}
