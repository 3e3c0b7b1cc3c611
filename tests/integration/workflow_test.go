// Package integration provides end-to-end tests for full gate workflows.
package integration

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mutgate-hq/mutgate/internal/api"
	"github.com/mutgate-hq/mutgate/internal/config"
	"github.com/mutgate-hq/mutgate/internal/db"
	"github.com/mutgate-hq/mutgate/internal/mutation"
	"github.com/mutgate-hq/mutgate/pkg/model"
)

const pricingSource = `def discount(total, rate):
    if total > 100:
        return total * rate
    return total
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

// runDemoGate runs the gate over a one-file project whose test command
// is a grep oracle: it fails whenever the guarded comparison changes.
func runDemoGate(t *testing.T, dir string) *model.RunSummary {
	t.Helper()

	src := filepath.Join(dir, "pricing.py")
	writeFile(t, src, pricingSource)
	writeFile(t, filepath.Join(dir, "targets.txt"),
		fmt.Sprintf("%s|grep -q 'total > 100' %s\n", src, src))

	cfg := mutation.DefaultGateConfig()
	cfg.TargetsPath = filepath.Join(dir, "targets.txt")
	cfg.ReportPath = filepath.Join(dir, "mutation-report.md")
	cfg.JSONPath = filepath.Join(dir, "run.json")
	cfg.WorkDir = dir
	cfg.Profile = mutation.ProfileStrict
	cfg.MutantTimeout = 10 * time.Second
	cfg.MinScore = 10
	cfg.MinHighRiskScore = 10

	gate, err := mutation.NewGate(cfg)
	if err != nil {
		t.Fatalf("NewGate() error: %v", err)
	}

	summary, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	return summary
}

func TestGateToHistoryWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()

	summary := runDemoGate(t, dir)
	if summary.TotalMutants == 0 {
		t.Fatal("gate found no mutants in the demo project")
	}
	if summary.KilledMutants == 0 {
		t.Error("the grep oracle should kill at least the comparison mutant")
	}

	store, err := db.NewSQLite(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, summary); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	latest, err := store.LatestRun(ctx)
	if err != nil {
		t.Fatalf("LatestRun() error: %v", err)
	}
	if latest == nil || latest.RunID != summary.RunID {
		t.Fatalf("LatestRun() = %v, want run %s", latest, summary.RunID)
	}
	if latest.MutationScorePct != summary.MutationScorePct {
		t.Errorf("stored score = %.2f, want %.2f", latest.MutationScorePct, summary.MutationScorePct)
	}
}

func TestGateToServerWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()
	ctx := context.Background()

	summary := runDemoGate(t, dir)

	store, err := db.NewSQLite(filepath.Join(dir, "history.db"))
	if err != nil {
		t.Fatalf("NewSQLite() error: %v", err)
	}
	defer store.Close()

	if err := store.SaveRun(ctx, summary); err != nil {
		t.Fatalf("SaveRun() error: %v", err)
	}

	srv, err := api.NewServer(&config.Config{APIPort: 8675}, store)
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("GET /api/v1/runs/latest = %d, want 200", rec.Code)
	}

	var got model.RunRecord
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.RunID != summary.RunID {
		t.Errorf("served run_id = %s, want %s", got.RunID, summary.RunID)
	}
	if got.TotalMutants != summary.TotalMutants {
		t.Errorf("served total_mutants = %d, want %d", got.TotalMutants, summary.TotalMutants)
	}
}

func TestGateArtifactsWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()

	summary := runDemoGate(t, dir)

	// JSON summary round-trips through the loader the report command uses
	loaded, err := mutation.LoadSummary(filepath.Join(dir, "run.json"))
	if err != nil {
		t.Fatalf("LoadSummary() error: %v", err)
	}
	if loaded.RunID != summary.RunID {
		t.Errorf("loaded run_id = %s, want %s", loaded.RunID, summary.RunID)
	}
	if loaded.TotalMutants != summary.TotalMutants {
		t.Errorf("loaded total_mutants = %d, want %d", loaded.TotalMutants, summary.TotalMutants)
	}

	// Markdown report was written and names the target
	report, err := os.ReadFile(filepath.Join(dir, "mutation-report.md"))
	if err != nil {
		t.Fatalf("report not written: %v", err)
	}
	if len(report) == 0 {
		t.Fatal("report is empty")
	}

	// Survivor diffs render when anything survived
	for _, sm := range loaded.Survivors {
		diff, err := mutation.SurvivorDiff(sm)
		if err != nil {
			t.Errorf("SurvivorDiff(%s:%d) error: %v", sm.File, sm.Line, err)
		}
		if diff == "" {
			t.Errorf("SurvivorDiff(%s:%d) returned empty diff", sm.File, sm.Line)
		}
	}

	// The source file is byte-identical after the run
	content, err := os.ReadFile(filepath.Join(dir, "pricing.py"))
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != pricingSource {
		t.Error("source file was not restored after the run")
	}
}

func TestMultiLanguageWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	dir := t.TempDir()

	pySrc := filepath.Join(dir, "guard.py")
	writeFile(t, pySrc, "def ok(v):\n    if v == 1:\n        return True\n    return False\n")

	jsSrc := filepath.Join(dir, "guard.js")
	writeFile(t, jsSrc, "function ok(v) {\n  if (v === 1) {\n    return true;\n  }\n  return false;\n}\n")

	goSrc := filepath.Join(dir, "guard.go")
	writeFile(t, goSrc, "package guard\n\nfunc OK(v int) bool {\n\tif v == 1 {\n\t\treturn true\n\t}\n\treturn false\n}\n")

	targets := fmt.Sprintf("%s|grep -q 'v == 1' %s\n%s|grep -q 'v === 1' %s\n%s|grep -q 'v == 1' %s\n",
		pySrc, pySrc, jsSrc, jsSrc, goSrc, goSrc)
	writeFile(t, filepath.Join(dir, "targets.txt"), targets)

	cfg := mutation.DefaultGateConfig()
	cfg.TargetsPath = filepath.Join(dir, "targets.txt")
	cfg.ReportPath = filepath.Join(dir, "mutation-report.md")
	cfg.WorkDir = dir
	cfg.MutantTimeout = 10 * time.Second
	cfg.MinScore = 10
	cfg.MinHighRiskScore = 10

	gate, err := mutation.NewGate(cfg)
	if err != nil {
		t.Fatalf("NewGate() error: %v", err)
	}

	summary, err := gate.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	// Every language contributes at least the equality mutant, and the
	// grep oracles kill the ones on the guarded line
	if summary.TotalMutants < 3 {
		t.Errorf("TotalMutants = %d, want at least one per language", summary.TotalMutants)
	}
	if summary.KilledMutants < 3 {
		t.Errorf("KilledMutants = %d, want the guarded comparison killed in each file", summary.KilledMutants)
	}
}
