package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/config"
	"github.com/mutgate-hq/mutgate/internal/db"
	"github.com/mutgate-hq/mutgate/internal/mutation"
	"github.com/mutgate-hq/mutgate/pkg/model"
)

// runOptions holds the flag values of the run command. Only flags the
// user actually set override the project config.
type runOptions struct {
	targets         string
	excludes        string
	report          string
	jsonOut         string
	workDir         string
	profile         string
	maxMutants      int
	timeoutSec      int
	budgetSec       int
	highRisk        []string
	minScore        float64
	minHighRisk     float64
	failOnThreshold bool
	noHistory       bool
}

func runCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the mutation gate",
		Long: `Mutate the decision logic of each target file, run the paired test
command against every mutant, and compare the resulting scores against
the configured minimums.

Examples:
  mutgate run                                   # targets.txt in the current directory
  mutgate run -t ci-targets.txt --profile strict
  mutgate run -d ./service --min-score 80 --json run.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			proj, err := config.LoadProjectConfig(opts.workDir)
			if err != nil {
				return fmt.Errorf("failed to load project config: %w", err)
			}

			gateCfg := resolveGateConfig(proj, opts, cmd.Flags().Changed)

			workDir, err := validateDirPath(gateCfg.WorkDir)
			if err != nil {
				return fmt.Errorf("invalid working directory: %w", err)
			}
			gateCfg.WorkDir = workDir
			resolveArtifactPaths(&gateCfg)

			gate, err := mutation.NewGate(gateCfg)
			if err != nil {
				return err
			}

			summary, err := gate.Run(ctx)
			if err != nil {
				return err
			}

			fmt.Println()
			mutation.RenderConsole(os.Stdout, summary)

			if !opts.noHistory {
				persistRun(ctx, summary)
			}

			return printVerdict(summary)
		},
	}

	cmd.Flags().StringVarP(&opts.targets, "targets", "t", "targets.txt", "Targets file (source_file|test_command per line)")
	cmd.Flags().StringVarP(&opts.excludes, "excludes", "e", "", "Excludes file (source_file|line|reason per line)")
	cmd.Flags().StringVarP(&opts.report, "report", "r", "mutation-report.md", "Markdown report output path")
	cmd.Flags().StringVar(&opts.jsonOut, "json", "", "JSON summary output path")
	cmd.Flags().StringVarP(&opts.workDir, "dir", "d", ".", "Directory test commands run in")
	cmd.Flags().StringVarP(&opts.profile, "profile", "p", "stable", "Operator profile (stable, strict)")
	cmd.Flags().IntVar(&opts.maxMutants, "max-mutants", 4, "Maximum mutants per target file")
	cmd.Flags().IntVar(&opts.timeoutSec, "timeout", 45, "Per-mutant test timeout in seconds")
	cmd.Flags().IntVar(&opts.budgetSec, "budget", 300, "Whole-run budget in seconds")
	cmd.Flags().StringSliceVar(&opts.highRisk, "high-risk", nil, "High-risk source files, comma separated")
	cmd.Flags().Float64Var(&opts.minScore, "min-score", 75, "Minimum mutation score in percent")
	cmd.Flags().Float64Var(&opts.minHighRisk, "min-high-risk-score", 85, "Minimum high-risk score in percent")
	cmd.Flags().BoolVar(&opts.failOnThreshold, "fail-on-threshold", true, "Exit non-zero when a threshold is violated")
	cmd.Flags().BoolVar(&opts.noHistory, "no-history", false, "Skip recording the run in the history store")

	return cmd
}

// resolveGateConfig layers settings: built-in defaults, then the
// project file, then any flag the user actually set. changed reports
// whether a flag was set on the command line.
func resolveGateConfig(proj *config.ProjectConfig, opts *runOptions, changed func(string) bool) mutation.GateConfig {
	cfg := mutation.DefaultGateConfig()

	if proj != nil {
		if proj.Targets != "" {
			cfg.TargetsPath = proj.Targets
		}
		if proj.Excludes != "" {
			cfg.ExcludesPath = proj.Excludes
		}
		if proj.Report.Markdown != "" {
			cfg.ReportPath = proj.Report.Markdown
		}
		if proj.Report.JSON != "" {
			cfg.JSONPath = proj.Report.JSON
		}
		if proj.Run.WorkDir != "" {
			cfg.WorkDir = proj.Run.WorkDir
		}
		if proj.Run.Profile != "" {
			cfg.Profile = mutation.Profile(proj.Run.Profile)
		}
		if proj.Run.MaxMutantsPerFile > 0 {
			cfg.MaxMutantsPerFile = proj.Run.MaxMutantsPerFile
		}
		if proj.Run.MutantTimeoutSeconds > 0 {
			cfg.MutantTimeout = time.Duration(proj.Run.MutantTimeoutSeconds) * time.Second
		}
		if proj.Run.RuntimeBudgetSeconds > 0 {
			cfg.RuntimeBudget = time.Duration(proj.Run.RuntimeBudgetSeconds) * time.Second
		}
		if proj.Thresholds.MinScore > 0 {
			cfg.MinScore = proj.Thresholds.MinScore
		}
		if proj.Thresholds.MinHighRiskScore > 0 {
			cfg.MinHighRiskScore = proj.Thresholds.MinHighRiskScore
		}
		cfg.FailOnThreshold = proj.Thresholds.FailOnThreshold
		if len(proj.HighRisk) > 0 {
			cfg.HighRisk = proj.HighRisk
		}
	}

	if changed("targets") {
		cfg.TargetsPath = opts.targets
	}
	if changed("excludes") {
		cfg.ExcludesPath = opts.excludes
	}
	if changed("report") {
		cfg.ReportPath = opts.report
	}
	if changed("json") {
		cfg.JSONPath = opts.jsonOut
	}
	if changed("dir") {
		cfg.WorkDir = opts.workDir
	}
	if changed("profile") {
		cfg.Profile = mutation.Profile(opts.profile)
	}
	if changed("max-mutants") {
		cfg.MaxMutantsPerFile = opts.maxMutants
	}
	if changed("timeout") {
		cfg.MutantTimeout = time.Duration(opts.timeoutSec) * time.Second
	}
	if changed("budget") {
		cfg.RuntimeBudget = time.Duration(opts.budgetSec) * time.Second
	}
	if changed("high-risk") {
		cfg.HighRisk = opts.highRisk
	}
	if changed("min-score") {
		cfg.MinScore = opts.minScore
	}
	if changed("min-high-risk-score") {
		cfg.MinHighRiskScore = opts.minHighRisk
	}
	if changed("fail-on-threshold") {
		cfg.FailOnThreshold = opts.failOnThreshold
	}

	return cfg
}

// resolveArtifactPaths anchors relative input and output paths on the
// working directory, so "mutgate run -d svc" picks up svc/targets.txt
// and writes svc/mutation-report.md.
func resolveArtifactPaths(cfg *mutation.GateConfig) {
	for _, p := range []*string{&cfg.TargetsPath, &cfg.ExcludesPath, &cfg.ReportPath, &cfg.JSONPath} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(cfg.WorkDir, *p)
		}
	}
}

// persistRun records the summary in the history store. History is
// best-effort; a CI box without a backend still gets a full gate run.
func persistRun(ctx context.Context, summary *model.RunSummary) {
	cfg, err := config.Load()
	if err != nil {
		log.Warn().Err(err).Msg("history disabled: failed to load config")
		return
	}

	store, err := db.Open(ctx, cfg)
	if err != nil {
		log.Warn().Err(err).Msg("history disabled: failed to open store")
		return
	}
	defer store.Close()

	if err := store.SaveRun(ctx, summary); err != nil {
		log.Warn().Err(err).Msg("failed to record run in history")
		return
	}

	log.Debug().Str("run_id", summary.RunID).Msg("run recorded in history")
}

// printVerdict prints the pass/fail line and returns an error when the
// gate failed so the process exits non-zero.
func printVerdict(summary *model.RunSummary) error {
	if len(summary.Violations) > 0 {
		fmt.Println("\nThreshold violations:")
		for _, v := range summary.Violations {
			fmt.Printf("  - %s\n", v)
		}
	}

	if summary.Passed {
		fmt.Printf("\n✅ Gate passed (score %.2f%%)\n", summary.MutationScorePct)
		return nil
	}

	fmt.Printf("\n❌ Gate failed (score %.2f%%)\n", summary.MutationScorePct)
	return fmt.Errorf("mutation gate failed with %d threshold violation(s)", len(summary.Violations))
}
