package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// ProjectConfig represents a .mutgate.yaml file in a repository
type ProjectConfig struct {
	Version string `yaml:"version"`

	// Input lists
	Targets  string `yaml:"targets,omitempty"`
	Excludes string `yaml:"excludes,omitempty"`

	// Run settings
	Run RunConfig `yaml:"run"`

	// Gate thresholds
	Thresholds ThresholdConfig `yaml:"thresholds,omitempty"`

	// Report outputs
	Report ReportConfig `yaml:"report,omitempty"`

	// Source files whose kills are scored separately
	HighRisk []string `yaml:"high_risk,omitempty"`
}

// RunConfig holds mutation run preferences
type RunConfig struct {
	// Operator profile (stable, strict)
	Profile string `yaml:"profile,omitempty"`

	// Candidate cap per target file
	MaxMutantsPerFile int `yaml:"max_mutants_per_file,omitempty"`

	// Per-mutant test command timeout
	MutantTimeoutSeconds int `yaml:"mutant_timeout_seconds,omitempty"`

	// Whole-run budget
	RuntimeBudgetSeconds int `yaml:"runtime_budget_seconds,omitempty"`

	// Directory test commands run in
	WorkDir string `yaml:"work_dir,omitempty"`
}

// ThresholdConfig holds the gate's pass criteria
type ThresholdConfig struct {
	// Minimum overall mutation score (0-100)
	MinScore float64 `yaml:"min_score,omitempty"`

	// Minimum high-risk mutation score (0-100)
	MinHighRiskScore float64 `yaml:"min_high_risk_score,omitempty"`

	// Whether violations fail the run
	FailOnThreshold bool `yaml:"fail_on_threshold"`
}

// ReportConfig holds report output paths
type ReportConfig struct {
	Markdown string `yaml:"markdown,omitempty"`
	JSON     string `yaml:"json,omitempty"`
}

// DefaultProjectConfig returns sensible defaults
func DefaultProjectConfig() *ProjectConfig {
	return &ProjectConfig{
		Version: "1.0",
		Targets: "targets.txt",
		Run: RunConfig{
			Profile:              "stable",
			MaxMutantsPerFile:    4,
			MutantTimeoutSeconds: 45,
			RuntimeBudgetSeconds: 300,
			WorkDir:              ".",
		},
		Thresholds: ThresholdConfig{
			MinScore:         75,
			MinHighRiskScore: 85,
			FailOnThreshold:  true,
		},
		Report: ReportConfig{
			Markdown: "mutation-report.md",
		},
	}
}

// LoadProjectConfig loads a .mutgate.yaml from the given directory
func LoadProjectConfig(repoPath string) (*ProjectConfig, error) {
	configPath := filepath.Join(repoPath, ".mutgate.yaml")

	// Check if config exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		// Also try .mutgate.yml
		configPath = filepath.Join(repoPath, ".mutgate.yml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			return DefaultProjectConfig(), nil
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultProjectConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveProjectConfig saves the config to .mutgate.yaml
func SaveProjectConfig(repoPath string, cfg *ProjectConfig) error {
	configPath := filepath.Join(repoPath, ".mutgate.yaml")

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}

// Merge applies overrides from another config (e.g., CLI flags).
// Boolean settings are not merged here; flag handling decides those
// explicitly since a false flag is indistinguishable from an unset one.
func (c *ProjectConfig) Merge(other *ProjectConfig) {
	if other == nil {
		return
	}

	if other.Targets != "" {
		c.Targets = other.Targets
	}

	if other.Excludes != "" {
		c.Excludes = other.Excludes
	}

	if other.Run.Profile != "" {
		c.Run.Profile = other.Run.Profile
	}

	if other.Run.MaxMutantsPerFile != 0 {
		c.Run.MaxMutantsPerFile = other.Run.MaxMutantsPerFile
	}

	if other.Run.MutantTimeoutSeconds != 0 {
		c.Run.MutantTimeoutSeconds = other.Run.MutantTimeoutSeconds
	}

	if other.Run.RuntimeBudgetSeconds != 0 {
		c.Run.RuntimeBudgetSeconds = other.Run.RuntimeBudgetSeconds
	}

	if other.Run.WorkDir != "" {
		c.Run.WorkDir = other.Run.WorkDir
	}

	if other.Thresholds.MinScore != 0 {
		c.Thresholds.MinScore = other.Thresholds.MinScore
	}

	if other.Thresholds.MinHighRiskScore != 0 {
		c.Thresholds.MinHighRiskScore = other.Thresholds.MinHighRiskScore
	}

	if other.Report.Markdown != "" {
		c.Report.Markdown = other.Report.Markdown
	}

	if other.Report.JSON != "" {
		c.Report.JSON = other.Report.JSON
	}

	if len(other.HighRisk) > 0 {
		c.HighRisk = other.HighRisk
	}
}
