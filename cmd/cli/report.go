package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/mutation"
)

func reportCmd() *cobra.Command {
	var (
		summaryFile string
		format      string
		showDiff    bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "View a saved gate run summary",
		Long: `Render the JSON summary written by "mutgate run --json".

Examples:
  mutgate report -r run.json
  mutgate report -r run.json --format markdown > report.md
  mutgate report -r run.json --diff`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := validateFilePath(summaryFile)
			if err != nil {
				return fmt.Errorf("invalid summary file: %w", err)
			}

			summary, err := mutation.LoadSummary(path)
			if err != nil {
				return fmt.Errorf("failed to load summary: %w", err)
			}

			switch format {
			case "json":
				pretty, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return fmt.Errorf("failed to encode summary: %w", err)
				}
				fmt.Println(string(pretty))
			case "markdown":
				fmt.Print(mutation.BuildMarkdown(summary))
			case "table":
				mutation.RenderConsole(os.Stdout, summary)
			default:
				return fmt.Errorf("unknown format %q (expected table, markdown, or json)", format)
			}

			if showDiff && len(summary.Survivors) > 0 {
				fmt.Printf("\nSurviving mutant diffs:\n\n")
				for _, sm := range summary.Survivors {
					diff, err := mutation.SurvivorDiff(sm)
					if err != nil {
						log.Warn().Err(err).Str("file", sm.File).Msg("failed to render diff")
						continue
					}
					fmt.Println(diff)
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&summaryFile, "run", "r", "run.json", "JSON summary file to render")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "Output format (table, markdown, json)")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Show unified diffs for surviving mutants")

	return cmd
}
