package main

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/config"
	"github.com/mutgate-hq/mutgate/internal/db"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect recorded gate runs",
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyStatsCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent gate runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.ListRuns(ctx, limit)
			if err != nil {
				return fmt.Errorf("failed to list runs: %w", err)
			}

			if len(records) == 0 {
				fmt.Println("No runs recorded yet.")
				return nil
			}

			table := tablewriter.NewWriter(os.Stdout)
			table.SetHeader([]string{"Run", "Started", "Profile", "Score", "High-Risk", "Killed", "Result"})
			table.SetBorder(false)
			table.SetAutoWrapText(false)

			for _, rec := range records {
				result := "PASSED"
				if !rec.Passed {
					result = "FAILED"
				}
				table.Append([]string{
					shortID(rec.RunID),
					rec.StartedAt.Local().Format("2006-01-02 15:04"),
					rec.Profile,
					fmt.Sprintf("%.2f%%", rec.MutationScorePct),
					fmt.Sprintf("%.2f%%", rec.HighRiskScorePct),
					fmt.Sprintf("%d/%d", rec.KilledMutants, rec.TotalMutants),
					result,
				})
			}
			table.Render()

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of runs to show")

	return cmd
}

func historyStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show aggregate statistics over recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store, err := openHistory(ctx)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.Stats(ctx)
			if err != nil {
				return fmt.Errorf("failed to aggregate runs: %w", err)
			}

			fmt.Printf("📊 Gate history\n\n")
			fmt.Printf("Total runs:    %d\n", stats.TotalRuns)
			fmt.Printf("Passed runs:   %d\n", stats.PassedRuns)
			fmt.Printf("Average score: %.2f%%\n", stats.AvgScore)
			fmt.Printf("Best score:    %.2f%%\n", stats.BestScore)
			fmt.Printf("Worst score:   %.2f%%\n", stats.WorstScore)

			return nil
		},
	}

	return cmd
}

// openHistory opens whichever history backend the environment selects.
func openHistory(ctx context.Context) (db.Store, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	store, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open history store: %w", err)
	}

	return store, nil
}
