package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/targets"
)

func targetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "targets",
		Short: "Inspect targets and excludes files",
	}

	cmd.AddCommand(targetsValidateCmd())

	return cmd
}

func targetsValidateCmd() *cobra.Command {
	var (
		targetsFile  string
		excludesFile string
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate targets and excludes files",
		Long: `Parse the targets file, and the excludes file when given, and report
what they contain. Exits non-zero on the first malformed line.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := validateFilePath(targetsFile)
			if err != nil {
				return fmt.Errorf("invalid targets file: %w", err)
			}

			list, err := targets.LoadTargets(path)
			if err != nil {
				return fmt.Errorf("targets file invalid: %w", err)
			}

			fmt.Printf("✅ %s: %d target(s)\n", targetsFile, len(list))
			for _, tgt := range list {
				fmt.Printf("   %s | %s\n", tgt.SourceFile, tgt.TestCommand)
			}

			if excludesFile != "" {
				epath, err := validateFilePath(excludesFile)
				if err != nil {
					return fmt.Errorf("invalid excludes file: %w", err)
				}

				set, err := targets.LoadExcludes(epath)
				if err != nil {
					return fmt.Errorf("excludes file invalid: %w", err)
				}

				fmt.Printf("✅ %s: %d exclusion(s)\n", excludesFile, set.Len())
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&targetsFile, "targets", "t", "targets.txt", "Targets file to validate")
	cmd.Flags().StringVarP(&excludesFile, "excludes", "e", "", "Excludes file to validate")

	return cmd
}
