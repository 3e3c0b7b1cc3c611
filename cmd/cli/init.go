package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mutgate-hq/mutgate/internal/config"
)

func initCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a starter .mutgate.yaml in the current directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := os.Getwd()
			if err != nil {
				return err
			}

			if !force {
				for _, name := range []string{".mutgate.yaml", ".mutgate.yml"} {
					if _, err := os.Stat(filepath.Join(dir, name)); err == nil {
						return fmt.Errorf("%s already exists, use --force to overwrite", name)
					}
				}
			}

			if err := config.SaveProjectConfig(dir, config.DefaultProjectConfig()); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			}

			fmt.Println("✅ Wrote .mutgate.yaml")
			fmt.Println("Next steps:")
			fmt.Println("  1. List your targets in targets.txt, one source_file|test_command per line")
			fmt.Println("  2. Run: mutgate run")
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	return cmd
}
