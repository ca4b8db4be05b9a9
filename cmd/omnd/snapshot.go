package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the readable graph as a JSON snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				w := os.Stdout
				if output != "" && output != "-" {
					f, err := os.Create(output)
					if err != nil {
						return fmt.Errorf("creating output file: %w", err)
					}
					defer f.Close()
					w = f
				}
				if err := d.Snapshots.HandleExport(cmd.Context(), actor(), w); err != nil {
					return err
				}
				if w != os.Stdout {
					fmt.Printf("Exported snapshot to %s\n", output)
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "Output file ('-' for stdout)")

	return cmd
}

func newImportCmd() *cobra.Command {
	var strategy string

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a JSON snapshot",
		Long: `Loads a snapshot produced by 'omnd export', preserving entity and
relationship IDs and keys. Requires the admin role.

The --on-conflict flag controls what happens when a key is already
taken: skip (default), overwrite, or fail.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("opening snapshot file: %w", err)
			}
			defer f.Close()

			return withDeps(cmd.Context(), func(d *Deps) error {
				stats, err := d.Snapshots.HandleImport(cmd.Context(), actor(), f, strategy)
				if err != nil {
					return fmt.Errorf("importing snapshot: %w", err)
				}
				fmt.Printf("Imported %d entities (%d skipped, %d overwritten) and %d relationships (%d skipped)\n",
					stats.EntitiesCreated, stats.EntitiesSkipped, stats.EntitiesOverwritten,
					stats.RelationshipsCreated, stats.RelationshipsSkipped)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&strategy, "on-conflict", "skip", "Conflict strategy: skip, overwrite or fail")

	return cmd
}
