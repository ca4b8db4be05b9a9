package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newSearchCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "search <query>...",
		Short: "Semantic search over all entities",
		Long: `Embeds the query and returns the closest indexed entities the
acting subject may read.

Examples:
  omnd search warehouse fires
  omnd search "supply chain disruption" --limit 5`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.Join(args, " ")
			return withDeps(cmd.Context(), func(d *Deps) error {
				results, err := d.Entities.HandleSearch(cmd.Context(), actor(), query, globalLocale, limit)
				if err != nil {
					return fmt.Errorf("searching entities: %w", err)
				}
				if len(results) == 0 {
					fmt.Println("No matches found.")
					return nil
				}
				return printJSON(results)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 10, "Maximum number of results")

	return cmd
}
