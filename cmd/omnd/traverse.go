package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnsight/omndapi/internal/domain/services"
)

func newTraverseCmd() *cobra.Command {
	var filter services.Filter

	cmd := &cobra.Command{
		Use:   "traverse <event-key>",
		Short: "List entities reachable from an event",
		Long: `Walks the relationship graph outward from an event, following
relationships in both directions up to the given depth. Filters narrow
the result: a tag must appear on every returned entity, while country
and time bounds apply to events only.

Examples:
  omnd traverse fire-2024
  omnd traverse fire-2024 --depth 2 --tag "Supply Chain"
  omnd traverse fire-2024 --country FANTASY --start 1700000000`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				result, err := d.Traversal.HandleListFromEvent(cmd.Context(), actor(), args[0], globalLocale, filter)
				if err != nil {
					return fmt.Errorf("traversing from event: %w", err)
				}
				if len(result.Entities) == 0 {
					fmt.Println("No entities found.")
					return nil
				}
				fmt.Printf("Found %d entities and %d relationships:\n", len(result.Entities), len(result.Relationships))
				return printJSON(result)
			})
		},
	}

	cmd.Flags().IntVar(&filter.Depth, "depth", services.DefaultTraversalDepth, "Traversal depth in hops")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "Require this tag on every returned entity")
	cmd.Flags().StringVar(&filter.CountryCode, "country", "", "Restrict events to this country code")
	cmd.Flags().Int64Var(&filter.StartTime, "start", 0, "Earliest event time (unix seconds, inclusive)")
	cmd.Flags().Int64Var(&filter.EndTime, "end", 0, "Latest event time (unix seconds, inclusive)")

	return cmd
}
