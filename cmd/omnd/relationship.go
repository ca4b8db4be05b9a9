package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

func newRelationshipCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "relationship",
		Aliases: []string{"rel"},
		Short:   "Manage relationships between entities",
	}

	cmd.AddCommand(
		newRelationshipCreateCmd(),
		newRelationshipGetCmd(),
		newRelationshipListCmd(),
		newRelationshipDeleteCmd(),
	)

	return cmd
}

func newRelationshipCreateCmd() *cobra.Command {
	var key string

	cmd := &cobra.Command{
		Use:   "create <from-id> <name> <to-id>",
		Short: "Create a directed relationship between two entities",
		Long: `Creates a directed relationship. The collection is derived from the
endpoint kinds and the normalized relation name, for example an event
linked to a person by "participant" lands in event_participant_person.

Examples:
  omnd relationship create 7f3a... participant 91c2...
  omnd relationship create 7f3a... "Temp Relation" 91c2... --key edge-1`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				rel, err := d.Relationships.HandleCreate(cmd.Context(), actor(), &entities.Relationship{
					From: args[0],
					Name: args[1],
					To:   args[2],
					Key:  key,
				})
				if err != nil {
					return fmt.Errorf("creating relationship: %w", err)
				}
				fmt.Printf("Created relationship: %s/%s\n", rel.Collection, rel.Key)
				fmt.Printf("  %s -[%s]-> %s\n", rel.From, rel.Name, rel.To)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&key, "key", "", "Relationship key (generated when empty)")

	return cmd
}

func newRelationshipGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <collection> <key>",
		Short: "Show a relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				rel, err := d.Relationships.HandleGet(cmd.Context(), actor(), args[0], args[1], globalLocale)
				if err != nil {
					return fmt.Errorf("getting relationship: %w", err)
				}
				return printJSON(rel)
			})
		},
	}
}

func newRelationshipListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list [collection]",
		Short: "List relationships, optionally scoped to one collection",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			collection := ""
			if len(args) == 1 {
				collection = args[0]
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				records, err := d.Relationships.HandleList(cmd.Context(), actor(), collection, globalLocale, limit, offset)
				if err != nil {
					return fmt.Errorf("listing relationships: %w", err)
				}
				if len(records) == 0 {
					fmt.Println("No relationships found.")
					return nil
				}
				return printJSON(records)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of relationships (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of relationships to skip")

	return cmd
}

func newRelationshipDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <collection> <key>",
		Short: "Delete a relationship",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.Relationships.HandleDelete(cmd.Context(), actor(), args[0], args[1]); err != nil {
					return fmt.Errorf("deleting relationship: %w", err)
				}
				fmt.Printf("Deleted relationship: %s/%s\n", args[0], args[1])
				return nil
			})
		},
	}
}
