package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnsight/omndapi/internal/domain/entities"
)

func newEntityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entity",
		Short: "Manage entities (event, person, organization, website, source)",
	}

	cmd.AddCommand(
		newEntityCreateCmd(),
		newEntityGetCmd(),
		newEntityListCmd(),
		newEntityUpdateCmd(),
		newEntityDeleteCmd(),
	)

	return cmd
}

func newEntityCreateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "create <kind>",
		Short: "Create an entity from a JSON payload",
		Long: `Creates an entity of the given kind from a JSON payload.

The payload carries the variant fields under the kind's name, for example:
  omnd entity create event -f - <<'EOF'
  {"key": "fire-2024", "event": {"title": "Warehouse fire"}}
  EOF`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readEntityPayload(file)
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				created, err := d.Entities.HandleCreate(cmd.Context(), actor(), args[0], input)
				if err != nil {
					return fmt.Errorf("creating entity: %w", err)
				}
				fmt.Printf("Created %s: %s\n", args[0], created.Key)
				return printJSON(created)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON payload file ('-' for stdin)")

	return cmd
}

func newEntityGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <kind> <key>",
		Short: "Show an entity",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				entity, err := d.Entities.HandleGet(cmd.Context(), actor(), args[0], args[1], globalLocale)
				if err != nil {
					return fmt.Errorf("getting entity: %w", err)
				}
				return printJSON(entity)
			})
		},
	}
}

func newEntityListCmd() *cobra.Command {
	var limit, offset int

	cmd := &cobra.Command{
		Use:   "list <kind>",
		Short: "List entities of a kind",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				records, err := d.Entities.HandleList(cmd.Context(), actor(), args[0], globalLocale, limit, offset)
				if err != nil {
					return fmt.Errorf("listing entities: %w", err)
				}
				if len(records) == 0 {
					fmt.Println("No entities found.")
					return nil
				}
				return printJSON(records)
			})
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of entities (0 = all)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of entities to skip")

	return cmd
}

func newEntityUpdateCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "update <kind> <key>",
		Short: "Replace an entity with a JSON payload",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			input, err := readEntityPayload(file)
			if err != nil {
				return err
			}
			return withDeps(cmd.Context(), func(d *Deps) error {
				updated, err := d.Entities.HandleUpdate(cmd.Context(), actor(), args[0], args[1], input)
				if err != nil {
					return fmt.Errorf("updating entity: %w", err)
				}
				fmt.Printf("Updated %s: %s\n", args[0], updated.Key)
				return printJSON(updated)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON payload file ('-' for stdin)")

	return cmd
}

func newEntityDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <kind> <key>",
		Short: "Delete an entity and its relationships",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDeps(cmd.Context(), func(d *Deps) error {
				if err := d.Entities.HandleDelete(cmd.Context(), actor(), args[0], args[1]); err != nil {
					return fmt.Errorf("deleting entity: %w", err)
				}
				fmt.Printf("Deleted %s: %s\n", args[0], args[1])
				return nil
			})
		},
	}
}

// readEntityPayload decodes a JSON entity from a file or stdin.
func readEntityPayload(file string) (*entities.Entity, error) {
	data, err := readPayload(file)
	if err != nil {
		return nil, err
	}
	var entity entities.Entity
	if err := json.Unmarshal(data, &entity); err != nil {
		return nil, fmt.Errorf("parsing entity payload: %w", err)
	}
	return &entity, nil
}

func readPayload(file string) ([]byte, error) {
	if file == "" || file == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("reading payload file: %w", err)
	}
	return data, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
