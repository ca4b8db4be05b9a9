package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/omnsight/omndapi/internal/infrastructure/config"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize omnd configuration in the current directory",
		Long: `Creates the .omnd directory with a default config.yaml.

The SQLite graph database lives inside .omnd; the Qdrant connection and
the embedding provider can be adjusted in the generated file.`,
		Args: cobra.NoArgs,
		RunE: runInit,
	}
}

func runInit(cmd *cobra.Command, args []string) error {
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	if config.Exists(cwd) {
		return fmt.Errorf("config already exists: %s", config.ConfigFilePath(cwd))
	}

	if err := config.Save(cwd, config.Default()); err != nil {
		return err
	}

	fmt.Printf("Initialized omnd configuration in %s\n", config.ConfigDir(cwd))
	return nil
}
