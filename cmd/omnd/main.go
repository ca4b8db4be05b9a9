// Package main provides the entry point for the omnd CLI application.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	version       = "0.1.0-dev"
	globalSubject string
	globalRoles   []string
	globalLocale  string
	globalVerbose bool
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	rootCmd := &cobra.Command{
		Use:     "omnd",
		Short:   "A knowledge graph of events, people, organizations and sources",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetLevel(logrus.WarnLevel)
			if globalVerbose {
				logrus.SetLevel(logrus.InfoLevel)
			}
		},
	}

	rootCmd.PersistentFlags().StringVar(&globalSubject, "subject", "admin", "Acting subject (user identifier)")
	rootCmd.PersistentFlags().StringSliceVar(&globalRoles, "roles", []string{"admin"}, "Roles of the acting subject")
	rootCmd.PersistentFlags().StringVarP(&globalLocale, "locale", "l", "", "Locale overlay to apply on reads")
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "verbose", "v", false, "Enable info-level logging")

	rootCmd.AddCommand(
		newInitCmd(),
		newEntityCmd(),
		newRelationshipCmd(),
		newTraverseCmd(),
		newSearchCmd(),
		newExportCmd(),
		newImportCmd(),
	)

	return rootCmd.ExecuteContext(ctx)
}
