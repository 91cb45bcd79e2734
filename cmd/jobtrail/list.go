package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobtrail/internal/observability"
)

var listLimit int

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked applications",
	RunE:  runList,
}

func init() {
	listCmd.Flags().IntVar(&listLimit, "limit", 100, "Maximum number of records to show")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	records, err := a.store.List(cmd.Context(), listLimit)
	if err != nil {
		return fmt.Errorf("failed to list applications: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintApplications(records)
	return nil
}
