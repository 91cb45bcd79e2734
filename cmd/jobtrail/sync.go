package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobtrail/internal/observability"
)

var (
	syncHours   int
	syncVerbose bool
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Run one sync pass over the mailbox",
	Long:  `Fetch recent mail, extract application facts, and reconcile them into the tracker. Exits non-zero if the run itself fails; per-message failures are reported in the summary.`,
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().IntVar(&syncHours, "hours", 0, "Lookback window in hours (overrides LOOKBACK_HOURS)")
	syncCmd.Flags().BoolVarP(&syncVerbose, "verbose", "v", false, "Print a formatted run summary")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	counters, err := a.runner.Run(cmd.Context(), syncHours)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if syncVerbose {
		observability.NewPrinter(os.Stdout).PrintRunSummary(counters)
	} else {
		report := counters.Report()
		fmt.Printf("synced %d of %d messages (%d created, %d updated, %d duplicates) in %s\n",
			report.Synced, report.Processed, report.Created, report.Updated, report.Duplicates, report.Duration)
	}
	return nil
}
