// Package main provides the entry point for the jobtrail service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "jobtrail",
	Short: "Job application tracker fed by your inbox",
	Long:  "jobtrail reads job-related email, extracts application facts, and maintains one reconciled record per application with a monotonic status timeline.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	configureLogging(os.Getenv("LOG_LEVEL"))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func configureLogging(level string) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if level == "" {
		level = "info"
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logrus.SetLevel(parsed)
}
