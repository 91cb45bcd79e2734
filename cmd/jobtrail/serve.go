package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/jobtrail/internal/metrics"
	"github.com/jonathan/jobtrail/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long:  `Start an HTTP server exposing the cron-triggered sync endpoint, application listing, health, and metrics.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.close()

	port := a.cfg.Port
	if servePort > 0 {
		port = servePort
	}

	srv := server.New(server.Config{
		Port:       port,
		CronSecret: a.cfg.CronSecret,
	}, a.runner, a.store, metrics.New())

	if err := srv.Start(); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}
