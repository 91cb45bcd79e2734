package main

import (
	"context"
	"fmt"

	"github.com/jonathan/jobtrail/internal/config"
	"github.com/jonathan/jobtrail/internal/extract"
	"github.com/jonathan/jobtrail/internal/gmail"
	"github.com/jonathan/jobtrail/internal/llm"
	"github.com/jonathan/jobtrail/internal/pipeline"
	"github.com/jonathan/jobtrail/internal/reconcile"
	"github.com/jonathan/jobtrail/internal/store"

	"github.com/sirupsen/logrus"
)

// app bundles the wired collaborators behind a command.
type app struct {
	cfg    *config.Config
	store  *store.Postgres
	oracle llm.Client
	runner *pipeline.Runner
}

// newApp loads configuration and connects every external dependency.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	oracle, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	source, err := gmail.NewService(ctx, gmail.Credentials{
		ClientID:     cfg.GmailClientID,
		ClientSecret: cfg.GmailClientSecret,
		RefreshToken: cfg.GmailRefreshToken,
	}, cfg.MaxMessages)
	if err != nil {
		st.Close()
		_ = oracle.Close()
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}

	extractor := extract.New(oracle, logrus.WithField("component", "extract"))
	runner := pipeline.NewRunner(source, extractor, st, pipeline.Options{
		LookbackHours:      cfg.LookbackHours,
		FetchConcurrency:   cfg.FetchConcurrency,
		GhostThresholdDays: cfg.GhostThresholdDays,
		MatchPolicy:        reconcile.MatchPolicy(cfg.MatchPolicy),
	})

	return &app{cfg: cfg, store: st, oracle: oracle, runner: runner}, nil
}

// close releases the app's external connections.
func (a *app) close() {
	if a.oracle != nil {
		_ = a.oracle.Close()
	}
	if a.store != nil {
		a.store.Close()
	}
}
