// Package pipeline orchestrates one sync run: fetch candidate messages,
// filter for relevance, extract facts, resolve identity, reconcile, and
// persist. Message bodies are fetched with bounded concurrency, but
// extraction and reconciliation run strictly one message at a time, so no
// two in-flight reconciliations ever touch the same thread.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/jonathan/jobtrail/internal/classify"
	"github.com/jonathan/jobtrail/internal/extract"
	"github.com/jonathan/jobtrail/internal/reconcile"
	"github.com/jonathan/jobtrail/internal/retry"
	"github.com/jonathan/jobtrail/internal/store"
	"github.com/jonathan/jobtrail/internal/types"
)

// Source supplies candidate message ids and message details.
type Source interface {
	ListCandidateMessages(ctx context.Context, since time.Time) ([]string, error)
	GetMessage(ctx context.Context, id string) (*types.EmailMessage, error)
}

// Extractor turns a message into a structured candidate.
type Extractor interface {
	Extract(ctx context.Context, msg *types.EmailMessage) (*types.ExtractionCandidate, error)
}

// Options configures a Runner.
type Options struct {
	LookbackHours      int
	FetchConcurrency   int
	GhostThresholdDays int
	MatchPolicy        reconcile.MatchPolicy
}

// DefaultLookbackHours is the sync window when the trigger does not supply one.
const DefaultLookbackHours = 24

const defaultFetchConcurrency = 8

// Runner executes sync runs.
type Runner struct {
	source    Source
	extractor Extractor
	store     store.Store
	resolver  *reconcile.Resolver
	engine    *reconcile.Engine

	lookback    time.Duration
	concurrency int
	log         *logrus.Entry
	now         func() time.Time
}

// NewRunner wires a runner from its collaborators.
func NewRunner(source Source, extractor Extractor, st store.Store, opts Options) *Runner {
	if opts.LookbackHours <= 0 {
		opts.LookbackHours = DefaultLookbackHours
	}
	if opts.FetchConcurrency <= 0 {
		opts.FetchConcurrency = defaultFetchConcurrency
	}
	if opts.GhostThresholdDays <= 0 {
		opts.GhostThresholdDays = reconcile.DefaultGhostThresholdDays
	}

	return &Runner{
		source:      source,
		extractor:   extractor,
		store:       st,
		resolver:    reconcile.NewResolver(st, opts.MatchPolicy),
		engine:      reconcile.NewEngine(opts.GhostThresholdDays),
		lookback:    time.Duration(opts.LookbackHours) * time.Hour,
		concurrency: opts.FetchConcurrency,
		log:         logrus.WithField("component", "pipeline"),
		now:         time.Now,
	}
}

// Run executes one sync over the lookback window. Per-message failures are
// isolated and counted; only a failure before the message loop starts aborts
// the run. lookbackHours overrides the configured window when positive.
func (r *Runner) Run(ctx context.Context, lookbackHours int) (Counters, error) {
	counters := Counters{StartedAt: r.now()}

	window := r.lookback
	if lookbackHours > 0 {
		window = time.Duration(lookbackHours) * time.Hour
	}
	since := r.now().Add(-window)

	messages, err := r.fetchRelevant(ctx, since, &counters)
	if err != nil {
		counters.FinishedAt = r.now()
		return counters, fmt.Errorf("failed to fetch messages: %w", err)
	}
	counters.Fetched = len(messages)
	r.log.WithFields(logrus.Fields{
		"relevant": len(messages),
		"window":   window.String(),
	}).Info("fetched relevant messages")

	for _, msg := range messages {
		counters.Processed++
		if err := r.processMessage(ctx, msg, &counters); err != nil {
			counters.Errors++
			r.log.WithField("message_id", msg.ID).WithError(err).Error("failed to process message")
		}
	}

	counters.FinishedAt = r.now()
	return counters, nil
}

// fetchRelevant lists candidate ids and fetches their details with bounded
// concurrency, keeping only messages the relevance filter accepts. A failed
// detail fetch is a per-message error, not a run failure.
func (r *Runner) fetchRelevant(ctx context.Context, since time.Time, counters *Counters) ([]*types.EmailMessage, error) {
	var ids []string
	err := retry.Do(ctx, func() error {
		var err error
		ids, err = r.source.ListCandidateMessages(ctx, since)
		return err
	}, retry.DefaultOptions(), "source.list")
	if err != nil {
		return nil, err
	}

	fetched := make([]*types.EmailMessage, len(ids))
	var fetchErrors atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for i, id := range ids {
		g.Go(func() error {
			msg, err := r.source.GetMessage(gctx, id)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				fetchErrors.Add(1)
				r.log.WithField("message_id", id).WithError(err).Warn("failed to fetch message details")
				return nil
			}
			fetched[i] = msg
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	counters.Errors += int(fetchErrors.Load())

	relevant := make([]*types.EmailMessage, 0, len(fetched))
	for _, msg := range fetched {
		if msg != nil && classify.IsJobRelated(msg) {
			relevant = append(relevant, msg)
		}
	}
	return relevant, nil
}

// processMessage runs extraction and reconciliation for one message.
func (r *Runner) processMessage(ctx context.Context, msg *types.EmailMessage, counters *Counters) error {
	// Cheap duplicate check before the oracle call.
	var byThread *types.ApplicationRecord
	err := retry.Do(ctx, func() error {
		var err error
		byThread, err = r.resolver.ResolveThread(ctx, msg.ThreadID)
		return err
	}, retry.DefaultOptions(), "store.findByThread")
	if err != nil {
		return err
	}
	if byThread != nil && byThread.HasMessage(msg.ID) {
		counters.Duplicates++
		r.log.WithField("message_id", msg.ID).Debug("skipping already-processed message")
		return nil
	}

	cand, err := r.extractor.Extract(ctx, msg)
	if err != nil {
		var malformed *extract.MalformedOutputError
		if errors.As(err, &malformed) {
			counters.ExtractionFailures++
			r.log.WithField("message_id", msg.ID).WithError(err).Warn("extraction produced no candidate")
			return nil
		}
		return err
	}

	var existing *types.ApplicationRecord
	err = retry.Do(ctx, func() error {
		var err error
		existing, err = r.resolver.Resolve(ctx, byThread, cand)
		return err
	}, retry.DefaultOptions(), "store.resolve")
	if err != nil {
		return err
	}

	result := r.engine.Reconcile(existing, msg, cand)
	switch result.Op {
	case reconcile.OpCreated:
		if err := retry.Do(ctx, func() error {
			return r.store.Create(ctx, result.Record)
		}, retry.DefaultOptions(), "store.create"); err != nil {
			return err
		}
		counters.Created++
		counters.Synced++
		r.log.WithFields(logrus.Fields{
			"thread_id": msg.ThreadID,
			"company":   result.Record.Company,
			"status":    result.Record.Status,
		}).Info("created application record")

	case reconcile.OpUpdated:
		if err := retry.Do(ctx, func() error {
			return r.store.Update(ctx, result.Record)
		}, retry.DefaultOptions(), "store.update"); err != nil {
			return err
		}
		counters.Updated++
		counters.Synced++
		r.log.WithFields(logrus.Fields{
			"thread_id":      result.Record.ThreadID,
			"status":         result.Record.Status,
			"status_changed": result.StatusChanged,
		}).Info("updated application record")

	case reconcile.OpSkipped:
		if result.Reason == reconcile.ReasonDuplicateMessage {
			counters.Duplicates++
		}
		r.log.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"reason":     result.Reason,
		}).Debug("skipped message")
	}

	return nil
}
