// Package retry provides a bounded exponential backoff wrapper applied
// uniformly to message-source and record-store calls.
package retry

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Options controls the retry schedule.
type Options struct {
	// Retries is the number of attempts after the first failure.
	Retries int
	// Backoff is the delay before the first retry.
	Backoff time.Duration
	// Factor multiplies the delay after each attempt.
	Factor float64
}

// DefaultOptions matches the schedule used for upstream API calls.
func DefaultOptions() Options {
	return Options{Retries: 2, Backoff: 500 * time.Millisecond, Factor: 2}
}

func (o Options) withDefaults() Options {
	if o.Retries <= 0 {
		o.Retries = 3
	}
	if o.Backoff <= 0 {
		o.Backoff = time.Second
	}
	if o.Factor <= 0 {
		o.Factor = 2
	}
	return o
}

// Do runs fn, retrying on error with exponential backoff until the attempt
// budget is exhausted or the context is canceled. The last error is
// returned. label names the operation in retry warnings.
func Do(ctx context.Context, fn func() error, opts Options, label string) error {
	opts = opts.withDefaults()

	var lastErr error
	delay := opts.Backoff
	for attempt := 0; attempt <= opts.Retries; attempt++ {
		if attempt > 0 {
			logrus.WithFields(logrus.Fields{
				"operation": label,
				"attempt":   attempt,
				"retries":   opts.Retries,
				"delay":     delay.String(),
			}).WithError(lastErr).Warn("retrying after failure")

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * opts.Factor)
		}

		if lastErr = fn(); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
