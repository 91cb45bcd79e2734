package pipeline

import (
	"fmt"
	"time"
)

// Counters holds per-run metrics. A fresh value is created for each run and
// returned with the result; nothing is accumulated in package state, so runs
// are isolated and the engine is testable without a metrics side channel.
type Counters struct {
	Fetched            int `json:"fetched"`
	Processed          int `json:"processed"`
	Created            int `json:"created"`
	Updated            int `json:"updated"`
	Synced             int `json:"synced"`
	Duplicates         int `json:"duplicates"`
	ExtractionFailures int `json:"extraction_failures"`
	Errors             int `json:"errors"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// Duration is the wall-clock time of the run.
func (c Counters) Duration() time.Duration {
	if c.FinishedAt.IsZero() {
		return 0
	}
	return c.FinishedAt.Sub(c.StartedAt)
}

// Summary is the JSON report returned to the trigger caller.
type Summary struct {
	Success            bool   `json:"success"`
	Timestamp          string `json:"timestamp"`
	Fetched            int    `json:"fetched"`
	Processed          int    `json:"processed"`
	Created            int    `json:"created"`
	Updated            int    `json:"updated"`
	Synced             int    `json:"synced"`
	Duplicates         int    `json:"duplicates"`
	ExtractionFailures int    `json:"extraction_failures"`
	Errors             int    `json:"errors"`
	SuccessRate        string `json:"success_rate"`
	Duration           string `json:"duration"`
	AvgTimePerMessage  string `json:"avg_time_per_message"`
}

// Report renders the counters as a summary.
func (c Counters) Report() Summary {
	rate := "0%"
	avg := "0ms"
	if c.Processed > 0 {
		rate = fmt.Sprintf("%.1f%%", float64(c.Synced)/float64(c.Processed)*100)
		avg = fmt.Sprintf("%dms", c.Duration().Milliseconds()/int64(c.Processed))
	}

	return Summary{
		Success:            true,
		Timestamp:          c.FinishedAt.UTC().Format(time.RFC3339),
		Fetched:            c.Fetched,
		Processed:          c.Processed,
		Created:            c.Created,
		Updated:            c.Updated,
		Synced:             c.Synced,
		Duplicates:         c.Duplicates,
		ExtractionFailures: c.ExtractionFailures,
		Errors:             c.Errors,
		SuccessRate:        rate,
		Duration:           fmt.Sprintf("%.2fs", c.Duration().Seconds()),
		AvgTimePerMessage:  avg,
	}
}
