package reconcile

import (
	"time"

	"github.com/jonathan/jobtrail/internal/types"
)

// DefaultGhostThresholdDays is the inactivity window after which an
// application with no terminal signal is considered ghosted.
const DefaultGhostThresholdDays = 45

// IsGhosted reports whether the record has been inactive for at least
// thresholdDays. The most recent of the record's activity dates and the
// caller-supplied fallback date is used; with no date at all the answer is
// false, since staleness cannot be asserted without evidence.
func IsGhosted(rec *types.ApplicationRecord, fallback time.Time, thresholdDays int, now time.Time) bool {
	var latest time.Time
	for _, d := range []time.Time{rec.LastStatusChangeAt, rec.LastEmailAt, rec.AppliedAt, fallback} {
		if !d.IsZero() && d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return false
	}

	days := now.Sub(latest).Hours() / 24
	return days >= float64(thresholdDays)
}
