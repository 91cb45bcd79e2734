// Package reconcile contains the core of the sync pipeline: identity
// resolution, the status state machine, and time-based ghosting inference.
// The engine is pure; it computes the next record state and the caller
// persists it.
package reconcile

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/jobtrail/internal/types"
)

// Op is the outcome of reconciling one message.
type Op string

// Reconciliation outcomes
const (
	OpCreated Op = "created"
	OpUpdated Op = "updated"
	OpSkipped Op = "skipped"
)

// Skip reasons reported in Result.Reason.
const (
	ReasonDuplicateMessage = "duplicate message"
	ReasonNoFacts          = "no actionable facts"
)

// Result carries the outcome and, for created/updated, the full next state
// of the record to persist.
type Result struct {
	Op            Op
	Record        *types.ApplicationRecord
	Reason        string
	StatusChanged bool
}

// Engine decides whether and how a message mutates a record.
type Engine struct {
	ghostThresholdDays int
	now                func() time.Time
}

// NewEngine creates an engine with the given ghosting threshold in days.
func NewEngine(ghostThresholdDays int) *Engine {
	return &Engine{
		ghostThresholdDays: ghostThresholdDays,
		now:                time.Now,
	}
}

// Reconcile computes the record mutation for one message. existing is the
// resolved record or nil for a new identity. cand may be nil when extraction
// produced nothing actionable.
func (e *Engine) Reconcile(existing *types.ApplicationRecord, msg *types.EmailMessage, cand *types.ExtractionCandidate) Result {
	if existing != nil && existing.HasMessage(msg.ID) {
		return Result{Op: OpSkipped, Reason: ReasonDuplicateMessage}
	}
	if cand == nil {
		return Result{Op: OpSkipped, Reason: ReasonNoFacts}
	}
	if existing == nil {
		return e.create(msg, cand)
	}
	return e.update(existing, msg, cand)
}

// create seeds a new record from the candidate and message metadata. A new
// record always starts from a valid status: if the candidate's status is
// refused by the transition rule, Applied is used.
func (e *Engine) create(msg *types.EmailMessage, cand *types.ExtractionCandidate) Result {
	status := cand.Status
	event := cand.Event
	if !ShouldUpdateStatus("", status) {
		status = types.StatusApplied
		event = types.EventFor(status)
	}

	now := e.now()
	rec := &types.ApplicationRecord{
		ID:                 uuid.New(),
		ThreadID:           msg.ThreadID,
		Company:            cand.Company.OrDefault("Unknown"),
		Role:               cand.Role.OrDefault("Unknown"),
		Status:             status,
		Location:           cand.Location.Value(),
		Salary:             cand.Salary.Value(),
		JobURL:             cand.JobURL.Value(),
		AppliedAt:          msg.Date,
		LastEmailAt:        msg.Date,
		LastEmailSubject:   msg.Subject,
		LastEmailFrom:      msg.From,
		LastStatusChangeAt: msg.Date,
		LastEventType:      event,
		MessageIDs:         []string{msg.ID},
		StatusHistory:      []string{historyLine(msg.Date, status, msg.Subject)},
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	return Result{Op: OpCreated, Record: rec, StatusChanged: true}
}

// update merges the candidate into a copy of the existing record. The status
// decision and the field enrichment are independent; bookkeeping happens on
// every non-duplicate message.
func (e *Engine) update(existing *types.ApplicationRecord, msg *types.EmailMessage, cand *types.ExtractionCandidate) Result {
	rec := cloneRecord(existing)
	now := e.now()

	incoming := cand.Status
	event := cand.Event

	// Ghosting override runs before the status decision is committed. It
	// only applies to records that have not reached a terminal state.
	if (existing.Status == types.StatusApplied || existing.Status == types.StatusInterviewing) &&
		IsGhosted(existing, msg.Date, e.ghostThresholdDays, now) {
		incoming = types.StatusGhosted
		event = types.EventStatusUpdate
	}

	statusChanged := ShouldUpdateStatus(existing.Status, incoming)
	if statusChanged {
		rec.Status = incoming
		rec.LastStatusChangeAt = msg.Date
		rec.LastEventType = event
	}

	// First-write-wins enrichment: never overwrite existing values.
	if rec.Location == "" {
		rec.Location = cand.Location.Value()
	}
	if rec.JobURL == "" {
		rec.JobURL = cand.JobURL.Value()
	}
	if rec.Salary == "" {
		rec.Salary = cand.Salary.Value()
	}

	// Unconditional bookkeeping.
	rec.LastEmailAt = msg.Date
	rec.LastEmailSubject = msg.Subject
	rec.LastEmailFrom = msg.From
	rec.MessageIDs = append(rec.MessageIDs, msg.ID)
	rec.UpdatedAt = now

	lineStatus := incoming
	if lineStatus == "" || lineStatus == types.StatusUnknown {
		lineStatus = types.StatusApplied
	}
	line := historyLine(msg.Date, lineStatus, msg.Subject)
	if !rec.HasHistoryLine(line) {
		rec.StatusHistory = append(rec.StatusHistory, line)
	}

	return Result{Op: OpUpdated, Record: rec, StatusChanged: statusChanged}
}

// ShouldUpdateStatus implements the monotonic status transition rule:
// progression never moves to a lower rank, lateral moves within a rank are
// allowed, and terminal states are mutually exclusive.
func ShouldUpdateStatus(current, incoming types.Status) bool {
	if incoming == "" || incoming == types.StatusUnknown {
		return false
	}
	if current == "" {
		return true
	}
	if current == incoming {
		return false
	}
	if current.Terminal() && incoming.Terminal() {
		return false
	}
	return incoming.Rank() >= current.Rank()
}

// historyLine formats one append-only audit entry.
func historyLine(date time.Time, status types.Status, subject string) string {
	if subject == "" {
		return fmt.Sprintf("%s - %s", date.Format("2006-01-02"), status)
	}
	return fmt.Sprintf("%s - %s | %s", date.Format("2006-01-02"), status, subject)
}

// cloneRecord deep-copies a record so the engine never mutates its input.
func cloneRecord(r *types.ApplicationRecord) *types.ApplicationRecord {
	c := *r
	c.MessageIDs = append([]string(nil), r.MessageIDs...)
	c.StatusHistory = append([]string(nil), r.StatusHistory...)
	return &c
}
