package types

import (
	"time"

	"github.com/google/uuid"
)

// ApplicationRecord is the persistent, authoritative record for one
// application thread. Exactly one record exists per ThreadID.
//
// Invariants maintained by the reconciliation engine:
//   - MessageIDs never shrinks; a message id appears in at most one record.
//   - StatusHistory is append-only and every line is textually unique.
//   - Status rank never decreases, and terminal states never swap.
type ApplicationRecord struct {
	ID       uuid.UUID `json:"id"`
	ThreadID string    `json:"thread_id"`
	Company  string    `json:"company"`
	Role     string    `json:"role"`
	Status   Status    `json:"status"`
	Location string    `json:"location,omitempty"`
	Salary   string    `json:"salary,omitempty"`
	JobURL   string    `json:"job_url,omitempty"`

	AppliedAt          time.Time `json:"applied_at"`
	LastEmailAt        time.Time `json:"last_email_at,omitzero"`
	LastEmailSubject   string    `json:"last_email_subject,omitempty"`
	LastEmailFrom      string    `json:"last_email_from,omitempty"`
	LastStatusChangeAt time.Time `json:"last_status_change_at,omitzero"`
	LastEventType      EventType `json:"last_event_type,omitempty"`

	MessageIDs    []string `json:"message_ids"`
	StatusHistory []string `json:"status_history"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasMessage reports whether the message id has already been folded into
// this record.
func (r *ApplicationRecord) HasMessage(id string) bool {
	for _, m := range r.MessageIDs {
		if m == id {
			return true
		}
	}
	return false
}

// HasHistoryLine reports whether the exact history line already exists.
func (r *ApplicationRecord) HasHistoryLine(line string) bool {
	for _, l := range r.StatusHistory {
		if l == line {
			return true
		}
	}
	return false
}
