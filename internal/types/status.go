// Package types defines the domain model shared across the sync pipeline:
// email messages, extraction candidates, and persistent application records.
package types

// Status is the closed vocabulary of application states.
type Status string

// Application status values
const (
	StatusApplied      Status = "Applied"
	StatusInterviewing Status = "Interviewing"
	StatusOffer        Status = "Offer"
	StatusRejected     Status = "Rejected"
	StatusGhosted      Status = "Ghosted"
	StatusWithdrawn    Status = "Withdrawn"
	StatusUnknown      Status = "Unknown"
)

// Rank returns the progression order of a status. Higher ranks are later
// stages; statuses sharing a rank are lateral moves. Unknown and empty
// statuses rank 0 and never win a transition.
func (s Status) Rank() int {
	switch s {
	case StatusApplied:
		return 1
	case StatusInterviewing, StatusGhosted:
		return 2
	case StatusOffer, StatusRejected, StatusWithdrawn:
		return 3
	default:
		return 0
	}
}

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s.Rank() == 3
}

// StorageValue maps a status to the value persisted in the record store.
// The stored vocabulary has no distinct Withdrawn value, so Withdrawn is
// persisted as Rejected. This is a known lossy mapping and is kept
// deliberately rather than widened.
func (s Status) StorageValue() Status {
	if s == StatusWithdrawn {
		return StatusRejected
	}
	return s
}

// EventType tags the kind of email event that produced a status.
type EventType string

// Event type values derived from the normalized status
const (
	EventApplicationConfirmation EventType = "application_confirmation"
	EventInterview               EventType = "interview"
	EventOffer                   EventType = "offer"
	EventRejection               EventType = "rejection"
	EventStatusUpdate            EventType = "status_update"
)

// EventFor derives the event tag for a normalized status.
func EventFor(s Status) EventType {
	switch s {
	case StatusOffer:
		return EventOffer
	case StatusRejected:
		return EventRejection
	case StatusInterviewing:
		return EventInterview
	case StatusGhosted:
		return EventStatusUpdate
	default:
		return EventApplicationConfirmation
	}
}
