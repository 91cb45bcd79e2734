package types

import "time"

// EmailMessage is an immutable inbound message as delivered by the message
// source. Multiple messages may share a ThreadID; the thread is the unit of
// deduplication downstream.
type EmailMessage struct {
	ID       string    `json:"id"`
	ThreadID string    `json:"thread_id"`
	Subject  string    `json:"subject"`
	From     string    `json:"from"`
	To       string    `json:"to"`
	Date     time.Time `json:"date"`
	Body     string    `json:"body"`
	Snippet  string    `json:"snippet"`
}

// Text returns the best available plain text for the message: the body when
// present, otherwise the snippet.
func (m *EmailMessage) Text() string {
	if m.Body != "" {
		return m.Body
	}
	return m.Snippet
}

// ExtractionCandidate holds the structured facts extracted from a single
// message, after oracle output has been normalized and deterministic
// fallbacks applied.
type ExtractionCandidate struct {
	Company  Optional
	Role     Optional
	Status   Status
	Event    EventType
	Location Optional
	Salary   Optional
	JobURL   Optional
}
