// Package classify decides whether an inbound email is job-application
// related. It is a pure keyword policy with no I/O, tuned to prefer false
// negatives over false positives: the surrounding sync re-scans overlapping
// time windows, so a missed message gets another chance, while a wrongly
// accepted one pollutes the record store.
package classify

import (
	"strings"

	"github.com/jonathan/jobtrail/internal/types"
)

// subjectKeywords are strong job-process signals in the subject line.
var subjectKeywords = []string{
	"application", "applied", "interview", "offer", "candidate",
	"job", "career", "resume", "cv", "hiring", "recruitment",
	"talent", "position",
}

// senderKeywords match ATS and HR sender addresses.
var senderKeywords = []string{
	"careers", "jobs", "talent", "recruiting", "recruitment",
	"hiring", "hr", "people", "workday", "greenhouse", "lever",
	"ashby", "bamboohr", "smartrecruiters", "jobvite",
}

// negativeKeywords reject newsletters, marketing, and account-security mail
// before any positive rule runs.
var negativeKeywords = []string{
	"newsletter", "digest", "subscribe", "webinar", "marketing",
	"promo", "verify your email", "reset password", "security alert",
	"signin", "login", "verification code",
}

// IsJobRelated reports whether the message looks like part of a job
// application process.
func IsJobRelated(msg *types.EmailMessage) bool {
	subject := strings.ToLower(msg.Subject)
	from := strings.ToLower(msg.From)
	body := strings.ToLower(msg.Text())

	if containsAny(subject, negativeKeywords) || containsAny(from, negativeKeywords) {
		return false
	}

	hasSubjectKeyword := containsAny(subject, subjectKeywords)
	hasSenderKeyword := containsAny(from, senderKeywords)

	// Standard ATS auto-responders
	if hasSubjectKeyword && hasSenderKeyword {
		return true
	}

	// "Thank you for applying" type subjects
	if strings.Contains(subject, "thank you") &&
		(strings.Contains(subject, "apply") || strings.Contains(subject, "application")) {
		return true
	}

	// Rejection and status-change notices
	if strings.Contains(subject, "update") && strings.Contains(subject, "application") {
		return true
	}
	if strings.Contains(subject, "status") && strings.Contains(subject, "application") {
		return true
	}

	// Interview invites
	if strings.Contains(subject, "interview") &&
		(strings.Contains(subject, "invitation") || strings.Contains(subject, "schedule")) {
		return true
	}

	// Explicit ATS sender even if the subject is vague
	if hasSenderKeyword && strings.Contains(body, "application") {
		return true
	}

	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
