// Package extract turns a raw email into a structured ExtractionCandidate.
// One oracle call per message; the oracle's reply is defensively parsed,
// schema-validated, normalized into the closed status vocabulary, and
// backfilled with deterministic text heuristics.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/xeipuuv/gojsonschema"

	"github.com/jonathan/jobtrail/internal/llm"
	"github.com/jonathan/jobtrail/internal/types"
)

// bodyCharBudget bounds the body text sent to the oracle to respect its
// input-size limit.
const bodyCharBudget = 8000

const systemPrompt = `You are an expert recruitment data parser. Your goal is to extract structured job application data from emails.
Analyze the email content and determine:
1. Company Name
2. Role/Position Title
3. Status (Applied, Interviewing, Offer, Rejected, Ghosted, Withdrawn, Unknown)
4. Location (if mentioned)
5. Salary (if mentioned)
6. Job posting URL (if mentioned)

Return ONLY valid JSON matching this schema:
{
  "company": "string",
  "role": "string",
  "status": "Applied" | "Interviewing" | "Offer" | "Rejected" | "Ghosted" | "Withdrawn" | "Unknown",
  "location": "string | null",
  "salary": "string | null",
  "job_url": "string | null"
}

Rules:
- If the email is a rejection (e.g., "not moving forward", "went with another candidate"), set status to "Rejected".
- If it's a new application confirmation, set status to "Applied".
- If it's an invitation to any interview, screen, coding challenge, or onsite, set status to "Interviewing".
- If the company name isn't clear, infer it from the sender email domain or context.
- Use the exact string "Not available" for any field you cannot determine. Never guess.
- Do not include explanations, only the JSON object.`

// candidateSchema validates the shape of the oracle's JSON object before any
// field is trusted.
const candidateSchema = `{
  "type": "object",
  "required": ["status"],
  "properties": {
    "company":  {"type": ["string", "null"]},
    "role":     {"type": ["string", "null"]},
    "status":   {"type": "string"},
    "location": {"type": ["string", "null"]},
    "salary":   {"type": ["string", "null"]},
    "job_url":  {"type": ["string", "null"]}
  }
}`

var schemaLoader = gojsonschema.NewStringLoader(candidateSchema)

// oracleResponse mirrors the JSON object the oracle is instructed to return.
type oracleResponse struct {
	Company  *string `json:"company"`
	Role     *string `json:"role"`
	Status   string  `json:"status"`
	Location *string `json:"location"`
	Salary   *string `json:"salary"`
	JobURL   *string `json:"job_url"`
}

// Extractor performs oracle-backed field extraction for single messages.
type Extractor struct {
	oracle llm.Client
	log    *logrus.Entry
}

// New creates an Extractor backed by the given oracle client.
func New(oracle llm.Client, log *logrus.Entry) *Extractor {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Extractor{oracle: oracle, log: log}
}

// Extract calls the oracle once for the message and returns the normalized
// candidate. A *MalformedOutputError is returned when the oracle's reply
// cannot be turned into a valid candidate; callers skip the message without
// retrying. Other errors are transport failures.
func (e *Extractor) Extract(ctx context.Context, msg *types.EmailMessage) (*types.ExtractionCandidate, error) {
	body := msg.Text()
	if len(body) > bodyCharBudget {
		body = body[:bodyCharBudget]
	}

	user := fmt.Sprintf("Subject: %s\nFrom: %s\nBody:\n%s\n", msg.Subject, msg.From, body)

	reply, err := e.oracle.Complete(ctx, systemPrompt, user)
	if err != nil {
		return nil, &OracleError{Message: "oracle call failed", Cause: err}
	}

	resp, err := parseOracleReply(reply)
	if err != nil {
		e.log.WithField("message_id", msg.ID).WithError(err).Warn("discarding unusable oracle output")
		return nil, err
	}

	return e.normalize(msg, resp), nil
}

// parseOracleReply locates the first balanced JSON object in the reply,
// validates it against the candidate schema, and decodes it.
func parseOracleReply(reply string) (*oracleResponse, error) {
	raw := extractJSONObject(llm.CleanJSONBlock(reply))
	if raw == "" {
		return nil, &MalformedOutputError{Message: "no JSON object in oracle reply"}
	}

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return nil, &MalformedOutputError{Message: "oracle reply is not valid JSON", Cause: err}
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, &MalformedOutputError{Message: "oracle reply failed schema validation: " + strings.Join(details, "; ")}
	}

	var resp oracleResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, &MalformedOutputError{Message: "failed to decode oracle reply", Cause: err}
	}
	return &resp, nil
}

// normalize applies status normalization and the fallback chain. Oracle
// output takes precedence; fallbacks only fill sentinel fields.
func (e *Extractor) normalize(msg *types.EmailMessage, resp *oracleResponse) *types.ExtractionCandidate {
	text := msg.Text()
	status := NormalizeStatus(resp.Status)

	return &types.ExtractionCandidate{
		Company:  types.FromOracle(resp.Company).Or(companyFromSender(msg.From)).Or(companyFromText(text)),
		Role:     types.FromOracle(resp.Role),
		Status:   status,
		Event:    types.EventFor(status),
		Location: types.FromOracle(resp.Location).Or(locationFromText(text)),
		Salary:   types.FromOracle(resp.Salary).Or(salaryFromText(text)),
		JobURL:   types.FromOracle(resp.JobURL).Or(urlFromText(text)),
	}
}

// NormalizeStatus folds a free-form status label into the closed vocabulary.
// Precedence matters: terminal signals are checked before progress signals,
// and anything unrecognized defaults to Applied so a candidate never rests
// on Unknown.
func NormalizeStatus(raw string) types.Status {
	s := strings.ToLower(raw)
	switch {
	case strings.Contains(s, "reject"), strings.Contains(s, "decline"), strings.Contains(s, "unsuccessful"):
		return types.StatusRejected
	case strings.Contains(s, "offer"), strings.Contains(s, "compensation"):
		return types.StatusOffer
	case strings.Contains(s, "ghost"):
		return types.StatusGhosted
	case strings.Contains(s, "withdraw"):
		return types.StatusWithdrawn
	case strings.Contains(s, "interview"), strings.Contains(s, "screen"), strings.Contains(s, "challenge"),
		strings.Contains(s, "onsite"), strings.Contains(s, "assessment"):
		return types.StatusInterviewing
	case strings.Contains(s, "applied"), strings.Contains(s, "received"), strings.Contains(s, "submitted"),
		strings.Contains(s, "application"):
		return types.StatusApplied
	default:
		return types.StatusApplied
	}
}

// extractJSONObject returns the first balanced {...} span in text, honoring
// string literals and escapes, or "" when none exists.
func extractJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if !inString {
				depth++
			}
		case '}':
			if !inString {
				depth--
				if depth == 0 {
					return text[start : i+1]
				}
			}
		}
	}
	return ""
}
