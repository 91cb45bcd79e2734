package extract

import (
	"regexp"
	"strings"

	"github.com/jonathan/jobtrail/internal/types"
)

// Deterministic fallback extractors. Each runs only when the oracle marked
// the field unavailable; the first present, non-empty candidate wins.

var (
	senderDomainPattern = regexp.MustCompile(`@([^.@\s]+)\.`)
	companyTextPattern  = regexp.MustCompile(`(?:from|at|with)\s+([A-Z][A-Za-z0-9&]*(?:\s+[A-Z][A-Za-z0-9&]*)*(?:\s+(?:Inc|LLC|Corp|Ltd))?)`)

	urlPattern      = regexp.MustCompile(`https?://[^\s<>"]+`)
	jobBoardPattern = regexp.MustCompile(`(?i)greenhouse|lever|workday|jobvite|smartrecruiters|linkedin|indeed`)

	salaryRangePattern     = regexp.MustCompile(`\$\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)\s*-\s*\$?\s*(\d{1,3}(?:,\d{3})*(?:\.\d{2})?)`)
	salaryBareRangePattern = regexp.MustCompile(`(?i)(\d{1,3}(?:,\d{3})*)\s*-\s*(\d{1,3}(?:,\d{3})*)\s*(?:USD|per year|/year|annually)`)
	salarySinglePattern    = regexp.MustCompile(`(?i)\$\s*(\d{1,3}(?:,\d{3})*k?)`)

	cityStatePattern    = regexp.MustCompile(`([A-Z][a-zA-Z ]+),\s*([A-Z]{2})\b`)
	workModePattern     = regexp.MustCompile(`(?i)\b(Remote|Hybrid|On-site)\b`)
	genericMailProvider = map[string]bool{
		"gmail": true, "yahoo": true, "outlook": true, "hotmail": true, "noreply": true,
	}
)

// companyFromSender infers a company name from the sender address domain.
// Generic mail providers never name the hiring company.
func companyFromSender(from string) types.Optional {
	m := senderDomainPattern.FindStringSubmatch(from)
	if m == nil {
		return types.None()
	}
	domain := m[1]
	if genericMailProvider[strings.ToLower(domain)] {
		return types.None()
	}
	return types.Some(strings.ToUpper(domain[:1]) + domain[1:])
}

// companyFromText finds a "from/at/with <Name>" mention in the message text.
func companyFromText(text string) types.Optional {
	m := companyTextPattern.FindStringSubmatch(text)
	if m == nil {
		return types.None()
	}
	return types.Some(strings.TrimSpace(m[1]))
}

// urlFromText returns the first URL in the text, preferring known job-board
// hosts over arbitrary links.
func urlFromText(text string) types.Optional {
	matches := urlPattern.FindAllString(text, -1)
	if len(matches) == 0 {
		return types.None()
	}
	for _, u := range matches {
		if jobBoardPattern.MatchString(u) {
			return types.Some(u)
		}
	}
	return types.Some(matches[0])
}

// salaryFromText finds a salary figure or range in the text.
func salaryFromText(text string) types.Optional {
	if m := salaryRangePattern.FindStringSubmatch(text); m != nil {
		return types.Some("$" + m[1] + " - $" + m[2])
	}
	if m := salaryBareRangePattern.FindStringSubmatch(text); m != nil {
		return types.Some("$" + m[1] + " - $" + m[2])
	}
	if m := salarySinglePattern.FindStringSubmatch(text); m != nil {
		amount := m[1]
		if strings.HasSuffix(strings.ToLower(amount), "k") {
			amount = amount[:len(amount)-1] + ",000"
		}
		return types.Some("$" + amount)
	}
	return types.None()
}

// locationFromText finds a "City, ST" pair or a work-mode keyword in the
// text. Scanning a whole message body for looser patterns produces too many
// false positives, so only these two run as fallbacks.
func locationFromText(text string) types.Optional {
	clean := strings.ReplaceAll(text, "\n", ", ")
	clean = strings.Join(strings.Fields(clean), " ")

	if m := cityStatePattern.FindString(clean); m != "" {
		return types.Some(m)
	}
	if m := workModePattern.FindString(clean); m != "" {
		return types.Some(m)
	}
	return types.None()
}
