package gmail

import (
	"encoding/base64"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	gmailapi "google.golang.org/api/gmail/v1"
)

// extractBody walks the MIME tree and returns the best plain text available:
// a text/plain part first, then a text/html part converted to text, then
// whatever the first part holds.
func extractBody(payload *gmailapi.MessagePart) string {
	if payload.Body != nil && payload.Body.Data != "" {
		return toPlainText(decodeBody(payload.Body.Data), payload.MimeType)
	}
	return extractBodyFromParts(payload.Parts)
}

func extractBodyFromParts(parts []*gmailapi.MessagePart) string {
	for _, part := range parts {
		if part.MimeType == "text/plain" && part.Body != nil && part.Body.Data != "" {
			return decodeBody(part.Body.Data)
		}
		if len(part.Parts) > 0 {
			if nested := extractBodyFromParts(part.Parts); nested != "" {
				return nested
			}
		}
	}

	for _, part := range parts {
		if part.MimeType == "text/html" && part.Body != nil && part.Body.Data != "" {
			return toPlainText(decodeBody(part.Body.Data), "text/html")
		}
	}

	if len(parts) > 0 && parts[0].Body != nil && parts[0].Body.Data != "" {
		return toPlainText(decodeBody(parts[0].Body.Data), parts[0].MimeType)
	}
	return ""
}

// decodeBody decodes Gmail's URL-safe base64 body data, tolerating missing
// padding.
func decodeBody(data string) string {
	if b, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "=")); err == nil {
		return string(b)
	}
	if b, err := base64.URLEncoding.DecodeString(data); err == nil {
		return string(b)
	}
	return ""
}

// blockBreaks marks block-element boundaries before markup is stripped, so
// paragraphs stay on separate lines in the extracted text.
var blockBreaks = regexp.MustCompile(`(?i)</(p|div|li|h[1-6]|tr)>|<br\s*/?>`)

// toPlainText strips markup from HTML content. Other content types pass
// through unchanged.
func toPlainText(content, mimeType string) string {
	if !strings.Contains(mimeType, "html") {
		return content
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(blockBreaks.ReplaceAllString(content, "\n")))
	if err != nil {
		return content
	}
	doc.Find("script, style, head").Remove()

	text := doc.Text()
	lines := make([]string, 0, 16)
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n")
}

// parseDate parses an RFC 5322 Date header.
func parseDate(value string) (time.Time, error) {
	return mail.ParseDate(value)
}
