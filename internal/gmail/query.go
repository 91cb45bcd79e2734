package gmail

import (
	"strconv"
	"strings"
	"time"
)

// BuildQuery constructs the server-side Gmail search query for candidate
// messages after the given time. It deliberately overlaps with the
// client-side relevance filter: the query trades precision for recall and
// the filter refines the result, as two independent layers.
func BuildQuery(after time.Time) string {
	terms := []string{
		"after:" + strconv.FormatInt(after.Unix(), 10),
		"(",
		"subject:(application OR applied OR interview OR offer OR reject OR screening OR candidate)",
		"OR from:(careers OR jobs OR talent OR recruiting OR noreply OR greenhouse OR lever OR workday)",
		"OR (application AND (received OR confirmed OR submitted))",
		")",
		"-subject:(newsletter OR unsubscribe OR digest OR promo OR webinar)",
	}
	return strings.Join(terms, " ")
}
