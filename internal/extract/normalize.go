package extract

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Normalize produces the plain-text body used by the extractors and scorer.
// A non-blank plain-text variant wins; otherwise the HTML variant is parsed,
// script/style subtrees dropped, entities decoded, and whitespace collapsed.
// Absent bodies yield an empty string, never an error.
func Normalize(textBody, htmlBody string) string {
	if trimmed := strings.TrimSpace(textBody); trimmed != "" {
		return trimmed
	}
	if strings.TrimSpace(htmlBody) == "" {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlBody))
	if err != nil {
		return collapse(htmlBody)
	}
	doc.Find("script, style").Remove()
	return collapse(doc.Text())
}

// Compact truncates s to a rune budget, marking the cut with an ellipsis.
func Compact(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
