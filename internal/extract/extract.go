// Package extract holds the pure text-mining functions of the lead pipeline:
// body normalization and the independent field extractors for channel, price,
// URL, and city. Every function is deterministic and side-effect free.
package extract

import (
	"regexp"
	"strconv"
	"strings"

	"LeadScanner/internal/domain"
)

var (
	pricePrefixedExpr = regexp.MustCompile(`(?i)(?:\$|price:?)\s*(\d{2,5})`)
	priceWordedExpr   = regexp.MustCompile(`(?i)\b(\d{2,5})\s*(?:usd|dollars)\b`)
	urlExpr           = regexp.MustCompile(`https?://\S+`)
)

// channelRules map subject tokens to channel tags, checked in order; the
// first hit wins.
var channelRules = []struct {
	token   string
	channel string
}{
	{"offerup", domain.SourceOfferUp},
	{"facebook", domain.SourceFacebook},
	{"marketplace", domain.SourceFacebook},
}

// Fields runs all extractors against one message. Source detection reads the
// subject; everything else reads the normalized body.
func Fields(subject, body string, cities []string) domain.ExtractedFields {
	return domain.ExtractedFields{
		Source: Source(subject),
		Price:  Price(body),
		URL:    FirstURL(body),
		City:   City(body, cities),
	}
}

// Source infers the originating channel from the subject line.
func Source(subject string) string {
	lower := strings.ToLower(subject)
	for _, rule := range channelRules {
		if strings.Contains(lower, rule.token) {
			return rule.channel
		}
	}
	return domain.SourceEmail
}

// Price finds the first quoted amount in the body: a currency-symbol or
// "price:"-prefixed 2-5 digit number, falling back to a bare number followed
// by a currency word. A miss or unparsable match yields nil.
func Price(body string) *float64 {
	match := pricePrefixedExpr.FindStringSubmatch(body)
	if match == nil {
		match = priceWordedExpr.FindStringSubmatch(body)
	}
	if match == nil {
		return nil
	}

	value, err := strconv.ParseFloat(match[1], 64)
	if err != nil {
		return nil
	}
	return &value
}

// FirstURL returns the first well-formed URL in the body with trailing
// punctuation stripped, or "" when none is present.
func FirstURL(body string) string {
	return strings.TrimRight(urlExpr.FindString(body), ".,)]}")
}

// City returns the first configured city present in the body as a
// case-insensitive whole word, or "" when none match.
func City(body string, cities []string) string {
	for _, city := range cities {
		if WholeWord(body, city) {
			return city
		}
	}
	return ""
}

// WholeWord reports whether term occurs in text as a case-insensitive
// whole-word match, never as a fragment of a longer word.
func WholeWord(text, term string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return false
	}
	expr, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(term) + `\b`)
	if err != nil {
		return false
	}
	return expr.MatchString(text)
}
