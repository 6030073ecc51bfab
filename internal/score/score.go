// Package score implements the weighted rule engine that turns a normalized
// message body plus extracted signals into a bounded lead-quality score.
package score

import (
	"regexp"
	"strings"

	"LeadScanner/internal/domain"
	"LeadScanner/internal/extract"
)

// Signal weights and bounds. The final score is clamped into [0,1] after all
// signals are summed, never re-normalized by signal count.
const (
	KeywordWeight   = 0.08
	IntentWeight    = 0.10
	CityWeight      = 0.06
	PriceWeight     = 0.10
	NegativePenalty = 0.15

	PriceMin = 50
	PriceMax = 2000
)

// negativeExpr mixes boundary-anchored and bare substring terms on purpose;
// the uneven anchoring is inherited behavior.
var negativeExpr = regexp.MustCompile(`(?i)\bfree\b|spam|cheapest|lowest|promo|discount code|follow\s+me`)

// Evaluate scores one normalized body against the configured vocabularies and
// the extracted price. Tags are appended in insertion order: keywords,
// intents, cities, price. A blank body short-circuits to a zero result.
func Evaluate(body string, keywords, intents, cities []string, price *float64) domain.ScoreResult {
	if strings.TrimSpace(body) == "" {
		return domain.ScoreResult{}
	}

	lower := strings.ToLower(body)
	var (
		sum  float64
		tags []string
	)

	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			sum += KeywordWeight
			tags = append(tags, "kw:"+kw)
		}
	}

	for _, intent := range intents {
		if intent != "" && strings.Contains(lower, strings.ToLower(intent)) {
			sum += IntentWeight
			tags = append(tags, "intent:"+intent)
		}
	}

	for _, city := range cities {
		if extract.WholeWord(body, city) {
			sum += CityWeight
			tags = append(tags, "city:"+city)
		}
	}

	if price != nil && *price >= PriceMin && *price <= PriceMax {
		sum += PriceWeight
		tags = append(tags, "price:ok")
	}

	// At most one penalty no matter how many negative terms match.
	if negativeExpr.MatchString(body) {
		sum -= NegativePenalty
	}

	return domain.ScoreResult{Score: clamp(sum), Tags: tags}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
