package extract

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"loaddocs/internal/domain"
)

// RateConStrategy extracts rate and routing data from rate confirmations.
type RateConStrategy struct {
	ratePatterns      []*regexp.Regexp
	fromToPatterns    []*regexp.Regexp
	cityStateRe       *regexp.Regexp
	genericDateRe     *regexp.Regexp
	weightPatterns    []*regexp.Regexp
	commodityPatterns []*regexp.Regexp
}

var (
	pickupDateKeywords  = []string{"pickup", "pick up", "loading", "load date"}
	deliverDateKeywords = []string{"delivery", "deliver", "unload"}

	originKeywordRes      = compileKeywords("from", "origin", "pickup", "pick up", "loading")
	destinationKeywordRes = compileKeywords("to", "destination", "delivery", "deliver", "drop off", "unload")
)

func compileKeywords(keywords ...string) []*regexp.Regexp {
	res := make([]*regexp.Regexp, len(keywords))
	for i, kw := range keywords {
		res[i] = regexp.MustCompile(`\b` + regexp.QuoteMeta(kw) + `\b`)
	}
	return res
}

func NewRateConStrategy() *RateConStrategy {
	return &RateConStrategy{
		ratePatterns: compileAll([]string{
			// labeled amounts first
			`(?i)(?:rate|amount|total)[:\s]*\$?([0-9]{1,5}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`,
			`(?i)compensation[:\s]*\$?([0-9]{1,5}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`,
			`(?i)pay[:\s]*\$?([0-9]{1,5}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`,
			// any dollar amount
			`\$([0-9]{1,5}(?:,[0-9]{3})*(?:\.[0-9]{2})?)`,
			`(?i)([0-9]{1,5}(?:,[0-9]{3})*(?:\.[0-9]{2})?)\s*(?:dollars?|usd)`,
		}),
		fromToPatterns: compileAll([]string{
			// "From Houston, TX To Dallas, TX"
			`(?i)from\s+([A-Za-z]+(?:\s+[A-Za-z]+)*),\s*([A-Z]{2})\s+to\s+([A-Za-z]+(?:\s+[A-Za-z]+)*),\s*([A-Z]{2})`,
			// "Chicago IL to Detroit MI"
			`([A-Za-z]+(?:\s+[A-Za-z]+)*)\s+([A-Z]{2})\s+(?i:to)\s+([A-Za-z]+(?:\s+[A-Za-z]+)*)\s+([A-Z]{2})`,
		}),
		cityStateRe:   regexp.MustCompile(`([A-Za-z][A-Za-z\s]*[A-Za-z]),\s*([A-Z]{2})\b`),
		genericDateRe: regexp.MustCompile(`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		weightPatterns: compileAll([]string{
			`(?i)(?:weight|lbs?|pounds?)[:\s]*([0-9,]+)`,
			`(?i)([0-9,]+)\s*(?:lbs?|pounds?)`,
		}),
		commodityPatterns: compileAll([]string{
			`(?i)(?:commodity|product|freight|cargo)[: \t]*([A-Za-z][A-Za-z ,.-]+)`,
			`(?i)(?:description|desc)[: \t]*([A-Za-z][A-Za-z ,.-]+)`,
		}),
	}
}

func (s *RateConStrategy) Type() domain.DocumentType { return domain.DocTypeRateCon }

func (s *RateConStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	var data RateConData
	data.RateCents = s.extractRate(text, details)
	data.Origin, data.Destination = s.extractLocations(text, details)
	data.PickupDate, data.DeliveryDate = s.extractDates(text, details)
	data.WeightLbs = s.extractWeight(text, details)
	data.Commodity = s.extractCommodity(text, details)

	return ParsingResult{
		Data:       data,
		Confidence: s.confidence(data),
		// presence of the three core fields is sufficient; this gate is
		// deliberately not confidence-gated
		Verified: data.RateCents != nil && data.Origin != "" && data.Destination != "",
		Details:  details,
	}
}

// extractRate picks the highest plausible dollar amount on the page; the
// linehaul rate dominates accessorial line amounts.
func (s *RateConStrategy) extractRate(text string, details map[string]interface{}) *int64 {
	var best int64
	var bestRaw string
	for _, raw := range allCaptures(text, s.ratePatterns) {
		cents, ok := parseCurrencyCents(raw, raw)
		if !ok {
			continue
		}
		// 50..50000 dollars is the realistic band for a linehaul rate
		if cents < 50_00 || cents > 50_000_00 {
			continue
		}
		if cents > best {
			best = cents
			bestRaw = raw
		}
	}
	if best == 0 {
		details["rate"] = nil
		return nil
	}
	details["rate"] = map[string]interface{}{"raw": bestRaw, "cents": best}
	return &best
}

func (s *RateConStrategy) extractLocations(text string, details map[string]interface{}) (string, string) {
	var origin, destination string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		lower := strings.ToLower(line)
		if origin == "" {
			if loc, ok := s.locationAfterKeyword(line, lower, originKeywordRes); ok {
				origin = loc
			}
		}
		if destination == "" {
			if loc, ok := s.locationAfterKeyword(line, lower, destinationKeywordRes); ok && loc != origin {
				destination = loc
			}
		}
	}

	// "From X To Y" on one line
	if origin == "" || destination == "" {
		for _, re := range s.fromToPatterns {
			m := re.FindStringSubmatch(text)
			if m == nil {
				continue
			}
			if origin == "" {
				origin = fmt.Sprintf("%s, %s", strings.TrimSpace(m[1]), strings.ToUpper(m[2]))
			}
			if destination == "" {
				destination = fmt.Sprintf("%s, %s", strings.TrimSpace(m[3]), strings.ToUpper(m[4]))
			}
			break
		}
	}

	// last resort: first two distinct "City, ST" occurrences in order
	if origin == "" || destination == "" {
		var seen []string
		for _, m := range s.cityStateRe.FindAllStringSubmatch(text, -1) {
			loc := fmt.Sprintf("%s, %s", collapseSpace(m[1]), strings.ToUpper(m[2]))
			dup := false
			for _, prev := range seen {
				if prev == loc {
					dup = true
					break
				}
			}
			if !dup {
				seen = append(seen, loc)
			}
		}
		if origin == "" && len(seen) > 0 {
			origin = seen[0]
		}
		if destination == "" && len(seen) > 1 && seen[1] != origin {
			destination = seen[1]
		}
	}

	details["origin"] = origin
	details["destination"] = destination
	return origin, destination
}

func (s *RateConStrategy) locationAfterKeyword(line, lower string, keywords []*regexp.Regexp) (string, bool) {
	for _, kw := range keywords {
		loc := kw.FindStringIndex(lower)
		if loc == nil {
			continue
		}
		rest := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line[loc[1]:]), ":"))
		if m := s.cityStateRe.FindStringSubmatch(rest); m != nil {
			return fmt.Sprintf("%s, %s", collapseSpace(m[1]), strings.ToUpper(m[2])), true
		}
	}
	return "", false
}

func (s *RateConStrategy) extractDates(text string, details map[string]interface{}) (*time.Time, *time.Time) {
	var pickup, delivery *time.Time

	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		if pickup == nil && containsAny(lower, pickupDateKeywords) {
			if m := s.genericDateRe.FindStringSubmatch(line); m != nil {
				if t, ok := parseDate(m[1]); ok {
					pickup = &t
				}
			}
		}
		if delivery == nil && containsAny(lower, deliverDateKeywords) {
			if m := s.genericDateRe.FindStringSubmatch(line); m != nil {
				if t, ok := parseDate(m[1]); ok {
					delivery = &t
				}
			}
		}
	}

	// unlabeled dates: earliest is pickup, next is delivery
	if pickup == nil || delivery == nil {
		var all []time.Time
		for _, m := range s.genericDateRe.FindAllStringSubmatch(text, -1) {
			if t, ok := parseDate(m[1]); ok {
				all = append(all, t)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Before(all[j]) })
		if pickup == nil && len(all) > 0 {
			pickup = &all[0]
		}
		if delivery == nil && len(all) > 1 {
			delivery = &all[1]
		}
	}

	details["pickup_date"] = pickup != nil
	details["delivery_date"] = delivery != nil
	return pickup, delivery
}

func (s *RateConStrategy) extractWeight(text string, details map[string]interface{}) *float64 {
	for _, raw := range allCaptures(text, s.weightPatterns) {
		cleaned := strings.ReplaceAll(raw, ",", "")
		var w float64
		if _, err := fmt.Sscanf(cleaned, "%f", &w); err != nil {
			continue
		}
		if w >= 100 && w <= 80000 {
			details["weight"] = w
			return &w
		}
	}
	details["weight"] = nil
	return nil
}

func (s *RateConStrategy) extractCommodity(text string, details map[string]interface{}) string {
	c, ok := firstMatch(text, s.commodityPatterns, func(cand string) bool {
		return len(cand) >= 3 && len(cand) <= 100
	}, details, "commodity")
	if !ok {
		return ""
	}
	return collapseSpace(c)
}

func (s *RateConStrategy) confidence(data RateConData) float64 {
	score := 0.0
	add := func(present bool, weight float64) {
		if present {
			score += weight
		}
	}
	hasRate := data.RateCents != nil
	hasOrigin := data.Origin != ""
	hasDestination := data.Destination != ""
	hasDate := data.PickupDate != nil || data.DeliveryDate != nil

	add(hasRate, 0.40)
	add(hasOrigin, 0.20)
	add(hasDestination, 0.20)
	add(data.PickupDate != nil, 0.10)
	add(data.DeliveryDate != nil, 0.05)
	add(data.WeightLbs != nil, 0.03)
	add(data.Commodity != "", 0.02)

	switch {
	case hasRate && hasOrigin && hasDestination && hasDate:
		score = 0.95
	case hasRate && hasOrigin && hasDestination:
		score = 0.85
	case hasRate && (hasOrigin || hasDestination):
		score = MediumConfidenceThreshold
	case hasRate:
		score = 0.60
	}

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func containsAny(s string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(s, kw) {
			return true
		}
	}
	return false
}
