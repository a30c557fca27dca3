package extract

import (
	"regexp"
	"strings"
	"time"

	"loaddocs/internal/domain"
)

// minLicenseValidityDays is the safety margin a license must keep beyond
// today before the holder counts as verified; the license has to outlast
// the load it covers.
const minLicenseValidityDays = 30

// LicenseStrategy extracts structured data from driver's license scans,
// handling the layout variations across issuing states.
type LicenseStrategy struct {
	namePatterns       []*regexp.Regexp
	firstLastPattern   *regexp.Regexp
	numberPatterns     []*regexp.Regexp
	expirationPatterns []*regexp.Regexp
	classPatterns      []*regexp.Regexp
	addressPatterns    []*regexp.Regexp
	statePatterns      []*regexp.Regexp

	now func() time.Time
}

var licenseFalsePositives = map[string]struct{}{
	"COMMERCIAL": {}, "DRIVER": {}, "LICENSE": {}, "EXPIRES": {}, "ADDRESS": {},
	"BIRTHDAY": {}, "WEIGHT": {}, "HEIGHT": {}, "EYES": {}, "HAIR": {},
}

func NewLicenseStrategy() *LicenseStrategy {
	return &LicenseStrategy{
		namePatterns: compileAll([]string{
			// "NAME: John Smith"
			`(?i)NAME:[ \t]*([A-Z][a-zA-Z]+(?:[ \t]+[A-Z][a-zA-Z]+){1,3})`,
			// "SMITH, JOHN"
			`([A-Z][A-Z]+,[ \t]*[A-Z][a-zA-Z]+(?:[ \t]+[A-Z][a-zA-Z]+)*)`,
			// "John Smith" on its own line
			`(?m)^([A-Z][a-z]+\s+[A-Z][a-z]+(?:\s+[A-Z][a-z]+)?)$`,
		}),
		firstLastPattern: regexp.MustCompile(`(?is)(?:First):\s*([A-Za-z]+).*?(?:Last):\s*([A-Za-z]+)`),
		numberPatterns: compileAll([]string{
			// "DL: 123456789" or "CDL# A123456789"
			`(?i)(?:DL|LICENSE|LIC|CDL)[:# ]*([A-Z0-9]{7,15})`,
			// standalone alphanumeric run
			`\b([A-Z0-9]{8,12})\b`,
		}),
		expirationPatterns: compileAll([]string{
			// "EXP: 12/25/2025" or "EXPIRATION DATE: 12-25-25"
			`(?i)(?:EXP|EXPIRES|EXPIRATION)\s*(?:DATE)?:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			// second date after a DOB line
			`(?is)DOB:\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}.*?(?:EXP|EXPIRES):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			// standalone four-digit-year date
			`\b(\d{1,2}[/-]\d{1,2}[/-]\d{4})\b`,
		}),
		classPatterns: compileAll([]string{
			`(?i)(?:CLASS|CDL CLASS):*\s*([A-C])\b`,
			`(?i)(?:CLASS\s*)?([A-C])\s*(?:CDL|CLASS)`,
		}),
		addressPatterns: compileAll([]string{
			// "ADDRESS: 123 Main St ... ST 12345"
			`(?i)(?:ADDRESS|ADDR):*\s*([0-9]+\s+[A-Za-z\s]+(?:ST|STREET|AVE|AVENUE|RD|ROAD|BLVD|BOULEVARD|DR|DRIVE|LN|LANE)[^0-9]*?[A-Z]{2}\s+\d{5})`,
			// street line only
			`(?i)([0-9]{1,5}\s+[A-Za-z][A-Za-z\s]+(?:ST|STREET|AVE|AVENUE|RD|ROAD|BLVD|BOULEVARD|DR|DRIVE|LN|LANE))\b`,
		}),
		statePatterns: compileAll([]string{
			`(?:STATE|ST):*\s*([A-Z]{2})\b`,
			// state abbreviation ahead of a zip code
			`\b([A-Z]{2})\s+\d{5}`,
		}),
		now: time.Now,
	}
}

func (s *LicenseStrategy) Type() domain.DocumentType { return domain.DocTypeLicense }

func (s *LicenseStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	data := LicenseData{
		DriverName:    s.extractName(text, details),
		LicenseNumber: s.extractNumber(text, details),
		LicenseClass:  s.extractClass(text, details),
		Address:       s.extractAddress(text, details),
		State:         s.extractState(text, details),
	}
	if raw, ok := firstMatch(text, s.expirationPatterns, nil, details, "expiration"); ok {
		if t, ok := parseDate(raw); ok {
			data.ExpirationDate = &t
		}
	}

	confidence := s.confidence(data)
	return ParsingResult{
		Data:       data,
		Confidence: confidence,
		Verified:   s.verified(data),
		Details:    details,
	}
}

func (s *LicenseStrategy) extractName(text string, details map[string]interface{}) string {
	if m := s.firstLastPattern.FindStringSubmatch(text); m != nil {
		details["name"] = map[string]interface{}{"pattern": "first_last", "raw": m[0]}
		return cleanName(m[1] + " " + m[2])
	}
	raw, ok := firstMatch(text, s.namePatterns, func(c string) bool {
		return len(cleanName(c)) > 3
	}, details, "name")
	if !ok {
		return ""
	}
	return cleanName(raw)
}

func (s *LicenseStrategy) extractNumber(text string, details map[string]interface{}) string {
	n, _ := firstMatch(text, s.numberPatterns, validLicenseNumber, details, "license_number")
	return strings.ToUpper(n)
}

func (s *LicenseStrategy) extractClass(text string, details map[string]interface{}) string {
	c, _ := firstMatch(text, s.classPatterns, nil, details, "license_class")
	return strings.ToUpper(c)
}

func (s *LicenseStrategy) extractAddress(text string, details map[string]interface{}) string {
	addr, ok := firstMatch(text, s.addressPatterns, func(c string) bool {
		return len(c) > 10
	}, details, "address")
	if !ok {
		return ""
	}
	return collapseSpace(addr)
}

func (s *LicenseStrategy) extractState(text string, details map[string]interface{}) string {
	st, _ := firstMatch(text, s.statePatterns, func(c string) bool {
		if len(c) != 2 {
			return false
		}
		for _, r := range c {
			if r < 'A' || r > 'Z' {
				return false
			}
		}
		return true
	}, details, "state")
	return st
}

// confidence is a weighted sum over extracted fields with a ladder on the
// two critical fields: name plus expiration alone is enough evidence for
// the high tier regardless of the remaining weights.
func (s *LicenseStrategy) confidence(data LicenseData) float64 {
	score := 0.0
	found := 0
	add := func(present bool, weight float64) {
		if present {
			score += weight
			found++
		}
	}
	add(data.DriverName != "", 0.30)
	add(data.ExpirationDate != nil, 0.30)
	add(data.LicenseNumber != "", 0.15)
	add(data.LicenseClass != "", 0.10)
	add(data.Address != "", 0.05)
	add(data.State != "", 0.10)

	hasName := data.DriverName != ""
	hasExpiry := data.ExpirationDate != nil
	switch {
	case hasName && hasExpiry:
		if score < 0.95 {
			score = 0.95
		}
	case (hasName || hasExpiry) && found >= 2:
		if score < MediumConfidenceThreshold {
			score = MediumConfidenceThreshold
		}
	}

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func (s *LicenseStrategy) verified(data LicenseData) bool {
	if data.DriverName == "" || data.ExpirationDate == nil {
		return false
	}
	cutoff := calendarDate(s.now()).AddDate(0, 0, minLicenseValidityDays)
	return calendarDate(*data.ExpirationDate).After(cutoff)
}

func validLicenseNumber(candidate string) bool {
	if len(candidate) < 6 || len(candidate) > 15 {
		return false
	}
	hasDigit := false
	allDigit := true
	for _, r := range candidate {
		if r >= '0' && r <= '9' {
			hasDigit = true
		} else {
			allDigit = false
		}
	}
	if !hasDigit {
		return false
	}
	// reject year-like all-numeric candidates
	if allDigit && len(candidate) == 4 {
		return false
	}
	_, bad := licenseFalsePositives[strings.ToUpper(candidate)]
	return !bad
}

var (
	spaceRunRe    = regexp.MustCompile(`\s+`)
	licenseWordRe = regexp.MustCompile(`^[A-Z0-9]{7,}$`)
	dateWordRe    = regexp.MustCompile(`\d+[/-]\d+`)
)

func collapseSpace(s string) string {
	return spaceRunRe.ReplaceAllString(strings.TrimSpace(s), " ")
}

// cleanName strips tokens that belong to other license fields and folds
// "LAST, FIRST" into "First Last".
func cleanName(name string) string {
	name = collapseSpace(name)
	var kept []string
	for _, word := range strings.Fields(name) {
		bare := strings.TrimSuffix(word, ",")
		upper := strings.ToUpper(bare)
		if licenseWordRe.MatchString(bare) || dateWordRe.MatchString(bare) {
			continue
		}
		switch upper {
		case "LICENSE", "CDL", "EXP", "EXPIRES", "CLASS":
			continue
		}
		kept = append(kept, word)
	}
	if len(kept) > 0 {
		name = strings.Join(kept, " ")
	}
	if i := strings.Index(name, ","); i >= 0 {
		last, first := strings.TrimSpace(name[:i]), strings.TrimSpace(name[i+1:])
		if last != "" && first != "" {
			name = first + " " + last
		}
	}
	return titleCase(name)
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
