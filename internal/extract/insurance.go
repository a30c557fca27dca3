package extract

import (
	"regexp"
	"strings"
	"time"

	"loaddocs/internal/domain"
)

// InsuranceStrategy extracts structured data from certificates of insurance.
type InsuranceStrategy struct {
	policyPatterns     []*regexp.Regexp
	companyPatterns    []*regexp.Regexp
	generalPatterns    []*regexp.Regexp
	autoPatterns       []*regexp.Regexp
	effectivePatterns  []*regexp.Regexp
	expirationPatterns []*regexp.Regexp

	now func() time.Time
}

var policyFalsePositives = map[string]struct{}{
	"CERTIFICATE": {}, "INSURANCE": {}, "LIABILITY": {}, "COVERAGE": {},
	"EFFECTIVE": {}, "EXPIRATION": {}, "POLICY": {}, "GENERAL": {},
	"COMMERCIAL": {}, "AGGREGATE": {}, "OCCURRENCE": {},
}

func NewInsuranceStrategy() *InsuranceStrategy {
	return &InsuranceStrategy{
		policyPatterns: compileAll([]string{
			// "Policy Number: ABC123456" or "Policy #: ABC-123"
			`(?i)(?:Policy|POL)\s+(?:Number|No|#):*\s*([A-Z0-9-]{4,20})`,
			// "Certificate No: ABC123456"
			`(?i)(?:Certificate|Cert)\s+(?:No|Number):*\s+([A-Z0-9-]{6,20})`,
			// standalone prefixed format "PGR-9876543210"
			`(?i)\b([A-Z]{2,4}-[0-9A-Z]{3,}(?:-[0-9A-Z]{3,})*)\b`,
			// "POLICY: ABC123456"
			`(?i)POLICY:*\s*([A-Z0-9-]{6,20})\b`,
			// bare digit run
			`\b([0-9]{8,15})\b`,
		}),
		companyPatterns: compileAll([]string{
			`(?i)(?:Insurer|Insurance Company|Carrier):*\s*([A-Z][A-Za-z &]{3,40})`,
			`(?i)\b(State Farm|Allstate|Progressive|GEICO|Farmers|Liberty Mutual|Nationwide|USAA|Travelers|American Family|MetLife|AIG|CNA|Zurich|Hartford|Chubb)\b`,
			`(?i)(?:Issued by|Underwritten by):*\s*([A-Z][A-Za-z &]{3,40})`,
			`(?i)\b([A-Z][A-Za-z]*(?:\s+[A-Z][A-Za-z]*)*\s+Insurance(?:\s+Company)?)\b`,
		}),
		generalPatterns: compileAll([]string{
			`(?i)(?:General Liability|GL|General Agg|Aggregate):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
			`(?i)(?:Each Occurrence|Per Occurrence|Occurrence Limit):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
			`(?i)(?:Coverage|Limit):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
		}),
		autoPatterns: compileAll([]string{
			`(?i)(?:Auto Liability|AL|Commercial Auto|Vehicle):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
			`(?i)(?:Combined Single Limit|CSL|Single Limit):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
			`(?i)(?:Liability Limit|Liability Coverage):*\s*\$?([0-9,]+(?:\.[0-9]{1,2})?)\s*(?:M\b|Million|K\b|Thousand)?`,
		}),
		effectivePatterns: compileAll([]string{
			`(?i)(?:Effective|Eff)(?:\s+Date)?:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)(?:Policy Period|Coverage Period):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)From:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		}),
		expirationPatterns: compileAll([]string{
			`(?i)(?:Expires|Expiration|Exp)(?:\s+Date)?:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			// second date of "Policy Period: A to B"
			`(?i)(?:Policy Period|Coverage Period):*\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}\s+(?:to|through|-)\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)To:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)(?:Valid Until|Until):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		}),
		now: time.Now,
	}
}

func (s *InsuranceStrategy) Type() domain.DocumentType { return domain.DocTypeInsurance }

func (s *InsuranceStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	var data InsuranceData
	if p, ok := firstMatch(text, s.policyPatterns, validPolicyNumber, details, "policy_number"); ok {
		data.PolicyNumber = strings.ToUpper(p)
	}
	if c, ok := firstMatch(text, s.companyPatterns, nil, details, "insurance_company"); ok {
		data.InsuranceCompany = collapseSpace(c)
	}
	data.GeneralLiabilityCents = s.extractAmount(text, s.generalPatterns, details, "general_liability")
	data.AutoLiabilityCents = s.extractAmount(text, s.autoPatterns, details, "auto_liability")
	data.EffectiveDate = extractDate(text, s.effectivePatterns, details, "effective_date")
	data.ExpirationDate = extractDate(text, s.expirationPatterns, details, "expiration_date")

	return ParsingResult{
		Data:       data,
		Confidence: s.confidence(data),
		Verified:   s.verified(data),
		Details:    details,
	}
}

func (s *InsuranceStrategy) extractAmount(text string, patterns []*regexp.Regexp, details map[string]interface{}, field string) *int64 {
	for i, re := range patterns {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		cents, ok := parseCurrencyCents(m[1], m[0])
		if !ok || cents <= 0 {
			continue
		}
		details[field] = map[string]interface{}{"pattern": i, "raw": m[0]}
		return &cents
	}
	details[field] = nil
	return nil
}

// confidence combines per-field weights with a ladder on the minimum viable
// verification signal: a policy number together with a liability amount is
// worth more than their individual weights, while either one alone is capped
// below the medium tier.
func (s *InsuranceStrategy) confidence(data InsuranceData) float64 {
	score := 0.0
	add := func(present bool, weight float64) {
		if present {
			score += weight
		}
	}
	hasPolicy := data.PolicyNumber != ""
	hasCompany := data.InsuranceCompany != ""
	hasGeneral := data.GeneralLiabilityCents != nil
	hasAuto := data.AutoLiabilityCents != nil
	hasEffective := data.EffectiveDate != nil
	hasExpiration := data.ExpirationDate != nil

	add(hasPolicy, 0.25)
	add(hasCompany, 0.15)
	add(hasGeneral, 0.20)
	add(hasAuto, 0.20)
	add(hasEffective, 0.10)
	add(hasExpiration, 0.10)

	hasAmount := hasGeneral || hasAuto
	hasDate := hasEffective || hasExpiration
	switch {
	case hasPolicy && hasCompany && hasAmount && hasDate:
		score = 0.95
	case hasPolicy && hasAmount && hasDate && (hasCompany || (hasGeneral && hasAuto)):
		score = 0.85
	case hasPolicy && hasAmount && hasDate:
		score = 0.80
	case hasPolicy && (hasAmount || hasDate):
		score = MediumConfidenceThreshold
	case hasPolicy != hasAmount:
		// one of the pair without the other never reaches the medium tier
		if score > 0.65 {
			score = 0.65
		}
	}

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func (s *InsuranceStrategy) verified(data InsuranceData) bool {
	if data.PolicyNumber == "" || data.ExpirationDate == nil {
		return false
	}
	if data.GeneralLiabilityCents == nil && data.AutoLiabilityCents == nil {
		return false
	}
	// same-day rule: coverage merely has to outlast today
	return calendarDate(*data.ExpirationDate).After(calendarDate(s.now()))
}

func validPolicyNumber(candidate string) bool {
	if len(candidate) < 4 || len(candidate) > 20 {
		return false
	}
	if dateWordRe.MatchString(candidate) {
		return false
	}
	allDigit := true
	for _, r := range candidate {
		if r < '0' || r > '9' {
			allDigit = false
			break
		}
	}
	if allDigit && len(candidate) == 4 {
		return false
	}
	_, bad := policyFalsePositives[strings.ToUpper(candidate)]
	return !bad
}

// extractDate runs a date-field cascade and parses the winning capture.
func extractDate(text string, patterns []*regexp.Regexp, details map[string]interface{}, field string) *time.Time {
	raw, ok := firstMatch(text, patterns, func(c string) bool {
		_, parsed := parseDate(c)
		return parsed
	}, details, field)
	if !ok {
		return nil
	}
	t, _ := parseDate(raw)
	return &t
}
