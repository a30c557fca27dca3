package extract

import (
	"regexp"

	"loaddocs/internal/domain"
)

// AgreementStrategy detects signature evidence on signed agreements. Unlike
// the other strategies it scores mostly on a ladder rather than per-field
// weights, because the document's value is binary: signed or not.
type AgreementStrategy struct {
	signaturePatterns   []*regexp.Regexp
	typePatterns        []*regexp.Regexp
	keyTermPatterns     []*regexp.Regexp
	signingDatePatterns []*regexp.Regexp
}

func NewAgreementStrategy() *AgreementStrategy {
	return &AgreementStrategy{
		signaturePatterns: compileAll([]string{
			// digital signatures, with tolerance for digit/letter confusions
			`(?i)(?:Digitally|D[0-9]g[0-9]tally|Electronic(?:ally)?)\s+(?:Signed|S[0-9]gn[e3]d)\s+by:*\s*[A-Za-z0-9\s.]+`,
			`(?i)(?:Driver|Dr[0-9]v[e3]r)\s+(?:Signature|S[0-9]gnatur[e3]):`,
			`(?i)(?:Signature|S[0-9]gnatur[e3]):`,
			`(?i)(?:Signed|S[0-9]gn[e3]d)\s+by:*\s*[A-Za-z0-9_\s.]+`,
			// signature marks and placeholder lines
			`X{2,}[_\-\s]*|X[_\-]{3,}|[_\-]{4,}`,
			`(?i)(?:Date|Dat[e3])\s+(?:Signed|S[0-9]gn[e3]d):*\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`,
			`(?i)(?:Signed|S[0-9]gn[e3]d)\s+on:*\s*\d{1,2}[/-]\d{1,2}[/-]\d{2,4}`,
			`(?i)(?:I\s+agree|I\s+accept|I\s+acknowledge).*(?:terms|agreement|contract|conditions|responsibility)`,
		}),
		typePatterns: compileAll([]string{
			`(?i)(?:Driver|Dr[0-9]v[e3]r|Independent\s+Contractor|Carrier)\s+(?:Agreement|Agr[e3][e3]m[e3]nt)`,
			`(?i)Transportation\s+Agreement`,
			`(?i)Freight\s+(?:Broker\s+)?Agreement`,
			`(?i)Load\s+Agreement`,
			`(?im)^\s*Terms\s+(?:and\s+Conditions|of\s+Service)`,
			`(?i)(?:Employment|Service)\s+Contract`,
			`(?i)Non[\s-]?Disclosure\s+Agreement|NDA`,
		}),
		keyTermPatterns: compileAll([]string{
			`(?i)(?:liability|insurance|coverage).*(?:amount|limit):*\s*\$?[0-9,]+(?:\.[0-9]{2})?`,
			`(?i)(?:payment|compensation|rate).*(?:per|@).*(?:mile|load|hour)`,
			`(?i)(?:equipment|vehicle|truck).*(?:requirement|specification)`,
			`(?i)(?:termination|cancel|terminate).*(?:notice|days|immediately)`,
			`(?i)(?:compliance|regulation|DOT|FMCSA).*(?:requirement|standard)`,
		}),
		signingDatePatterns: compileAll([]string{
			`(?i)(?:Date\s+Signed|Signed\s+on|Signature\s+Date):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)(?:Agreed\s+on|Agreement\s+Date):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)Date:*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		}),
	}
}

func (s *AgreementStrategy) Type() domain.DocumentType { return domain.DocTypeAgreement }

func (s *AgreementStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	indicators := 0
	for _, re := range s.signaturePatterns {
		if re.MatchString(text) {
			indicators++
		}
	}
	details["signature_indicators"] = indicators

	var data AgreementData
	data.SignatureDetected = indicators >= 1
	if m, ok := firstMatchWhole(text, s.typePatterns, details, "agreement_type"); ok {
		data.AgreementType = collapseSpace(m)
	}
	for _, re := range s.keyTermPatterns {
		if m := re.FindString(text); m != "" {
			data.KeyTerms = append(data.KeyTerms, collapseSpace(m))
		}
	}
	data.SigningDate = extractDate(text, s.signingDatePatterns, details, "signing_date")

	confidence := s.confidence(data, indicators)
	return ParsingResult{
		Data:       data,
		Confidence: confidence,
		Verified:   confidence >= HighConfidenceThreshold,
		Details:    details,
	}
}

func (s *AgreementStrategy) confidence(data AgreementData, indicators int) float64 {
	hasSignature := data.SignatureDetected
	hasType := data.AgreementType != ""
	hasDate := data.SigningDate != nil
	hasTerms := len(data.KeyTerms) > 0

	var score float64
	switch {
	case hasSignature && hasType && hasDate:
		score = 0.95
	case hasSignature && hasType:
		score = 0.85
	case hasSignature && hasTerms:
		score = 0.75
	case hasSignature:
		score = 0.70
	case hasType && hasTerms:
		score = 0.60
	case hasTerms:
		score = 0.40
	default:
		score = FloorConfidence
	}

	// stronger signature evidence lifts the score
	if hasSignature {
		switch {
		case indicators >= 6:
			score += 0.25
		case indicators >= 4:
			score += 0.15
		case indicators >= 3:
			score += 0.10
		case indicators >= 2:
			score += 0.05
		}
	}

	return clamp01(score)
}

// firstMatchWhole is firstMatch for patterns without capture groups; the
// whole match is the value.
func firstMatchWhole(text string, patterns []*regexp.Regexp, details map[string]interface{}, field string) (string, bool) {
	for i, re := range patterns {
		if m := re.FindString(text); m != "" {
			details[field] = map[string]interface{}{"pattern": i, "raw": m}
			return m, true
		}
	}
	details[field] = nil
	return "", false
}
