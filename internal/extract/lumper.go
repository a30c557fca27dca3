package extract

import (
	"regexp"
	"strings"

	"loaddocs/internal/domain"
)

// LumperStrategy extracts the fee evidence from lumper receipts, the
// warehouse loading/unloading charges a driver pays at the dock.
type LumperStrategy struct {
	amountPatterns   []*regexp.Regexp
	facilityPatterns []*regexp.Regexp
	datePatterns     []*regexp.Regexp
	numberPatterns   []*regexp.Regexp
	driverPatterns   []*regexp.Regexp
	paymentPatterns  []*regexp.Regexp
}

func NewLumperStrategy() *LumperStrategy {
	return &LumperStrategy{
		amountPatterns: compileAll([]string{
			`(?i)(?:total|amount|charge|fee|paid):*\s*\$?\s*([\d,]+\.?\d{0,2})`,
			`(?i)lumper\s+(?:fee|charge)?:*\s*\$?\s*([\d,]+\.?\d{0,2})`,
			`\$\s*([\d,]+\.\d{2})`,
		}),
		facilityPatterns: compileAll([]string{
			`(?i)(?:warehouse|facility|location|site):*[ \t]*([^\n\r]{4,60})`,
			`(?i)(?:at|@)\s+([A-Z][A-Za-z &.,]+(?:warehouse|facility|center|depot))`,
			`(?i)([A-Z][A-Za-z &.,]*(?:warehouse|facility|center|depot|distribution))`,
		}),
		datePatterns: compileAll([]string{
			`(?i)(?:date|paid\s+on):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(\d{4}-\d{1,2}-\d{1,2})`,
		}),
		numberPatterns: compileAll([]string{
			`(?i)(?:receipt|ticket|invoice)\s*#?\s*:?\s*([A-Z0-9\-_]{3,20})`,
			`(?i)(?:receipt|ticket)\s+no\.?\s*:?\s*([A-Z0-9\-_]{3,20})`,
			`(?i)ref\s*#?\s*:?\s*([A-Z0-9\-_]{3,20})`,
		}),
		driverPatterns: compileAll([]string{
			`(?i)driver\s*:?[ \t]*([A-Za-z][A-Za-z ,.]{2,40})`,
			`(?i)trucker\s*:?[ \t]*([A-Za-z][A-Za-z ,.]{2,40})`,
			`(?i)operator\s*:?[ \t]*([A-Za-z][A-Za-z ,.]{2,40})`,
		}),
		paymentPatterns: compileAll([]string{
			`(?i)\b(cash|check|comcheck|comdata|efs|t-?chek|credit\s+card|fleet\s+card)\b`,
			`(?i)(?:paid\s+(?:by|via|with)|payment\s+(?:method|type)):*\s*([A-Za-z\s-]{3,20})`,
		}),
	}
}

func (s *LumperStrategy) Type() domain.DocumentType { return domain.DocTypeLumper }

func (s *LumperStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	var data LumperReceiptData
	data.AmountCents = extractCents(text, s.amountPatterns, details, "amount")
	if f, ok := firstMatch(text, s.facilityPatterns, validFacilityName, details, "facility_name"); ok {
		data.FacilityName = collapseSpace(f)
	}
	data.ReceiptDate = extractDate(text, s.datePatterns, details, "receipt_date")
	if n, ok := firstMatch(text, s.numberPatterns, validReceiptNumber, details, "receipt_number"); ok {
		data.ReceiptNumber = strings.ToUpper(n)
	}
	if d, ok := firstMatch(text, s.driverPatterns, validReceiverName, details, "driver_name"); ok {
		data.DriverName = titleCase(collapseSpace(strings.Trim(d, ",. ")))
	}
	if p, ok := firstMatch(text, s.paymentPatterns, nil, details, "payment_method"); ok {
		data.PaymentMethod = strings.ToLower(collapseSpace(p))
	}

	return ParsingResult{
		Data:       data,
		Confidence: s.confidence(data),
		Verified:   data.AmountCents != nil && data.ReceiptDate != nil,
		Details:    details,
	}
}

func (s *LumperStrategy) confidence(data LumperReceiptData) float64 {
	score := 0.0
	add := func(present bool, weight float64) {
		if present {
			score += weight
		}
	}
	add(data.AmountCents != nil, 0.25)
	add(data.FacilityName != "", 0.20)
	add(data.ReceiptDate != nil, 0.20)
	add(data.ReceiptNumber != "", 0.15)
	add(data.DriverName != "", 0.10)
	add(data.PaymentMethod != "", 0.10)

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func validFacilityName(candidate string) bool {
	candidate = collapseSpace(candidate)
	if len(candidate) < 4 {
		return false
	}
	for _, r := range candidate {
		if r < '0' || r > '9' {
			return true
		}
	}
	return false
}

func validReceiptNumber(candidate string) bool {
	if len(candidate) < 3 || len(candidate) > 20 {
		return false
	}
	switch strings.ToUpper(candidate) {
	case "NUMBER", "RECEIPT", "TICKET", "DATE":
		return false
	}
	return true
}
