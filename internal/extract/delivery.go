package extract

import (
	"regexp"
	"strings"

	"loaddocs/internal/domain"
)

// DeliveryStrategy extracts proof-of-delivery evidence: an explicit
// confirmation phrase, a receiver signature, the delivery date and any
// condition notes.
type DeliveryStrategy struct {
	confirmationPatterns []*regexp.Regexp
	signaturePatterns    []*regexp.Regexp
	receiverPatterns     []*regexp.Regexp
	datePatterns         []*regexp.Regexp
	notesPatterns        []*regexp.Regexp
}

func NewDeliveryStrategy() *DeliveryStrategy {
	return &DeliveryStrategy{
		confirmationPatterns: compileAll([]string{
			`(?i)delivery\s+confirmed?`,
			`(?i)delivered\s+successfully`,
			`(?i)(?:package|shipment|freight|cargo|goods)\s+delivered`,
			`(?i)delivery\s+completed?`,
			`(?i)received\s+in\s+good\s+condition`,
			`(?i)delivery\s+accepted`,
			`(?i)status[:\s]*delivered`,
			`(?i)proof\s+of\s+delivery`,
			`(?i)pod\s+confirmation`,
		}),
		signaturePatterns: compileAll([]string{
			`(?i)signature[:\s]*[A-Za-z]`,
			`(?i)(?:signed|received|accepted)\s+by[:\s]*[A-Za-z]`,
			`(?i)electronically\s+signed`,
			`(?i)digital\s+signature`,
			`(?i)signature\s+on\s+file`,
			`(?i)signed\s+digitally`,
			`(?i)[*]{2,}.*signature.*[*]{2,}`,
			`(?i)___+.*signature.*___+`,
		}),
		receiverPatterns: compileAll([]string{
			`(?i)(?:signed|received|accepted)\s+by[: \t]*([A-Za-z][A-Za-z ]{2,30})`,
			`(?i)receiver[: \t]*([A-Za-z][A-Za-z ]{2,30})`,
			`(?i)consignee[: \t]*([A-Za-z][A-Za-z ]{2,30})`,
			`(?i)name[: \t]*([A-Za-z][A-Za-z ]{2,30})`,
		}),
		datePatterns: compileAll([]string{
			`(?i)(?:delivery\s+date|delivered|date\s+delivered)[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)delivered[:\s]*(\d{4}[/-]\d{1,2}[/-]\d{1,2})`,
			`(?i)date[:\s]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
		}),
		notesPatterns: compileAll([]string{
			`(?i)(?:notes?|comments?|remarks?)\b[:\s]*([^\n\r]{5,200})`,
			`(?i)condition[:\s]*([^\n\r]{5,100})`,
			`(?i)((?:good|poor|damaged|excellent)\s+condition)`,
			`(?i)(damages?[:\s]*[^\n\r]{5,100})`,
			`(?i)(exception[:\s]*[^\n\r]{5,100})`,
		}),
	}
}

func (s *DeliveryStrategy) Type() domain.DocumentType { return domain.DocTypeDelivery }

func (s *DeliveryStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	var data DeliveryData
	data.DeliveryConfirmed = matchAnyWhole(text, s.confirmationPatterns, details, "delivery_confirmed")
	data.SignaturePresent = matchAnyWhole(text, s.signaturePatterns, details, "signature")
	if name, ok := firstMatch(text, s.receiverPatterns, validReceiverName, details, "receiver_name"); ok {
		data.ReceiverName = titleCase(collapseSpace(name))
	}
	data.DeliveryDate = extractDate(text, s.datePatterns, details, "delivery_date")
	if notes, ok := firstMatch(text, s.notesPatterns, nil, details, "delivery_notes"); ok {
		data.DeliveryNotes = collapseSpace(notes)
	}

	confidence := s.confidence(data)
	return ParsingResult{
		Data:       data,
		Confidence: confidence,
		Verified:   data.DeliveryConfirmed && confidence >= MediumConfidenceThreshold,
		Details:    details,
	}
}

func (s *DeliveryStrategy) confidence(data DeliveryData) float64 {
	score := 0.0
	if data.DeliveryConfirmed {
		score += 0.40
	}
	if data.SignaturePresent {
		score += 0.25
	}
	if data.DeliveryDate != nil {
		score += 0.20
	}
	if data.ReceiverName != "" {
		score += 0.10
	}
	if data.DeliveryNotes != "" {
		score += 0.05
	}

	// quality bonuses for unambiguous evidence
	if len(data.ReceiverName) > 5 {
		score += 0.02
	}
	if len(data.DeliveryNotes) > 20 {
		score += 0.01
	}

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func validReceiverName(candidate string) bool {
	candidate = collapseSpace(candidate)
	if len(candidate) < 3 {
		return false
	}
	switch strings.ToUpper(candidate) {
	case "SIGNATURE", "RECEIVER", "CONSIGNEE", "DRIVER", "FILE":
		return false
	}
	return true
}

func matchAnyWhole(text string, patterns []*regexp.Regexp, details map[string]interface{}, field string) bool {
	for i, re := range patterns {
		if m := re.FindString(text); m != "" {
			details[field] = map[string]interface{}{"pattern": i, "raw": m}
			return true
		}
	}
	details[field] = false
	return false
}
