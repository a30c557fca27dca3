package extract

import (
	"regexp"
	"strings"

	"loaddocs/internal/domain"
)

// InvoiceStrategy extracts billing data from freight invoices, including the
// accessorial line items (fuel surcharge, detention, lumper fees) that feed
// settlement.
type InvoiceStrategy struct {
	numberPatterns   []*regexp.Regexp
	datePatterns     []*regexp.Regexp
	dueDatePatterns  []*regexp.Regexp
	vendorPatterns   []*regexp.Regexp
	customerPatterns []*regexp.Regexp
	totalPatterns    []*regexp.Regexp
	subtotalPatterns []*regexp.Regexp
	lineItemPatterns []*regexp.Regexp
}

func NewInvoiceStrategy() *InvoiceStrategy {
	return &InvoiceStrategy{
		numberPatterns: compileAll([]string{
			`(?i)Invoice\s*(?:#|Number|No\.?):*\s*([A-Z0-9\-_]{3,20})`,
			`(?i)INV[#:]\s*([A-Z0-9\-_]{3,20})`,
			`(?i)Invoice\s+([A-Z0-9\-_]{3,20})`,
			`(?i)Bill\s*(?:#|Number|No\.?):*\s*([A-Z0-9\-_]{3,20})`,
		}),
		datePatterns: compileAll([]string{
			`(?i)(?:Invoice\s+Date|Billing\s+Date|Issue\s+Date|Date):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)(?:Invoice\s+Date|Date):*\s*(\d{4}-\d{1,2}-\d{1,2})`,
		}),
		dueDatePatterns: compileAll([]string{
			`(?i)(?:Due\s+Date|Payment\s+Due|Due):*\s*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`,
			`(?i)Due:*\s*(\d{4}-\d{1,2}-\d{1,2})`,
		}),
		vendorPatterns: compileAll([]string{
			`(?im)(?:Remit\s+To|Vendor|From|Carrier):*[ \t]*\n?[ \t]*([A-Z][A-Za-z &.,'-]{2,50})`,
			`(?i)([A-Z][A-Za-z &.,'-]*(?:LLC|Inc|Corp|Co|Company|Industries|Logistics|Transportation|Freight))`,
		}),
		customerPatterns: compileAll([]string{
			`(?im)(?:Bill\s+To|Ship\s+To|Customer|Consignee):*[ \t]*\n?[ \t]*([A-Z][A-Za-z &.,'-]{2,50})`,
		}),
		totalPatterns: compileAll([]string{
			`(?i)\b(?:Grand\s+Total|Invoice\s+Total|Total|Amount\s+Due|Balance):*\s*\$?\s*([\d,]+\.?\d{0,2})`,
		}),
		subtotalPatterns: compileAll([]string{
			`(?i)(?:Subtotal|Sub\s+Total):*\s*\$?\s*([\d,]+\.?\d{0,2})`,
		}),
		lineItemPatterns: compileAll([]string{
			`(?im)^([A-Za-z \-]*(?:Freight|Linehaul)\s*(?:Charges?)?)[^\n$]*\$\s*([\d,]+\.?\d{0,2})`,
			`(?i)(Fuel\s+Surcharge|FSC)[^\n$]*\$?\s*([\d,]+\.?\d{0,2})`,
			`(?i)(Detention|Delay|Wait\s+Time)[^\n$]*\$?\s*([\d,]+\.?\d{0,2})`,
			`(?i)(Lumper|Loading|Unloading)[^\n$]*\$?\s*([\d,]+\.?\d{0,2})`,
		}),
	}
}

func (s *InvoiceStrategy) Type() domain.DocumentType { return domain.DocTypeInvoice }

func (s *InvoiceStrategy) Parse(ocrText string) ParsingResult {
	text := NormalizeArtifacts(ocrText)
	details := map[string]interface{}{}

	var data InvoiceData
	if n, ok := firstMatch(text, s.numberPatterns, validInvoiceNumber, details, "invoice_number"); ok {
		data.InvoiceNumber = strings.ToUpper(n)
	}
	data.InvoiceDate = extractDate(text, s.datePatterns, details, "invoice_date")
	data.DueDate = extractDate(text, s.dueDatePatterns, details, "due_date")
	if v, ok := firstMatch(text, s.vendorPatterns, validCompanyName, details, "vendor_name"); ok {
		data.VendorName = cleanCompanyName(v)
	}
	if c, ok := firstMatch(text, s.customerPatterns, validCompanyName, details, "customer_name"); ok {
		data.CustomerName = cleanCompanyName(c)
	}
	data.TotalCents = extractCents(text, s.totalPatterns, details, "total_amount")
	data.SubtotalCents = extractCents(text, s.subtotalPatterns, details, "subtotal")
	data.LineItems = s.extractLineItems(text, details)

	return ParsingResult{
		Data:       data,
		Confidence: s.confidence(data),
		Verified:   data.InvoiceNumber != "" && data.TotalCents != nil,
		Details:    details,
	}
}

func (s *InvoiceStrategy) extractLineItems(text string, details map[string]interface{}) []InvoiceLineItem {
	var items []InvoiceLineItem
	seen := map[string]struct{}{}
	for _, re := range s.lineItemPatterns {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			desc := collapseSpace(m[1])
			if desc == "" {
				continue
			}
			key := strings.ToLower(desc)
			if _, dup := seen[key]; dup {
				continue
			}
			cents, ok := parseCurrencyCents(m[2], m[0])
			if !ok || cents <= 0 {
				continue
			}
			seen[key] = struct{}{}
			items = append(items, InvoiceLineItem{Description: desc, AmountCents: cents})
		}
	}
	details["line_items"] = len(items)
	return items
}

func (s *InvoiceStrategy) confidence(data InvoiceData) float64 {
	score := 0.0
	add := func(present bool, weight float64) {
		if present {
			score += weight
		}
	}
	add(data.InvoiceNumber != "", 0.25)
	add(data.TotalCents != nil, 0.20)
	add(data.VendorName != "", 0.15)
	add(data.InvoiceDate != nil, 0.10)
	add(data.CustomerName != "", 0.10)
	add(len(data.LineItems) > 0, 0.10)
	add(data.SubtotalCents != nil, 0.05)
	add(data.DueDate != nil, 0.05)

	if len(data.LineItems) > 1 {
		score += 0.05
	}

	score = clamp01(score)
	if score < FloorConfidence {
		score = FloorConfidence
	}
	return score
}

func validInvoiceNumber(candidate string) bool {
	if len(candidate) < 3 || len(candidate) > 20 {
		return false
	}
	switch strings.ToUpper(candidate) {
	case "NUMBER", "DATE", "TOTAL", "DUE", "AMOUNT":
		return false
	}
	hasAlnum := false
	for _, r := range candidate {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			hasAlnum = true
			break
		}
	}
	return hasAlnum
}

func validCompanyName(candidate string) bool {
	candidate = collapseSpace(candidate)
	return len(candidate) >= 3 && len(candidate) <= 50 && !dateWordRe.MatchString(candidate)
}

func cleanCompanyName(name string) string {
	name = collapseSpace(name)
	return strings.Trim(name, ".,'- ")
}

func extractCents(text string, patterns []*regexp.Regexp, details map[string]interface{}, field string) *int64 {
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
