package ocr

import "strings"

// ExtractionMethod records which provider produced a result.
type ExtractionMethod string

const (
	MethodPrimary  ExtractionMethod = "primary"
	MethodFallback ExtractionMethod = "fallback"
)

// TextLine is a single recognized line with its confidence and geometry.
type TextLine struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	BBox       []float64   `json:"bbox,omitempty"`
	Polygon    [][]float64 `json:"polygon,omitempty"`
}

// Page holds the recognized content of a single page.
type Page struct {
	PageNumber int        `json:"page_number"`
	Text       string     `json:"text"`
	Confidence float64    `json:"confidence"`
	Lines      []TextLine `json:"lines"`
}

// Result is the normalized output of a recognition run.
//
// FullText is the newline-joined concatenation of page texts in page order.
// AverageConfidence is the line-count-weighted mean of line confidences, so
// pages with more lines contribute proportionally more.
type Result struct {
	FullText          string            `json:"full_text"`
	Pages             []Page            `json:"pages"`
	PageCount         int               `json:"page_count"`
	AverageConfidence float64           `json:"average_confidence"`
	ExtractionMethod  ExtractionMethod  `json:"extraction_method"`
	Metadata          map[string]string `json:"metadata,omitempty"`
}

// providerPayload mirrors the provider's completed-response wire format.
type providerPayload struct {
	Status    string         `json:"status"`
	Success   bool           `json:"success"`
	Error     string         `json:"error"`
	PageCount int            `json:"page_count"`
	Pages     []providerPage `json:"pages"`
}

type providerPage struct {
	Page      int            `json:"page"`
	TextLines []providerLine `json:"text_lines"`
}

type providerLine struct {
	Text       string      `json:"text"`
	Confidence float64     `json:"confidence"`
	BBox       []float64   `json:"bbox"`
	Polygon    [][]float64 `json:"polygon"`
}

// normalizeResult flattens a completed provider payload into a Result.
// Empty lines are dropped; a page with no surviving lines has confidence 0.
func normalizeResult(payload *providerPayload, provider string) *Result {
	result := &Result{
		PageCount: payload.PageCount,
		Pages:     make([]Page, 0, len(payload.Pages)),
		Metadata:  map[string]string{"provider": provider},
	}

	var pageTexts []string
	totalConfidence := 0.0
	totalLines := 0

	for _, rawPage := range payload.Pages {
		page := Page{PageNumber: rawPage.Page}
		var lineTexts []string
		pageConfidence := 0.0

		for _, rawLine := range rawPage.TextLines {
			text := strings.TrimSpace(rawLine.Text)
			if text == "" {
				continue
			}
			page.Lines = append(page.Lines, TextLine{
				Text:       text,
				Confidence: rawLine.Confidence,
				BBox:       rawLine.BBox,
				Polygon:    rawLine.Polygon,
			})
			lineTexts = append(lineTexts, text)
			pageConfidence += rawLine.Confidence
			totalConfidence += rawLine.Confidence
			totalLines++
		}

		page.Text = strings.Join(lineTexts, "\n")
		if len(page.Lines) > 0 {
			page.Confidence = pageConfidence / float64(len(page.Lines))
		}
		result.Pages = append(result.Pages, page)

		if page.Text != "" {
			pageTexts = append(pageTexts, page.Text)
		}
	}

	result.FullText = strings.Join(pageTexts, "\n")
	if totalLines > 0 {
		result.AverageConfidence = totalConfidence / float64(totalLines)
	}
	return result
}
