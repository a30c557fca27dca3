package extract

import (
	"fmt"

	"loaddocs/internal/domain"
)

// TypedData is the tagged union of per-document-type extraction output.
// Exactly one concrete type exists per document type; absence of a field
// means "not found", never an error.
type TypedData interface {
	DocumentType() domain.DocumentType
}

// ParsingResult is the outcome of running a strategy over recognized text.
//
// Confidence is deterministic given identical input text. Details records,
// per field, which pattern matched and the raw matched substring; it exists
// for debugging and audit, not for behavior.
type ParsingResult struct {
	Data       TypedData              `json:"data"`
	Confidence float64                `json:"confidence"`
	Verified   bool                   `json:"verified"`
	Details    map[string]interface{} `json:"extraction_details"`
}

// Strategy converts recognized text for one document type into typed data
// with a calibrated confidence. Implementations never fail on low-information
// input; they return a floor-confidence result instead.
type Strategy interface {
	Type() domain.DocumentType
	Parse(ocrText string) ParsingResult
}

// Registry maps document types to their extraction strategies. Pattern tables
// are compiled once at construction and never mutated, so concurrent
// documents share strategies safely.
type Registry struct {
	strategies map[domain.DocumentType]Strategy
}

// NewRegistry builds a registry covering every supported document type.
func NewRegistry() *Registry {
	r := &Registry{strategies: make(map[domain.DocumentType]Strategy)}
	for _, s := range []Strategy{
		NewLicenseStrategy(),
		NewInsuranceStrategy(),
		NewAgreementStrategy(),
		NewRateConStrategy(),
		NewDeliveryStrategy(),
		NewInvoiceStrategy(),
		NewLumperStrategy(),
	} {
		r.strategies[s.Type()] = s
	}
	return r
}

// Get returns the strategy for a document type.
func (r *Registry) Get(docType domain.DocumentType) (Strategy, error) {
	s, ok := r.strategies[docType]
	if !ok {
		return nil, fmt.Errorf("no extraction strategy for document type %q: %w", docType, domain.ErrUnknownDocumentType)
	}
	return s, nil
}
