package port

import "context"

// CrossValidation holds the outcome of comparing two independent model
// extractions over the same document text.
type CrossValidation struct {
	Agreement            float64 // fraction of compared fields both models agree on
	ConfidenceAdjustment float64 // signed adjustment to apply to the strategy confidence
	PrimaryFields        map[string]string
	SecondaryFields      map[string]string
}

// CrossValidator asks two independent models to extract structured fields from
// normalized document text and scores their agreement. It is an optional
// accuracy booster: errors disable the adjustment, they never fail parsing.
type CrossValidator interface {
	Validate(ctx context.Context, text string) (*CrossValidation, error)
}
