package ocr

import (
	"context"
	"fmt"
	"log"
)

// Recognizer abstracts a recognition provider: submit, poll to completion,
// and return normalized recognition output.
type Recognizer interface {
	Recognize(ctx context.Context, input SubmitInput) (*Result, error)
}

// FallbackRecognizer runs the primary provider and, on any provider failure,
// tries the secondary provider at most once. Validation failures never fall
// back: a file the primary rejected as malformed is equally malformed for the
// secondary. A shared limiter bounds in-flight recognition across callers; it
// is held from submission through the terminal poll outcome.
type FallbackRecognizer struct {
	primary   Recognizer
	secondary Recognizer // nil when no fallback provider is configured
	limiter   *Limiter
}

// NewFallbackRecognizer creates a FallbackRecognizer. secondary may be nil.
func NewFallbackRecognizer(primary, secondary Recognizer, limiter *Limiter) *FallbackRecognizer {
	return &FallbackRecognizer{primary: primary, secondary: secondary, limiter: limiter}
}

// Recognize implements Recognizer.
func (f *FallbackRecognizer) Recognize(ctx context.Context, input SubmitInput) (*Result, error) {
	if err := f.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer f.limiter.Release()

	result, primaryErr := f.primary.Recognize(ctx, input)
	if primaryErr == nil {
		result.ExtractionMethod = MethodPrimary
		return result, nil
	}
	if IsValidationError(primaryErr) {
		return nil, primaryErr
	}
	if f.secondary == nil {
		return nil, primaryErr
	}

	log.Printf("ocr.FallbackRecognizer: primary failed for %s, trying fallback: %v", input.Filename, primaryErr)

	result, fallbackErr := f.secondary.Recognize(ctx, input)
	if fallbackErr != nil {
		return nil, fmt.Errorf("fallback provider failed after primary (%v): %w", primaryErr, fallbackErr)
	}
	result.ExtractionMethod = MethodFallback
	return result, nil
}
