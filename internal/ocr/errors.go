package ocr

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// ValidationError indicates the input file was rejected before any network
// call (bad size or unsupported MIME type). It is never retried.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input: %s", e.Reason)
}

// AuthenticationError indicates the provider rejected our credentials.
// This is a configuration problem and is fatal.
type AuthenticationError struct {
	Provider string
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("%s authentication failed", e.Provider)
}

// RateLimitError indicates the provider returned HTTP 429.
type RateLimitError struct {
	Err        error
	RetryAfter time.Duration
	Provider   string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("%s rate limited (retry after %s): %v", e.Provider, e.RetryAfter, e.Err)
}

func (e *RateLimitError) Unwrap() error {
	return e.Err
}

// NewRateLimitError creates a RateLimitError. If retryAfterSecs is 0, defaults to 60s.
func NewRateLimitError(provider string, err error, retryAfterSecs int) *RateLimitError {
	if retryAfterSecs <= 0 {
		retryAfterSecs = 60
	}
	return &RateLimitError{
		Err:        err,
		RetryAfter: time.Duration(retryAfterSecs) * time.Second,
		Provider:   provider,
	}
}

// ParseRetryAfterHeader parses a Retry-After header value into seconds.
// Returns 0 if the value is empty or not a valid integer.
func ParseRetryAfterHeader(val string) int {
	if val == "" {
		return 0
	}
	secs, err := strconv.Atoi(val)
	if err != nil {
		return 0
	}
	return secs
}

// ProcessingError indicates the provider failed to recognize the document.
type ProcessingError struct {
	Provider string
	Detail   string
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s processing failed: %s", e.Provider, e.Detail)
}

// TimeoutError indicates the time budget ran out before the provider
// completed: polling was exhausted, the context expired mid-poll, or the
// caller gave up waiting for a limiter slot. Cause carries the context error
// when one ended the wait.
type TimeoutError struct {
	Provider string
	Attempts int
	Cause    error
}

func (e *TimeoutError) Error() string {
	switch {
	case e.Attempts > 0 && e.Cause != nil:
		return fmt.Sprintf("%s timed out after %d polling attempts: %v", e.Provider, e.Attempts, e.Cause)
	case e.Attempts > 0:
		return fmt.Sprintf("%s timed out after %d polling attempts", e.Provider, e.Attempts)
	default:
		return fmt.Sprintf("%s timed out waiting: %v", e.Provider, e.Cause)
	}
}

func (e *TimeoutError) Unwrap() error {
	return e.Cause
}

// IsValidationError reports whether err is an input validation failure,
// which must not trigger the fallback provider.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
