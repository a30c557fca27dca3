package ocr

import "context"

// Limiter bounds the number of simultaneous in-flight recognition requests so
// the provider's concurrent-request quota is never exceeded. Callers beyond
// the ceiling block until a slot frees.
type Limiter struct {
	slots chan struct{}
}

// NewLimiter creates a Limiter with the given ceiling (minimum 1).
func NewLimiter(ceiling int) *Limiter {
	if ceiling < 1 {
		ceiling = 1
	}
	return &Limiter{slots: make(chan struct{}, ceiling)}
}

// Acquire blocks until a slot is available or ctx is canceled. A canceled
// wait surfaces as a TimeoutError wrapping the context error so callers
// classify it the same way as a polling timeout.
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.slots <- struct{}{}:
		return nil
	case <-ctx.Done():
		return &TimeoutError{Provider: "limiter", Cause: ctx.Err()}
	}
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	<-l.slots
}
