package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"loaddocs/internal/port"
)

// MockCrossValidator is a mock implementation of port.CrossValidator.
type MockCrossValidator struct {
	mock.Mock
}

func (m *MockCrossValidator) Validate(ctx context.Context, text string) (*port.CrossValidation, error) {
	args := m.Called(ctx, text)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.CrossValidation), args.Error(1)
}
