package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"loaddocs/internal/ocr"
)

// MockRecognizer is a mock implementation of ocr.Recognizer.
type MockRecognizer struct {
	mock.Mock
}

func (m *MockRecognizer) Recognize(ctx context.Context, input ocr.SubmitInput) (*ocr.Result, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ocr.Result), args.Error(1)
}
