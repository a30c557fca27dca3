package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockEventNotifier is a mock implementation of port.EventNotifier.
type MockEventNotifier struct {
	mock.Mock
}

func (m *MockEventNotifier) InvoiceReady(ctx context.Context, loadID, driverID uuid.UUID) {
	m.Called(ctx, loadID, driverID)
}
