package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"loaddocs/internal/domain"
)

// MockDriverRepository is a mock implementation of port.DriverRepository.
type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) Create(ctx context.Context, d *domain.Driver) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.DriverFlags) (*domain.DriverFlags, error) {
	args := m.Called(ctx, id, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DriverFlags), args.Error(1)
}

func (m *MockDriverRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DriverStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockLoadRepository is a mock implementation of port.LoadRepository.
type MockLoadRepository struct {
	mock.Mock
}

func (m *MockLoadRepository) Create(ctx context.Context, l *domain.Load) error {
	args := m.Called(ctx, l)
	return args.Error(0)
}

func (m *MockLoadRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Load, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Load), args.Error(1)
}

func (m *MockLoadRepository) UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.LoadFlags) (*domain.LoadFlags, error) {
	args := m.Called(ctx, id, flags)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LoadFlags), args.Error(1)
}

func (m *MockLoadRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoadStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockLoadRepository) MarkInvoiceReady(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockDocumentRepository is a mock implementation of port.DocumentRepository.
type MockDocumentRepository struct {
	mock.Mock
}

func (m *MockDocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockDocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) ListByDriver(ctx context.Context, driverID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	args := m.Called(ctx, driverID, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.Document), args.Int(1), args.Error(2)
}

func (m *MockDocumentRepository) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Document), args.Error(1)
}

func (m *MockDocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}
