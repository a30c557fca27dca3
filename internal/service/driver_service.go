package service

import (
	"context"

	"github.com/google/uuid"

	"loaddocs/internal/domain"
	"loaddocs/internal/port"
)

// CreateDriverInput is the DTO for registering a driver.
type CreateDriverInput struct {
	FullName    string
	PhoneNumber string
	Language    string
}

// DriverVerification is the caller-facing view of a driver's document flags.
type DriverVerification struct {
	DriverID      uuid.UUID           `json:"driver_id"`
	Flags         domain.DriverFlags  `json:"flags"`
	FullyVerified bool                `json:"fully_verified"`
	Status        domain.DriverStatus `json:"status"`
}

// DriverService defines the driver management contract.
type DriverService interface {
	Create(ctx context.Context, input *CreateDriverInput) (*domain.Driver, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	GetVerification(ctx context.Context, id uuid.UUID) (*DriverVerification, error)
	ListDocuments(ctx context.Context, id uuid.UUID, offset, limit int) ([]domain.Document, int, error)
}

type driverService struct {
	driverRepo port.DriverRepository
	docRepo    port.DocumentRepository
}

// NewDriverService creates a DriverService implementation.
func NewDriverService(driverRepo port.DriverRepository, docRepo port.DocumentRepository) DriverService {
	return &driverService{driverRepo: driverRepo, docRepo: docRepo}
}

func (s *driverService) Create(ctx context.Context, input *CreateDriverInput) (*domain.Driver, error) {
	driver := &domain.Driver{
		FullName:    input.FullName,
		PhoneNumber: input.PhoneNumber,
		Language:    input.Language,
		Status:      domain.DriverStatusPending,
	}
	if err := s.driverRepo.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *driverService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	return s.driverRepo.GetByID(ctx, id)
}

func (s *driverService) GetVerification(ctx context.Context, id uuid.UUID) (*DriverVerification, error) {
	driver, err := s.driverRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	flags := driver.DocFlags
	return &DriverVerification{
		DriverID:      driver.ID,
		Flags:         flags,
		FullyVerified: flags.LicenseVerified && flags.InsuranceVerified && flags.AgreementSigned,
		Status:        driver.Status,
	}, nil
}

func (s *driverService) ListDocuments(ctx context.Context, id uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	if _, err := s.driverRepo.GetByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.docRepo.ListByDriver(ctx, id, offset, limit)
}
