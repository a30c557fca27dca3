package service

import (
	"context"

	"github.com/google/uuid"

	"loaddocs/internal/domain"
	"loaddocs/internal/port"
)

// CreateLoadInput is the DTO for registering a load.
type CreateLoadInput struct {
	Origin           *string
	Destination      *string
	RateCents        *int64
	AssignedDriverID *uuid.UUID
}

// LoadVerification is the caller-facing view of a load's paperwork state.
type LoadVerification struct {
	LoadID       uuid.UUID         `json:"load_id"`
	Flags        domain.LoadFlags  `json:"flags"`
	Status       domain.LoadStatus `json:"status"`
	InvoiceReady bool              `json:"invoice_ready"`
}

// LoadService defines the load management contract.
type LoadService interface {
	Create(ctx context.Context, input *CreateLoadInput) (*domain.Load, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Load, error)
	GetVerification(ctx context.Context, id uuid.UUID) (*LoadVerification, error)
}

type loadService struct {
	loadRepo   port.LoadRepository
	driverRepo port.DriverRepository
}

// NewLoadService creates a LoadService implementation.
func NewLoadService(loadRepo port.LoadRepository, driverRepo port.DriverRepository) LoadService {
	return &loadService{loadRepo: loadRepo, driverRepo: driverRepo}
}

func (s *loadService) Create(ctx context.Context, input *CreateLoadInput) (*domain.Load, error) {
	load := &domain.Load{
		Origin:      input.Origin,
		Destination: input.Destination,
		RateCents:   input.RateCents,
		Status:      domain.LoadStatusAvailable,
	}
	if input.AssignedDriverID != nil {
		if _, err := s.driverRepo.GetByID(ctx, *input.AssignedDriverID); err != nil {
			return nil, err
		}
		load.AssignedDriverID = input.AssignedDriverID
		load.Status = domain.LoadStatusAssigned
	}
	if err := s.loadRepo.Create(ctx, load); err != nil {
		return nil, err
	}
	return load, nil
}

func (s *loadService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Load, error) {
	return s.loadRepo.GetByID(ctx, id)
}

func (s *loadService) GetVerification(ctx context.Context, id uuid.UUID) (*LoadVerification, error) {
	load, err := s.loadRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return &LoadVerification{
		LoadID:       load.ID,
		Flags:        load.Flags,
		Status:       load.Status,
		InvoiceReady: load.InvoiceReadyAt != nil,
	}, nil
}
