package port

import (
	"context"

	"github.com/google/uuid"

	"loaddocs/internal/domain"
)

// DriverRepository defines the contract for driver persistence.
// UpdateFlags merges only the set bits into the stored flags and returns the
// merged result, so concurrent writers never unset each other's flags.
type DriverRepository interface {
	Create(ctx context.Context, d *domain.Driver) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error)
	UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.DriverFlags) (*domain.DriverFlags, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DriverStatus) error
}

// LoadRepository defines the contract for load persistence. UpdateFlags has
// the same monotone-merge semantics as DriverRepository.UpdateFlags.
type LoadRepository interface {
	Create(ctx context.Context, l *domain.Load) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Load, error)
	UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.LoadFlags) (*domain.LoadFlags, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoadStatus) error
	MarkInvoiceReady(ctx context.Context, id uuid.UUID) (bool, error)
}

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error)
	ListByDriver(ctx context.Context, driverID uuid.UUID, offset, limit int) ([]domain.Document, int, error)
	ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error)
	Update(ctx context.Context, doc *domain.Document) error
}
