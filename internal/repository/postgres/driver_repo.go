package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"loaddocs/internal/domain"
	"loaddocs/internal/port"
)

type driverRepo struct {
	db *sqlx.DB
}

// NewDriverRepo creates a PostgreSQL-backed DriverRepository.
func NewDriverRepo(db *sqlx.DB) port.DriverRepository {
	return &driverRepo{db: db}
}

func (r *driverRepo) Create(ctx context.Context, d *domain.Driver) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	now := time.Now().UTC()
	d.CreatedAt = now
	d.UpdatedAt = now
	if d.Status == "" {
		d.Status = domain.DriverStatusPending
	}
	if d.Language == "" {
		d.Language = "en"
	}

	query := `INSERT INTO drivers (id, full_name, phone_number, language, doc_flags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.db.ExecContext(ctx, query,
		d.ID, d.FullName, d.PhoneNumber, d.Language, d.DocFlags, d.Status, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("driverRepo.Create: %w", err)
	}
	return nil
}

func (r *driverRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Driver, error) {
	var d domain.Driver
	err := r.db.GetContext(ctx, &d, "SELECT * FROM drivers WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("driverRepo.GetByID: %w", err)
	}
	return &d, nil
}

// UpdateFlags merges the set bits into doc_flags in a single statement. The
// JSONB || merge only ever adds true keys, so a concurrent writer's flag
// survives regardless of ordering.
func (r *driverRepo) UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.DriverFlags) (*domain.DriverFlags, error) {
	bits, err := json.Marshal(flags.SetBits())
	if err != nil {
		return nil, fmt.Errorf("driverRepo.UpdateFlags: %w", err)
	}

	var merged domain.DriverFlags
	err = r.db.QueryRowContext(ctx,
		"UPDATE drivers SET doc_flags = doc_flags || $1::jsonb, updated_at = $2 WHERE id = $3 RETURNING doc_flags",
		bits, time.Now().UTC(), id).Scan(&merged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("driverRepo.UpdateFlags: %w", err)
	}
	return &merged, nil
}

func (r *driverRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.DriverStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE drivers SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("driverRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}
