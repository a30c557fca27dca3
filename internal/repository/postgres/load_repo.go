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

type loadRepo struct {
	db *sqlx.DB
}

// NewLoadRepo creates a PostgreSQL-backed LoadRepository.
func NewLoadRepo(db *sqlx.DB) port.LoadRepository {
	return &loadRepo{db: db}
}

func (r *loadRepo) Create(ctx context.Context, l *domain.Load) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	if l.Status == "" {
		l.Status = domain.LoadStatusAvailable
	}

	query := `INSERT INTO loads (id, origin, destination, rate_cents, assigned_driver_id, flags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.ExecContext(ctx, query,
		l.ID, l.Origin, l.Destination, l.RateCents, l.AssignedDriverID, l.Flags, l.Status, l.CreatedAt, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("loadRepo.Create: %w", err)
	}
	return nil
}

func (r *loadRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Load, error) {
	var l domain.Load
	err := r.db.GetContext(ctx, &l, "SELECT * FROM loads WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLoadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loadRepo.GetByID: %w", err)
	}
	return &l, nil
}

// UpdateFlags merges the set bits into flags in a single statement, returning
// the merged row. Callers judge invoice readiness on the returned value: when
// a rate confirmation and a delivery complete concurrently, each writer's
// merge preserves the other's flag and at least one sees the completed pair.
func (r *loadRepo) UpdateFlags(ctx context.Context, id uuid.UUID, flags domain.LoadFlags) (*domain.LoadFlags, error) {
	bits, err := json.Marshal(flags.SetBits())
	if err != nil {
		return nil, fmt.Errorf("loadRepo.UpdateFlags: %w", err)
	}

	var merged domain.LoadFlags
	err = r.db.QueryRowContext(ctx,
		"UPDATE loads SET flags = flags || $1::jsonb, updated_at = $2 WHERE id = $3 RETURNING flags",
		bits, time.Now().UTC(), id).Scan(&merged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrLoadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loadRepo.UpdateFlags: %w", err)
	}
	return &merged, nil
}

func (r *loadRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.LoadStatus) error {
	result, err := r.db.ExecContext(ctx,
		"UPDATE loads SET status = $1, updated_at = $2 WHERE id = $3",
		status, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("loadRepo.UpdateStatus: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrLoadNotFound
	}
	return nil
}

// MarkInvoiceReady stamps invoice_ready_at once. The conditional update is
// the exactly-once guard: only the caller that flips the NULL column wins and
// should publish the invoice_ready event.
func (r *loadRepo) MarkInvoiceReady(ctx context.Context, id uuid.UUID) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE loads SET invoice_ready_at = $1, updated_at = $1 WHERE id = $2 AND invoice_ready_at IS NULL",
		time.Now().UTC(), id)
	if err != nil {
		return false, fmt.Errorf("loadRepo.MarkInvoiceReady: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("loadRepo.MarkInvoiceReady rows: %w", err)
	}
	return rows > 0, nil
}
