package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"loaddocs/internal/domain"
	"loaddocs/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) Create(ctx context.Context, doc *domain.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	now := time.Now().UTC()
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = domain.DocStatusQueued
	}

	query := `INSERT INTO documents (id, driver_id, load_id, type, url, status, confidence, parsed_data,
			verified, processing_error, process_attempts, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.DriverID, doc.LoadID, doc.Type, doc.URL, doc.Status, doc.Confidence, doc.ParsedData,
		doc.Verified, doc.ProcessingError, doc.ProcessAttempts, doc.CreatedAt, doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("documentRepo.Create: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc, "SELECT * FROM documents WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

func (r *documentRepo) ListByDriver(ctx context.Context, driverID uuid.UUID, offset, limit int) ([]domain.Document, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM documents WHERE driver_id = $1", driverID)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByDriver count: %w", err)
	}

	var docs []domain.Document
	err = r.db.SelectContext(ctx, &docs,
		`SELECT * FROM documents WHERE driver_id = $1
		 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		driverID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("documentRepo.ListByDriver: %w", err)
	}
	return docs, total, nil
}

// ClaimQueued atomically moves up to limit queued documents to processing and
// returns them. SKIP LOCKED keeps concurrent workers from claiming the same
// rows; the transaction makes status flip and selection one step.
func (r *documentRepo) ClaimQueued(ctx context.Context, limit int) ([]domain.Document, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var docs []domain.Document
	err = tx.SelectContext(ctx, &docs,
		`UPDATE documents SET status = $1, process_attempts = process_attempts + 1, updated_at = $2
		 WHERE id IN (
			SELECT id FROM documents WHERE status = $3
			ORDER BY created_at ASC LIMIT $4
			FOR UPDATE SKIP LOCKED
		 )
		 RETURNING *`,
		domain.DocStatusProcessing, time.Now().UTC(), domain.DocStatusQueued, limit)
	if err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("documentRepo.ClaimQueued commit: %w", err)
	}
	return docs, nil
}

func (r *documentRepo) Update(ctx context.Context, doc *domain.Document) error {
	doc.UpdatedAt = time.Now().UTC()

	query := `UPDATE documents SET status = $1, confidence = $2, parsed_data = $3, verified = $4,
			processing_error = $5, process_attempts = $6, updated_at = $7
		WHERE id = $8`

	result, err := r.db.ExecContext(ctx, query,
		doc.Status, doc.Confidence, doc.ParsedData, doc.Verified,
		doc.ProcessingError, doc.ProcessAttempts, doc.UpdatedAt, doc.ID)
	if err != nil {
		return fmt.Errorf("documentRepo.Update: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}
