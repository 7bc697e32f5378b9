package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/biometric"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

type importBatchRepository struct {
	db *database.DB
}

func NewImportBatchRepository(db *database.DB) biometric.ImportBatchRepository {
	return &importBatchRepository{db: db}
}

// Create implements biometric.ImportBatchRepository. The ID is generated
// app-side so punches created by the batch can reference it before commit.
func (r *importBatchRepository) Create(ctx context.Context, batch biometric.ImportBatch) (biometric.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	if batch.ID == "" {
		batch.ID = uuid.New().String()
	}

	query := `
		INSERT INTO import_batches (id, source_file_name, source_size, checksum, uploaded_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	err := q.QueryRow(ctx, query,
		batch.ID, batch.SourceFileName, batch.SourceSize, batch.Checksum, batch.UploadedBy,
	).Scan(&batch.CreatedAt)
	if err != nil {
		return biometric.ImportBatch{}, fmt.Errorf("failed to create import batch: %w", err)
	}

	return batch, nil
}

// GetByID implements biometric.ImportBatchRepository.
func (r *importBatchRepository) GetByID(ctx context.Context, id string) (biometric.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, source_file_name, source_size, checksum, uploaded_by, created_at
		FROM import_batches
		WHERE id = $1
	`

	var batch biometric.ImportBatch
	err := q.QueryRow(ctx, query, id).Scan(
		&batch.ID, &batch.SourceFileName, &batch.SourceSize, &batch.Checksum, &batch.UploadedBy, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return biometric.ImportBatch{}, biometric.ErrBatchNotFound
		}
		return biometric.ImportBatch{}, fmt.Errorf("failed to get import batch: %w", err)
	}

	return batch, nil
}

// GetByChecksum implements biometric.ImportBatchRepository. The earliest
// batch wins so repeat uploads always point at the original.
func (r *importBatchRepository) GetByChecksum(ctx context.Context, checksum string) (*biometric.ImportBatch, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, source_file_name, source_size, checksum, uploaded_by, created_at
		FROM import_batches
		WHERE checksum = $1
		ORDER BY created_at
		LIMIT 1
	`

	var batch biometric.ImportBatch
	err := q.QueryRow(ctx, query, checksum).Scan(
		&batch.ID, &batch.SourceFileName, &batch.SourceSize, &batch.Checksum, &batch.UploadedBy, &batch.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get import batch by checksum: %w", err)
	}

	return &batch, nil
}

// List implements biometric.ImportBatchRepository.
func (r *importBatchRepository) List(ctx context.Context, page, limit int) ([]biometric.ImportBatch, int64, error) {
	q := GetQuerier(ctx, r.db)

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM import_batches`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count import batches: %w", err)
	}

	query := `
		SELECT id, source_file_name, source_size, checksum, uploaded_by, created_at
		FROM import_batches
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := q.Query(ctx, query, limit, (page-1)*limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list import batches: %w", err)
	}
	defer rows.Close()

	var batches []biometric.ImportBatch
	for rows.Next() {
		var batch biometric.ImportBatch
		if err := rows.Scan(
			&batch.ID, &batch.SourceFileName, &batch.SourceSize, &batch.Checksum, &batch.UploadedBy, &batch.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan import batch: %w", err)
		}
		batches = append(batches, batch)
	}

	return batches, total, rows.Err()
}
