package biometric

import (
	"context"
)

// ImportBatchRepository stores upload provenance. Batches are write-once.
type ImportBatchRepository interface {
	Create(ctx context.Context, batch ImportBatch) (ImportBatch, error)

	GetByID(ctx context.Context, id string) (ImportBatch, error)

	// GetByChecksum returns the earliest batch with the same content
	// checksum, or nil when the content has not been seen before.
	GetByChecksum(ctx context.Context, checksum string) (*ImportBatch, error)

	List(ctx context.Context, page, limit int) ([]ImportBatch, int64, error)
}
