package biometric

import (
	"context"
)

// ImportService drives bulk punch ingestion end to end: parse every row,
// resolve employees, reconcile per employee-day, synthesize absences and
// persist in bounded chunks. Row failures collect as diagnostics; the batch
// never aborts wholesale.
type ImportService interface {
	ImportRows(ctx context.Context, req ImportRequest) (ImportReport, error)

	ListBatches(ctx context.Context, page, limit int) (ListBatchesResponse, error)
}
