package attendance

import (
	"context"
)

// PunchRepository stores raw clock events. Punches are append-only.
type PunchRepository interface {
	Create(ctx context.Context, punch Punch) (Punch, error)

	// CreateChunk inserts a bounded slice of punches in one statement.
	// Duplicate (employee, instant, direction) rows are ignored so
	// re-imports stay idempotent.
	CreateChunk(ctx context.Context, punches []Punch) (int, error)

	// ListByEmployeeDay returns every punch attributed to the business day,
	// unordered.
	ListByEmployeeDay(ctx context.Context, employeeID, businessDay string) ([]Punch, error)
}

// RecordRepository stores reconciled daily records keyed by
// (employee, business day).
type RecordRepository interface {
	// Upsert atomically inserts or updates the day record. Time slots in
	// the stored row are preserved when the incoming value is nil, so a
	// later afternoon punch never erases an earlier morning punch.
	// Returns the stored record and whether a new row was created.
	Upsert(ctx context.Context, record Record) (Record, bool, error)

	// UpsertChunk applies a bounded slice of upserts in one transaction.
	// Safe to retry: every write is keyed by (employee, day).
	UpsertChunk(ctx context.Context, records []Record) (created int, updated int, err error)

	// InsertAbsences inserts synthesized absence records. Days that already
	// have a record keep it untouched, even one committed after the caller
	// decided the day was empty. Returns the number of rows inserted.
	InsertAbsences(ctx context.Context, records []Record) (int, error)

	GetByEmployeeAndDay(ctx context.Context, employeeID, businessDay string) (*Record, error)

	GetByID(ctx context.Context, id string) (Record, error)

	// ListByEmployeeRange returns records ordered by day for a pay period.
	ListByEmployeeRange(ctx context.Context, employeeID, startDay, endDay string) ([]Record, error)

	// ListDaysWithRecords returns the set of business days in [startDay,
	// endDay] that already have a record, per employee. Used to synthesize
	// absence records without overwriting real ones.
	ListDaysWithRecords(ctx context.Context, startDay, endDay string) (map[string]map[string]struct{}, error)

	List(ctx context.Context, filter RecordFilter) ([]Record, int64, error)

	Update(ctx context.Context, record Record) error

	// AcquireDayLock serializes mutations for one (employee, day) within
	// the surrounding transaction.
	AcquireDayLock(ctx context.Context, employeeID, businessDay string) error
}
