package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

type punchRepository struct {
	db  *database.DB
	loc *time.Location
}

func NewPunchRepository(db *database.DB, loc *time.Location) attendance.PunchRepository {
	return &punchRepository{db: db, loc: loc}
}

// Create implements attendance.PunchRepository.
func (p *punchRepository) Create(ctx context.Context, punch attendance.Punch) (attendance.Punch, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO punches (employee_id, instant, direction, raw_status, source_location, source_department, import_batch_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (employee_id, instant, direction) DO UPDATE SET raw_status = EXCLUDED.raw_status
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query,
		punch.EmployeeID, punch.Instant, punch.Direction, punch.RawStatus,
		punch.SourceLocation, punch.SourceDepartment, punch.ImportBatchID,
	).Scan(&punch.ID, &punch.CreatedAt)
	if err != nil {
		return attendance.Punch{}, fmt.Errorf("failed to create punch: %w", err)
	}

	return punch, nil
}

// CreateChunk implements attendance.PunchRepository. Duplicate
// (employee, instant, direction) rows are dropped so re-imports stay no-ops.
func (p *punchRepository) CreateChunk(ctx context.Context, punches []attendance.Punch) (int, error) {
	if len(punches) == 0 {
		return 0, nil
	}
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO punches (employee_id, instant, direction, raw_status, source_location, source_department, import_batch_id)
		SELECT * FROM unnest($1::uuid[], $2::timestamptz[], $3::text[], $4::text[], $5::text[], $6::text[], $7::uuid[])
		ON CONFLICT (employee_id, instant, direction) DO NOTHING
	`

	employeeIDs := make([]string, len(punches))
	instants := make([]time.Time, len(punches))
	directions := make([]string, len(punches))
	statuses := make([]string, len(punches))
	locations := make([]*string, len(punches))
	departments := make([]*string, len(punches))
	batchIDs := make([]*string, len(punches))
	for i, punch := range punches {
		employeeIDs[i] = punch.EmployeeID
		instants[i] = punch.Instant
		directions[i] = string(punch.Direction)
		statuses[i] = punch.RawStatus
		locations[i] = punch.SourceLocation
		departments[i] = punch.SourceDepartment
		batchIDs[i] = punch.ImportBatchID
	}

	tag, err := q.Exec(ctx, query,
		employeeIDs, instants, directions, statuses, locations, departments, batchIDs,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert punch chunk: %w", err)
	}

	return int(tag.RowsAffected()), nil
}

// ListByEmployeeDay implements attendance.PunchRepository. The business day
// is translated to an instant range in the reference timezone.
func (p *punchRepository) ListByEmployeeDay(ctx context.Context, employeeID, businessDay string) ([]attendance.Punch, error) {
	dayStart, err := time.ParseInLocation("2006-01-02", businessDay, p.loc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse business day: %w", err)
	}
	dayEnd := dayStart.Add(24 * time.Hour)

	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, employee_id, instant, direction, raw_status, source_location, source_department, import_batch_id, created_at
		FROM punches
		WHERE employee_id = $1 AND instant >= $2 AND instant < $3
		ORDER BY instant
	`

	rows, err := q.Query(ctx, query, employeeID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list punches: %w", err)
	}
	defer rows.Close()

	var punches []attendance.Punch
	for rows.Next() {
		var punch attendance.Punch
		if err := rows.Scan(
			&punch.ID, &punch.EmployeeID, &punch.Instant, &punch.Direction, &punch.RawStatus,
			&punch.SourceLocation, &punch.SourceDepartment, &punch.ImportBatchID, &punch.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan punch: %w", err)
		}
		punches = append(punches, punch)
	}

	return punches, rows.Err()
}
