package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.RecordRepository {
	return &attendanceRepository{db: db}
}

const recordColumns = `
	id, employee_id, business_day,
	morning_in, morning_out, afternoon_in, afternoon_out, time_in, time_out,
	hours_worked, is_late, is_absent, is_half_day, is_early_out,
	late_minutes, undertime_minutes, total_sessions, session_type,
	approval_status, approved_by, approved_at, rejection_reason,
	import_batch_id, created_at, updated_at
`

func scanRecord(row pgx.Row) (attendance.Record, error) {
	var r attendance.Record
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.BusinessDay,
		&r.MorningIn, &r.MorningOut, &r.AfternoonIn, &r.AfternoonOut, &r.TimeIn, &r.TimeOut,
		&r.HoursWorked, &r.IsLate, &r.IsAbsent, &r.IsHalfDay, &r.IsEarlyOut,
		&r.LateMinutes, &r.UndertimeMinutes, &r.TotalSessions, &r.SessionType,
		&r.ApprovalStatus, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason,
		&r.ImportBatchID, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// upsertRecordQuery preserves stored time slots when the incoming value is
// NULL, so a later afternoon-only reconciliation never erases a morning punch.
// xmax = 0 distinguishes a fresh insert from an update of an existing row.
const upsertRecordQuery = `
	INSERT INTO attendance_records (
		employee_id, business_day,
		morning_in, morning_out, afternoon_in, afternoon_out, time_in, time_out,
		hours_worked, is_late, is_absent, is_half_day, is_early_out,
		late_minutes, undertime_minutes, total_sessions, session_type,
		approval_status, approved_by, approved_at, rejection_reason, import_batch_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	ON CONFLICT (employee_id, business_day) DO UPDATE SET
		morning_in = COALESCE(EXCLUDED.morning_in, attendance_records.morning_in),
		morning_out = COALESCE(EXCLUDED.morning_out, attendance_records.morning_out),
		afternoon_in = COALESCE(EXCLUDED.afternoon_in, attendance_records.afternoon_in),
		afternoon_out = COALESCE(EXCLUDED.afternoon_out, attendance_records.afternoon_out),
		time_in = COALESCE(EXCLUDED.time_in, attendance_records.time_in),
		time_out = COALESCE(EXCLUDED.time_out, attendance_records.time_out),
		hours_worked = EXCLUDED.hours_worked,
		is_late = EXCLUDED.is_late,
		is_absent = EXCLUDED.is_absent,
		is_half_day = EXCLUDED.is_half_day,
		is_early_out = EXCLUDED.is_early_out,
		late_minutes = EXCLUDED.late_minutes,
		undertime_minutes = EXCLUDED.undertime_minutes,
		total_sessions = EXCLUDED.total_sessions,
		session_type = EXCLUDED.session_type,
		approval_status = EXCLUDED.approval_status,
		approved_by = EXCLUDED.approved_by,
		approved_at = EXCLUDED.approved_at,
		rejection_reason = EXCLUDED.rejection_reason,
		import_batch_id = COALESCE(EXCLUDED.import_batch_id, attendance_records.import_batch_id),
		updated_at = NOW()
	RETURNING ` + recordColumns + `, (xmax = 0) AS inserted
`

// Upsert implements attendance.RecordRepository.
func (a *attendanceRepository) Upsert(ctx context.Context, record attendance.Record) (attendance.Record, bool, error) {
	q := GetQuerier(ctx, a.db)

	var (
		r        attendance.Record
		inserted bool
	)
	err := q.QueryRow(ctx, upsertRecordQuery, upsertRecordArgs(record)...).Scan(
		&r.ID, &r.EmployeeID, &r.BusinessDay,
		&r.MorningIn, &r.MorningOut, &r.AfternoonIn, &r.AfternoonOut, &r.TimeIn, &r.TimeOut,
		&r.HoursWorked, &r.IsLate, &r.IsAbsent, &r.IsHalfDay, &r.IsEarlyOut,
		&r.LateMinutes, &r.UndertimeMinutes, &r.TotalSessions, &r.SessionType,
		&r.ApprovalStatus, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason,
		&r.ImportBatchID, &r.CreatedAt, &r.UpdatedAt,
		&inserted,
	)
	if err != nil {
		return attendance.Record{}, false, fmt.Errorf("failed to upsert attendance record: %w", err)
	}

	return r, inserted, nil
}

// UpsertChunk implements attendance.RecordRepository. Each upsert is keyed by
// (employee, day), so retrying the whole chunk is safe.
func (a *attendanceRepository) UpsertChunk(ctx context.Context, records []attendance.Record) (int, int, error) {
	if len(records) == 0 {
		return 0, 0, nil
	}

	var created, updated int
	err := database.RunInTx(ctx, a.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, a.db)
		for _, record := range records {
			var inserted bool
			row := q.QueryRow(txCtx, upsertRecordQuery, upsertRecordArgs(record)...)
			r := attendance.Record{}
			if err := row.Scan(
				&r.ID, &r.EmployeeID, &r.BusinessDay,
				&r.MorningIn, &r.MorningOut, &r.AfternoonIn, &r.AfternoonOut, &r.TimeIn, &r.TimeOut,
				&r.HoursWorked, &r.IsLate, &r.IsAbsent, &r.IsHalfDay, &r.IsEarlyOut,
				&r.LateMinutes, &r.UndertimeMinutes, &r.TotalSessions, &r.SessionType,
				&r.ApprovalStatus, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason,
				&r.ImportBatchID, &r.CreatedAt, &r.UpdatedAt,
				&inserted,
			); err != nil {
				return fmt.Errorf("failed to upsert attendance record for %s on %s: %w", record.EmployeeID, record.BusinessDay, err)
			}
			if inserted {
				created++
			} else {
				updated++
			}
		}
		return nil
	})
	if err != nil {
		return 0, 0, err
	}

	return created, updated, nil
}

// insertAbsenceQuery races live clock-ins and imports: a real record committed
// between the caller's empty-day scan and this insert must win, so conflicts
// are skipped instead of updated.
const insertAbsenceQuery = `
	INSERT INTO attendance_records (
		employee_id, business_day,
		morning_in, morning_out, afternoon_in, afternoon_out, time_in, time_out,
		hours_worked, is_late, is_absent, is_half_day, is_early_out,
		late_minutes, undertime_minutes, total_sessions, session_type,
		approval_status, approved_by, approved_at, rejection_reason, import_batch_id
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	ON CONFLICT (employee_id, business_day) DO NOTHING
`

// InsertAbsences implements attendance.RecordRepository.
func (a *attendanceRepository) InsertAbsences(ctx context.Context, records []attendance.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	var inserted int
	err := database.RunInTx(ctx, a.db, func(txCtx context.Context) error {
		q := GetQuerier(txCtx, a.db)
		for _, record := range records {
			tag, err := q.Exec(txCtx, insertAbsenceQuery, upsertRecordArgs(record)...)
			if err != nil {
				return fmt.Errorf("failed to insert absence record for %s on %s: %w", record.EmployeeID, record.BusinessDay, err)
			}
			inserted += int(tag.RowsAffected())
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return inserted, nil
}

func upsertRecordArgs(r attendance.Record) []interface{} {
	return []interface{}{
		r.EmployeeID, r.BusinessDay,
		r.MorningIn, r.MorningOut, r.AfternoonIn, r.AfternoonOut, r.TimeIn, r.TimeOut,
		r.HoursWorked, r.IsLate, r.IsAbsent, r.IsHalfDay, r.IsEarlyOut,
		r.LateMinutes, r.UndertimeMinutes, r.TotalSessions, r.SessionType,
		r.ApprovalStatus, r.ApprovedBy, r.ApprovedAt, r.RejectionReason, r.ImportBatchID,
	}
}

// GetByEmployeeAndDay implements attendance.RecordRepository. Returns nil when
// no record exists for the day.
func (a *attendanceRepository) GetByEmployeeAndDay(ctx context.Context, employeeID, businessDay string) (*attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE employee_id = $1 AND business_day = $2`

	record, err := scanRecord(q.QueryRow(ctx, query, employeeID, businessDay))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return &record, nil
}

// GetByID implements attendance.RecordRepository.
func (a *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `SELECT ` + recordColumns + ` FROM attendance_records WHERE id = $1`

	record, err := scanRecord(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.Record{}, attendance.ErrRecordNotFound
		}
		return attendance.Record{}, fmt.Errorf("failed to get attendance record: %w", err)
	}

	return record, nil
}

// ListByEmployeeRange implements attendance.RecordRepository.
func (a *attendanceRepository) ListByEmployeeRange(ctx context.Context, employeeID, startDay, endDay string) ([]attendance.Record, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT ` + recordColumns + `
		FROM attendance_records
		WHERE employee_id = $1 AND business_day >= $2 AND business_day <= $3
		ORDER BY business_day
	`

	rows, err := q.Query(ctx, query, employeeID, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// ListDaysWithRecords implements attendance.RecordRepository.
func (a *attendanceRepository) ListDaysWithRecords(ctx context.Context, startDay, endDay string) (map[string]map[string]struct{}, error) {
	q := GetQuerier(ctx, a.db)

	query := `
		SELECT employee_id, business_day
		FROM attendance_records
		WHERE business_day >= $1 AND business_day <= $2
	`

	rows, err := q.Query(ctx, query, startDay, endDay)
	if err != nil {
		return nil, fmt.Errorf("failed to list recorded days: %w", err)
	}
	defer rows.Close()

	recorded := make(map[string]map[string]struct{})
	for rows.Next() {
		var employeeID, day string
		if err := rows.Scan(&employeeID, &day); err != nil {
			return nil, fmt.Errorf("failed to scan recorded day: %w", err)
		}
		if recorded[employeeID] == nil {
			recorded[employeeID] = make(map[string]struct{})
		}
		recorded[employeeID][day] = struct{}{}
	}

	return recorded, rows.Err()
}

// List implements attendance.RecordRepository.
func (a *attendanceRepository) List(ctx context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	q := GetQuerier(ctx, a.db)

	baseQuery := `FROM attendance_records ar LEFT JOIN employees e ON e.id = ar.employee_id`
	whereClause := ` WHERE 1=1`
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND ar.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.StartDay != nil && *filter.StartDay != "" {
		whereClause += fmt.Sprintf(" AND ar.business_day >= $%d", argIdx)
		args = append(args, *filter.StartDay)
		argIdx++
	}
	if filter.EndDay != nil && *filter.EndDay != "" {
		whereClause += fmt.Sprintf(" AND ar.business_day <= $%d", argIdx)
		args = append(args, *filter.EndDay)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND ar.approval_status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) ` + baseQuery + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance records: %w", err)
	}

	selectQuery := `
		SELECT ar.id, ar.employee_id, ar.business_day,
			ar.morning_in, ar.morning_out, ar.afternoon_in, ar.afternoon_out, ar.time_in, ar.time_out,
			ar.hours_worked, ar.is_late, ar.is_absent, ar.is_half_day, ar.is_early_out,
			ar.late_minutes, ar.undertime_minutes, ar.total_sessions, ar.session_type,
			ar.approval_status, ar.approved_by, ar.approved_at, ar.rejection_reason,
			ar.import_batch_id, ar.created_at, ar.updated_at,
			e.full_name, e.code
		` + baseQuery + whereClause + fmt.Sprintf(`
		ORDER BY ar.business_day DESC, e.code
		LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	var records []attendance.Record
	for rows.Next() {
		var r attendance.Record
		if err := rows.Scan(
			&r.ID, &r.EmployeeID, &r.BusinessDay,
			&r.MorningIn, &r.MorningOut, &r.AfternoonIn, &r.AfternoonOut, &r.TimeIn, &r.TimeOut,
			&r.HoursWorked, &r.IsLate, &r.IsAbsent, &r.IsHalfDay, &r.IsEarlyOut,
			&r.LateMinutes, &r.UndertimeMinutes, &r.TotalSessions, &r.SessionType,
			&r.ApprovalStatus, &r.ApprovedBy, &r.ApprovedAt, &r.RejectionReason,
			&r.ImportBatchID, &r.CreatedAt, &r.UpdatedAt,
			&r.EmployeeName, &r.EmployeeCode,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, r)
	}

	return records, total, rows.Err()
}

// Update implements attendance.RecordRepository.
func (a *attendanceRepository) Update(ctx context.Context, record attendance.Record) error {
	q := GetQuerier(ctx, a.db)

	query := `
		UPDATE attendance_records
		SET approval_status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4, updated_at = NOW()
		WHERE id = $5
	`

	tag, err := q.Exec(ctx, query,
		record.ApprovalStatus, record.ApprovedBy, record.ApprovedAt, record.RejectionReason, record.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance record: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrRecordNotFound
	}

	return nil
}

// AcquireDayLock implements attendance.RecordRepository. The lock is released
// when the surrounding transaction ends.
func (a *attendanceRepository) AcquireDayLock(ctx context.Context, employeeID, businessDay string) error {
	q := GetQuerier(ctx, a.db)

	query := `SELECT pg_advisory_xact_lock(hashtext($1))`

	if _, err := q.Exec(ctx, query, employeeID+"|"+businessDay); err != nil {
		return fmt.Errorf("failed to acquire day lock: %w", err)
	}

	return nil
}
