package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

// absenceChunkSize bounds each absence upsert write.
const absenceChunkSize = 200

type AttendanceServiceImpl struct {
	db           database.Transactor
	normalizer   *Normalizer
	pol          policy.Config
	punchRepo    attendance.PunchRepository
	recordRepo   attendance.RecordRepository
	employeeRepo employee.EmployeeRepository
	workCalendar calendar.WorkCalendar
}

func NewAttendanceService(
	db database.Transactor,
	normalizer *Normalizer,
	pol policy.Config,
	punchRepo attendance.PunchRepository,
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	workCalendar calendar.WorkCalendar,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		db:           db,
		normalizer:   normalizer,
		pol:          pol,
		punchRepo:    punchRepo,
		recordRepo:   recordRepo,
		employeeRepo: employeeRepo,
		workCalendar: workCalendar,
	}
}

// RecordPunch implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RecordPunch(ctx context.Context, employeeID string, direction attendance.Direction, now time.Time) (attendance.PunchResult, error) {
	direction = attendance.Direction(strings.ToUpper(string(direction)))
	if direction != attendance.DirectionIn && direction != attendance.DirectionOut {
		return attendance.PunchResult{}, attendance.ErrUnknownDirection
	}

	emp, err := a.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return attendance.PunchResult{}, fmt.Errorf("failed to get employee: %w", err)
	}
	if !emp.IsActive {
		return attendance.PunchResult{}, employee.ErrEmployeeInactive
	}

	instant, dayKey := a.normalizer.FromInstant(now)

	var result attendance.PunchResult
	err = a.db.InTx(ctx, func(txCtx context.Context) error {
		// Serialize against concurrent punches for the same employee-day so
		// two simultaneous time-ins cannot both pass the duplicate check.
		if err := a.recordRepo.AcquireDayLock(txCtx, employeeID, dayKey); err != nil {
			return fmt.Errorf("failed to lock employee day: %w", err)
		}

		existing, err := a.recordRepo.GetByEmployeeAndDay(txCtx, employeeID, dayKey)
		if err != nil {
			return fmt.Errorf("failed to get attendance record: %w", err)
		}

		if reason := a.rejectReason(existing, direction, instant); reason != "" {
			result = attendance.PunchResult{Accepted: false, Reason: &reason}
			if existing != nil {
				resp := a.mapRecordToResponse(*existing)
				result.Record = &resp
			}
			return nil
		}

		punch := attendance.Punch{
			EmployeeID: employeeID,
			Instant:    instant,
			Direction:  direction,
			RawStatus:  string(direction),
		}
		if _, err := a.punchRepo.Create(txCtx, punch); err != nil {
			return fmt.Errorf("failed to create punch: %w", err)
		}

		// Rebuild the day from its full punch set; a single punch is never
		// interpreted in isolation.
		punches, err := a.punchRepo.ListByEmployeeDay(txCtx, employeeID, dayKey)
		if err != nil {
			return fmt.Errorf("failed to list punches: %w", err)
		}

		cls, err := ClassifySessions(dayKey, BuildSequences(punches), a.pol, a.normalizer.Location())
		if err != nil {
			return err
		}

		rec := BuildRecord(existing, employeeID, dayKey, cls, a.pol, nil)
		stored, _, err := a.recordRepo.Upsert(txCtx, rec)
		if err != nil {
			return fmt.Errorf("failed to upsert attendance record: %w", err)
		}

		resp := a.mapRecordToResponse(stored)
		result = attendance.PunchResult{Accepted: true, Record: &resp}
		return nil
	})
	if err != nil {
		return attendance.PunchResult{}, err
	}

	return result, nil
}

// rejectReason applies the live-clock business rules. Import reconciliation
// has no equivalent: bulk rows are deduplicated by idempotent upserts, not
// rejected.
func (a *AttendanceServiceImpl) rejectReason(existing *attendance.Record, direction attendance.Direction, instant time.Time) string {
	if direction == attendance.DirectionIn {
		if existing != nil && existing.TimeIn != nil {
			window := time.Duration(a.pol.DuplicateClockInWindowMinutes) * time.Minute
			if instant.Sub(*existing.TimeIn) < window {
				return attendance.ErrAlreadyTimedIn.Error()
			}
		}
		return ""
	}
	if existing == nil || existing.TimeIn == nil {
		return attendance.ErrNotTimedIn.Error()
	}
	return ""
}

// GetMyAttendance implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetMyAttendance(ctx context.Context, employeeID string, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}
	filter.EmployeeID = &employeeID
	return a.listRecords(ctx, filter)
}

// ListRecords implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ListRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	if err := filter.Validate(); err != nil {
		return attendance.ListRecordsResponse{}, err
	}
	return a.listRecords(ctx, filter)
}

func (a *AttendanceServiceImpl) listRecords(ctx context.Context, filter attendance.RecordFilter) (attendance.ListRecordsResponse, error) {
	records, total, err := a.recordRepo.List(ctx, filter)
	if err != nil {
		return attendance.ListRecordsResponse{}, fmt.Errorf("failed to list attendance records: %w", err)
	}

	responses := make([]attendance.RecordResponse, 0, len(records))
	for _, rec := range records {
		responses = append(responses, a.mapRecordToResponse(rec))
	}

	return attendance.ListRecordsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Records:    responses,
	}, nil
}

// SynthesizeAbsences implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) SynthesizeAbsences(ctx context.Context, year int, month time.Month) (int, error) {
	workingDays, err := a.workCalendar.WorkingDays(ctx, year, month)
	if err != nil {
		return 0, fmt.Errorf("failed to get working days: %w", err)
	}
	if len(workingDays) == 0 {
		return 0, nil
	}

	employees, err := a.employeeRepo.ListActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list employees: %w", err)
	}

	days := make([]string, 0, len(workingDays))
	for day := range workingDays {
		days = append(days, day)
	}
	sort.Strings(days)
	startDay, endDay := days[0], days[len(days)-1]

	existing, err := a.recordRepo.ListDaysWithRecords(ctx, startDay, endDay)
	if err != nil {
		return 0, fmt.Errorf("failed to list recorded days: %w", err)
	}

	var absences []attendance.Record
	for _, emp := range employees {
		recorded := existing[emp.ID]
		for _, day := range days {
			if _, ok := recorded[day]; ok {
				continue
			}
			absences = append(absences, AbsenceRecord(emp.ID, day, nil))
		}
	}

	created := 0
	for start := 0; start < len(absences); start += absenceChunkSize {
		end := min(start+absenceChunkSize, len(absences))
		chunkCreated, err := a.recordRepo.InsertAbsences(ctx, absences[start:end])
		if err != nil {
			return created, fmt.Errorf("failed to insert absence chunk: %w", err)
		}
		created += chunkCreated
	}

	slog.Info("Synthesized absence records",
		"year", year, "month", int(month), "created", created)

	return created, nil
}

// ApproveRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) ApproveRecord(ctx context.Context, req attendance.ApproveRecordRequest, approverID string) (attendance.RecordResponse, error) {
	rec, err := a.recordRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}
	if rec.ApprovalStatus == attendance.ApprovalRejected {
		return attendance.RecordResponse{}, attendance.ErrAlreadyProcessed
	}

	now := time.Now()
	rec.ApprovalStatus = attendance.ApprovalApproved
	rec.ApprovedBy = &approverID
	rec.ApprovedAt = &now
	rec.RejectionReason = nil

	if err := a.recordRepo.Update(ctx, rec); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to approve attendance record: %w", err)
	}

	return a.mapRecordToResponse(rec), nil
}

// RejectRecord implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) RejectRecord(ctx context.Context, req attendance.RejectRecordRequest, approverID string) (attendance.RecordResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.RecordResponse{}, err
	}

	rec, err := a.recordRepo.GetByID(ctx, req.ID)
	if err != nil {
		return attendance.RecordResponse{}, err
	}

	now := time.Now()
	rec.ApprovalStatus = attendance.ApprovalRejected
	rec.ApprovedBy = &approverID
	rec.ApprovedAt = &now
	rec.RejectionReason = &req.Reason

	if err := a.recordRepo.Update(ctx, rec); err != nil {
		return attendance.RecordResponse{}, fmt.Errorf("failed to reject attendance record: %w", err)
	}

	return a.mapRecordToResponse(rec), nil
}

// timePtrToString renders a stored UTC instant as wall-clock time in the
// reference timezone.
func timePtrToString(t *time.Time, loc *time.Location) *string {
	if t == nil {
		return nil
	}
	formatted := t.In(loc).Format("2006-01-02 15:04:05")
	return &formatted
}

func (a *AttendanceServiceImpl) mapRecordToResponse(rec attendance.Record) attendance.RecordResponse {
	loc := a.normalizer.Location()
	var sessionType *string
	if rec.SessionType != nil {
		st := string(*rec.SessionType)
		sessionType = &st
	}

	return attendance.RecordResponse{
		ID:            rec.ID,
		EmployeeID:    rec.EmployeeID,
		EmployeeName:  rec.EmployeeName,
		BusinessDay:   rec.BusinessDay,
		MorningIn:     timePtrToString(rec.MorningIn, loc),
		MorningOut:    timePtrToString(rec.MorningOut, loc),
		AfternoonIn:   timePtrToString(rec.AfternoonIn, loc),
		AfternoonOut:  timePtrToString(rec.AfternoonOut, loc),
		TimeIn:        timePtrToString(rec.TimeIn, loc),
		TimeOut:       timePtrToString(rec.TimeOut, loc),
		HoursWorked:   rec.HoursWorked,
		IsLate:        rec.IsLate,
		IsAbsent:      rec.IsAbsent,
		IsHalfDay:     rec.IsHalfDay,
		IsEarlyOut:    rec.IsEarlyOut,
		LateMinutes:   rec.LateMinutes,
		TotalSessions: rec.TotalSessions,
		SessionType:   sessionType,
		Status:        string(rec.ApprovalStatus),
	}
}
