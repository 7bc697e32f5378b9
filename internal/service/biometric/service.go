package biometric

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/biometric"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	attendanceservice "github.com/lumina-hr/payroll-backend-go/internal/service/attendance"
)

const (
	punchChunkSize  = 500
	recordChunkSize = 200

	// importWorkers bounds concurrent employee-day reconciliation.
	importWorkers = 8
)

type ImportServiceImpl struct {
	batchRepo    biometric.ImportBatchRepository
	punchRepo    attendance.PunchRepository
	recordRepo   attendance.RecordRepository
	employeeRepo employee.EmployeeRepository
	workCalendar calendar.WorkCalendar
	normalizer   *attendanceservice.Normalizer
	pol          policy.Config
}

func NewImportService(
	batchRepo biometric.ImportBatchRepository,
	punchRepo attendance.PunchRepository,
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	workCalendar calendar.WorkCalendar,
	normalizer *attendanceservice.Normalizer,
	pol policy.Config,
) biometric.ImportService {
	return &ImportServiceImpl{
		batchRepo:    batchRepo,
		punchRepo:    punchRepo,
		recordRepo:   recordRepo,
		employeeRepo: employeeRepo,
		workCalendar: workCalendar,
		normalizer:   normalizer,
		pol:          pol,
	}
}

// dayKey identifies one employee-day reconciliation unit within a batch.
type dayKey struct {
	employeeID  string
	businessDay string
}

// ImportRows implements biometric.ImportService.
func (s *ImportServiceImpl) ImportRows(ctx context.Context, req biometric.ImportRequest) (biometric.ImportReport, error) {
	if err := req.Validate(); err != nil {
		return biometric.ImportReport{}, err
	}

	sum := sha256.Sum256(req.Content)
	checksum := hex.EncodeToString(sum[:])

	// Re-uploads of identical content are flagged but still processed; the
	// idempotent upserts below make the repeat a no-op on the data.
	repeat, err := s.batchRepo.GetByChecksum(ctx, checksum)
	if err != nil {
		return biometric.ImportReport{}, fmt.Errorf("failed to check batch checksum: %w", err)
	}

	rows, err := parseRows(req.Content)
	if err != nil {
		return biometric.ImportReport{}, err
	}

	batch, err := s.batchRepo.Create(ctx, biometric.ImportBatch{
		SourceFileName: req.SourceFileName,
		SourceSize:     int64(len(req.Content)),
		Checksum:       checksum,
		UploadedBy:     req.UploadedBy,
	})
	if err != nil {
		return biometric.ImportReport{}, fmt.Errorf("failed to create import batch: %w", err)
	}

	report := biometric.ImportReport{
		BatchID:   batch.ID,
		Checksum:  checksum,
		TotalRows: len(rows),
	}
	if repeat != nil {
		report.RepeatOfBatchID = &repeat.ID
		slog.Warn("Import content matches a previous batch",
			"batch_id", batch.ID, "repeat_of", repeat.ID)
	}

	employees, err := s.employeeRepo.ListActive(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to list employees: %w", err)
	}
	idx := newEmployeeIndex(employees)

	punches, groups := s.collectPunches(rows, idx, batch.ID, &report)

	for start := 0; start < len(punches); start += punchChunkSize {
		end := min(start+punchChunkSize, len(punches))
		if _, err := s.punchRepo.CreateChunk(ctx, punches[start:end]); err != nil {
			return report, fmt.Errorf("failed to store punch chunk: %w", err)
		}
	}

	records, warnings, err := s.reconcileGroups(ctx, groups, batch.ID)
	if err != nil {
		return report, err
	}
	report.Warnings = append(report.Warnings, warnings...)

	for start := 0; start < len(records); start += recordChunkSize {
		end := min(start+recordChunkSize, len(records))
		created, updated, err := s.recordRepo.UpsertChunk(ctx, records[start:end])
		if err != nil {
			return report, fmt.Errorf("failed to upsert record chunk: %w", err)
		}
		report.Imported += created
		report.Updated += updated
	}

	absences, err := s.synthesizeAbsences(ctx, groups, batch.ID)
	if err != nil {
		return report, err
	}
	report.AbsencesCreated = absences

	slog.Info("Completed biometric import",
		"batch_id", batch.ID,
		"total_rows", report.TotalRows,
		"imported", report.Imported,
		"updated", report.Updated,
		"skipped", report.Skipped,
		"absences", report.AbsencesCreated,
		"errors", len(report.Errors))

	return report, nil
}

// collectPunches parses and resolves every row. Bad rows become error
// diagnostics and are skipped; the batch keeps going.
func (s *ImportServiceImpl) collectPunches(rows []biometric.RawRow, idx *employeeIndex, batchID string, report *biometric.ImportReport) ([]attendance.Punch, map[dayKey]struct{}) {
	var punches []attendance.Punch
	groups := map[dayKey]struct{}{}

	for _, row := range rows {
		instant, businessDay, err := s.normalizer.ParseDeviceTimestamp(row.Timestamp)
		if err != nil {
			report.Errors = append(report.Errors, biometric.Diagnostic{
				Line: row.Line, Field: "timestamp", Message: err.Error(), Severity: biometric.SeverityError,
			})
			report.Skipped++
			continue
		}

		direction, ok := parseDirection(row.Status)
		if !ok {
			report.Errors = append(report.Errors, biometric.Diagnostic{
				Line: row.Line, Field: "status",
				Message:  fmt.Sprintf("status %q has no IN or OUT marker", row.Status),
				Severity: biometric.SeverityError,
			})
			report.Skipped++
			continue
		}

		emp, ambiguous, ok := idx.resolve(row.ExternalID, row.Name)
		if !ok {
			diag := biometric.Diagnostic{Line: row.Line, Field: "name", Severity: biometric.SeverityError}
			if ambiguous {
				diag.Message = fmt.Sprintf("name %q matches more than one employee", row.Name)
				diag.Severity = biometric.SeverityWarning
				report.Warnings = append(report.Warnings, diag)
			} else {
				diag.Message = fmt.Sprintf("%v: id=%q name=%q", biometric.ErrEmployeeUnmatched, row.ExternalID, row.Name)
				report.Errors = append(report.Errors, diag)
			}
			report.Skipped++
			continue
		}

		punch := attendance.Punch{
			EmployeeID:    emp.ID,
			Instant:       instant,
			Direction:     direction,
			RawStatus:     row.Status,
			ImportBatchID: &batchID,
		}
		if row.Location != "" {
			loc := row.Location
			punch.SourceLocation = &loc
		}
		if row.Department != "" {
			dept := row.Department
			punch.SourceDepartment = &dept
		}

		punches = append(punches, punch)
		groups[dayKey{employeeID: emp.ID, businessDay: businessDay}] = struct{}{}
	}

	return punches, groups
}

// reconcileGroups rebuilds each touched employee-day from its full stored
// punch set, a bounded number of days at a time.
func (s *ImportServiceImpl) reconcileGroups(ctx context.Context, groups map[dayKey]struct{}, batchID string) ([]attendance.Record, []biometric.Diagnostic, error) {
	keys := make([]dayKey, 0, len(groups))
	for key := range groups {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].employeeID != keys[j].employeeID {
			return keys[i].employeeID < keys[j].employeeID
		}
		return keys[i].businessDay < keys[j].businessDay
	})

	records := make([]attendance.Record, len(keys))
	dayWarnings := make([][]string, len(keys))
	errs := make([]error, len(keys))

	var wg sync.WaitGroup
	sem := make(chan struct{}, importWorkers)
	for i, key := range keys {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, key dayKey) {
			defer wg.Done()
			defer func() { <-sem }()
			records[i], dayWarnings[i], errs[i] = s.reconcileDay(ctx, key, batchID)
		}(i, key)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, nil, err
		}
	}

	var warnings []biometric.Diagnostic
	for i, msgs := range dayWarnings {
		for _, msg := range msgs {
			warnings = append(warnings, biometric.Diagnostic{
				Message:  fmt.Sprintf("%s %s: %s", keys[i].employeeID, keys[i].businessDay, msg),
				Severity: biometric.SeverityWarning,
			})
		}
	}
	return records, warnings, nil
}

func (s *ImportServiceImpl) reconcileDay(ctx context.Context, key dayKey, batchID string) (attendance.Record, []string, error) {
	punches, err := s.punchRepo.ListByEmployeeDay(ctx, key.employeeID, key.businessDay)
	if err != nil {
		return attendance.Record{}, nil, fmt.Errorf("failed to list punches for %s on %s: %w", key.employeeID, key.businessDay, err)
	}

	existing, err := s.recordRepo.GetByEmployeeAndDay(ctx, key.employeeID, key.businessDay)
	if err != nil {
		return attendance.Record{}, nil, fmt.Errorf("failed to get record for %s on %s: %w", key.employeeID, key.businessDay, err)
	}

	cls, err := attendanceservice.ClassifySessions(key.businessDay, attendanceservice.BuildSequences(punches), s.pol, s.normalizer.Location())
	if err != nil {
		return attendance.Record{}, nil, err
	}

	rec := attendanceservice.BuildRecord(existing, key.employeeID, key.businessDay, cls, s.pol, &batchID)
	return rec, cls.Warnings, nil
}

// synthesizeAbsences fills explicit absence records for the employees seen
// in the batch, over the span of days the batch covers. Days that already
// have a record, from this batch or otherwise, are left alone.
func (s *ImportServiceImpl) synthesizeAbsences(ctx context.Context, groups map[dayKey]struct{}, batchID string) (int, error) {
	if len(groups) == 0 {
		return 0, nil
	}

	batchEmployees := map[string]struct{}{}
	var minDay, maxDay string
	for key := range groups {
		batchEmployees[key.employeeID] = struct{}{}
		if minDay == "" || key.businessDay < minDay {
			minDay = key.businessDay
		}
		if key.businessDay > maxDay {
			maxDay = key.businessDay
		}
	}

	workingDays, err := s.workingDaysInRange(ctx, minDay, maxDay)
	if err != nil {
		return 0, err
	}
	if len(workingDays) == 0 {
		return 0, nil
	}

	recorded, err := s.recordRepo.ListDaysWithRecords(ctx, minDay, maxDay)
	if err != nil {
		return 0, fmt.Errorf("failed to list recorded days: %w", err)
	}

	employeeIDs := make([]string, 0, len(batchEmployees))
	for id := range batchEmployees {
		employeeIDs = append(employeeIDs, id)
	}
	sort.Strings(employeeIDs)

	var absences []attendance.Record
	for _, employeeID := range employeeIDs {
		for _, day := range workingDays {
			if _, ok := recorded[employeeID][day]; ok {
				continue
			}
			absences = append(absences, attendanceservice.AbsenceRecord(employeeID, day, &batchID))
		}
	}

	created := 0
	for start := 0; start < len(absences); start += recordChunkSize {
		end := min(start+recordChunkSize, len(absences))
		chunkCreated, err := s.recordRepo.InsertAbsences(ctx, absences[start:end])
		if err != nil {
			return created, fmt.Errorf("failed to insert absence chunk: %w", err)
		}
		created += chunkCreated
	}
	return created, nil
}

// workingDaysInRange merges the calendar's working days for every month the
// range touches, clipped to [minDay, maxDay] and sorted.
func (s *ImportServiceImpl) workingDaysInRange(ctx context.Context, minDay, maxDay string) ([]string, error) {
	start, err := s.normalizer.DayStart(minDay)
	if err != nil {
		return nil, err
	}
	end, err := s.normalizer.DayStart(maxDay)
	if err != nil {
		return nil, err
	}

	var days []string
	for cursor := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, s.normalizer.Location()); !cursor.After(end); cursor = cursor.AddDate(0, 1, 0) {
		monthDays, err := s.workCalendar.WorkingDays(ctx, cursor.Year(), cursor.Month())
		if err != nil {
			return nil, fmt.Errorf("failed to get working days: %w", err)
		}
		for day := range monthDays {
			if day >= minDay && day <= maxDay {
				days = append(days, day)
			}
		}
	}
	sort.Strings(days)
	return days, nil
}

// ListBatches implements biometric.ImportService.
func (s *ImportServiceImpl) ListBatches(ctx context.Context, page, limit int) (biometric.ListBatchesResponse, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 200 {
		limit = 20
	}

	batches, total, err := s.batchRepo.List(ctx, page, limit)
	if err != nil {
		return biometric.ListBatchesResponse{}, fmt.Errorf("failed to list import batches: %w", err)
	}

	responses := make([]biometric.BatchResponse, 0, len(batches))
	for _, batch := range batches {
		responses = append(responses, biometric.BatchResponse{
			ID:             batch.ID,
			SourceFileName: batch.SourceFileName,
			SourceSize:     batch.SourceSize,
			Checksum:       batch.Checksum,
			UploadedBy:     batch.UploadedBy,
			CreatedAt:      batch.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return biometric.ListBatchesResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		Batches:    responses,
	}, nil
}
