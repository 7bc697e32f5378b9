package attendance

import (
	"context"
	"time"
)

// AttendanceService defines business logic for attendance operations.
type AttendanceService interface {
	// RecordPunch processes a live clock action at the given instant. A
	// duplicate time-in inside the configured window is rejected, not
	// errored.
	RecordPunch(ctx context.Context, employeeID string, direction Direction, now time.Time) (PunchResult, error)

	// GetMyAttendance retrieves records for the authenticated employee.
	GetMyAttendance(ctx context.Context, employeeID string, filter RecordFilter) (ListRecordsResponse, error)

	// ListRecords retrieves records with filters (admin).
	ListRecords(ctx context.Context, filter RecordFilter) (ListRecordsResponse, error)

	// SynthesizeAbsences creates explicit absence records for every working
	// day in the month with no punches and no existing record. Returns the
	// number of records created. Idempotent.
	SynthesizeAbsences(ctx context.Context, year int, month time.Month) (int, error)

	// ApproveRecord marks a pending record approved.
	ApproveRecord(ctx context.Context, req ApproveRecordRequest, approverID string) (RecordResponse, error)

	// RejectRecord marks a pending record rejected with a reason.
	RejectRecord(ctx context.Context, req RejectRecordRequest, approverID string) (RecordResponse, error)
}
