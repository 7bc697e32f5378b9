package attendance

import (
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
)

// BuildRecord merges a day classification into the existing record for
// (employee, business day), or shapes a fresh one. Time slots already on
// the stored record are preserved when the classification leaves them nil;
// derived flags are always recomputed from the classification, which was
// built from the full punch set for the day.
func BuildRecord(existing *attendance.Record, employeeID, dayKey string, cls DayClassification, pol policy.Config, batchID *string) attendance.Record {
	var rec attendance.Record
	if existing != nil {
		rec = *existing
	}
	rec.EmployeeID = employeeID
	rec.BusinessDay = dayKey

	rec.MorningIn = mergeTime(cls.MorningIn, rec.MorningIn)
	rec.MorningOut = mergeTime(cls.MorningOut, rec.MorningOut)
	rec.AfternoonIn = mergeTime(cls.AfternoonIn, rec.AfternoonIn)
	rec.AfternoonOut = mergeTime(cls.AfternoonOut, rec.AfternoonOut)
	rec.TimeIn = mergeTime(cls.TimeIn, rec.TimeIn)
	rec.TimeOut = mergeTime(cls.TimeOut, rec.TimeOut)

	hours := cls.HoursWorked
	rec.HoursWorked = &hours
	rec.IsLate = cls.IsLate
	rec.IsAbsent = cls.IsAbsent
	rec.IsHalfDay = cls.IsHalfDay
	rec.IsEarlyOut = cls.IsEarlyOut
	rec.LateMinutes = cls.LateMinutes
	rec.UndertimeMinutes = cls.UndertimeMinutes
	rec.TotalSessions = cls.TotalSessions
	rec.SessionType = cls.SessionType

	if batchID != nil {
		rec.ImportBatchID = batchID
	}

	// A new or still-pending record takes the heuristic verdict; a record
	// a reviewer already processed keeps its decision.
	if rec.ApprovalStatus == "" || rec.ApprovalStatus == attendance.ApprovalPending {
		rec.ApprovalStatus = ClassifyApproval(rec, pol)
	}

	return rec
}

// AbsenceRecord shapes the synthetic record for a working day with no
// punches: explicitly absent, every time field null.
func AbsenceRecord(employeeID, dayKey string, batchID *string) attendance.Record {
	return attendance.Record{
		EmployeeID:     employeeID,
		BusinessDay:    dayKey,
		IsAbsent:       true,
		TotalSessions:  0,
		ApprovalStatus: attendance.ApprovalPending,
		ImportBatchID:  batchID,
	}
}

func mergeTime(incoming, current *time.Time) *time.Time {
	if incoming != nil {
		return incoming
	}
	return current
}
