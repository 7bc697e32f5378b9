package attendance

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction is the punch direction reported by a device or live action.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// Punch is one raw clock event. Punches are immutable once stored; a day's
// record is always rebuilt from the full punch set for that day.
type Punch struct {
	ID               string
	EmployeeID       string
	Instant          time.Time // absolute, stored UTC
	Direction        Direction
	RawStatus        string
	SourceLocation   *string
	SourceDepartment *string
	ImportBatchID    *string
	CreatedAt        time.Time
}

// SessionType classifies a day's resolved attendance.
type SessionType string

const (
	SessionHalfDay SessionType = "HALF_DAY"
	SessionFullDay SessionType = "FULL_DAY"
)

// ApprovalStatus is the review state of a daily record.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "PENDING"
	ApprovalApproved ApprovalStatus = "APPROVED"
	ApprovalRejected ApprovalStatus = "REJECTED"
)

// Record is the reconciled attendance for one employee on one business day.
// Exactly one record exists per (EmployeeID, BusinessDay); repeated imports
// and live punches upsert into it.
type Record struct {
	ID          string
	EmployeeID  string
	BusinessDay string // "2006-01-02" in the reference timezone

	MorningIn    *time.Time
	MorningOut   *time.Time
	AfternoonIn  *time.Time
	AfternoonOut *time.Time
	TimeIn       *time.Time
	TimeOut      *time.Time

	HoursWorked      *decimal.Decimal
	IsLate           bool
	IsAbsent         bool
	IsHalfDay        bool
	IsEarlyOut       bool
	LateMinutes      int
	UndertimeMinutes int
	TotalSessions    int
	SessionType      *SessionType

	ApprovalStatus  ApprovalStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	ImportBatchID *string
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Joined fields
	EmployeeName *string
	EmployeeCode *string
}
