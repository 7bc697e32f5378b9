package attendance

import (
	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
)

// ClassifyApproval decides the initial review state of a reconciled record.
// Present days no later than the policy limit are auto-approved; everything
// else waits for a reviewer.
func ClassifyApproval(record attendance.Record, pol policy.Config) attendance.ApprovalStatus {
	if record.IsAbsent {
		return attendance.ApprovalPending
	}
	if record.LateMinutes > pol.AutoApproveLateLimitMinutes {
		return attendance.ApprovalPending
	}
	return attendance.ApprovalApproved
}
