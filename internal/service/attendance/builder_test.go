package attendance

import (
	"testing"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifyApproval(t *testing.T) {
	pol := policy.Default() // auto-approve limit 120 minutes

	tests := []struct {
		name   string
		record attendance.Record
		want   attendance.ApprovalStatus
	}{
		{"present on time", attendance.Record{}, attendance.ApprovalApproved},
		{"late within limit", attendance.Record{IsLate: true, LateMinutes: 120}, attendance.ApprovalApproved},
		{"late beyond limit", attendance.Record{IsLate: true, LateMinutes: 121}, attendance.ApprovalPending},
		{"absent", attendance.Record{IsAbsent: true}, attendance.ApprovalPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyApproval(tt.record, pol))
		})
	}
}

func TestBuildRecord_Fresh(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(8, 0), Out: local(12, 0)})

	rec := BuildRecord(nil, "emp-1", testDay, cls, pol, nil)

	assert.Equal(t, "emp-1", rec.EmployeeID)
	assert.Equal(t, testDay, rec.BusinessDay)
	assert.Equal(t, local(8, 0), rec.MorningIn)
	assert.Equal(t, local(12, 0), rec.MorningOut)
	assert.Nil(t, rec.AfternoonIn)
	assert.True(t, rec.IsHalfDay)
	require.NotNil(t, rec.HoursWorked)
	assert.True(t, rec.HoursWorked.Equal(decimal.NewFromInt(4)))
	assert.Equal(t, attendance.ApprovalApproved, rec.ApprovalStatus)
}

func TestBuildRecord_PreservesStoredSlots(t *testing.T) {
	pol := policy.Default()

	// Morning already reconciled and stored.
	morning := classify(t, pol, Sequence{In: local(8, 0), Out: local(12, 0)})
	stored := BuildRecord(nil, "emp-1", testDay, morning, pol, nil)

	// An afternoon-only reclassification must not wipe the morning slots.
	afternoon := classify(t, pol, Sequence{In: local(13, 0), Out: local(17, 0)})
	merged := BuildRecord(&stored, "emp-1", testDay, afternoon, pol, nil)

	assert.Equal(t, local(8, 0), merged.MorningIn)
	assert.Equal(t, local(12, 0), merged.MorningOut)
	assert.Equal(t, local(13, 0), merged.AfternoonIn)
	assert.Equal(t, local(17, 0), merged.AfternoonOut)
}

func TestBuildRecord_FlagsAlwaysRecomputed(t *testing.T) {
	pol := policy.Default()

	half := classify(t, pol, Sequence{In: local(8, 0), Out: local(12, 0)})
	stored := BuildRecord(nil, "emp-1", testDay, half, pol, nil)
	assert.True(t, stored.IsHalfDay)

	// Reclassifying from the full punch set clears the half-day flag.
	full := classify(t, pol,
		Sequence{In: local(8, 0), Out: local(12, 0)},
		Sequence{In: local(13, 0), Out: local(17, 0)},
	)
	merged := BuildRecord(&stored, "emp-1", testDay, full, pol, nil)

	assert.False(t, merged.IsHalfDay)
	assert.Equal(t, 2, merged.TotalSessions)
	require.NotNil(t, merged.HoursWorked)
	assert.True(t, merged.HoursWorked.Equal(decimal.NewFromInt(8)))
}

func TestBuildRecord_KeepsReviewerDecision(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(8, 0), Out: local(17, 0)})

	stored := BuildRecord(nil, "emp-1", testDay, cls, pol, nil)
	stored.ApprovalStatus = attendance.ApprovalRejected

	merged := BuildRecord(&stored, "emp-1", testDay, cls, pol, nil)
	assert.Equal(t, attendance.ApprovalRejected, merged.ApprovalStatus)
}

func TestBuildRecord_SetsBatchID(t *testing.T) {
	pol := policy.Default()
	cls := classify(t, pol, Sequence{In: local(8, 0), Out: local(17, 0)})
	batch := "batch-42"

	rec := BuildRecord(nil, "emp-1", testDay, cls, pol, &batch)
	require.NotNil(t, rec.ImportBatchID)
	assert.Equal(t, "batch-42", *rec.ImportBatchID)

	// A later live punch without a batch keeps the import provenance.
	again := BuildRecord(&rec, "emp-1", testDay, cls, pol, nil)
	require.NotNil(t, again.ImportBatchID)
	assert.Equal(t, "batch-42", *again.ImportBatchID)
}

func TestAbsenceRecord(t *testing.T) {
	rec := AbsenceRecord("emp-9", testDay, nil)

	assert.True(t, rec.IsAbsent)
	assert.Equal(t, 0, rec.TotalSessions)
	assert.Equal(t, attendance.ApprovalPending, rec.ApprovalStatus)
	assert.Nil(t, rec.TimeIn)
	assert.Nil(t, rec.TimeOut)
	assert.Nil(t, rec.MorningIn)
	assert.Nil(t, rec.HoursWorked)
}
