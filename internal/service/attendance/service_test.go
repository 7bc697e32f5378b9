package attendance

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeTransactor runs the function directly; the fakes below are not
// transactional.
type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePunchRepo struct {
	punches []attendance.Punch
}

func (f *fakePunchRepo) Create(_ context.Context, punch attendance.Punch) (attendance.Punch, error) {
	punch.ID = fmt.Sprintf("punch-%d", len(f.punches)+1)
	f.punches = append(f.punches, punch)
	return punch, nil
}

func (f *fakePunchRepo) CreateChunk(_ context.Context, punches []attendance.Punch) (int, error) {
	f.punches = append(f.punches, punches...)
	return len(punches), nil
}

func (f *fakePunchRepo) ListByEmployeeDay(_ context.Context, employeeID, businessDay string) ([]attendance.Punch, error) {
	var out []attendance.Punch
	for _, p := range f.punches {
		if p.EmployeeID == employeeID && p.Instant.In(testLoc).Format(dayKeyFormat) == businessDay {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeRecordRepo struct {
	records map[string]attendance.Record // keyed employeeID + "|" + day
	nextID  int
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{records: map[string]attendance.Record{}}
}

func recordKey(employeeID, day string) string { return employeeID + "|" + day }

func (f *fakeRecordRepo) Upsert(_ context.Context, record attendance.Record) (attendance.Record, bool, error) {
	key := recordKey(record.EmployeeID, record.BusinessDay)
	_, exists := f.records[key]
	if !exists {
		f.nextID++
		record.ID = fmt.Sprintf("rec-%d", f.nextID)
	} else {
		record.ID = f.records[key].ID
	}
	f.records[key] = record
	return record, !exists, nil
}

func (f *fakeRecordRepo) UpsertChunk(ctx context.Context, records []attendance.Record) (int, int, error) {
	created, updated := 0, 0
	for _, rec := range records {
		_, wasNew, err := f.Upsert(ctx, rec)
		if err != nil {
			return created, updated, err
		}
		if wasNew {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}

func (f *fakeRecordRepo) InsertAbsences(_ context.Context, records []attendance.Record) (int, error) {
	inserted := 0
	for _, rec := range records {
		key := recordKey(rec.EmployeeID, rec.BusinessDay)
		if _, exists := f.records[key]; exists {
			continue
		}
		f.nextID++
		rec.ID = fmt.Sprintf("rec-%d", f.nextID)
		f.records[key] = rec
		inserted++
	}
	return inserted, nil
}

func (f *fakeRecordRepo) GetByEmployeeAndDay(_ context.Context, employeeID, businessDay string) (*attendance.Record, error) {
	if rec, ok := f.records[recordKey(employeeID, businessDay)]; ok {
		out := rec
		return &out, nil
	}
	return nil, nil
}

func (f *fakeRecordRepo) GetByID(_ context.Context, id string) (attendance.Record, error) {
	for _, rec := range f.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeRecordRepo) ListByEmployeeRange(_ context.Context, employeeID, startDay, endDay string) ([]attendance.Record, error) {
	var out []attendance.Record
	for _, rec := range f.records {
		if rec.EmployeeID == employeeID && rec.BusinessDay >= startDay && rec.BusinessDay <= endDay {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (f *fakeRecordRepo) ListDaysWithRecords(_ context.Context, startDay, endDay string) (map[string]map[string]struct{}, error) {
	out := map[string]map[string]struct{}{}
	for _, rec := range f.records {
		if rec.BusinessDay < startDay || rec.BusinessDay > endDay {
			continue
		}
		if out[rec.EmployeeID] == nil {
			out[rec.EmployeeID] = map[string]struct{}{}
		}
		out[rec.EmployeeID][rec.BusinessDay] = struct{}{}
	}
	return out, nil
}

func (f *fakeRecordRepo) List(_ context.Context, filter attendance.RecordFilter) ([]attendance.Record, int64, error) {
	var out []attendance.Record
	for _, rec := range f.records {
		if filter.EmployeeID != nil && rec.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (f *fakeRecordRepo) Update(_ context.Context, record attendance.Record) error {
	f.records[recordKey(record.EmployeeID, record.BusinessDay)] = record
	return nil
}

func (f *fakeRecordRepo) AcquireDayLock(context.Context, string, string) error { return nil }

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) Create(_ context.Context, emp employee.Employee) (employee.Employee, error) {
	f.employees[emp.ID] = emp
	return emp, nil
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	if emp, ok := f.employees[id]; ok {
		return emp, nil
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) GetByCode(_ context.Context, code string) (employee.Employee, error) {
	for _, emp := range f.employees {
		if emp.Code == code {
			return emp, nil
		}
	}
	return employee.Employee{}, employee.ErrEmployeeNotFound
}

func (f *fakeEmployeeRepo) ListActive(context.Context) ([]employee.Employee, error) {
	var out []employee.Employee
	for _, emp := range f.employees {
		if emp.IsActive {
			out = append(out, emp)
		}
	}
	return out, nil
}

func (f *fakeEmployeeRepo) Update(_ context.Context, emp employee.Employee) error {
	f.employees[emp.ID] = emp
	return nil
}

type fakeCalendar struct {
	working map[string]struct{}
}

func (f *fakeCalendar) WorkingDays(context.Context, int, time.Month) (map[string]struct{}, error) {
	return f.working, nil
}

func (f *fakeCalendar) HolidaysByRange(context.Context, time.Time, time.Time) (map[string]policy.HolidayKind, error) {
	return nil, nil
}

type serviceFixture struct {
	svc        attendance.AttendanceService
	punchRepo  *fakePunchRepo
	recordRepo *fakeRecordRepo
	employees  *fakeEmployeeRepo
	calendar   *fakeCalendar
}

func newServiceFixture() *serviceFixture {
	punchRepo := &fakePunchRepo{}
	recordRepo := newFakeRecordRepo()
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Code: "1001", FullName: "Maria Santos", IsActive: true},
		"emp-2": {ID: "emp-2", Code: "1002", FullName: "Jose Ramos", IsActive: true},
		"emp-3": {ID: "emp-3", Code: "1003", FullName: "Ana Cruz", IsActive: false},
	}}
	cal := &fakeCalendar{working: map[string]struct{}{}}

	svc := NewAttendanceService(
		fakeTransactor{},
		NewNormalizer(testLoc),
		policy.Default(),
		punchRepo,
		recordRepo,
		employees,
		cal,
	)
	return &serviceFixture{svc: svc, punchRepo: punchRepo, recordRepo: recordRepo, employees: employees, calendar: cal}
}

func TestRecordPunch_ClockInAndOut(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	in, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(7, 55))
	require.NoError(t, err)
	assert.True(t, in.Accepted)
	require.NotNil(t, in.Record)
	assert.True(t, in.Record.IsAbsent, "no OUT yet")

	out, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionOut, *local(17, 5))
	require.NoError(t, err)
	assert.True(t, out.Accepted)
	require.NotNil(t, out.Record)
	assert.False(t, out.Record.IsAbsent)
	assert.Equal(t, 2, out.Record.TotalSessions)
	assert.False(t, out.Record.IsLate)
	require.NotNil(t, out.Record.SessionType)
	assert.Equal(t, string(attendance.SessionFullDay), *out.Record.SessionType)

	assert.Len(t, fx.punchRepo.punches, 2)
	assert.Len(t, fx.recordRepo.records, 1)

	// Response times read as wall-clock time in the reference timezone,
	// not as the stored UTC instants.
	require.NotNil(t, out.Record.TimeIn)
	require.NotNil(t, out.Record.TimeOut)
	assert.Equal(t, testDay+" 07:55:00", *out.Record.TimeIn)
	assert.Equal(t, testDay+" 17:05:00", *out.Record.TimeOut)
}

func TestRecordPunch_DuplicateClockInRejected(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	first, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(8, 0))
	require.NoError(t, err)
	require.True(t, first.Accepted)

	// Second IN ten minutes later, well inside the duplicate window.
	second, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(8, 10))
	require.NoError(t, err, "a rejection is a result, not an error")
	assert.False(t, second.Accepted)
	require.NotNil(t, second.Reason)
	assert.Equal(t, attendance.ErrAlreadyTimedIn.Error(), *second.Reason)

	// The rejected punch was never stored.
	assert.Len(t, fx.punchRepo.punches, 1)
}

func TestRecordPunch_OutWithoutInRejected(t *testing.T) {
	fx := newServiceFixture()

	res, err := fx.svc.RecordPunch(context.Background(), "emp-1", attendance.DirectionOut, *local(17, 0))
	require.NoError(t, err)
	assert.False(t, res.Accepted)
	require.NotNil(t, res.Reason)
	assert.Equal(t, attendance.ErrNotTimedIn.Error(), *res.Reason)
	assert.Empty(t, fx.punchRepo.punches)
}

func TestRecordPunch_LowercaseDirectionAccepted(t *testing.T) {
	fx := newServiceFixture()

	res, err := fx.svc.RecordPunch(context.Background(), "emp-1", attendance.Direction("in"), *local(8, 0))
	require.NoError(t, err)
	assert.True(t, res.Accepted)
}

func TestRecordPunch_UnknownDirection(t *testing.T) {
	fx := newServiceFixture()

	_, err := fx.svc.RecordPunch(context.Background(), "emp-1", attendance.Direction("SIDEWAYS"), *local(8, 0))
	assert.ErrorIs(t, err, attendance.ErrUnknownDirection)
}

func TestRecordPunch_InactiveEmployee(t *testing.T) {
	fx := newServiceFixture()

	_, err := fx.svc.RecordPunch(context.Background(), "emp-3", attendance.DirectionIn, *local(8, 0))
	assert.ErrorIs(t, err, employee.ErrEmployeeInactive)
}

func TestSynthesizeAbsences(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()
	fx.calendar.working = map[string]struct{}{
		"2026-03-02": {},
		"2026-03-03": {},
		"2026-03-04": {},
	}

	// emp-1 worked on the 2nd; emp-2 has nothing.
	_, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(8, 0))
	require.NoError(t, err)

	created, err := fx.svc.SynthesizeAbsences(ctx, 2026, time.March)
	require.NoError(t, err)
	// emp-1 misses two days, emp-2 misses all three. Inactive emp-3 is
	// skipped entirely.
	assert.Equal(t, 5, created)

	rec, err := fx.recordRepo.GetByEmployeeAndDay(ctx, "emp-2", "2026-03-03")
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.True(t, rec.IsAbsent)
	assert.Equal(t, attendance.ApprovalPending, rec.ApprovalStatus)

	// Running again creates nothing new.
	created, err = fx.svc.SynthesizeAbsences(ctx, 2026, time.March)
	require.NoError(t, err)
	assert.Equal(t, 0, created)
}

func TestInsertAbsences_KeepsRealRecord(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	// A real record lands for the day, as a clock-in racing the nightly
	// synthesis would.
	_, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(8, 0))
	require.NoError(t, err)
	_, err = fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionOut, *local(17, 0))
	require.NoError(t, err)

	day := local(8, 0).In(testLoc).Format(dayKeyFormat)
	inserted, err := fx.recordRepo.InsertAbsences(ctx, []attendance.Record{
		AbsenceRecord("emp-1", day, nil),
	})
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)

	rec, err := fx.recordRepo.GetByEmployeeAndDay(ctx, "emp-1", day)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.False(t, rec.IsAbsent)
	assert.NotNil(t, rec.HoursWorked)
}

func TestApproveAndRejectRecord(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	// A very late arrival lands in PENDING.
	res, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(10, 30))
	require.NoError(t, err)
	_, err = fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionOut, *local(17, 0))
	require.NoError(t, err)
	require.NotNil(t, res.Record)
	recID := res.Record.ID

	approved, err := fx.svc.ApproveRecord(ctx, attendance.ApproveRecordRequest{ID: recID}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, string(attendance.ApprovalApproved), approved.Status)

	// Rejection after approval is allowed; the reverse is final.
	rejected, err := fx.svc.RejectRecord(ctx, attendance.RejectRecordRequest{ID: recID, Reason: "device clock drift"}, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, string(attendance.ApprovalRejected), rejected.Status)

	_, err = fx.svc.ApproveRecord(ctx, attendance.ApproveRecordRequest{ID: recID}, "admin-1")
	assert.ErrorIs(t, err, attendance.ErrAlreadyProcessed)
}

func TestGetMyAttendance_ScopedToEmployee(t *testing.T) {
	fx := newServiceFixture()
	ctx := context.Background()

	_, err := fx.svc.RecordPunch(ctx, "emp-1", attendance.DirectionIn, *local(8, 0))
	require.NoError(t, err)
	_, err = fx.svc.RecordPunch(ctx, "emp-2", attendance.DirectionIn, *local(8, 5))
	require.NoError(t, err)

	list, err := fx.svc.GetMyAttendance(ctx, "emp-1", attendance.RecordFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.TotalCount)
	require.Len(t, list.Records, 1)
	assert.Equal(t, "emp-1", list.Records[0].EmployeeID)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.Limit)
}
