package payroll

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testLoc = time.FixedZone("PHT", 8*3600)

type fakeTransactor struct{}

func (fakeTransactor) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakePayrollRepo struct {
	mu          sync.Mutex
	rules       map[string]payroll.Rule
	assignments map[string][]string // employeeID -> ruleIDs
	roles       map[string]payroll.Role
	results     map[string]payroll.Result
	summaries   []payroll.Summary
	nextID      int
}

func newFakePayrollRepo() *fakePayrollRepo {
	return &fakePayrollRepo{
		rules:       map[string]payroll.Rule{},
		assignments: map[string][]string{},
		roles:       map[string]payroll.Role{},
		results:     map[string]payroll.Result{},
	}
}

func (f *fakePayrollRepo) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakePayrollRepo) CreateRule(_ context.Context, rule payroll.Rule) (payroll.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rule.ID = f.id("rule")
	f.rules[rule.ID] = rule
	return rule, nil
}

func (f *fakePayrollRepo) GetRuleByID(_ context.Context, id string) (payroll.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if rule, ok := f.rules[id]; ok {
		return rule, nil
	}
	return payroll.Rule{}, payroll.ErrRuleNotFound
}

func (f *fakePayrollRepo) ListRules(_ context.Context, activeOnly bool) ([]payroll.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []payroll.Rule
	for _, rule := range f.rules {
		if activeOnly && !rule.IsActive {
			continue
		}
		out = append(out, rule)
	}
	return out, nil
}

func (f *fakePayrollRepo) UpdateRule(_ context.Context, rule payroll.Rule) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rules[rule.ID] = rule
	return nil
}

func (f *fakePayrollRepo) DeleteRule(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.rules, id)
	return nil
}

// ListRulesForEmployee returns each applicable rule at most once, the way
// the SQL DISTINCT does.
func (f *fakePayrollRepo) ListRulesForEmployee(_ context.Context, employeeID string) ([]payroll.Rule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	seen := map[string]struct{}{}
	var out []payroll.Rule
	for _, rule := range f.rules {
		if rule.IsActive && rule.AppliesToAll {
			seen[rule.ID] = struct{}{}
			out = append(out, rule)
		}
	}
	for _, ruleID := range f.assignments[employeeID] {
		if _, dup := seen[ruleID]; dup {
			continue
		}
		if rule, ok := f.rules[ruleID]; ok && rule.IsActive {
			seen[ruleID] = struct{}{}
			out = append(out, rule)
		}
	}
	return out, nil
}

func (f *fakePayrollRepo) AssignRule(_ context.Context, assignment payroll.RuleAssignment) (payroll.RuleAssignment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ruleID := range f.assignments[assignment.EmployeeID] {
		if ruleID == assignment.RuleID {
			return payroll.RuleAssignment{}, payroll.ErrAssignmentExists
		}
	}
	assignment.ID = f.id("assign")
	f.assignments[assignment.EmployeeID] = append(f.assignments[assignment.EmployeeID], assignment.RuleID)
	return assignment, nil
}

func (f *fakePayrollRepo) UnassignRule(_ context.Context, ruleID, employeeID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := f.assignments[employeeID]
	for i, id := range ids {
		if id == ruleID {
			f.assignments[employeeID] = append(ids[:i], ids[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakePayrollRepo) UpsertRole(_ context.Context, role payroll.Role) (payroll.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.roles[role.EmployeeID]; ok {
		role.ID = existing.ID
	} else {
		role.ID = f.id("role")
	}
	f.roles[role.EmployeeID] = role
	return role, nil
}

func (f *fakePayrollRepo) GetActiveRole(_ context.Context, employeeID string) (*payroll.Role, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if role, ok := f.roles[employeeID]; ok && role.IsActive {
		out := role
		return &out, nil
	}
	return nil, nil
}

func (f *fakePayrollRepo) resultKey(employeeID string, start, end time.Time) string {
	return fmt.Sprintf("%s|%d|%d", employeeID, start.Unix(), end.Unix())
}

func (f *fakePayrollRepo) UpsertResult(_ context.Context, result payroll.Result) (payroll.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := f.resultKey(result.EmployeeID, result.PeriodStart, result.PeriodEnd)
	if existing, ok := f.results[key]; ok {
		result.ID = existing.ID
	} else {
		result.ID = f.id("result")
	}
	f.results[key] = result
	return result, nil
}

func (f *fakePayrollRepo) GetResultByEmployeePeriod(_ context.Context, employeeID string, periodStart, periodEnd time.Time) (payroll.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if result, ok := f.results[f.resultKey(employeeID, periodStart, periodEnd)]; ok {
		return result, nil
	}
	return payroll.Result{}, payroll.ErrResultNotFound
}

func (f *fakePayrollRepo) ListResults(_ context.Context, _ payroll.ResultFilter) ([]payroll.Result, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []payroll.Result
	for _, result := range f.results {
		out = append(out, result)
	}
	return out, int64(len(out)), nil
}

func (f *fakePayrollRepo) AppendSummary(_ context.Context, summary payroll.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries = append(f.summaries, summary)
	return nil
}

type fakeRecordRepo struct {
	records []attendance.Record
}

func (f *fakeRecordRepo) Upsert(_ context.Context, record attendance.Record) (attendance.Record, bool, error) {
	f.records = append(f.records, record)
	return record, true, nil
}

func (f *fakeRecordRepo) UpsertChunk(_ context.Context, records []attendance.Record) (int, int, error) {
	f.records = append(f.records, records...)
	return len(records), 0, nil
}

func (f *fakeRecordRepo) InsertAbsences(_ context.Context, records []attendance.Record) (int, error) {
	f.records = append(f.records, records...)
	return len(records), nil
}

func (f *fakeRecordRepo) GetByEmployeeAndDay(context.Context, string, string) (*attendance.Record, error) {
	return nil, nil
}

func (f *fakeRecordRepo) GetByID(context.Context, string) (attendance.Record, error) {
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

func (f *fakeRecordRepo) ListDaysWithRecords(context.Context, string, string) (map[string]map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeRecordRepo) List(context.Context, attendance.RecordFilter) ([]attendance.Record, int64, error) {
	return nil, 0, nil
}

func (f *fakeRecordRepo) Update(context.Context, attendance.Record) error { return nil }

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

func (f *fakeEmployeeRepo) GetByCode(context.Context, string) (employee.Employee, error) {
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

func (f *fakeEmployeeRepo) Update(context.Context, employee.Employee) error { return nil }

type fakeCalendar struct {
	holidays map[string]policy.HolidayKind
}

func (f *fakeCalendar) WorkingDays(context.Context, int, time.Month) (map[string]struct{}, error) {
	return nil, nil
}

func (f *fakeCalendar) HolidaysByRange(context.Context, time.Time, time.Time) (map[string]policy.HolidayKind, error) {
	return f.holidays, nil
}

type payrollFixture struct {
	svc         payroll.PayrollService
	payrollRepo *fakePayrollRepo
	recordRepo  *fakeRecordRepo
	employees   *fakeEmployeeRepo
	calendar    *fakeCalendar
}

func newPayrollFixture() *payrollFixture {
	payrollRepo := newFakePayrollRepo()
	recordRepo := &fakeRecordRepo{}
	employees := &fakeEmployeeRepo{employees: map[string]employee.Employee{
		"emp-1": {ID: "emp-1", Code: "1001", FullName: "Maria Santos", IsActive: true},
		"emp-2": {ID: "emp-2", Code: "1002", FullName: "Jose Ramos", IsActive: true},
	}}
	cal := &fakeCalendar{}

	svc := NewPayrollService(
		fakeTransactor{},
		payrollRepo,
		recordRepo,
		employees,
		cal,
		policy.Default(),
		testLoc,
	)
	return &payrollFixture{svc: svc, payrollRepo: payrollRepo, recordRepo: recordRepo, employees: employees, calendar: cal}
}

func period(t *testing.T) (time.Time, time.Time) {
	t.Helper()
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, testLoc)
	end := time.Date(2026, 3, 31, 0, 0, 0, 0, testLoc)
	return start, end
}

func addWorkedDays(repo *fakeRecordRepo, employeeID string, days []string, hours float64) {
	for _, day := range days {
		h := decimal.NewFromFloat(hours)
		repo.records = append(repo.records, attendance.Record{
			EmployeeID:     employeeID,
			BusinessDay:    day,
			HoursWorked:    &h,
			TotalSessions:  2,
			ApprovalStatus: attendance.ApprovalApproved,
		})
	}
}

func TestComputePayroll_BalancesExactly(t *testing.T) {
	fx := newPayrollFixture()
	ctx := context.Background()
	start, end := period(t)

	_, err := fx.svc.UpsertRole(ctx, payroll.UpsertRoleRequest{
		EmployeeID: "emp-1", DailyRate: decimal.NewFromInt(800), IsActive: true,
	})
	require.NoError(t, err)
	addWorkedDays(fx.recordRepo, "emp-1", []string{
		"2026-03-02", "2026-03-03", "2026-03-04", "2026-03-05", "2026-03-06",
	}, 8)

	comp, err := fx.svc.ComputePayroll(ctx, "emp-1", start, end)
	require.NoError(t, err)

	assert.True(t, comp.GrossPay.Equal(comp.TotalEarnings))
	assert.True(t, comp.NetPay.Equal(comp.GrossPay.Sub(comp.TotalDeductions)),
		"net %s gross %s deductions %s", comp.NetPay, comp.GrossPay, comp.TotalDeductions)
	assert.True(t, comp.RegularPay.Equal(decimal.NewFromInt(4000)))
	assert.True(t, comp.DaysWorked.Equal(decimal.NewFromInt(5)))
	assert.Empty(t, comp.Diagnostics)
}

func TestComputePayroll_ZeroRateDiagnostic(t *testing.T) {
	fx := newPayrollFixture()
	ctx := context.Background()
	start, end := period(t)

	addWorkedDays(fx.recordRepo, "emp-1", []string{"2026-03-02"}, 8)

	comp, err := fx.svc.ComputePayroll(ctx, "emp-1", start, end)
	require.NoError(t, err)

	assert.True(t, comp.GrossPay.IsZero())
	assert.True(t, comp.NetPay.IsZero())
	require.NotEmpty(t, comp.Diagnostics)
	assert.Contains(t, comp.Diagnostics[0], "no resolvable daily rate")
}

func TestComputePayroll_InvalidPeriod(t *testing.T) {
	fx := newPayrollFixture()
	start, end := period(t)

	_, err := fx.svc.ComputePayroll(context.Background(), "emp-1", end, start)
	assert.ErrorIs(t, err, payroll.ErrInvalidPeriod)
}

func TestComputePayroll_DualAssignedRuleCountsOnce(t *testing.T) {
	fx := newPayrollFixture()
	ctx := context.Background()
	start, end := period(t)

	_, err := fx.svc.UpsertRole(ctx, payroll.UpsertRoleRequest{
		EmployeeID: "emp-1", DailyRate: decimal.NewFromInt(800), IsActive: true,
	})
	require.NoError(t, err)
	addWorkedDays(fx.recordRepo, "emp-1", []string{"2026-03-02"}, 8)

	// Global rule additionally assigned to the employee directly.
	rule, err := fx.svc.CreateRule(ctx, payroll.CreateRuleRequest{
		Name: "Transport Allowance", Kind: "allowance",
		Amount: decimal.NewFromInt(100), AppliesToAll: true,
	})
	require.NoError(t, err)
	require.NoError(t, fx.svc.AssignRule(ctx, rule.ID, "emp-1"))

	comp, err := fx.svc.ComputePayroll(ctx, "emp-1", start, end)
	require.NoError(t, err)
	assert.True(t, comp.Allowances.Equal(decimal.NewFromInt(100)),
		"dual-assigned rule applied twice: %s", comp.Allowances)
}

func TestGeneratePayroll(t *testing.T) {
	fx := newPayrollFixture()
	ctx := context.Background()

	for _, employeeID := range []string{"emp-1", "emp-2"} {
		_, err := fx.svc.UpsertRole(ctx, payroll.UpsertRoleRequest{
			EmployeeID: employeeID, DailyRate: decimal.NewFromInt(800), IsActive: true,
		})
		require.NoError(t, err)
		addWorkedDays(fx.recordRepo, employeeID, []string{"2026-03-02", "2026-03-03"}, 8)
	}

	report, err := fx.svc.GeneratePayroll(ctx, payroll.GenerateRequest{
		PeriodStart: "2026-03-01", PeriodEnd: "2026-03-31",
	})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Computed)
	assert.Equal(t, 0, report.Skipped)
	assert.Len(t, fx.payrollRepo.results, 2)
	assert.Len(t, fx.payrollRepo.summaries, 2)

	for _, result := range fx.payrollRepo.results {
		assert.Equal(t, payroll.ResultStatusDraft, result.Status)
		assert.True(t, result.NetPay.Equal(result.GrossPay.Sub(result.TotalDeductions)))
	}
}

func TestGeneratePayroll_SkipsFinalizedResults(t *testing.T) {
	fx := newPayrollFixture()
	ctx := context.Background()
	req := payroll.GenerateRequest{PeriodStart: "2026-03-01", PeriodEnd: "2026-03-31"}

	_, err := fx.svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)

	// Finalize one result, then regenerate.
	for key, result := range fx.payrollRepo.results {
		if result.EmployeeID == "emp-1" {
			result.Status = payroll.ResultStatusFinalized
			fx.payrollRepo.results[key] = result
		}
	}

	report, err := fx.svc.GeneratePayroll(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Computed)
	assert.Equal(t, 1, report.Skipped)
	require.Len(t, report.Diagnostics, 1)
	assert.Contains(t, report.Diagnostics[0], "finalized")
}

func TestGeneratePayroll_ValidatesPeriod(t *testing.T) {
	fx := newPayrollFixture()

	_, err := fx.svc.GeneratePayroll(context.Background(), payroll.GenerateRequest{
		PeriodStart: "2026-03-31", PeriodEnd: "2026-03-01",
	})
	assert.Error(t, err)
}
