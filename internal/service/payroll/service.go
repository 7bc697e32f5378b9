package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/calendar"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
	"github.com/shopspring/decimal"
)

const (
	dayKeyFormat = "2006-01-02"

	// generateWorkers bounds concurrent per-employee computations.
	generateWorkers = 8
)

type PayrollServiceImpl struct {
	db           database.Transactor
	payrollRepo  payroll.PayrollRepository
	recordRepo   attendance.RecordRepository
	employeeRepo employee.EmployeeRepository
	workCalendar calendar.WorkCalendar
	pol          policy.Config
	loc          *time.Location
}

func NewPayrollService(
	db database.Transactor,
	payrollRepo payroll.PayrollRepository,
	recordRepo attendance.RecordRepository,
	employeeRepo employee.EmployeeRepository,
	workCalendar calendar.WorkCalendar,
	pol policy.Config,
	loc *time.Location,
) payroll.PayrollService {
	return &PayrollServiceImpl{
		db:           db,
		payrollRepo:  payrollRepo,
		recordRepo:   recordRepo,
		employeeRepo: employeeRepo,
		workCalendar: workCalendar,
		pol:          pol,
		loc:          loc,
	}
}

// ComputePayroll implements payroll.PayrollService. The computation reads
// stored attendance, rules and rates and prices them; nothing is written.
func (p *PayrollServiceImpl) ComputePayroll(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (payroll.Computation, error) {
	if periodEnd.Before(periodStart) {
		return payroll.Computation{}, payroll.ErrInvalidPeriod
	}
	if _, err := p.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return payroll.Computation{}, err
	}

	startDay := periodStart.In(p.loc).Format(dayKeyFormat)
	endDay := periodEnd.In(p.loc).Format(dayKeyFormat)

	records, err := p.recordRepo.ListByEmployeeRange(ctx, employeeID, startDay, endDay)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to list attendance records: %w", err)
	}
	role, err := p.payrollRepo.GetActiveRole(ctx, employeeID)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to get payroll role: %w", err)
	}
	rules, err := p.payrollRepo.ListRulesForEmployee(ctx, employeeID)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to list payroll rules: %w", err)
	}
	holidays, err := p.workCalendar.HolidaysByRange(ctx, periodStart, periodEnd)
	if err != nil {
		return payroll.Computation{}, fmt.Errorf("failed to list holidays: %w", err)
	}

	return p.buildComputation(employeeID, periodStart, periodEnd, records, role, rules, holidays), nil
}

func (p *PayrollServiceImpl) buildComputation(
	employeeID string,
	periodStart, periodEnd time.Time,
	records []attendance.Record,
	role *payroll.Role,
	rules []payroll.Rule,
	holidays map[string]policy.HolidayKind,
) payroll.Computation {
	totals := summarizeAttendance(records, holidays, p.pol)
	daily, hourly, source := resolveRates(role, rules, p.pol)
	earned := computeEarnings(totals, hourly, rules, p.pol)
	deducted := computeDeductions(totals, earned.TotalEarnings, hourly, rules, p.pol)

	comp := payroll.Computation{
		EmployeeID:  employeeID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,

		DailyRate:  daily,
		HourlyRate: hourly.Round(4),

		DaysWorked:     totals.DaysWorked,
		HoursWorked:    totals.HoursWorked,
		OvertimeHours:  totals.OvertimeHours,
		UndertimeHours: totals.UndertimeHours.Round(2),
		LateHours:      totals.LateHours.Round(2),
		HolidayHours:   totals.totalHolidayHours(),

		RegularPay:    earned.RegularPay,
		OvertimePay:   earned.OvertimePay,
		HolidayPay:    earned.HolidayPay,
		Allowances:    earned.Allowances,
		Bonuses:       earned.Bonuses,
		TotalEarnings: earned.TotalEarnings,
		GrossPay:      earned.TotalEarnings,

		SSS:            deducted.SSS,
		PhilHealth:     deducted.PhilHealth,
		PagIBIG:        deducted.PagIBIG,
		TaxableIncome:  deducted.TaxableIncome,
		WithholdingTax: deducted.WithholdingTax,

		LateDeductions:      deducted.Late,
		UndertimeDeductions: deducted.Undertime,
		LoanDeductions:      deducted.Loans,
		OtherDeductions:     deducted.Other,
		TotalDeductions:     deducted.Total,

		NetPay: earned.TotalEarnings.Sub(deducted.Total),

		AppliedRules: map[string]decimal.Decimal{},
	}
	for name, amount := range earned.Applied {
		comp.AppliedRules[name] = amount
	}
	for name, amount := range deducted.Applied {
		comp.AppliedRules[name] = amount
	}

	if source == rateNone {
		comp.Diagnostics = append(comp.Diagnostics, "no resolvable daily rate, computed zero pay")
	}
	if len(records) == 0 {
		comp.Diagnostics = append(comp.Diagnostics, "no attendance records in period")
	}
	if totals.PendingDays > 0 {
		comp.Diagnostics = append(comp.Diagnostics,
			fmt.Sprintf("%d day(s) excluded pending approval", totals.PendingDays))
	}
	if totals.RejectedDays > 0 {
		comp.Diagnostics = append(comp.Diagnostics,
			fmt.Sprintf("%d rejected day(s) excluded", totals.RejectedDays))
	}

	return comp
}

// GeneratePayroll implements payroll.PayrollService.
func (p *PayrollServiceImpl) GeneratePayroll(ctx context.Context, req payroll.GenerateRequest) (payroll.GenerateReport, error) {
	if err := req.Validate(); err != nil {
		return payroll.GenerateReport{}, err
	}

	periodStart, err := time.ParseInLocation(dayKeyFormat, req.PeriodStart, p.loc)
	if err != nil {
		return payroll.GenerateReport{}, fmt.Errorf("invalid period start: %w", err)
	}
	periodEnd, err := time.ParseInLocation(dayKeyFormat, req.PeriodEnd, p.loc)
	if err != nil {
		return payroll.GenerateReport{}, fmt.Errorf("invalid period end: %w", err)
	}

	employeeIDs := req.EmployeeIDs
	if len(employeeIDs) == 0 {
		active, err := p.employeeRepo.ListActive(ctx)
		if err != nil {
			return payroll.GenerateReport{}, fmt.Errorf("failed to list employees: %w", err)
		}
		for _, emp := range active {
			employeeIDs = append(employeeIDs, emp.ID)
		}
	}
	sort.Strings(employeeIDs)

	var (
		mu     sync.Mutex
		report payroll.GenerateReport
		wg     sync.WaitGroup
	)
	sem := make(chan struct{}, generateWorkers)
	for _, employeeID := range employeeIDs {
		wg.Add(1)
		sem <- struct{}{}
		go func(employeeID string) {
			defer wg.Done()
			defer func() { <-sem }()

			diag, err := p.generateOne(ctx, employeeID, periodStart, periodEnd)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				report.Skipped++
				report.Diagnostics = append(report.Diagnostics,
					fmt.Sprintf("%s: %v", employeeID, err))
				return
			}
			if diag != "" {
				report.Skipped++
				report.Diagnostics = append(report.Diagnostics,
					fmt.Sprintf("%s: %s", employeeID, diag))
				return
			}
			report.Computed++
		}(employeeID)
	}
	wg.Wait()

	sort.Strings(report.Diagnostics)

	slog.Info("Generated payroll",
		"period_start", req.PeriodStart,
		"period_end", req.PeriodEnd,
		"computed", report.Computed,
		"skipped", report.Skipped)

	return report, nil
}

// generateOne computes and persists a single employee's result. A non-empty
// diag with nil error means the employee was skipped intentionally.
func (p *PayrollServiceImpl) generateOne(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (string, error) {
	existing, err := p.payrollRepo.GetResultByEmployeePeriod(ctx, employeeID, periodStart, periodEnd)
	if err != nil && !errors.Is(err, payroll.ErrResultNotFound) {
		return "", fmt.Errorf("failed to get existing result: %w", err)
	}
	if err == nil && existing.Status != payroll.ResultStatusDraft {
		return fmt.Sprintf("result already %s, left untouched", existing.Status), nil
	}

	comp, err := p.ComputePayroll(ctx, employeeID, periodStart, periodEnd)
	if err != nil {
		return "", err
	}

	result := resultFromComputation(comp)
	err = p.db.InTx(ctx, func(txCtx context.Context) error {
		stored, err := p.payrollRepo.UpsertResult(txCtx, result)
		if err != nil {
			return fmt.Errorf("failed to upsert payroll result: %w", err)
		}
		return p.payrollRepo.AppendSummary(txCtx, payroll.Summary{
			EmployeeID:      stored.EmployeeID,
			PeriodStart:     stored.PeriodStart,
			PeriodEnd:       stored.PeriodEnd,
			GrossPay:        stored.GrossPay,
			TotalDeductions: stored.TotalDeductions,
			NetPay:          stored.NetPay,
		})
	})
	if err != nil {
		return "", err
	}
	return "", nil
}

func resultFromComputation(comp payroll.Computation) payroll.Result {
	return payroll.Result{
		EmployeeID:  comp.EmployeeID,
		PeriodStart: comp.PeriodStart,
		PeriodEnd:   comp.PeriodEnd,

		DailyRate:  comp.DailyRate,
		HourlyRate: comp.HourlyRate,

		DaysWorked:     comp.DaysWorked,
		HoursWorked:    comp.HoursWorked,
		OvertimeHours:  comp.OvertimeHours,
		UndertimeHours: comp.UndertimeHours,
		LateHours:      comp.LateHours,
		HolidayHours:   comp.HolidayHours,

		RegularPay:    comp.RegularPay,
		OvertimePay:   comp.OvertimePay,
		HolidayPay:    comp.HolidayPay,
		Allowances:    comp.Allowances,
		Bonuses:       comp.Bonuses,
		TotalEarnings: comp.TotalEarnings,
		GrossPay:      comp.GrossPay,

		SSS:            comp.SSS,
		PhilHealth:     comp.PhilHealth,
		PagIBIG:        comp.PagIBIG,
		TaxableIncome:  comp.TaxableIncome,
		WithholdingTax: comp.WithholdingTax,

		LateDeductions:      comp.LateDeductions,
		UndertimeDeductions: comp.UndertimeDeductions,
		LoanDeductions:      comp.LoanDeductions,
		OtherDeductions:     comp.OtherDeductions,
		TotalDeductions:     comp.TotalDeductions,

		NetPay: comp.NetPay,

		Status:       payroll.ResultStatusDraft,
		AppliedRules: comp.AppliedRules,
	}
}

// ListResults implements payroll.PayrollService.
func (p *PayrollServiceImpl) ListResults(ctx context.Context, filter payroll.ResultFilter) (payroll.ListResultsResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = 20
	}

	results, total, err := p.payrollRepo.ListResults(ctx, filter)
	if err != nil {
		return payroll.ListResultsResponse{}, fmt.Errorf("failed to list payroll results: %w", err)
	}

	responses := make([]payroll.ResultResponse, 0, len(results))
	for _, res := range results {
		responses = append(responses, mapResultToResponse(res))
	}

	return payroll.ListResultsResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Results:    responses,
	}, nil
}

func mapResultToResponse(res payroll.Result) payroll.ResultResponse {
	return payroll.ResultResponse{
		Computation: payroll.Computation{
			EmployeeID:  res.EmployeeID,
			PeriodStart: res.PeriodStart,
			PeriodEnd:   res.PeriodEnd,

			DailyRate:  res.DailyRate,
			HourlyRate: res.HourlyRate,

			DaysWorked:     res.DaysWorked,
			HoursWorked:    res.HoursWorked,
			OvertimeHours:  res.OvertimeHours,
			UndertimeHours: res.UndertimeHours,
			LateHours:      res.LateHours,
			HolidayHours:   res.HolidayHours,

			RegularPay:    res.RegularPay,
			OvertimePay:   res.OvertimePay,
			HolidayPay:    res.HolidayPay,
			Allowances:    res.Allowances,
			Bonuses:       res.Bonuses,
			TotalEarnings: res.TotalEarnings,
			GrossPay:      res.GrossPay,

			SSS:            res.SSS,
			PhilHealth:     res.PhilHealth,
			PagIBIG:        res.PagIBIG,
			TaxableIncome:  res.TaxableIncome,
			WithholdingTax: res.WithholdingTax,

			LateDeductions:      res.LateDeductions,
			UndertimeDeductions: res.UndertimeDeductions,
			LoanDeductions:      res.LoanDeductions,
			OtherDeductions:     res.OtherDeductions,
			TotalDeductions:     res.TotalDeductions,

			NetPay: res.NetPay,

			AppliedRules: res.AppliedRules,
		},
		ID:           res.ID,
		EmployeeName: res.EmployeeName,
		EmployeeCode: res.EmployeeCode,
		Status:       string(res.Status),
	}
}

// CreateRule implements payroll.PayrollService.
func (p *PayrollServiceImpl) CreateRule(ctx context.Context, req payroll.CreateRuleRequest) (payroll.Rule, error) {
	if err := req.Validate(); err != nil {
		return payroll.Rule{}, err
	}

	return p.payrollRepo.CreateRule(ctx, payroll.Rule{
		Name:         req.Name,
		Kind:         payroll.RuleKind(req.Kind),
		Amount:       req.Amount,
		IsPercentage: req.IsPercentage,
		AppliesToAll: req.AppliesToAll,
		IsActive:     true,
	})
}

// ListRules implements payroll.PayrollService.
func (p *PayrollServiceImpl) ListRules(ctx context.Context, activeOnly bool) ([]payroll.Rule, error) {
	return p.payrollRepo.ListRules(ctx, activeOnly)
}

// DeleteRule implements payroll.PayrollService.
func (p *PayrollServiceImpl) DeleteRule(ctx context.Context, id string) error {
	if _, err := p.payrollRepo.GetRuleByID(ctx, id); err != nil {
		return err
	}
	return p.payrollRepo.DeleteRule(ctx, id)
}

// AssignRule implements payroll.PayrollService.
func (p *PayrollServiceImpl) AssignRule(ctx context.Context, ruleID, employeeID string) error {
	if _, err := p.payrollRepo.GetRuleByID(ctx, ruleID); err != nil {
		return err
	}
	if _, err := p.employeeRepo.GetByID(ctx, employeeID); err != nil {
		return err
	}
	_, err := p.payrollRepo.AssignRule(ctx, payroll.RuleAssignment{
		RuleID:     ruleID,
		EmployeeID: employeeID,
	})
	return err
}

// UpsertRole implements payroll.PayrollService.
func (p *PayrollServiceImpl) UpsertRole(ctx context.Context, req payroll.UpsertRoleRequest) (payroll.Role, error) {
	if err := req.Validate(); err != nil {
		return payroll.Role{}, err
	}
	if _, err := p.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return payroll.Role{}, err
	}

	return p.payrollRepo.UpsertRole(ctx, payroll.Role{
		EmployeeID: req.EmployeeID,
		DailyRate:  req.DailyRate,
		Department: req.Department,
		Position:   req.Position,
		IsActive:   req.IsActive,
	})
}
