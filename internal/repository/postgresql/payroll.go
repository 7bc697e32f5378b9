package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/database"
)

type payrollRepository struct {
	db *database.DB
}

func NewPayrollRepository(db *database.DB) payroll.PayrollRepository {
	return &payrollRepository{db: db}
}

const ruleColumns = `id, name, kind, amount, is_percentage, applies_to_all, is_active, created_at, updated_at`

func scanRule(row pgx.Row) (payroll.Rule, error) {
	var r payroll.Rule
	err := row.Scan(
		&r.ID, &r.Name, &r.Kind, &r.Amount, &r.IsPercentage,
		&r.AppliesToAll, &r.IsActive, &r.CreatedAt, &r.UpdatedAt,
	)
	return r, err
}

// CreateRule implements payroll.PayrollRepository.
func (p *payrollRepository) CreateRule(ctx context.Context, rule payroll.Rule) (payroll.Rule, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payroll_rules (name, kind, amount, is_percentage, applies_to_all, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		rule.Name, rule.Kind, rule.Amount, rule.IsPercentage, rule.AppliesToAll, rule.IsActive,
	).Scan(&rule.ID, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		return payroll.Rule{}, fmt.Errorf("failed to create payroll rule: %w", err)
	}

	return rule, nil
}

// GetRuleByID implements payroll.PayrollRepository.
func (p *payrollRepository) GetRuleByID(ctx context.Context, id string) (payroll.Rule, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + ruleColumns + ` FROM payroll_rules WHERE id = $1`

	rule, err := scanRule(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Rule{}, payroll.ErrRuleNotFound
		}
		return payroll.Rule{}, fmt.Errorf("failed to get payroll rule: %w", err)
	}

	return rule, nil
}

// ListRules implements payroll.PayrollRepository.
func (p *payrollRepository) ListRules(ctx context.Context, activeOnly bool) ([]payroll.Rule, error) {
	q := GetQuerier(ctx, p.db)

	query := `SELECT ` + ruleColumns + ` FROM payroll_rules`
	if activeOnly {
		query += ` WHERE is_active = TRUE`
	}
	query += ` ORDER BY name`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll rules: %w", err)
	}
	defer rows.Close()

	var rules []payroll.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// UpdateRule implements payroll.PayrollRepository.
func (p *payrollRepository) UpdateRule(ctx context.Context, rule payroll.Rule) error {
	q := GetQuerier(ctx, p.db)

	query := `
		UPDATE payroll_rules
		SET name = $1, kind = $2, amount = $3, is_percentage = $4, applies_to_all = $5, is_active = $6, updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query,
		rule.Name, rule.Kind, rule.Amount, rule.IsPercentage, rule.AppliesToAll, rule.IsActive, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update payroll rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRuleNotFound
	}

	return nil
}

// DeleteRule implements payroll.PayrollRepository. Assignments go with the
// rule via ON DELETE CASCADE.
func (p *payrollRepository) DeleteRule(ctx context.Context, id string) error {
	q := GetQuerier(ctx, p.db)

	tag, err := q.Exec(ctx, `DELETE FROM payroll_rules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete payroll rule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return payroll.ErrRuleNotFound
	}

	return nil
}

// ListRulesForEmployee implements payroll.PayrollRepository. A rule assigned
// directly and marked global still appears once.
func (p *payrollRepository) ListRulesForEmployee(ctx context.Context, employeeID string) ([]payroll.Rule, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT DISTINCT r.id, r.name, r.kind, r.amount, r.is_percentage, r.applies_to_all, r.is_active, r.created_at, r.updated_at
		FROM payroll_rules r
		LEFT JOIN payroll_rule_assignments a ON a.rule_id = r.id AND a.employee_id = $1
		WHERE r.is_active = TRUE AND (r.applies_to_all = TRUE OR a.id IS NOT NULL)
		ORDER BY r.name
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list employee payroll rules: %w", err)
	}
	defer rows.Close()

	var rules []payroll.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll rule: %w", err)
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// AssignRule implements payroll.PayrollRepository.
func (p *payrollRepository) AssignRule(ctx context.Context, assignment payroll.RuleAssignment) (payroll.RuleAssignment, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payroll_rule_assignments (rule_id, employee_id)
		VALUES ($1, $2)
		RETURNING id, created_at
	`

	err := q.QueryRow(ctx, query, assignment.RuleID, assignment.EmployeeID).Scan(&assignment.ID, &assignment.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return payroll.RuleAssignment{}, payroll.ErrAssignmentExists
		}
		return payroll.RuleAssignment{}, fmt.Errorf("failed to assign payroll rule: %w", err)
	}

	return assignment, nil
}

// UnassignRule implements payroll.PayrollRepository.
func (p *payrollRepository) UnassignRule(ctx context.Context, ruleID, employeeID string) error {
	q := GetQuerier(ctx, p.db)

	query := `DELETE FROM payroll_rule_assignments WHERE rule_id = $1 AND employee_id = $2`

	if _, err := q.Exec(ctx, query, ruleID, employeeID); err != nil {
		return fmt.Errorf("failed to unassign payroll rule: %w", err)
	}

	return nil
}

// UpsertRole implements payroll.PayrollRepository. One role row per employee.
func (p *payrollRepository) UpsertRole(ctx context.Context, role payroll.Role) (payroll.Role, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payroll_roles (employee_id, daily_rate, department, position, is_active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id) DO UPDATE SET
			daily_rate = EXCLUDED.daily_rate,
			department = EXCLUDED.department,
			position = EXCLUDED.position,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		role.EmployeeID, role.DailyRate, role.Department, role.Position, role.IsActive,
	).Scan(&role.ID, &role.CreatedAt, &role.UpdatedAt)
	if err != nil {
		return payroll.Role{}, fmt.Errorf("failed to upsert payroll role: %w", err)
	}

	return role, nil
}

// GetActiveRole implements payroll.PayrollRepository.
func (p *payrollRepository) GetActiveRole(ctx context.Context, employeeID string) (*payroll.Role, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT id, employee_id, daily_rate, department, position, is_active, created_at, updated_at
		FROM payroll_roles
		WHERE employee_id = $1 AND is_active = TRUE
	`

	var role payroll.Role
	err := q.QueryRow(ctx, query, employeeID).Scan(
		&role.ID, &role.EmployeeID, &role.DailyRate, &role.Department, &role.Position,
		&role.IsActive, &role.CreatedAt, &role.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get payroll role: %w", err)
	}

	return &role, nil
}

const resultColumns = `
	id, employee_id, period_start, period_end,
	daily_rate, hourly_rate,
	days_worked, hours_worked, overtime_hours, undertime_hours, late_hours, holiday_hours,
	regular_pay, overtime_pay, holiday_pay, allowances, bonuses, total_earnings, gross_pay,
	sss, philhealth, pagibig, taxable_income, withholding_tax,
	late_deductions, undertime_deductions, loan_deductions, other_deductions, total_deductions,
	net_pay, status, applied_rules, created_at, updated_at
`

// UpsertResult implements payroll.PayrollRepository. Regeneration for the
// same (employee, period) rewrites the row in place.
func (p *payrollRepository) UpsertResult(ctx context.Context, result payroll.Result) (payroll.Result, error) {
	q := GetQuerier(ctx, p.db)

	applied, err := json.Marshal(result.AppliedRules)
	if err != nil {
		return payroll.Result{}, fmt.Errorf("failed to encode applied rules: %w", err)
	}

	query := `
		INSERT INTO payroll_results (
			employee_id, period_start, period_end,
			daily_rate, hourly_rate,
			days_worked, hours_worked, overtime_hours, undertime_hours, late_hours, holiday_hours,
			regular_pay, overtime_pay, holiday_pay, allowances, bonuses, total_earnings, gross_pay,
			sss, philhealth, pagibig, taxable_income, withholding_tax,
			late_deductions, undertime_deductions, loan_deductions, other_deductions, total_deductions,
			net_pay, status, applied_rules
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18,
			$19, $20, $21, $22, $23, $24, $25, $26, $27, $28, $29, $30, $31)
		ON CONFLICT (employee_id, period_start, period_end) DO UPDATE SET
			daily_rate = EXCLUDED.daily_rate,
			hourly_rate = EXCLUDED.hourly_rate,
			days_worked = EXCLUDED.days_worked,
			hours_worked = EXCLUDED.hours_worked,
			overtime_hours = EXCLUDED.overtime_hours,
			undertime_hours = EXCLUDED.undertime_hours,
			late_hours = EXCLUDED.late_hours,
			holiday_hours = EXCLUDED.holiday_hours,
			regular_pay = EXCLUDED.regular_pay,
			overtime_pay = EXCLUDED.overtime_pay,
			holiday_pay = EXCLUDED.holiday_pay,
			allowances = EXCLUDED.allowances,
			bonuses = EXCLUDED.bonuses,
			total_earnings = EXCLUDED.total_earnings,
			gross_pay = EXCLUDED.gross_pay,
			sss = EXCLUDED.sss,
			philhealth = EXCLUDED.philhealth,
			pagibig = EXCLUDED.pagibig,
			taxable_income = EXCLUDED.taxable_income,
			withholding_tax = EXCLUDED.withholding_tax,
			late_deductions = EXCLUDED.late_deductions,
			undertime_deductions = EXCLUDED.undertime_deductions,
			loan_deductions = EXCLUDED.loan_deductions,
			other_deductions = EXCLUDED.other_deductions,
			total_deductions = EXCLUDED.total_deductions,
			net_pay = EXCLUDED.net_pay,
			status = EXCLUDED.status,
			applied_rules = EXCLUDED.applied_rules,
			updated_at = NOW()
		RETURNING id, created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		result.EmployeeID, result.PeriodStart, result.PeriodEnd,
		result.DailyRate, result.HourlyRate,
		result.DaysWorked, result.HoursWorked, result.OvertimeHours, result.UndertimeHours, result.LateHours, result.HolidayHours,
		result.RegularPay, result.OvertimePay, result.HolidayPay, result.Allowances, result.Bonuses, result.TotalEarnings, result.GrossPay,
		result.SSS, result.PhilHealth, result.PagIBIG, result.TaxableIncome, result.WithholdingTax,
		result.LateDeductions, result.UndertimeDeductions, result.LoanDeductions, result.OtherDeductions, result.TotalDeductions,
		result.NetPay, result.Status, applied,
	).Scan(&result.ID, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return payroll.Result{}, fmt.Errorf("failed to upsert payroll result: %w", err)
	}

	return result, nil
}

func scanResult(row pgx.Row, withEmployee bool) (payroll.Result, error) {
	var (
		r       payroll.Result
		applied []byte
	)
	dest := []interface{}{
		&r.ID, &r.EmployeeID, &r.PeriodStart, &r.PeriodEnd,
		&r.DailyRate, &r.HourlyRate,
		&r.DaysWorked, &r.HoursWorked, &r.OvertimeHours, &r.UndertimeHours, &r.LateHours, &r.HolidayHours,
		&r.RegularPay, &r.OvertimePay, &r.HolidayPay, &r.Allowances, &r.Bonuses, &r.TotalEarnings, &r.GrossPay,
		&r.SSS, &r.PhilHealth, &r.PagIBIG, &r.TaxableIncome, &r.WithholdingTax,
		&r.LateDeductions, &r.UndertimeDeductions, &r.LoanDeductions, &r.OtherDeductions, &r.TotalDeductions,
		&r.NetPay, &r.Status, &applied, &r.CreatedAt, &r.UpdatedAt,
	}
	if withEmployee {
		dest = append(dest, &r.EmployeeName, &r.EmployeeCode)
	}
	if err := row.Scan(dest...); err != nil {
		return payroll.Result{}, err
	}
	if len(applied) > 0 {
		r.AppliedRules = make(map[string]decimal.Decimal)
		if err := json.Unmarshal(applied, &r.AppliedRules); err != nil {
			return payroll.Result{}, fmt.Errorf("failed to decode applied rules: %w", err)
		}
	}
	return r, nil
}

// GetResultByEmployeePeriod implements payroll.PayrollRepository.
func (p *payrollRepository) GetResultByEmployeePeriod(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (payroll.Result, error) {
	q := GetQuerier(ctx, p.db)

	query := `
		SELECT ` + resultColumns + `
		FROM payroll_results
		WHERE employee_id = $1 AND period_start = $2 AND period_end = $3
	`

	result, err := scanResult(q.QueryRow(ctx, query, employeeID, periodStart, periodEnd), false)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.Result{}, payroll.ErrResultNotFound
		}
		return payroll.Result{}, fmt.Errorf("failed to get payroll result: %w", err)
	}

	return result, nil
}

// ListResults implements payroll.PayrollRepository.
func (p *payrollRepository) ListResults(ctx context.Context, filter payroll.ResultFilter) ([]payroll.Result, int64, error) {
	q := GetQuerier(ctx, p.db)

	baseQuery := `FROM payroll_results pr LEFT JOIN employees e ON e.id = pr.employee_id`
	whereClause := ` WHERE 1=1`
	var args []interface{}
	argIdx := 1

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		whereClause += fmt.Sprintf(" AND pr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.PeriodStart != nil && *filter.PeriodStart != "" {
		whereClause += fmt.Sprintf(" AND pr.period_start >= $%d::date", argIdx)
		args = append(args, *filter.PeriodStart)
		argIdx++
	}
	if filter.PeriodEnd != nil && *filter.PeriodEnd != "" {
		whereClause += fmt.Sprintf(" AND pr.period_end <= $%d::date", argIdx)
		args = append(args, *filter.PeriodEnd)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		whereClause += fmt.Sprintf(" AND pr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	var total int64
	countQuery := `SELECT COUNT(*) ` + baseQuery + whereClause
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count payroll results: %w", err)
	}

	selectQuery := `
		SELECT pr.id, pr.employee_id, pr.period_start, pr.period_end,
			pr.daily_rate, pr.hourly_rate,
			pr.days_worked, pr.hours_worked, pr.overtime_hours, pr.undertime_hours, pr.late_hours, pr.holiday_hours,
			pr.regular_pay, pr.overtime_pay, pr.holiday_pay, pr.allowances, pr.bonuses, pr.total_earnings, pr.gross_pay,
			pr.sss, pr.philhealth, pr.pagibig, pr.taxable_income, pr.withholding_tax,
			pr.late_deductions, pr.undertime_deductions, pr.loan_deductions, pr.other_deductions, pr.total_deductions,
			pr.net_pay, pr.status, pr.applied_rules, pr.created_at, pr.updated_at,
			e.full_name, e.code
		` + baseQuery + whereClause + fmt.Sprintf(`
		ORDER BY pr.period_start DESC, e.code
		LIMIT $%d OFFSET $%d`, argIdx, argIdx+1)
	args = append(args, filter.Limit, (filter.Page-1)*filter.Limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list payroll results: %w", err)
	}
	defer rows.Close()

	var results []payroll.Result
	for rows.Next() {
		result, err := scanResult(rows, true)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan payroll result: %w", err)
		}
		results = append(results, result)
	}

	return results, total, rows.Err()
}

// AppendSummary implements payroll.PayrollRepository.
func (p *payrollRepository) AppendSummary(ctx context.Context, summary payroll.Summary) error {
	q := GetQuerier(ctx, p.db)

	query := `
		INSERT INTO payroll_summaries (employee_id, period_start, period_end, gross_pay, total_deductions, net_pay)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := q.Exec(ctx, query,
		summary.EmployeeID, summary.PeriodStart, summary.PeriodEnd,
		summary.GrossPay, summary.TotalDeductions, summary.NetPay,
	)
	if err != nil {
		return fmt.Errorf("failed to append payroll summary: %w", err)
	}

	return nil
}
