package payroll

import (
	"context"
	"time"
)

// PayrollRepository defines data access for rules, roles, results and
// summaries.
type PayrollRepository interface {
	// Rules
	CreateRule(ctx context.Context, rule Rule) (Rule, error)
	GetRuleByID(ctx context.Context, id string) (Rule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]Rule, error)
	UpdateRule(ctx context.Context, rule Rule) error
	DeleteRule(ctx context.Context, id string) error

	// ListRulesForEmployee returns every active rule that applies to the
	// employee: global rules plus assigned ones, each rule at most once
	// even when assigned both ways.
	ListRulesForEmployee(ctx context.Context, employeeID string) ([]Rule, error)

	AssignRule(ctx context.Context, assignment RuleAssignment) (RuleAssignment, error)
	UnassignRule(ctx context.Context, ruleID, employeeID string) error

	// Roles
	UpsertRole(ctx context.Context, role Role) (Role, error)
	// GetActiveRole returns nil when the employee has no active override.
	GetActiveRole(ctx context.Context, employeeID string) (*Role, error)

	// Results
	// UpsertResult is keyed by (employee, period start, period end).
	UpsertResult(ctx context.Context, result Result) (Result, error)
	GetResultByEmployeePeriod(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (Result, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]Result, int64, error)

	// AppendSummary writes the compatibility reporting row for a result.
	AppendSummary(ctx context.Context, summary Summary) error
}
