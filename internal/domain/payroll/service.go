package payroll

import (
	"context"
	"time"
)

// PayrollService defines business logic for payroll computation.
type PayrollService interface {
	// ComputePayroll runs the calculation routine for one employee and
	// period without persisting anything. Pure given stored attendance,
	// rules and config; an eligible employee with no rate or attendance
	// computes to zero with a diagnostic.
	ComputePayroll(ctx context.Context, employeeID string, periodStart, periodEnd time.Time) (Computation, error)

	// GeneratePayroll computes and upserts results for every requested
	// employee, appending a compatibility summary per result.
	GeneratePayroll(ctx context.Context, req GenerateRequest) (GenerateReport, error)

	ListResults(ctx context.Context, filter ResultFilter) (ListResultsResponse, error)

	// Rules and roles
	CreateRule(ctx context.Context, req CreateRuleRequest) (Rule, error)
	ListRules(ctx context.Context, activeOnly bool) ([]Rule, error)
	DeleteRule(ctx context.Context, id string) error
	AssignRule(ctx context.Context, ruleID, employeeID string) error
	UpsertRole(ctx context.Context, req UpsertRoleRequest) (Role, error)
}
