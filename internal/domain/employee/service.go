package employee

import (
	"context"
)

// EmployeeService manages the employee roster and clock-terminal sessions.
type EmployeeService interface {
	// Login authenticates an employee by code and PIN and issues an access
	// token. Inactive employees cannot log in.
	Login(ctx context.Context, req LoginRequest) (TokenResponse, error)

	Create(ctx context.Context, req CreateEmployeeRequest) (EmployeeResponse, error)

	Get(ctx context.Context, id string) (EmployeeResponse, error)

	List(ctx context.Context) (ListEmployeesResponse, error)

	Update(ctx context.Context, id string, req UpdateEmployeeRequest) (EmployeeResponse, error)

	// Deactivate removes the employee from rosters and imports without
	// deleting history.
	Deactivate(ctx context.Context, id string) error
}
