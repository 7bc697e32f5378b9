package employee

import (
	"context"
)

// EmployeeRepository defines data access methods for employee records.
type EmployeeRepository interface {
	Create(ctx context.Context, emp Employee) (Employee, error)

	GetByID(ctx context.Context, id string) (Employee, error)

	// GetByCode retrieves an employee by their biometric/external code.
	GetByCode(ctx context.Context, code string) (Employee, error)

	// ListActive returns every active employee. The import coordinator
	// builds its resolution index from this before row processing starts.
	ListActive(ctx context.Context) ([]Employee, error)

	Update(ctx context.Context, emp Employee) error
}
