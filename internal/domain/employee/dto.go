package employee

import (
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
)

type LoginRequest struct {
	Code string `json:"code"`
	PIN  string `json:"pin"`
}

func (r *LoginRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "employee code is required",
		})
	}
	if validator.IsEmpty(r.PIN) {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type TokenResponse struct {
	AccessToken string           `json:"access_token"`
	ExpiresAt   int64            `json:"expires_at"`
	Employee    EmployeeResponse `json:"employee"`
}

type CreateEmployeeRequest struct {
	Code       string  `json:"code"`
	FullName   string  `json:"full_name"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	PIN        string  `json:"pin,omitempty"`
	IsAdmin    bool    `json:"is_admin"`
}

func (r *CreateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Code) {
		errs = append(errs, validator.ValidationError{
			Field:   "code",
			Message: "employee code is required",
		})
	}
	if validator.IsEmpty(r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full name is required",
		})
	}
	if r.PIN != "" && len(r.PIN) < 4 {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin must be at least 4 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// UpdateEmployeeRequest carries partial updates. Nil fields are left as
// stored; an empty PIN string clears the stored hash.
type UpdateEmployeeRequest struct {
	FullName   *string `json:"full_name,omitempty"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	PIN        *string `json:"pin,omitempty"`
	IsAdmin    *bool   `json:"is_admin,omitempty"`
	IsActive   *bool   `json:"is_active,omitempty"`
}

func (r *UpdateEmployeeRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.FullName != nil && validator.IsEmpty(*r.FullName) {
		errs = append(errs, validator.ValidationError{
			Field:   "full_name",
			Message: "full name must not be blank",
		})
	}
	if r.PIN != nil && *r.PIN != "" && len(*r.PIN) < 4 {
		errs = append(errs, validator.ValidationError{
			Field:   "pin",
			Message: "pin must be at least 4 characters",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type EmployeeResponse struct {
	ID         string  `json:"id"`
	Code       string  `json:"code"`
	FullName   string  `json:"full_name"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	IsAdmin    bool    `json:"is_admin"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
}

type ListEmployeesResponse struct {
	TotalCount int                `json:"total_count"`
	Employees  []EmployeeResponse `json:"employees"`
}
