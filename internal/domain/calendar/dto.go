package calendar

import (
	"github.com/lumina-hr/payroll-backend-go/internal/domain/policy"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Date      string `json:"date"` // YYYY-MM-DD
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	IsWorkday bool   `json:"is_workday"`
}

func (r *CreateHolidayRequest) Validate() error {
	var errs validator.ValidationErrors

	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "date",
			Message: "date must be YYYY-MM-DD",
		})
	}
	if validator.IsEmpty(r.Name) {
		errs = append(errs, validator.ValidationError{
			Field:   "name",
			Message: "name is required",
		})
	}
	if !validator.IsInSlice(r.Kind, []string{string(policy.HolidayRegular), string(policy.HolidaySpecial)}) {
		errs = append(errs, validator.ValidationError{
			Field:   "kind",
			Message: "kind must be regular or special",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

type HolidayResponse struct {
	ID        string `json:"id"`
	Date      string `json:"date"`
	Name      string `json:"name"`
	Kind      string `json:"kind"`
	IsWorkday bool   `json:"is_workday"`
}
