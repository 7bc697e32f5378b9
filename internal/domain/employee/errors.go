package employee

import "errors"

var (
	ErrEmployeeNotFound   = errors.New("employee not found")
	ErrEmployeeCodeExists = errors.New("employee code already exists")
	ErrInvalidCredentials = errors.New("invalid employee code or PIN")
	ErrEmployeeInactive   = errors.New("employee is inactive")
)
