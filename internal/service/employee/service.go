package employee

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/jwt"
)

const timestampFormat = "2006-01-02 15:04:05"

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
	jwtService   jwt.Service
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository, jwtService jwt.Service) employee.EmployeeService {
	return &EmployeeServiceImpl{
		employeeRepo: employeeRepo,
		jwtService:   jwtService,
	}
}

func hashPIN(pin string) (*string, error) {
	if pin == "" {
		return nil, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash pin: %w", err)
	}
	hashed := string(hash)
	return &hashed, nil
}

// Login implements employee.EmployeeService.
func (e *EmployeeServiceImpl) Login(ctx context.Context, req employee.LoginRequest) (employee.TokenResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.TokenResponse{}, err
	}

	emp, err := e.employeeRepo.GetByCode(ctx, req.Code)
	if err != nil {
		if errors.Is(err, employee.ErrEmployeeNotFound) {
			return employee.TokenResponse{}, employee.ErrInvalidCredentials
		}
		return employee.TokenResponse{}, fmt.Errorf("failed to get employee by code: %w", err)
	}

	if !emp.IsActive {
		return employee.TokenResponse{}, employee.ErrEmployeeInactive
	}
	if emp.PINHash == nil {
		return employee.TokenResponse{}, employee.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(*emp.PINHash), []byte(req.PIN)); err != nil {
		return employee.TokenResponse{}, employee.ErrInvalidCredentials
	}

	role := "employee"
	if emp.IsAdmin {
		role = "admin"
	}

	token, expiresAt, err := e.jwtService.GenerateAccessToken(emp.ID, emp.Code, role)
	if err != nil {
		return employee.TokenResponse{}, fmt.Errorf("failed to create access token: %w", err)
	}

	return employee.TokenResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Employee:    mapEmployeeToResponse(emp),
	}, nil
}

// Create implements employee.EmployeeService.
func (e *EmployeeServiceImpl) Create(ctx context.Context, req employee.CreateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	pinHash, err := hashPIN(req.PIN)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := e.employeeRepo.Create(ctx, employee.Employee{
		Code:       req.Code,
		FullName:   req.FullName,
		Department: req.Department,
		Position:   req.Position,
		PINHash:    pinHash,
		IsAdmin:    req.IsAdmin,
		IsActive:   true,
	})
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapEmployeeToResponse(emp), nil
}

// Get implements employee.EmployeeService.
func (e *EmployeeServiceImpl) Get(ctx context.Context, id string) (employee.EmployeeResponse, error) {
	emp, err := e.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapEmployeeToResponse(emp), nil
}

// List implements employee.EmployeeService.
func (e *EmployeeServiceImpl) List(ctx context.Context) (employee.ListEmployeesResponse, error) {
	employees, err := e.employeeRepo.ListActive(ctx)
	if err != nil {
		return employee.ListEmployeesResponse{}, err
	}

	resp := employee.ListEmployeesResponse{
		TotalCount: len(employees),
		Employees:  make([]employee.EmployeeResponse, 0, len(employees)),
	}
	for _, emp := range employees {
		resp.Employees = append(resp.Employees, mapEmployeeToResponse(emp))
	}

	return resp, nil
}

// Update implements employee.EmployeeService.
func (e *EmployeeServiceImpl) Update(ctx context.Context, id string, req employee.UpdateEmployeeRequest) (employee.EmployeeResponse, error) {
	if err := req.Validate(); err != nil {
		return employee.EmployeeResponse{}, err
	}

	emp, err := e.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return employee.EmployeeResponse{}, err
	}

	if req.FullName != nil {
		emp.FullName = *req.FullName
	}
	if req.Department != nil {
		emp.Department = req.Department
	}
	if req.Position != nil {
		emp.Position = req.Position
	}
	if req.PIN != nil {
		pinHash, err := hashPIN(*req.PIN)
		if err != nil {
			return employee.EmployeeResponse{}, err
		}
		emp.PINHash = pinHash
	}
	if req.IsAdmin != nil {
		emp.IsAdmin = *req.IsAdmin
	}
	if req.IsActive != nil {
		emp.IsActive = *req.IsActive
	}

	if err := e.employeeRepo.Update(ctx, emp); err != nil {
		return employee.EmployeeResponse{}, err
	}

	return mapEmployeeToResponse(emp), nil
}

// Deactivate implements employee.EmployeeService.
func (e *EmployeeServiceImpl) Deactivate(ctx context.Context, id string) error {
	emp, err := e.employeeRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	emp.IsActive = false
	return e.employeeRepo.Update(ctx, emp)
}

func mapEmployeeToResponse(emp employee.Employee) employee.EmployeeResponse {
	return employee.EmployeeResponse{
		ID:         emp.ID,
		Code:       emp.Code,
		FullName:   emp.FullName,
		Department: emp.Department,
		Position:   emp.Position,
		IsAdmin:    emp.IsAdmin,
		IsActive:   emp.IsActive,
		CreatedAt:  emp.CreatedAt.Format(timestampFormat),
	}
}
