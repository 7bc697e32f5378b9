package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/payroll"
	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/response"
)

type PayrollHandler interface {
	Compute(w http.ResponseWriter, r *http.Request)
	Generate(w http.ResponseWriter, r *http.Request)
	ListResults(w http.ResponseWriter, r *http.Request)
	CreateRule(w http.ResponseWriter, r *http.Request)
	ListRules(w http.ResponseWriter, r *http.Request)
	DeleteRule(w http.ResponseWriter, r *http.Request)
	AssignRule(w http.ResponseWriter, r *http.Request)
	UpsertRole(w http.ResponseWriter, r *http.Request)
}

type payrollHandlerImpl struct {
	payrollService payroll.PayrollService
}

func NewPayrollHandler(payrollService payroll.PayrollService) PayrollHandler {
	return &payrollHandlerImpl{
		payrollService: payrollService,
	}
}

// Compute implements PayrollHandler. Dry run; nothing is persisted.
func (h *payrollHandlerImpl) Compute(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	employeeID := q.Get("employee_id")
	if employeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}

	periodStart, err := time.Parse("2006-01-02", q.Get("period_start"))
	if err != nil {
		response.BadRequest(w, "period_start must be YYYY-MM-DD", nil)
		return
	}
	periodEnd, err := time.Parse("2006-01-02", q.Get("period_end"))
	if err != nil {
		response.BadRequest(w, "period_end must be YYYY-MM-DD", nil)
		return
	}

	result, err := h.payrollService.ComputePayroll(r.Context(), employeeID, periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// Generate implements PayrollHandler.
func (h *payrollHandlerImpl) Generate(w http.ResponseWriter, r *http.Request) {
	var req payroll.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	report, err := h.payrollService.GeneratePayroll(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll generated", report)
}

// ListResults implements PayrollHandler.
func (h *payrollHandlerImpl) ListResults(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := payroll.ResultFilter{}

	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("period_start"); v != "" {
		filter.PeriodStart = &v
	}
	if v := q.Get("period_end"); v != "" {
		filter.PeriodEnd = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	result, err := h.payrollService.ListResults(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Results, response.PageMeta(result.Page, result.Limit, result.TotalCount))
}

// CreateRule implements PayrollHandler.
func (h *payrollHandlerImpl) CreateRule(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreateRuleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	rule, err := h.payrollService.CreateRule(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll rule created", rule)
}

// ListRules implements PayrollHandler.
func (h *payrollHandlerImpl) ListRules(w http.ResponseWriter, r *http.Request) {
	activeOnly := r.URL.Query().Get("active_only") == "true"

	rules, err := h.payrollService.ListRules(r.Context(), activeOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, rules)
}

// DeleteRule implements PayrollHandler.
func (h *payrollHandlerImpl) DeleteRule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.payrollService.DeleteRule(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll rule deleted", nil)
}

// AssignRule implements PayrollHandler.
func (h *payrollHandlerImpl) AssignRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		EmployeeID string `json:"employee_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.EmployeeID == "" {
		response.BadRequest(w, "employee_id is required", nil)
		return
	}

	if err := h.payrollService.AssignRule(r.Context(), chi.URLParam(r, "id"), req.EmployeeID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll rule assigned", nil)
}

// UpsertRole implements PayrollHandler.
func (h *payrollHandlerImpl) UpsertRole(w http.ResponseWriter, r *http.Request) {
	var req payroll.UpsertRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	role, err := h.payrollService.UpsertRole(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Payroll role saved", role)
}
