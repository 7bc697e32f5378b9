package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/response"
)

type AttendanceHandler interface {
	ClockIn(w http.ResponseWriter, r *http.Request)
	ClockOut(w http.ResponseWriter, r *http.Request)
	GetMyAttendance(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	SynthesizeAbsences(w http.ResponseWriter, r *http.Request)
}

type attendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService) AttendanceHandler {
	return &attendanceHandlerImpl{
		attendanceService: attendanceService,
	}
}

func (h *attendanceHandlerImpl) recordPunch(w http.ResponseWriter, r *http.Request, direction attendance.Direction) {
	employeeID, ok := middleware.EmployeeID(r)
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	result, err := h.attendanceService.RecordPunch(r.Context(), employeeID, direction, time.Now())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	if !result.Accepted {
		response.Success(w, result)
		return
	}

	response.Created(w, "Punch recorded", result)
}

// ClockIn implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockIn(w http.ResponseWriter, r *http.Request) {
	h.recordPunch(w, r, attendance.DirectionIn)
}

// ClockOut implements AttendanceHandler.
func (h *attendanceHandlerImpl) ClockOut(w http.ResponseWriter, r *http.Request) {
	h.recordPunch(w, r, attendance.DirectionOut)
}

func recordFilterFromQuery(r *http.Request) attendance.RecordFilter {
	q := r.URL.Query()
	filter := attendance.RecordFilter{}

	if v := q.Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := q.Get("start_day"); v != "" {
		filter.StartDay = &v
	}
	if v := q.Get("end_day"); v != "" {
		filter.EndDay = &v
	}
	if v := q.Get("status"); v != "" {
		filter.Status = &v
	}
	filter.Page, _ = strconv.Atoi(q.Get("page"))
	filter.Limit, _ = strconv.Atoi(q.Get("limit"))

	return filter
}

// GetMyAttendance implements AttendanceHandler.
func (h *attendanceHandlerImpl) GetMyAttendance(w http.ResponseWriter, r *http.Request) {
	employeeID, ok := middleware.EmployeeID(r)
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	result, err := h.attendanceService.GetMyAttendance(r.Context(), employeeID, recordFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, response.PageMeta(result.Page, result.Limit, result.TotalCount))
}

// List implements AttendanceHandler.
func (h *attendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.attendanceService.ListRecords(r.Context(), recordFilterFromQuery(r))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Records, response.PageMeta(result.Page, result.Limit, result.TotalCount))
}

// Approve implements AttendanceHandler.
func (h *attendanceHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	approverID, ok := middleware.EmployeeID(r)
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	req := attendance.ApproveRecordRequest{ID: chi.URLParam(r, "id")}
	result, err := h.attendanceService.ApproveRecord(r.Context(), req, approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance approved", result)
}

// Reject implements AttendanceHandler.
func (h *attendanceHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	approverID, ok := middleware.EmployeeID(r)
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	var req attendance.RejectRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	result, err := h.attendanceService.RejectRecord(r.Context(), req, approverID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Attendance rejected", result)
}

// SynthesizeAbsences implements AttendanceHandler.
func (h *attendanceHandlerImpl) SynthesizeAbsences(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if req.Year < 2000 || req.Month < 1 || req.Month > 12 {
		response.BadRequest(w, "Year and month are required", nil)
		return
	}

	created, err := h.attendanceService.SynthesizeAbsences(r.Context(), req.Year, time.Month(req.Month))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Absence synthesis complete", map[string]int{"created": created})
}
