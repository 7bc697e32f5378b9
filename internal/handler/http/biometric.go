package http

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/biometric"
	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/middleware"
	"github.com/lumina-hr/payroll-backend-go/internal/handler/http/response"
)

const maxImportSize = 20 << 20 // 20MB

type BiometricHandler interface {
	Import(w http.ResponseWriter, r *http.Request)
	ListBatches(w http.ResponseWriter, r *http.Request)
}

type biometricHandlerImpl struct {
	importService biometric.ImportService
}

func NewBiometricHandler(importService biometric.ImportService) BiometricHandler {
	return &biometricHandlerImpl{
		importService: importService,
	}
}

// Import implements BiometricHandler.
func (h *biometricHandlerImpl) Import(w http.ResponseWriter, r *http.Request) {
	uploaderID, ok := middleware.EmployeeID(r)
	if !ok {
		response.Unauthorized(w, "Missing or invalid token")
		return
	}

	if err := r.ParseMultipartForm(maxImportSize); err != nil {
		slog.Error("Failed to parse multipart form", "error", err)
		response.BadRequest(w, "Failed to parse form data", nil)
		return
	}

	file, fileHeader, err := r.FormFile("file")
	if err != nil {
		if err == http.ErrMissingFile {
			response.BadRequest(w, "Export file is required", nil)
			return
		}
		slog.Error("Failed to get file from form", "error", err)
		response.BadRequest(w, "Invalid file upload", nil)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxImportSize))
	if err != nil {
		slog.Error("Failed to read uploaded file", "error", err)
		response.BadRequest(w, "Failed to read uploaded file", nil)
		return
	}

	req := biometric.ImportRequest{
		SourceFileName: fileHeader.Filename,
		UploadedBy:     uploaderID,
		Content:        content,
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	report, err := h.importService.ImportRows(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Import complete", report)
}

// ListBatches implements BiometricHandler.
func (h *biometricHandlerImpl) ListBatches(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))

	result, err := h.importService.ListBatches(r.Context(), page, limit)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, result.Batches, response.PageMeta(result.Page, result.Limit, result.TotalCount))
}
