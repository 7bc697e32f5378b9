package biometric

import (
	"github.com/lumina-hr/payroll-backend-go/internal/pkg/validator"
)

type ImportRequest struct {
	SourceFileName string
	UploadedBy     string
	Content        []byte // raw upload, checksummed and parsed by the engine
}

func (r *ImportRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.SourceFileName) {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "source file name is required",
		})
	}
	if len(r.Content) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "file",
			Message: "uploaded file is empty",
		})
	}
	if validator.IsEmpty(r.UploadedBy) {
		errs = append(errs, validator.ValidationError{
			Field:   "uploaded_by",
			Message: "uploader is required",
		})
	}

	if len(errs) > 0 {
		return errs
	}

	return nil
}

// ImportReport summarizes one import run. The batch completes even when
// individual rows fail; callers inspect the counts and diagnostics.
type ImportReport struct {
	BatchID         string       `json:"batch_id"`
	Checksum        string       `json:"checksum"`
	RepeatOfBatchID *string      `json:"repeat_of_batch_id,omitempty"`
	TotalRows       int          `json:"total_rows"`
	Imported        int          `json:"imported"`
	Updated         int          `json:"updated"`
	Skipped         int          `json:"skipped"`
	AbsencesCreated int          `json:"absences_created"`
	Errors          []Diagnostic `json:"errors,omitempty"`
	Warnings        []Diagnostic `json:"warnings,omitempty"`
}

type BatchResponse struct {
	ID             string `json:"id"`
	SourceFileName string `json:"source_file_name"`
	SourceSize     int64  `json:"source_size"`
	Checksum       string `json:"checksum"`
	UploadedBy     string `json:"uploaded_by"`
	CreatedAt      string `json:"created_at"`
}

type ListBatchesResponse struct {
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Batches    []BatchResponse `json:"batches"`
}
