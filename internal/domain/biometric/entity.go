package biometric

import (
	"time"
)

// ImportBatch records one bulk-upload event. Write-once; the content
// checksum makes re-uploads detectable and every punch and record created
// by the batch carries its ID for provenance.
type ImportBatch struct {
	ID             string
	SourceFileName string
	SourceSize     int64
	Checksum       string // sha256 hex of the uploaded content
	UploadedBy     string
	CreatedAt      time.Time
}

// RawRow is one tabular row from a device export, column-mapped but not yet
// parsed or resolved.
type RawRow struct {
	Line       int // 1-based line number in the source file
	ExternalID string
	Name       string
	Timestamp  string // "DD/MM/YYYY HH:MM" plus optional device noise
	Status     string // free text containing "IN" or "OUT"
	Location   string
	Department string
}

// Severity of a row diagnostic.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Diagnostic is one per-row problem collected during an import. Errors skip
// the row; warnings do not.
type Diagnostic struct {
	Line     int      `json:"line"`
	Field    string   `json:"field,omitempty"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}
