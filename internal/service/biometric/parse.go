package biometric

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/attendance"
	"github.com/lumina-hr/payroll-backend-go/internal/domain/biometric"
)

// Column aliases seen across device export formats, matched on the
// normalized header text.
var columnAliases = map[string][]string{
	"external_id": {"no", "id", "ac no", "acno", "employee id", "emp id", "external id", "badge"},
	"name":        {"name", "employee name", "full name"},
	"timestamp":   {"time", "date time", "datetime", "timestamp", "date"},
	"status":      {"status", "state", "in out", "inout", "direction"},
	"location":    {"location", "device", "terminal"},
	"department":  {"department", "dept", "section"},
}

// parseRows reads the uploaded content as CSV and maps each data row onto
// RawRow by header name. The reader is lenient: ragged rows and stray quotes
// are tolerated, short rows become per-row diagnostics rather than aborting
// the file.
func parseRows(content []byte) ([]biometric.RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, biometric.ErrEmptyImport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []biometric.RawRow
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read line %d: %w", line, err)
		}
		if isBlank(record) {
			continue
		}
		rows = append(rows, biometric.RawRow{
			Line:       line,
			ExternalID: field(record, colIndex(cols, "external_id")),
			Name:       field(record, colIndex(cols, "name")),
			Timestamp:  field(record, colIndex(cols, "timestamp")),
			Status:     field(record, colIndex(cols, "status")),
			Location:   field(record, colIndex(cols, "location")),
			Department: field(record, colIndex(cols, "department")),
		})
	}

	if len(rows) == 0 {
		return nil, biometric.ErrEmptyImport
	}
	return rows, nil
}

// mapColumns resolves header cells to row fields. The timestamp column and
// at least one of the identity columns are mandatory.
func mapColumns(header []string) (map[string]int, error) {
	cols := map[string]int{}
	for i, cell := range header {
		normalized := normalizeName(cell)
		for fieldName, aliases := range columnAliases {
			if _, taken := cols[fieldName]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					cols[fieldName] = i
					break
				}
			}
		}
	}

	if _, ok := cols["timestamp"]; !ok {
		return nil, fmt.Errorf("%w: no timestamp column in header", biometric.ErrMissingColumns)
	}
	_, hasID := cols["external_id"]
	_, hasName := cols["name"]
	if !hasID && !hasName {
		return nil, fmt.Errorf("%w: no employee id or name column in header", biometric.ErrMissingColumns)
	}
	return cols, nil
}

func colIndex(cols map[string]int, name string) int {
	if i, ok := cols[name]; ok {
		return i
	}
	return -1
}

func field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// parseDirection reads the punch direction out of free-form device status
// text. "out" is checked first: wordings like "check-out" and "clock out"
// must not match on their trailing "in" fragments, and "OverTime In" style
// statuses still resolve correctly.
func parseDirection(status string) (attendance.Direction, bool) {
	lower := strings.ToLower(status)
	if strings.Contains(lower, "out") {
		return attendance.DirectionOut, true
	}
	if strings.Contains(lower, "in") {
		return attendance.DirectionIn, true
	}
	return "", false
}
