package biometric

import (
	"strings"

	"github.com/lumina-hr/payroll-backend-go/internal/domain/employee"
)

// employeeIndex resolves raw device rows to employees. Built once per import
// from the active employee list, so row resolution never touches the
// database.
type employeeIndex struct {
	byCode map[string]employee.Employee
	byName map[string][]employee.Employee
}

func newEmployeeIndex(employees []employee.Employee) *employeeIndex {
	idx := &employeeIndex{
		byCode: make(map[string]employee.Employee, len(employees)),
		byName: make(map[string][]employee.Employee),
	}
	for _, emp := range employees {
		if code := strings.TrimSpace(emp.Code); code != "" {
			idx.byCode[code] = emp
		}
		for _, key := range nameKeys(emp.FullName) {
			idx.byName[key] = append(idx.byName[key], emp)
		}
	}
	return idx
}

// resolve matches a row by device code first, then by normalized name.
// ambiguous is true when the name matched more than one employee; the row
// must then be skipped rather than guessed.
func (idx *employeeIndex) resolve(externalID, name string) (emp employee.Employee, ambiguous, ok bool) {
	if code := strings.TrimSpace(externalID); code != "" {
		if emp, found := idx.byCode[code]; found {
			return emp, false, true
		}
	}
	for _, key := range nameKeys(name) {
		matches := idx.byName[key]
		switch len(matches) {
		case 0:
			continue
		case 1:
			return matches[0], false, true
		default:
			return employee.Employee{}, true, false
		}
	}
	return employee.Employee{}, false, false
}

// nameKeys returns the lookup keys for a personnel name: the normalized
// token sequence as written, plus the "Last, First" reading when the name
// carries a comma. Device exports are inconsistent about name order.
func nameKeys(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	var keys []string
	if before, after, found := strings.Cut(raw, ","); found {
		// "Santos, Maria" reads as "Maria Santos".
		keys = appendKey(keys, normalizeName(after+" "+before))
	}
	keys = appendKey(keys, normalizeName(raw))

	// Two-token names also match with the tokens swapped.
	tokens := strings.Fields(normalizeName(raw))
	if len(tokens) == 2 {
		keys = appendKey(keys, tokens[1]+" "+tokens[0])
	}
	return keys
}

func appendKey(keys []string, key string) []string {
	if key == "" {
		return keys
	}
	for _, existing := range keys {
		if existing == key {
			return keys
		}
	}
	return append(keys, key)
}

// normalizeName lowercases and collapses punctuation and runs of whitespace
// into single spaces.
func normalizeName(raw string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(raw) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastSpace = false
		default:
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
	}
	return strings.TrimSpace(b.String())
}
