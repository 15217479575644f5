package directory

import (
	"strings"
	"testing"
)

func TestNullIfEmpty(t *testing.T) {
	if got := nullIfEmpty(""); got != nil {
		t.Fatalf("expected nil for empty string, got %v", got)
	}
	if got := nullIfEmpty("abc"); got != "abc" {
		t.Fatalf("expected value passthrough, got %v", got)
	}
}

// The optional UUID columns must be read through a ::text cast; an untyped ''
// inside COALESCE is coerced to uuid by Postgres and fails at parse time.
func TestEmployeeColumnsCastOptionalUUIDs(t *testing.T) {
	for _, col := range []string{"user_id::text", "manager_id::text"} {
		if !strings.Contains(employeeColumns, col) {
			t.Fatalf("employee column list missing cast %q:\n%s", col, employeeColumns)
		}
	}
	if strings.Contains(employeeColumns, "COALESCE(user_id,") ||
		strings.Contains(employeeColumns, "COALESCE(manager_id,") {
		t.Fatalf("uncast uuid column in COALESCE:\n%s", employeeColumns)
	}
}
