package reconcile

import (
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
)

const (
	// ActualStatusHeader labels the column holding the received status code.
	ActualStatusHeader = "ActualStatus"
	// StatusHeader labels the verdict column.
	StatusHeader = "Status"
)

// Insertion inserts Count empty columns before zero-based column At.
type Insertion struct {
	At    int
	Count int
}

// Label writes a header text into a zero-based column.
type Label struct {
	Col  int
	Text string
}

// Plan is the column change needed to give a sheet both result columns.
// Inserts are applied first, then labels, both in order.
type Plan struct {
	Inserts []Insertion
	Labels  []Label
	// ActualCol and StatusCol are the zero-based result columns after the plan is applied.
	ActualCol int
	StatusCol int
}

// Empty reports whether the sheet already has both result columns.
func (p Plan) Empty() bool {
	return len(p.Inserts) == 0 && len(p.Labels) == 0
}

// PlanColumns computes the column changes for a sheet with the given header row
// and column count. Result columns are placed right after the expected status
// column, or appended when there is none. Existing result columns are reused,
// so applying a plan and planning again yields an empty plan.
func PlanColumns(header []string, maxColumn int) Plan {
	actual := findExact(header, ActualStatusHeader, -1)

	// A Status column right after ActualStatus is a verdict column from an
	// earlier run, even though "status" also names the expected status field.
	verdict := -1
	if actual >= 0 && actual+1 < len(header) && strings.TrimSpace(header[actual+1]) == StatusHeader {
		verdict = actual + 1
	}
	masked := header
	if verdict >= 0 {
		masked = append([]string(nil), header...)
		masked[verdict] = ""
	}

	expected, hasExpected := schema.FirstIndex(masked, schema.FieldExpectedStatus)
	status := verdict
	if status < 0 {
		skip := -1
		if hasExpected {
			skip = expected
		}
		status = findExact(header, StatusHeader, skip)
	}

	var p Plan
	switch {
	case hasExpected && actual < 0 && status < 0:
		p.Inserts = append(p.Inserts, Insertion{At: expected + 1, Count: 2})
		actual, status = expected+1, expected+2
		p.Labels = append(p.Labels, Label{actual, ActualStatusHeader}, Label{status, StatusHeader})
	case hasExpected:
		if actual < 0 {
			p.Inserts = append(p.Inserts, Insertion{At: expected + 1, Count: 1})
			actual = expected + 1
			p.Labels = append(p.Labels, Label{actual, ActualStatusHeader})
			if status >= actual {
				status++
			}
		}
		if status < 0 {
			status = actual + 1
			p.Inserts = append(p.Inserts, Insertion{At: status, Count: 1})
			p.Labels = append(p.Labels, Label{status, StatusHeader})
		}
	default:
		next := maxColumn
		if len(header) > next {
			next = len(header)
		}
		if actual < 0 {
			actual = next
			next++
			p.Labels = append(p.Labels, Label{actual, ActualStatusHeader})
		}
		if status < 0 {
			status = next
			p.Labels = append(p.Labels, Label{status, StatusHeader})
		}
	}
	p.ActualCol, p.StatusCol = actual, status
	return p
}

// findExact returns the first column whose trimmed header equals name, ignoring
// column skip.
func findExact(header []string, name string, skip int) int {
	for i, h := range header {
		if i != skip && strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}
