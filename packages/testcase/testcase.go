// Package testcase turns sheet rows into test case records, applying fill-down
// for the sticky fields and resolving each row's request URL.
package testcase

import (
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
)

const (
	// DefaultMethod is used until a row names a method.
	DefaultMethod = "GET"
	// DefaultName is used until a row names the test case.
	DefaultName = "Unnamed"
)

// Carry holds the last non-blank value of every sticky field within one sheet.
// It is a value type: Step never mutates its input.
type Carry struct {
	Name    string
	Method  string
	URL     string
	BaseURL string
	Path    string
	Folder  string
}

// NewCarry returns the initial state for a sheet.
func NewCarry(sheet string) Carry {
	return Carry{Folder: sheet}
}

// Record is one test case read from a sheet row.
type Record struct {
	Sheet  string
	Row    int // 1-based sheet row number
	Name   string
	Method string
	URL    string
	Folder string

	Headers        string
	Payload        string
	ExpectedStatus string
	PathParams     string
	QueryParams    string
	Assertions     string
	ID             string
}

// Normalizer reads the rows of one sheet.
type Normalizer struct {
	sheet    string
	cols     schema.Columns
	override string
}

// NewNormalizer returns a Normalizer for a sheet whose header resolved to cols.
// A non-empty override replaces the host part of every row that has a path.
func NewNormalizer(sheet string, cols schema.Columns, override string) *Normalizer {
	return &Normalizer{sheet: sheet, cols: cols, override: strings.TrimSpace(override)}
}

// Step reads one row. It returns the next carry state and the record, or a nil
// record when the row is blank or resolves to no URL. Blank rows leave the
// state untouched.
func (n *Normalizer) Step(prev Carry, rowNum int, cells []string) (Carry, *Record) {
	if isBlank(cells) {
		return prev, nil
	}

	next := prev
	cell := func(f schema.Field) string { return n.cols.Cell(cells, f) }

	name := cell(schema.FieldName)
	if name == "" {
		name = cell(schema.FieldCaseName)
	}
	if name == "" {
		name = prev.Name
	}
	if name == "" {
		name = DefaultName
	}
	next.Name = name

	if v := cell(schema.FieldMethod); v != "" {
		next.Method = v
	}
	method := next.Method
	if method == "" {
		method = DefaultMethod
	}
	method = strings.ToUpper(method)

	if v := cell(schema.FieldURL); v != "" {
		next.URL = v
	}
	if v := cell(schema.FieldBaseURL); v != "" {
		next.BaseURL = v
	}
	if v := cell(schema.FieldPath); v != "" {
		next.Path = v
	}
	if v := cell(schema.FieldFolder); v != "" {
		next.Folder = v
	}
	folder := next.Folder
	if folder == "" {
		folder = n.sheet
	}

	url := n.resolveURL(next)
	if url == "" {
		return next, nil
	}

	return next, &Record{
		Sheet:          n.sheet,
		Row:            rowNum,
		Name:           name,
		Method:         method,
		URL:            url,
		Folder:         folder,
		Headers:        cell(schema.FieldHeaders),
		Payload:        rawCell(cells, n.cols, schema.FieldPayload),
		ExpectedStatus: cell(schema.FieldExpectedStatus),
		PathParams:     cell(schema.FieldPathParams),
		QueryParams:    cell(schema.FieldQueryParams),
		Assertions:     cell(schema.FieldAssertions),
		ID:             cell(schema.FieldID),
	}
}

// resolveURL applies the URL precedence: override with path, full URL cell,
// base URL with path, then a path that is itself a URL.
func (n *Normalizer) resolveURL(c Carry) string {
	switch {
	case n.override != "" && c.Path != "":
		return JoinURL(n.override, c.Path)
	case c.URL != "":
		return c.URL
	case c.BaseURL != "" && c.Path != "":
		return JoinURL(c.BaseURL, c.Path)
	case strings.HasPrefix(strings.ToLower(c.Path), "http"):
		return c.Path
	}
	return ""
}

// JoinURL joins a base URL and a path with exactly one slash.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

// Records reads every data row of a sheet. rows[0] is the header row.
func (n *Normalizer) Records(rows [][]string) []*Record {
	var out []*Record
	state := NewCarry(n.sheet)
	for i := 1; i < len(rows); i++ {
		var rec *Record
		state, rec = n.Step(state, i+1, rows[i])
		if rec != nil {
			out = append(out, rec)
		}
	}
	return out
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// rawCell returns an untrimmed cell so opaque payloads reach the request as written.
func rawCell(cells []string, cols schema.Columns, f schema.Field) string {
	idx, ok := cols.Index(f)
	if !ok || idx >= len(cells) {
		return ""
	}
	return cells[idx]
}
