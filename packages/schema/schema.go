// Package schema resolves arbitrary spreadsheet headers onto the logical fields of a test case.
//
// Headers are matched against a declarative synonym table. Matching is case-insensitive,
// whitespace-trimmed, and the first synonym that appears in the header row wins.
package schema

import (
	"strings"
)

// Field is a logical test-case field.
type Field string

const (
	FieldName           Field = "name"
	FieldCaseName       Field = "case_name"
	FieldMethod         Field = "method"
	FieldURL            Field = "url"
	FieldBaseURL        Field = "base_url"
	FieldPath           Field = "path"
	FieldHeaders        Field = "headers"
	FieldPayload        Field = "payload"
	FieldExpectedStatus Field = "expected_status"
	FieldPathParams     Field = "path_params"
	FieldQueryParams    Field = "query_params"
	FieldFolder         Field = "folder"
	FieldAuth           Field = "auth"
	FieldAssertions     Field = "assertions"
	FieldID             Field = "id"
)

// Fields lists every logical field in resolution order.
var Fields = []Field{
	FieldName, FieldCaseName, FieldMethod, FieldURL, FieldBaseURL, FieldPath,
	FieldHeaders, FieldPayload, FieldExpectedStatus, FieldPathParams,
	FieldQueryParams, FieldFolder, FieldAuth, FieldAssertions, FieldID,
}

// Synonyms maps each logical field to its ordered list of accepted header spellings.
// New spellings are data: add them here.
var Synonyms = map[Field][]string{
	FieldName:           {"name", "testname", "case", "title", "apiname", "api name", "testcasename"},
	FieldCaseName:       {"testcasename"},
	FieldMethod:         {"method", "httpmethod", "verb", "http method"},
	FieldURL:            {"url", "fullurl", "requesturl"},
	FieldBaseURL:        {"baseurl", "base_url", "host"},
	FieldPath:           {"path", "endpoint", "route", "uri"},
	FieldHeaders:        {"headers", "requestheaders"},
	FieldPayload:        {"payload", "body", "requestbody", "data"},
	FieldExpectedStatus: {"expectedstatus", "expected_status", "status", "expected", "expectedcode", "code"},
	FieldPathParams:     {"pathparams", "path_parameters", "path_param", "routeparams"},
	FieldQueryParams:    {"queryparams", "query_parameters", "query", "params"},
	FieldFolder:         {"folder", "group", "suite", "collection", "module"},
	FieldAuth:           {"auth", "authorization", "token"},
	FieldAssertions:     {"expectedresponseassertions", "responseassertions", "assertions", "expected_response_assertions"},
	FieldID:             {"id", "testcaseid", "testcase_id", "test_id", "tcid"},
}

// Normalize lowercases and trims a header or cell, collapsing inner whitespace runs.
func Normalize(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// HeaderMap maps a normalized header text to its zero-based column index.
// When two columns normalize to the same text, the last one wins.
type HeaderMap map[string]int

// BuildHeaderMap indexes a header row. Blank headers are ignored.
func BuildHeaderMap(header []string) HeaderMap {
	m := make(HeaderMap, len(header))
	for i, h := range header {
		if n := Normalize(h); n != "" {
			m[n] = i
		}
	}
	return m
}

// Lookup returns the column of the first synonym of f present in the map.
func (m HeaderMap) Lookup(f Field) (int, bool) {
	syns, ok := Synonyms[f]
	if !ok {
		syns = []string{string(f)}
	}
	for _, syn := range syns {
		if idx, ok := m[Normalize(syn)]; ok {
			return idx, true
		}
	}
	return -1, false
}

// Columns holds the resolved column index of every logical field for one sheet.
type Columns struct {
	index map[Field]int
}

// Resolve resolves every known field against a header row. ok is false when the
// header row carries no usable headers, in which case the sheet must be skipped.
func Resolve(header []string) (cols Columns, ok bool) {
	m := BuildHeaderMap(header)
	if len(m) == 0 {
		return Columns{}, false
	}
	cols.index = make(map[Field]int, len(Fields))
	for _, f := range Fields {
		if idx, found := m.Lookup(f); found {
			cols.index[f] = idx
		}
	}
	return cols, true
}

// Index returns the zero-based column of f.
func (c Columns) Index(f Field) (int, bool) {
	idx, ok := c.index[f]
	return idx, ok
}

// Has reports whether f resolved to a column.
func (c Columns) Has(f Field) bool {
	_, ok := c.index[f]
	return ok
}

// Cell returns the trimmed value of f in row, or "" when the field is unresolved
// or the row is shorter than the column.
func (c Columns) Cell(row []string, f Field) string {
	idx, ok := c.index[f]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// Resolved returns the resolved fields in resolution order.
func (c Columns) Resolved() []Field {
	var out []Field
	for _, f := range Fields {
		if c.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

// FirstIndex returns the column of the first synonym of f present in header,
// taking the leftmost column when a header text repeats.
func FirstIndex(header []string, f Field) (int, bool) {
	syns, ok := Synonyms[f]
	if !ok {
		syns = []string{string(f)}
	}
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = Normalize(h)
	}
	for _, syn := range syns {
		target := Normalize(syn)
		for i, h := range normalized {
			if h == target {
				return i, true
			}
		}
	}
	return -1, false
}
