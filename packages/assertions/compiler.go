package assertions

import (
	"fmt"
	"strings"

	"github.com/tidwall/gjson"
)

// Kind identifies what a statement checks.
type Kind int

const (
	KindValidJSON Kind = iota
	KindStatus
	KindField
)

// ValidJSONName is the name of the response validity statement.
const ValidJSONName = "Response is valid JSON"

// Check is one operator/expected-value pair declared for a field.
type Check struct {
	Operator string
	Expected gjson.Result
}

// FieldSpec lists the checks declared for one response field path.
type FieldSpec struct {
	Path   string
	Checks []Check
}

// Spec is a parsed assertion cell, in declaration order.
type Spec []FieldSpec

// ParseSpec parses an assertion cell. Invalid JSON, non-object input and fields
// whose value is not an object are ignored. A repeated key keeps its first
// position and its last value, for fields and operators alike.
func ParseSpec(text string) Spec {
	s := strings.TrimSpace(text)
	if s == "" || !gjson.Valid(s) {
		return nil
	}
	root := gjson.Parse(s)
	if !root.IsObject() {
		return nil
	}

	var spec Spec
	fields, conditions := objectEntries(root)
	for _, field := range fields {
		cond := conditions[field]
		if !cond.IsObject() {
			continue
		}
		fs := FieldSpec{Path: field}
		ops, expected := objectEntries(cond)
		for _, op := range ops {
			fs.Checks = append(fs.Checks, Check{Operator: op, Expected: expected[op]})
		}
		spec = append(spec, fs)
	}
	return spec
}

func objectEntries(obj gjson.Result) ([]string, map[string]gjson.Result) {
	var keys []string
	values := make(map[string]gjson.Result)
	obj.ForEach(func(key, value gjson.Result) bool {
		k := key.String()
		if _, seen := values[k]; !seen {
			keys = append(keys, k)
		}
		values[k] = value
		return true
	})
	return keys, values
}

// Statement is one executable test.
type Statement struct {
	Kind     Kind
	Name     string
	Field    string
	Operator Operator
	// Expected holds the decoded expected value; ExpectedJSON its JSON literal.
	Expected     any
	ExpectedJSON string
	Status       int
}

// Compile produces the statements for one request: the validity check, the
// status check when expectedStatus is non-nil, then one statement per known
// operator in declaration order.
func Compile(expectedStatus *int, spec Spec) []Statement {
	stmts := []Statement{{Kind: KindValidJSON, Name: ValidJSONName}}

	if expectedStatus != nil {
		stmts = append(stmts, Statement{
			Kind:   KindStatus,
			Name:   fmt.Sprintf("Status code is %d", *expectedStatus),
			Status: *expectedStatus,
		})
	}

	for _, field := range spec {
		for _, check := range field.Checks {
			op, ok := ParseOperator(check.Operator)
			if !ok {
				continue
			}
			stmts = append(stmts, fieldStatement(field.Path, op, check.Expected))
		}
	}
	return stmts
}

func fieldStatement(path string, op Operator, expected gjson.Result) Statement {
	literal := expected.Raw
	if literal == "" {
		literal = "null"
	}
	info := operators[op]
	var name string
	if op.takesValue() {
		name = fmt.Sprintf(info.title, path, displayValue(expected))
	} else {
		name = fmt.Sprintf(info.title, path)
	}
	return Statement{
		Kind:         KindField,
		Name:         name,
		Field:        path,
		Operator:     op,
		Expected:     expected.Value(),
		ExpectedJSON: literal,
	}
}

func displayValue(v gjson.Result) string {
	if v.Type == gjson.String {
		return v.String()
	}
	return v.Raw
}
