package assertions

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/http"
	"github.com/tidwall/gjson"
)

type Result struct {
	Name     string
	Passed   bool
	Message  string
	Expected any
	Actual   any
}

// Evaluator checks compiled statements against a response without a script runtime.
type Evaluator struct {
	response *http.Response
	bodyJSON gjson.Result
	isJSON   bool
}

func NewEvaluator(resp *http.Response) *Evaluator {
	e := &Evaluator{response: resp}
	if gjson.ValidBytes(resp.Body) {
		e.bodyJSON = gjson.ParseBytes(resp.Body)
		e.isJSON = e.bodyJSON.Type != gjson.Null
	}
	return e
}

func (e *Evaluator) Evaluate(s Statement) *Result {
	result := &Result{Name: s.Name, Expected: s.Expected}

	switch s.Kind {
	case KindValidJSON:
		result.Passed, result.Message = e.notNull()
	case KindStatus:
		result.Expected = s.Status
		result.Actual = e.response.StatusCode
		if e.response.StatusCode == s.Status {
			result.Passed = true
		} else {
			result.Message = fmt.Sprintf("expected response to have status code %d but got %d", s.Status, e.response.StatusCode)
		}
	case KindField:
		if ok, msg := e.notNull(); !ok {
			result.Message = msg
			return result
		}
		actual := e.bodyJSON.Get(lodashPath(s.Field))
		if actual.Exists() {
			result.Actual = actual.Value()
		}
		result.Passed, result.Message = e.compare(actual, s.Operator, s.Expected)
	}
	return result
}

func (e *Evaluator) notNull() (bool, string) {
	if !e.isJSON {
		return false, "Response JSON: expected null not to be null"
	}
	return true, ""
}

var bracketIndex = regexp.MustCompile(`\[(\d+)\]`)
var bracketKey = regexp.MustCompile(`\[['"]([^'"]*)['"]\]`)

// convertBracketNotation converts array bracket notation to gjson dot notation
// e.g., "[0].id" -> "0.id", "items[0].tags[1]" -> "items.0.tags.1"
func convertBracketNotation(path string) string {
	result := bracketIndex.ReplaceAllString(path, ".$1")
	result = bracketKey.ReplaceAllString(result, ".$1")
	return strings.TrimPrefix(result, ".")
}

var gjsonSpecial = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `#`, `\#`, `@`, `\@`, `|`, `\|`, `!`, `\!`)

// lodashPath maps a lodash-style property path onto a gjson path, escaping
// characters gjson would otherwise treat as syntax.
func lodashPath(path string) string {
	parts := strings.Split(convertBracketNotation(path), ".")
	for i, p := range parts {
		parts[i] = gjsonSpecial.Replace(p)
	}
	return strings.Join(parts, ".")
}

func (e *Evaluator) compare(actual gjson.Result, op Operator, expected any) (bool, string) {
	switch op {
	case OpEquals:
		return e.equals(actual, expected)
	case OpNotEquals:
		if passed, _ := e.equals(actual, expected); passed {
			return false, fmt.Sprintf("expected %s to not deeply equal %s", literal(actual), jsLiteral(expected))
		}
		return true, ""
	case OpNotEmpty:
		return e.notEmpty(actual)
	case OpGreaterOrEqual:
		return e.compareNumeric(actual, expected, ">=")
	case OpGreaterThan:
		return e.compareNumeric(actual, expected, ">")
	case OpLessOrEqual:
		return e.compareNumeric(actual, expected, "<=")
	case OpLessThan:
		return e.compareNumeric(actual, expected, "<")
	case OpContains:
		return e.includes(actual, expected)
	case OpTrue:
		return e.isBool(actual, true)
	case OpFalse:
		return e.isBool(actual, false)
	case OpExists:
		if actual.Exists() {
			return true, ""
		}
		return false, "expected undefined not to be undefined"
	default:
		return false, fmt.Sprintf("unknown operator: %v", op)
	}
}

func (e *Evaluator) equals(actual gjson.Result, expected any) (bool, string) {
	if actual.Exists() && reflect.DeepEqual(actual.Value(), expected) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s to deeply equal %s", literal(actual), jsLiteral(expected))
}

func (e *Evaluator) notEmpty(actual gjson.Result) (bool, string) {
	switch {
	case actual.Type == gjson.String:
		if actual.String() != "" {
			return true, ""
		}
	case actual.IsArray():
		if len(actual.Array()) > 0 {
			return true, ""
		}
	case actual.IsObject():
		if len(actual.Map()) > 0 {
			return true, ""
		}
	default:
		return false, fmt.Sprintf(".empty was passed non-string primitive %s", literal(actual))
	}
	return false, fmt.Sprintf("expected %s not to be empty", literal(actual))
}

func (e *Evaluator) compareNumeric(actual gjson.Result, expected any, op string) (bool, string) {
	if actual.Type != gjson.Number {
		return false, fmt.Sprintf("expected %s to be a number", literal(actual))
	}
	expectedNum, ok := toFloat64(expected)
	if !ok {
		return false, fmt.Sprintf("the argument to %s must be a number", op)
	}
	actualNum := actual.Float()

	var passed bool
	switch op {
	case ">":
		passed = actualNum > expectedNum
	case ">=":
		passed = actualNum >= expectedNum
	case "<":
		passed = actualNum < expectedNum
	case "<=":
		passed = actualNum <= expectedNum
	}
	if passed {
		return true, ""
	}
	return false, fmt.Sprintf("expected %v %s %v", actualNum, op, expectedNum)
}

func (e *Evaluator) includes(actual gjson.Result, expected any) (bool, string) {
	switch {
	case actual.Type == gjson.String:
		if strings.Contains(actual.String(), displayAny(expected)) {
			return true, ""
		}
	case actual.IsArray():
		for _, item := range actual.Array() {
			if sameValue(item.Value(), expected) {
				return true, ""
			}
		}
	case actual.IsObject():
		want, ok := expected.(map[string]any)
		if !ok {
			break
		}
		got := actual.Value().(map[string]any)
		matched := true
		for k, v := range want {
			if gv, exists := got[k]; !exists || !sameValue(gv, v) {
				matched = false
				break
			}
		}
		if matched {
			return true, ""
		}
	default:
		return false, fmt.Sprintf("object tested must be an array, a map, an object, a set, a string, or a weakset, but %s given", actual.Type)
	}
	return false, fmt.Sprintf("expected %s to include %s", literal(actual), jsLiteral(expected))
}

func (e *Evaluator) isBool(actual gjson.Result, want bool) (bool, string) {
	if (want && actual.Type == gjson.True) || (!want && actual.Type == gjson.False) {
		return true, ""
	}
	return false, fmt.Sprintf("expected %s to be %t", literal(actual), want)
}

// sameValue is strict equality: primitives compare by value, containers never match.
func sameValue(a, b any) bool {
	switch a.(type) {
	case map[string]any, []any:
		return false
	}
	return reflect.DeepEqual(a, b)
}

func literal(v gjson.Result) string {
	if !v.Exists() {
		return "undefined"
	}
	return v.Raw
}

func jsLiteral(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

func displayAny(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return jsLiteral(v)
}

func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// EvaluateAll evaluates statements in order.
func EvaluateAll(resp *http.Response, stmts []Statement) []*Result {
	evaluator := NewEvaluator(resp)
	results := make([]*Result, len(stmts))
	for i, s := range stmts {
		results[i] = evaluator.Evaluate(s)
	}
	return results
}
