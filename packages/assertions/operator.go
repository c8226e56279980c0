package assertions

import "strings"

// Operator is a field assertion operator.
type Operator int

const (
	OpEquals Operator = iota + 1
	OpNotEquals
	OpNotEmpty
	OpGreaterOrEqual
	OpGreaterThan
	OpLessOrEqual
	OpLessThan
	OpContains
	OpTrue
	OpFalse
	OpExists
)

type operatorInfo struct {
	name string
	// title formats the test name from the field and the expected value.
	title string
	// expect is the chai chain applied to the extracted value; %s is the expected literal.
	expect string
}

var operators = map[Operator]operatorInfo{
	OpEquals:         {"equals", "%s equals %s", "to.eql(%s)"},
	OpNotEquals:      {"not_equals", "%s not equals %s", "to.not.eql(%s)"},
	OpNotEmpty:       {"not_empty", "%s is not empty", "to.not.be.empty"},
	OpGreaterOrEqual: {"gte", "%s >= %s", "to.be.at.least(%s)"},
	OpGreaterThan:    {"gt", "%s > %s", "to.be.above(%s)"},
	OpLessOrEqual:    {"lte", "%s <= %s", "to.be.at.most(%s)"},
	OpLessThan:       {"lt", "%s < %s", "to.be.below(%s)"},
	OpContains:       {"contains", "%s contains %s", "to.include(%s)"},
	OpTrue:           {"true", "%s is true", "to.be.true"},
	OpFalse:          {"false", "%s is false", "to.be.false"},
	OpExists:         {"exists", "%s exists", "to.not.be.undefined"},
}

var operatorAliases = map[string]Operator{
	"equals": OpEquals, "equal": OpEquals, "eq": OpEquals, "==": OpEquals,
	"not_equals": OpNotEquals, "notequals": OpNotEquals, "!=": OpNotEquals, "ne": OpNotEquals,
	"not_empty": OpNotEmpty, "notempty": OpNotEmpty,
	"gte": OpGreaterOrEqual, "greaterthanorequal": OpGreaterOrEqual, "greater_than_or_equal": OpGreaterOrEqual,
	"gt": OpGreaterThan, "greaterthan": OpGreaterThan, "greater_than": OpGreaterThan,
	"lte": OpLessOrEqual, "lessthanorequal": OpLessOrEqual, "less_than_or_equal": OpLessOrEqual,
	"lt": OpLessThan, "lessthan": OpLessThan, "less_than": OpLessThan,
	"contains": OpContains, "includes": OpContains,
	"true": OpTrue, "is_true": OpTrue, "istrue": OpTrue,
	"false": OpFalse, "is_false": OpFalse, "isfalse": OpFalse,
	"exists": OpExists,
}

// ParseOperator resolves an operator name or alias.
func ParseOperator(name string) (Operator, bool) {
	op, ok := operatorAliases[strings.ToLower(strings.TrimSpace(name))]
	return op, ok
}

func (op Operator) String() string {
	if info, ok := operators[op]; ok {
		return info.name
	}
	return "unknown"
}

// takesValue reports whether the expected value appears in the test name and chain.
func (op Operator) takesValue() bool {
	switch op {
	case OpNotEmpty, OpTrue, OpFalse, OpExists:
		return false
	}
	return true
}
