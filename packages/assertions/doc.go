// Package assertions compiles response assertions declared in a sheet into
// ordered test statements.
//
// An assertion cell is a JSON object mapping a response field path to an object
// of operator/expected-value pairs:
//
//	{"data.id": {"exists": true}, "status": {"eq": "ok", "ne": "error"}}
//
// Supported operators (aliases are case-insensitive):
//   - equals, equal, eq, ==
//   - not_equals, notequals, !=, ne
//   - not_empty, notempty
//   - gte, gt, lte, lt (and their long spellings)
//   - contains, includes
//   - true, is_true, false, is_false
//   - exists
//
// Unknown operators are ignored. Statements render to collection test scripts and
// can also be evaluated directly against a response.
package assertions
