// Package runner drives one hitsheet run: fetch a token, compile the workbook,
// write the collection, execute it, reconcile the results into a copy of the
// workbook and notify.
//
// Each stage failure is returned as a *StageError so callers can tell
// configuration problems from runner problems.
package runner
