// Package executor runs a compiled collection and returns one execution record
// per request, in execution order.
//
// Two runners are provided: Newman drives the external newman CLI and parses its
// JSON report; Native sends the requests in-process and evaluates the compiled
// statements directly, writing a report in the same shape.
package executor

import (
	"context"
	"errors"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
)

// ErrNoReport is returned when the runner finished without producing its report.
var ErrNoReport = errors.New("runner report not found")

// DefaultReportName is the report file written next to the collection.
const DefaultReportName = "newman_results.json"

// Job describes one collection run.
type Job struct {
	Collection     *collection.Collection
	CollectionPath string
	ReportPath     string
}

// Assertion is the outcome of one test statement.
type Assertion struct {
	Name   string `json:"assertion"`
	Failed bool   `json:"failed"`
	Error  string `json:"error,omitempty"`
}

// Execution is the runner's record of one request.
type Execution struct {
	ItemID       string        `json:"itemId,omitempty"`
	Name         string        `json:"name"`
	Method       string        `json:"method"`
	URL          string        `json:"url"`
	Code         *int          `json:"code,omitempty"`
	ResponseTime time.Duration `json:"responseTime"`
	Assertions   []Assertion   `json:"assertions"`
	RequestError string        `json:"requestError,omitempty"`
}

// Failed reports whether any assertion of the execution failed.
func (e Execution) Failed() bool {
	for _, a := range e.Assertions {
		if a.Failed {
			return true
		}
	}
	return false
}

// Executor runs a collection to completion.
type Executor interface {
	Execute(ctx context.Context, job Job) ([]Execution, error)
}
