package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
)

// JSONOutput represents the complete JSON output structure
type JSONOutput struct {
	Summary     JSONSummary      `json:"summary"`
	Collections []JSONCollection `json:"collections"`
	Errors      []string         `json:"errors,omitempty"`
	Duration    float64          `json:"duration"`
	Time        string           `json:"time"`
}

// JSONSummary represents the test summary
type JSONSummary struct {
	Total        int `json:"total"`
	Passed       int `json:"passed"`
	Failed       int `json:"failed"`
	Unreconciled int `json:"unreconciled"`
}

// JSONCollection is one run of a compiled collection.
type JSONCollection struct {
	Name           string          `json:"name"`
	CollectionFile string          `json:"collectionFile,omitempty"`
	ResultsFile    string          `json:"resultsFile,omitempty"`
	Strategy       string          `json:"strategy,omitempty"`
	Tests          []JSONTest      `json:"tests"`
	FailedIDs      []string        `json:"failedIds"`
	Unreconciled   []JSONRow       `json:"unreconciled,omitempty"`
	Mismatches     []JSONMismatch  `json:"mismatches,omitempty"`
	SkippedSheets  []string        `json:"skippedSheets,omitempty"`
	DroppedRows    int             `json:"droppedRows,omitempty"`
	Problems       []string        `json:"problems,omitempty"`
	Latency        *LatencySummary `json:"latency,omitempty"`
	Duration       float64         `json:"duration"`
}

// JSONTest represents a single reconciled row
type JSONTest struct {
	Sheet        string          `json:"sheet"`
	Row          int             `json:"row"`
	Name         string          `json:"name"`
	Passed       bool            `json:"passed"`
	FailureID    string          `json:"failureId,omitempty"`
	Method       string          `json:"method,omitempty"`
	URL          string          `json:"url,omitempty"`
	StatusCode   *int            `json:"statusCode,omitempty"`
	Duration     float64         `json:"duration"`
	RequestError string          `json:"requestError,omitempty"`
	Assertions   []JSONAssertion `json:"assertions,omitempty"`
}

// JSONAssertion represents an assertion result
type JSONAssertion struct {
	Name    string `json:"name"`
	Passed  bool   `json:"passed"`
	Message string `json:"message,omitempty"`
}

// JSONRow is a sheet row without a result.
type JSONRow struct {
	Sheet string `json:"sheet"`
	Row   int    `json:"row"`
	Name  string `json:"name"`
}

// JSONMismatch is a row whose execution reported another name.
type JSONMismatch struct {
	Sheet    string `json:"sheet"`
	Row      int    `json:"row"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

// JSONFormatter formats test results as JSON
type JSONFormatter struct {
	writer      io.Writer
	collections []JSONCollection
	errors      []string
}

type JSONOption func(*JSONFormatter)

func NewJSONFormatter(opts ...JSONOption) *JSONFormatter {
	f := &JSONFormatter{
		writer:      os.Stdout,
		collections: make([]JSONCollection, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JSONWithWriter(w io.Writer) JSONOption {
	return func(f *JSONFormatter) {
		f.writer = w
	}
}

func (f *JSONFormatter) FormatResult(result *runner.Result) {
	c := JSONCollection{
		Name:           result.CollectionName,
		CollectionFile: result.CollectionPath,
		ResultsFile:    result.ResultsPath,
		Tests:          make([]JSONTest, 0),
		FailedIDs:      make([]string, 0),
		Problems:       result.Problems,
		Latency:        Latency(result.Executions),
		Duration:       float64(result.Duration.Milliseconds()),
	}
	if gen := result.Generation; gen != nil && gen.Result != nil {
		c.SkippedSheets = gen.Skipped
		c.DroppedRows = gen.Dropped
	}

	if report := result.Report; report != nil {
		c.Strategy = string(report.Strategy)
		c.FailedIDs = append(c.FailedIDs, report.FailedIDs...)
		for _, r := range report.Rows {
			c.Tests = append(c.Tests, jsonTest(r))
		}
		for _, l := range report.Unreconciled {
			c.Unreconciled = append(c.Unreconciled, JSONRow{Sheet: l.Sheet, Row: l.Row, Name: l.Name})
		}
		for _, m := range report.Mismatches {
			c.Mismatches = append(c.Mismatches, JSONMismatch(m))
		}
	}

	f.collections = append(f.collections, c)
}

func jsonTest(r reconcile.RowResult) JSONTest {
	t := JSONTest{
		Sheet:        r.Sheet,
		Row:          r.Row,
		Name:         r.Name,
		Passed:       r.Verdict == reconcile.Passed,
		FailureID:    r.FailureID,
		Method:       r.Execution.Method,
		URL:          r.Execution.URL,
		StatusCode:   r.ActualStatus,
		Duration:     float64(r.Execution.ResponseTime.Milliseconds()),
		RequestError: r.Execution.RequestError,
	}
	for _, a := range r.Execution.Assertions {
		t.Assertions = append(t.Assertions, JSONAssertion{
			Name:    a.Name,
			Passed:  !a.Failed,
			Message: a.Error,
		})
	}
	return t
}

func (f *JSONFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *JSONFormatter) FormatHeader(version string) {
	// No header needed for JSON output
}

// Flush writes the accumulated JSON output
func (f *JSONFormatter) Flush(totalDuration time.Duration) error {
	var summary JSONSummary
	for _, c := range f.collections {
		for _, t := range c.Tests {
			if t.Passed {
				summary.Passed++
			} else {
				summary.Failed++
			}
		}
		summary.Unreconciled += len(c.Unreconciled)
	}
	summary.Total = summary.Passed + summary.Failed + summary.Unreconciled

	output := JSONOutput{
		Summary:     summary,
		Collections: f.collections,
		Errors:      f.errors,
		Duration:    float64(totalDuration.Milliseconds()),
		Time:        time.Now().Format(time.RFC3339),
	}

	encoder := json.NewEncoder(f.writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}
