package output

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
)

// JUnit XML structures

// JUnitTestSuites is the root element
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	Name       string           `xml:"name,attr,omitempty"`
	Tests      int              `xml:"tests,attr"`
	Failures   int              `xml:"failures,attr"`
	Errors     int              `xml:"errors,attr"`
	Skipped    int              `xml:"skipped,attr"`
	Time       float64          `xml:"time,attr"`
	Timestamp  string           `xml:"timestamp,attr,omitempty"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents a test suite (one worksheet)
type JUnitTestSuite struct {
	XMLName   xml.Name        `xml:"testsuite"`
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Skipped   int             `xml:"skipped,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr,omitempty"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a single test case
type JUnitTestCase struct {
	XMLName   xml.Name      `xml:"testcase"`
	Name      string        `xml:"name,attr"`
	ClassName string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	Error     *JUnitError   `xml:"error,omitempty"`
	Skipped   *JUnitSkipped `xml:"skipped,omitempty"`
}

// JUnitFailure represents a test failure
type JUnitFailure struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitError represents a test error
type JUnitError struct {
	Message string `xml:"message,attr,omitempty"`
	Type    string `xml:"type,attr,omitempty"`
	Content string `xml:",chardata"`
}

// JUnitSkipped represents a skipped test
type JUnitSkipped struct {
	Message string `xml:"message,attr,omitempty"`
}

// JUnitFormatter formats test results as JUnit XML
type JUnitFormatter struct {
	writer     io.Writer
	testSuites []JUnitTestSuite
}

type JUnitOption func(*JUnitFormatter)

func NewJUnitFormatter(opts ...JUnitOption) *JUnitFormatter {
	f := &JUnitFormatter{
		writer:     os.Stdout,
		testSuites: make([]JUnitTestSuite, 0),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func JUnitWithWriter(w io.Writer) JUnitOption {
	return func(f *JUnitFormatter) {
		f.writer = w
	}
}

func (f *JUnitFormatter) FormatResult(result *runner.Result) {
	if result.Report == nil {
		return
	}
	timestamp := time.Now().Format(time.RFC3339)
	className := result.CollectionName

	index := make(map[string]int)
	suites := make([]JUnitTestSuite, 0)
	suite := func(sheet string) *JUnitTestSuite {
		i, ok := index[sheet]
		if !ok {
			i = len(suites)
			index[sheet] = i
			suites = append(suites, JUnitTestSuite{
				Name:      className + "/" + sheet,
				Timestamp: timestamp,
				TestCases: make([]JUnitTestCase, 0),
			})
		}
		return &suites[i]
	}

	for _, r := range result.Report.Rows {
		s := suite(r.Sheet)
		tc := JUnitTestCase{
			Name:      fmt.Sprintf("%s (row %d)", r.Name, r.Row),
			ClassName: className,
			Time:      r.Execution.ResponseTime.Seconds(),
		}
		s.Tests++
		s.Time += tc.Time

		if r.Execution.RequestError != "" {
			s.Errors++
			tc.Error = &JUnitError{
				Message: r.Execution.RequestError,
				Type:    "RequestError",
			}
		}
		if r.Verdict == reconcile.Failed {
			var failureMsg strings.Builder
			for _, a := range r.Execution.Assertions {
				if a.Failed {
					fmt.Fprintf(&failureMsg, "%s: %s\n", a.Name, a.Error)
				}
			}
			s.Failures++
			tc.Failure = &JUnitFailure{
				Message: "Assertion failed: " + r.FailureID,
				Type:    "AssertionError",
				Content: failureMsg.String(),
			}
		}

		s.TestCases = append(s.TestCases, tc)
	}

	for _, l := range result.Report.Unreconciled {
		s := suite(l.Sheet)
		s.Tests++
		s.Skipped++
		s.TestCases = append(s.TestCases, JUnitTestCase{
			Name:      fmt.Sprintf("%s (row %d)", l.Name, l.Row),
			ClassName: className,
			Skipped:   &JUnitSkipped{Message: "no execution result"},
		})
	}

	f.testSuites = append(f.testSuites, suites...)
}

func (f *JUnitFormatter) FormatError(err error) {
	// Errors are included in individual test cases
}

func (f *JUnitFormatter) FormatHeader(version string) {
	// No header needed for JUnit XML
}

// Flush writes the accumulated JUnit XML output
func (f *JUnitFormatter) Flush(totalDuration time.Duration) error {
	var totalTests, totalFailures, totalErrors, totalSkipped int
	for _, suite := range f.testSuites {
		totalTests += suite.Tests
		totalFailures += suite.Failures
		totalErrors += suite.Errors
		totalSkipped += suite.Skipped
	}

	suites := JUnitTestSuites{
		Name:       "hitsheet",
		Tests:      totalTests,
		Failures:   totalFailures,
		Errors:     totalErrors,
		Skipped:    totalSkipped,
		Time:       totalDuration.Seconds(),
		Timestamp:  time.Now().Format(time.RFC3339),
		TestSuites: f.testSuites,
	}

	fmt.Fprintf(f.writer, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	encoder := xml.NewEncoder(f.writer)
	encoder.Indent("", "  ")
	return encoder.Encode(suites)
}
