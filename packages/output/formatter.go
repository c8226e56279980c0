package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
)

// Formatter interface for all output formatters
type Formatter interface {
	FormatResult(result *runner.Result)
	FormatError(err error)
	FormatHeader(version string)
}

// Flushable is implemented by formatters that write once all results are in.
type Flushable interface {
	Flush(totalDuration time.Duration) error
}

// Formats lists the accepted --output values.
var Formats = []string{"console", "json", "junit", "xlsx"}

// New returns the formatter for format. The xlsx format needs path.
func New(format string, w io.Writer, path string, verbose, noColor bool) (Formatter, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "console":
		return NewConsoleFormatter(WithWriter(w), WithVerbose(verbose), WithNoColor(noColor)), nil
	case "json":
		return NewJSONFormatter(JSONWithWriter(w)), nil
	case "junit":
		return NewJUnitFormatter(JUnitWithWriter(w)), nil
	case "xlsx":
		if path == "" {
			return nil, fmt.Errorf("xlsx output needs --output-file")
		}
		return NewXLSXFormatter(path), nil
	default:
		return nil, fmt.Errorf("unknown output format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}
