package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
)

// truncate shortens s to maxLen runes.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) > maxLen {
		return string(r[:maxLen]) + "..."
	}
	return s
}

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func statusText(code *int) string {
	if code == nil {
		return "no response"
	}
	return fmt.Sprintf("%d", *code)
}

func (f *ConsoleFormatter) FormatResult(result *runner.Result) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Collection: "+result.CollectionName))

	if gen := result.Generation; gen != nil && gen.Result != nil {
		for _, name := range gen.Skipped {
			fmt.Fprintf(f.writer, "  %s %s %s\n", yellow("-"), name, yellow("(skipped)"))
		}
		if gen.Dropped > 0 {
			fmt.Fprintf(f.writer, "  %s %d row(s) without method or URL dropped\n", yellow("-"), gen.Dropped)
		}
	}

	report := result.Report
	if report == nil {
		report = &reconcile.Report{}
	}

	sheet := ""
	for _, r := range report.Rows {
		if r.Sheet != sheet {
			sheet = r.Sheet
			fmt.Fprintf(f.writer, "\n  %s\n", bold(sheet))
		}

		symbol := green("✓")
		if r.Verdict == reconcile.Failed {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "    %s %s %s\n", symbol, r.Name,
			cyan(fmt.Sprintf("(row %d, %s, %dms)", r.Row, statusText(r.ActualStatus), r.Execution.ResponseTime.Milliseconds())))

		if f.verbose {
			fmt.Fprintf(f.writer, "      %s %s\n", r.Execution.Method, r.Execution.URL)
		}
		if r.Execution.RequestError != "" {
			fmt.Fprintf(f.writer, "      %s %s\n", red("→"), r.Execution.RequestError)
		}
		if r.Verdict == reconcile.Failed {
			f.writeAssertions(r.Execution, red)
		}
	}

	if len(report.Unreconciled) > 0 {
		fmt.Fprintf(f.writer, "\n  %s\n", yellow(fmt.Sprintf("%d row(s) without a result:", len(report.Unreconciled))))
		for _, l := range report.Unreconciled {
			fmt.Fprintf(f.writer, "    %s row %d: %s\n", l.Sheet, l.Row, l.Name)
		}
	}
	if report.Extra > 0 {
		fmt.Fprintf(f.writer, "\n  %s\n", yellow(fmt.Sprintf("%d execution(s) matched no row", report.Extra)))
	}
	for _, m := range report.Mismatches {
		fmt.Fprintf(f.writer, "  %s %s row %d: expected %q, runner reported %q\n",
			yellow("!"), m.Sheet, m.Row, m.Expected, m.Actual)
	}
	for _, p := range result.Problems {
		fmt.Fprintf(f.writer, "  %s %s\n", yellow("!"), p)
	}

	if len(report.FailedIDs) > 0 {
		fmt.Fprintf(f.writer, "\nFailed: %s\n", red(fmt.Sprint(report.FailedIDs)))
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Tests: ")
	if n := report.Passed(); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", n)))
	}
	if n := report.Failed(); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", n)))
	}
	if n := len(report.Unreconciled); n > 0 {
		fmt.Fprintf(f.writer, "%s, ", yellow(fmt.Sprintf("%d unreconciled", n)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(report.Rows)+len(report.Unreconciled))

	if lat := Latency(result.Executions); lat != nil {
		fmt.Fprintf(f.writer, "Latency: min %dms, p50 %dms, p90 %dms, p99 %dms, max %dms\n",
			lat.Min.Milliseconds(), lat.P50.Milliseconds(), lat.P90.Milliseconds(), lat.P99.Milliseconds(), lat.Max.Milliseconds())
	}
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration.Milliseconds())
	if result.CollectionPath != "" {
		fmt.Fprintf(f.writer, "Collection file: %s\n", result.CollectionPath)
	}
	if result.ResultsPath != "" {
		fmt.Fprintf(f.writer, "Results: %s\n", result.ResultsPath)
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) writeAssertions(e executor.Execution, red func(a ...any) string) {
	for _, a := range e.Assertions {
		if !a.Failed {
			continue
		}
		fmt.Fprintf(f.writer, "      %s %s\n", red("→"), a.Name)
		if a.Error != "" {
			fmt.Fprintf(f.writer, "        %s\n", truncate(a.Error, 200))
		}
	}
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("hitsheet"), version)
}
