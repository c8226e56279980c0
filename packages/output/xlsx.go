package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/abdul-hamid-achik/hitsheet/packages/core/runner"
	"github.com/abdul-hamid-achik/hitsheet/packages/reconcile"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

const (
	xlsxResultsSheet = "Results"
	xlsxSummarySheet = "Summary"
	xlsxColumnWidth  = 16
)

var xlsxHeaders = []string{
	"Collection", "Sheet", "Row", "Name", "Method", "URL",
	"ActualStatus", "Status", "Time (ms)", "Failure ID", "Errors",
}

// XLSXFormatter collects results into a standalone report workbook written on Flush.
type XLSXFormatter struct {
	path    string
	results []*runner.Result
	errors  []string
}

func NewXLSXFormatter(path string) *XLSXFormatter {
	return &XLSXFormatter{path: path}
}

func (f *XLSXFormatter) FormatResult(result *runner.Result) {
	f.results = append(f.results, result)
}

func (f *XLSXFormatter) FormatError(err error) {
	f.errors = append(f.errors, err.Error())
}

func (f *XLSXFormatter) FormatHeader(version string) {}

// Flush writes the report workbook.
func (f *XLSXFormatter) Flush(totalDuration time.Duration) error {
	x := excelize.NewFile()
	defer x.Close()

	if err := x.SetSheetName("Sheet1", xlsxResultsSheet); err != nil {
		return err
	}
	if err := x.SetColWidth(xlsxResultsSheet, "A", "K", xlsxColumnWidth); err != nil {
		return err
	}
	for i, h := range xlsxHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := x.SetCellValue(xlsxResultsSheet, cell, h); err != nil {
			return err
		}
	}

	passedStyle, err := fillStyle(x, workbook.FillPassed)
	if err != nil {
		return err
	}
	failedStyle, err := fillStyle(x, workbook.FillFailed)
	if err != nil {
		return err
	}

	row := 2
	var passed, failed, unreconciled int
	for _, res := range f.results {
		if res.Report == nil {
			continue
		}
		for _, r := range res.Report.Rows {
			if err := writeRow(x, row, res.CollectionName, r); err != nil {
				return err
			}
			style := passedStyle
			if r.Verdict == reconcile.Failed {
				style = failedStyle
				failed++
			} else {
				passed++
			}
			cell, _ := excelize.CoordinatesToCellName(8, row)
			if err := x.SetCellStyle(xlsxResultsSheet, cell, cell, style); err != nil {
				return err
			}
			row++
		}
		unreconciled += len(res.Report.Unreconciled)
	}

	if _, err := x.NewSheet(xlsxSummarySheet); err != nil {
		return err
	}
	summary := [][]any{
		{"Total", passed + failed + unreconciled},
		{"Passed", passed},
		{"Failed", failed},
		{"Unreconciled", unreconciled},
		{"Duration (ms)", totalDuration.Milliseconds()},
		{"Generated", time.Now().Format(time.RFC3339)},
	}
	for _, e := range f.errors {
		summary = append(summary, []any{"Error", e})
	}
	for i, line := range summary {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := x.SetSheetRow(xlsxSummarySheet, cell, &line); err != nil {
			return err
		}
	}

	if err := x.SaveAs(f.path); err != nil {
		return fmt.Errorf("failed to save report %s: %w", f.path, err)
	}
	return nil
}

func writeRow(x *excelize.File, row int, collectionName string, r reconcile.RowResult) error {
	var status any
	if r.ActualStatus != nil {
		status = *r.ActualStatus
	}
	var errs []string
	if r.Execution.RequestError != "" {
		errs = append(errs, r.Execution.RequestError)
	}
	for _, a := range r.Execution.Assertions {
		if a.Failed {
			errs = append(errs, a.Name)
		}
	}

	values := []any{
		collectionName, r.Sheet, r.Row, r.Name, r.Execution.Method, r.Execution.URL,
		status, string(r.Verdict), r.Execution.ResponseTime.Milliseconds(), r.FailureID,
		strings.Join(errs, "\n"),
	}
	cell, _ := excelize.CoordinatesToCellName(1, row)
	return x.SetSheetRow(xlsxResultsSheet, cell, &values)
}

func fillStyle(x *excelize.File, color string) (int, error) {
	return x.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{color}},
	})
}
