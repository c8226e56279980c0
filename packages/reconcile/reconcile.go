// Package reconcile writes runner results back onto the sheet rows that produced
// each request.
//
// Each annotated sheet gets an ActualStatus and a Status column, placed after the
// expected status column (or appended when there is none). Columns are added once:
// reconciling an already annotated copy reuses them.
package reconcile

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/abdul-hamid-achik/hitsheet/packages/collection"
	"github.com/abdul-hamid-achik/hitsheet/packages/executor"
	"github.com/abdul-hamid-achik/hitsheet/packages/logging"
	"github.com/abdul-hamid-achik/hitsheet/packages/schema"
	"github.com/abdul-hamid-achik/hitsheet/packages/workbook"
)

// ErrCountMismatch is returned in strict mode when the number of executions
// differs from the number of linked rows.
var ErrCountMismatch = errors.New("execution count does not match linked rows")

// Verdict is the pass/fail classification of a row.
type Verdict string

const (
	Passed Verdict = "PASSED"
	Failed Verdict = "FAILED"
)

// Sheet is a worksheet the reconciler can annotate. Columns are zero-based and
// rows are 1-based sheet rows.
type Sheet interface {
	Name() string
	Header() ([]string, error)
	MaxColumn() (int, error)
	InsertColumns(at, n int) error
	Cell(row, col int) (string, error)
	SetCell(row, col int, value any) error
	SetFill(row, col int, color string) error
}

// Strategy names how executions were matched to rows.
type Strategy string

const (
	ByID       Strategy = "id"
	ByPosition Strategy = "position"
)

// RowResult is the outcome written to one row.
type RowResult struct {
	Sheet        string
	Row          int
	Name         string
	ActualStatus *int
	Verdict      Verdict
	// FailureID identifies a failed row: its id cell, else the request name.
	FailureID string
	Execution executor.Execution
}

// Mismatch records a row whose execution reports a different request name.
type Mismatch struct {
	Sheet    string
	Row      int
	Expected string
	Actual   string
}

// Report summarises a reconciliation.
type Report struct {
	Strategy Strategy
	Rows     []RowResult
	// FailedIDs lists failure identifiers in sheet then row order.
	FailedIDs    []string
	Unreconciled []collection.Link
	Mismatches   []Mismatch
	// Extra counts executions that matched no row.
	Extra int
}

func (r *Report) Passed() int {
	n := 0
	for _, row := range r.Rows {
		if row.Verdict == Passed {
			n++
		}
	}
	return n
}

func (r *Report) Failed() int {
	return len(r.Rows) - r.Passed()
}

type Reconciler struct {
	strict bool
	logger *logging.Logger
}

type Option func(*Reconciler)

// WithStrict makes any difference between execution and row counts an error
// raised before anything is written.
func WithStrict(strict bool) Option {
	return func(r *Reconciler) {
		r.strict = strict
	}
}

func WithLogger(l *logging.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}

func New(opts ...Option) *Reconciler {
	r := &Reconciler{}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = logging.OrDefault(r.logger).WithComponent("reconcile")
	return r
}

type pair struct {
	link collection.Link
	exec executor.Execution
}

// Reconcile annotates sheets with the executions. Every sheet gets its result
// columns; rows are then written for each matched link.
func (r *Reconciler) Reconcile(sheets []Sheet, linkage collection.Linkage, execs []executor.Execution) (*Report, error) {
	report := &Report{}
	pairs := r.match(linkage, execs, report)
	if r.strict && (len(report.Unreconciled) > 0 || report.Extra > 0) {
		return nil, fmt.Errorf("%w: %d executions for %d rows", ErrCountMismatch, len(execs), len(linkage))
	}

	order := make(map[string]int, len(sheets))
	for i, s := range sheets {
		order[s.Name()] = i
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		a, b := pairs[i].link, pairs[j].link
		if a.Sheet != b.Sheet {
			return order[a.Sheet] < order[b.Sheet]
		}
		return a.Row < b.Row
	})

	bySheet := make(map[string][]pair)
	for _, p := range pairs {
		if _, ok := order[p.link.Sheet]; !ok {
			report.Unreconciled = append(report.Unreconciled, p.link)
			continue
		}
		bySheet[p.link.Sheet] = append(bySheet[p.link.Sheet], p)
	}

	for _, sheet := range sheets {
		if err := r.annotate(sheet, bySheet[sheet.Name()], report); err != nil {
			return report, err
		}
	}

	r.logger.Info("reconciled results",
		"strategy", report.Strategy,
		"rows", len(report.Rows),
		"failed", report.Failed(),
		"unreconciled", len(report.Unreconciled),
	)
	return report, nil
}

// match pairs links with executions: by item id when every execution carries
// a known id, otherwise by position.
func (r *Reconciler) match(linkage collection.Linkage, execs []executor.Execution, report *Report) []pair {
	var pairs []pair
	byID := linkage.ByID()

	if useIDs(byID, execs) {
		report.Strategy = ByID
		seen := make(map[string]bool, len(execs))
		for _, e := range execs {
			if seen[e.ItemID] {
				report.Extra++
				continue
			}
			seen[e.ItemID] = true
			pairs = append(pairs, pair{link: byID[e.ItemID], exec: e})
		}
		for _, link := range linkage {
			if !seen[link.ID] {
				report.Unreconciled = append(report.Unreconciled, link)
			}
		}
	} else {
		report.Strategy = ByPosition
		for i, link := range linkage {
			if i >= len(execs) {
				report.Unreconciled = append(report.Unreconciled, linkage[i:]...)
				break
			}
			pairs = append(pairs, pair{link: link, exec: execs[i]})
		}
		if len(execs) > len(linkage) {
			report.Extra = len(execs) - len(linkage)
		}
	}

	for _, p := range pairs {
		if p.exec.Name != "" && p.exec.Name != p.link.Name {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Sheet:    p.link.Sheet,
				Row:      p.link.Row,
				Expected: p.link.Name,
				Actual:   p.exec.Name,
			})
			r.logger.Warn("execution name does not match row",
				"sheet", p.link.Sheet, "row", p.link.Row, "expected", p.link.Name, "actual", p.exec.Name)
		}
	}
	if len(report.Unreconciled) > 0 || report.Extra > 0 {
		r.logger.Warn("execution count does not match linked rows",
			"executions", len(execs), "rows", len(linkage), "unreconciled", len(report.Unreconciled))
	}
	return pairs
}

func useIDs(byID map[string]collection.Link, execs []executor.Execution) bool {
	if len(execs) == 0 {
		return false
	}
	for _, e := range execs {
		if _, ok := byID[e.ItemID]; !ok || e.ItemID == "" {
			return false
		}
	}
	return true
}

func (r *Reconciler) annotate(sheet Sheet, pairs []pair, report *Report) error {
	header, err := sheet.Header()
	if err != nil {
		return err
	}
	maxCol, err := sheet.MaxColumn()
	if err != nil {
		return err
	}

	plan := PlanColumns(header, maxCol)
	for _, ins := range plan.Inserts {
		if err := sheet.InsertColumns(ins.At, ins.Count); err != nil {
			return err
		}
	}
	for _, l := range plan.Labels {
		if err := sheet.SetCell(1, l.Col, l.Text); err != nil {
			return err
		}
	}
	if !plan.Empty() {
		r.logger.Debug("added result columns", "sheet", sheet.Name(), "actual", plan.ActualCol, "status", plan.StatusCol)
		if header, err = sheet.Header(); err != nil {
			return err
		}
	}
	idCol, hasID := schema.FirstIndex(header, schema.FieldID)

	for _, p := range pairs {
		res := RowResult{
			Sheet:        p.link.Sheet,
			Row:          p.link.Row,
			Name:         p.link.Name,
			ActualStatus: p.exec.Code,
			Verdict:      Passed,
			Execution:    p.exec,
		}
		if p.exec.Failed() {
			res.Verdict = Failed
		}

		var actual any
		if p.exec.Code != nil {
			actual = *p.exec.Code
		}
		if err := sheet.SetCell(p.link.Row, plan.ActualCol, actual); err != nil {
			return err
		}
		if err := sheet.SetCell(p.link.Row, plan.StatusCol, string(res.Verdict)); err != nil {
			return err
		}
		fill := workbook.FillPassed
		if res.Verdict == Failed {
			fill = workbook.FillFailed
		}
		if err := sheet.SetFill(p.link.Row, plan.StatusCol, fill); err != nil {
			return err
		}

		if res.Verdict == Failed {
			res.FailureID = r.failureID(sheet, p, idCol, hasID)
			if res.FailureID != "" {
				report.FailedIDs = append(report.FailedIDs, res.FailureID)
			}
		}
		report.Rows = append(report.Rows, res)
	}
	return nil
}

func (r *Reconciler) failureID(sheet Sheet, p pair, idCol int, hasID bool) string {
	if hasID {
		v, err := sheet.Cell(p.link.Row, idCol)
		if err != nil {
			r.logger.Debug("failed to read id cell", "sheet", sheet.Name(), "row", p.link.Row, "error", err)
		} else if id := strings.TrimSpace(v); id != "" {
			return id
		}
	}
	if p.exec.Name != "" {
		return p.exec.Name
	}
	return p.link.Name
}
