// Package workbook reads test sheets from an xlsx workbook and writes results
// into a copy of it. The source file is never written.
package workbook

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const (
	// FillPassed and FillFailed are the verdict cell fills.
	FillPassed = "C6EFCE"
	FillFailed = "FFC7CE"

	patternType  = "pattern"
	patternSolid = 1
)

// Sheet is one worksheet as read from the workbook.
type Sheet struct {
	Name    string
	Visible bool
	// Rows holds raw cell text; rows[0] is the header row.
	Rows [][]string
}

// Header returns the first row, or nil for an empty sheet.
func (s Sheet) Header() []string {
	if len(s.Rows) == 0 {
		return nil
	}
	return s.Rows[0]
}

type Workbook struct {
	file   *excelize.File
	path   string
	styles map[string]int
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path, styles: make(map[string]int)}, nil
}

// New wraps an in-memory workbook.
func New(f *excelize.File, path string) *Workbook {
	return &Workbook{file: f, path: path, styles: make(map[string]int)}
}

func (w *Workbook) Path() string {
	return w.path
}

func (w *Workbook) Close() error {
	return w.file.Close()
}

// Sheets reads every worksheet in workbook order.
func (w *Workbook) Sheets() ([]Sheet, error) {
	var out []Sheet
	for _, name := range w.file.GetSheetList() {
		visible, err := w.file.GetSheetVisible(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read visibility of sheet %q: %w", name, err)
		}
		rows, err := w.file.GetRows(name, excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, fmt.Errorf("failed to read sheet %q: %w", name, err)
		}
		out = append(out, Sheet{Name: name, Visible: visible, Rows: rows})
	}
	return out, nil
}

// Worksheet returns a writable view of the named sheet.
func (w *Workbook) Worksheet(name string) *Worksheet {
	return &Worksheet{wb: w, name: name}
}

// SaveAs writes the workbook to path, which must differ from the source.
func (w *Workbook) SaveAs(path string) error {
	if filepath.Clean(path) == filepath.Clean(w.path) {
		return fmt.Errorf("refusing to overwrite source workbook %s", w.path)
	}
	if err := w.file.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", path, err)
	}
	return nil
}

// ResultsPath returns the results copy path for a workbook: the same name with
// a _results suffix before the extension.
func ResultsPath(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + "_results" + ext
}

func (w *Workbook) fillStyle(color string) (int, error) {
	if id, ok := w.styles[color]; ok {
		return id, nil
	}
	id, err := w.file.NewStyle(&excelize.Style{
		Fill: excelize.Fill{
			Type:    patternType,
			Pattern: patternSolid,
			Color:   []string{color},
		},
	})
	if err != nil {
		return 0, err
	}
	w.styles[color] = id
	return id, nil
}
