package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Worksheet edits one sheet. Columns are zero-based, rows are 1-based sheet rows.
type Worksheet struct {
	wb   *Workbook
	name string
}

func (s *Worksheet) Name() string {
	return s.name
}

// Header returns the current header row.
func (s *Worksheet) Header() ([]string, error) {
	rows, err := s.rows()
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// MaxColumn returns the number of columns in use across all rows.
func (s *Worksheet) MaxColumn() (int, error) {
	rows, err := s.rows()
	if err != nil {
		return 0, err
	}
	max := 0
	for _, r := range rows {
		if len(r) > max {
			max = len(r)
		}
	}
	return max, nil
}

// InsertColumns inserts n empty columns before column at, shifting the rest right.
func (s *Worksheet) InsertColumns(at, n int) error {
	col, err := excelize.ColumnNumberToName(at + 1)
	if err != nil {
		return err
	}
	if err := s.wb.file.InsertCols(s.name, col, n); err != nil {
		return fmt.Errorf("failed to insert columns in %q: %w", s.name, err)
	}
	return nil
}

// Cell returns the text of a cell.
func (s *Worksheet) Cell(row, col int) (string, error) {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return "", err
	}
	return s.wb.file.GetCellValue(s.name, ref, excelize.Options{RawCellValue: true})
}

// SetCell writes a value into a cell. A nil value clears it.
func (s *Worksheet) SetCell(row, col int, value any) error {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	return s.wb.file.SetCellValue(s.name, ref, value)
}

// SetFill applies a solid background fill to a cell.
func (s *Worksheet) SetFill(row, col int, color string) error {
	ref, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	style, err := s.wb.fillStyle(color)
	if err != nil {
		return fmt.Errorf("failed to create fill style: %w", err)
	}
	return s.wb.file.SetCellStyle(s.name, ref, ref, style)
}

func (s *Worksheet) rows() ([][]string, error) {
	rows, err := s.wb.file.GetRows(s.name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", s.name, err)
	}
	return rows, nil
}
