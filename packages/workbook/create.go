package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Create writes sheets to a new workbook at path. Hidden sheets are written
// hidden; at least one sheet must be visible.
func Create(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.Name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return err
		}
		for r, row := range sheet.Rows {
			cells := make([]any, len(row))
			for c, v := range row {
				cells[c] = v
			}
			ref, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetSheetRow(sheet.Name, ref, &cells); err != nil {
				return err
			}
		}
	}
	for _, sheet := range sheets {
		if !sheet.Visible {
			if err := f.SetSheetVisible(sheet.Name, false); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
