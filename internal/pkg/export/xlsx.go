// Package export renders tabular data as xlsx workbooks.
package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// Sheet is one worksheet: a header row followed by data rows.
type Sheet struct {
	Name    string
	Headers []string
	Rows    [][]any
}

// WriteXLSX builds a workbook with the given sheets, in order, and returns
// the encoded file.
func WriteXLSX(sheets ...Sheet) ([]byte, error) {
	if len(sheets) == 0 {
		return nil, fmt.Errorf("export: at least one sheet is required")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return nil, fmt.Errorf("export: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return nil, fmt.Errorf("export: create sheet %q: %w", sheet.Name, err)
		}

		if err := writeSheet(f, sheet); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("export: encode workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeSheet(f *excelize.File, sheet Sheet) error {
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("export: header style: %w", err)
	}

	header := make([]any, len(sheet.Headers))
	for i, h := range sheet.Headers {
		header[i] = h
	}
	if err := f.SetSheetRow(sheet.Name, "A1", &header); err != nil {
		return fmt.Errorf("export: write header: %w", err)
	}

	if len(sheet.Headers) > 0 {
		last, err := excelize.CoordinatesToCellName(len(sheet.Headers), 1)
		if err != nil {
			return fmt.Errorf("export: header range: %w", err)
		}
		if err := f.SetCellStyle(sheet.Name, "A1", last, headerStyle); err != nil {
			return fmt.Errorf("export: apply header style: %w", err)
		}
		if err := f.SetPanes(sheet.Name, &excelize.Panes{
			Freeze:      true,
			YSplit:      1,
			TopLeftCell: "A2",
			ActivePane:  "bottomLeft",
		}); err != nil {
			return fmt.Errorf("export: freeze header: %w", err)
		}
	}

	for i, row := range sheet.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("export: row %d: %w", i+2, err)
		}
		values := row
		if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
			return fmt.Errorf("export: write row %d: %w", i+2, err)
		}
	}

	return nil
}
