package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/piwi3910/fitsview/internal/fits"
)

// HeaderSheet is the name of the worksheet written by ExportHeaderXLSX.
const HeaderSheet = "Header"

// ExportHeaderXLSX writes the primary header cards to a workbook with one
// row per card under a Keyword/Value/Comment heading.
func ExportHeaderXLSX(path string, doc *fits.Document) error {
	if doc == nil {
		return fmt.Errorf("no document to export")
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), HeaderSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	rows := [][]interface{}{{"Keyword", "Value", "Comment"}}
	for _, c := range doc.Cards {
		rows = append(rows, []interface{}{c.Keyword, c.Value, c.Comment})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(HeaderSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(HeaderSheet, "A", "A", 12); err != nil {
		return err
	}
	if err := f.SetColWidth(HeaderSheet, "B", "C", 40); err != nil {
		return err
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save %s: %w", path, err)
	}
	return nil
}
