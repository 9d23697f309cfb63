// Package export writes the current directory batch as downloadable CSV or
// XLSX. Exports are read-only snapshots of fetched data; nothing here
// writes back to the source sheet.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"compdir/internal/csv"
	"compdir/internal/record"
)

var headers = []string{"ID", "Title", "Date", "Type", "Overview", "Details", "Link"}

func row(c record.Canonical) []string {
	return []string{c.ID, c.Title, c.Date, c.Type, c.Overview, c.Details, c.Link}
}

// CSV writes the batch as RFC 4180 CSV.
func CSV(w io.Writer, records []record.Canonical) error {
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, headers)
	for _, c := range records {
		rows = append(rows, row(c))
	}

	if _, err := io.WriteString(w, csv.Write(rows)); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

// Excel writes the batch as a single-sheet XLSX workbook.
func Excel(w io.Writer, records []record.Canonical) error {
	file := excelize.NewFile()
	defer file.Close()

	sheet := file.GetSheetName(0)

	for col, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := file.SetCellValue(sheet, cell, header); err != nil {
			return fmt.Errorf("set excel header %s: %w", cell, err)
		}
	}

	for i, c := range records {
		for col, value := range row(c) {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := file.SetCellValue(sheet, cell, value); err != nil {
				return fmt.Errorf("set excel value %s: %w", cell, err)
			}
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write excel export: %w", err)
	}
	return nil
}
