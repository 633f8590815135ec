package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"tradelens/internal/insights"
	"tradelens/internal/model"
)

const (
	dataSheet    = "Data"
	summarySheet = "Summary"
)

// WriteWorkbook produces the two-sheet workbook format: one sheet for the
// record data, one for summary metrics and tables.
func WriteWorkbook(w io.Writer, records []model.ShipmentRecord, report insights.Report) error {
	file := excelize.NewFile()
	defer file.Close()

	if err := file.SetSheetName("Sheet1", dataSheet); err != nil {
		return err
	}
	if _, err := file.NewSheet(summarySheet); err != nil {
		return err
	}

	if err := writeRows(file, dataSheet, 1, append([][]string{recordHeader}, recordRows(records)...)); err != nil {
		return err
	}

	row := 1
	if err := setCell(file, summarySheet, 1, row, report.Title); err != nil {
		return err
	}
	row += 2
	for _, metric := range report.Metrics {
		if err := writeRows(file, summarySheet, row, [][]string{{metric.Label, metric.Value}}); err != nil {
			return err
		}
		row++
	}
	for _, table := range report.Tables {
		row++
		if err := setCell(file, summarySheet, 1, row, table.Title); err != nil {
			return err
		}
		row++
		if err := writeRows(file, summarySheet, row, append([][]string{table.Columns}, table.Rows...)); err != nil {
			return err
		}
		row += len(table.Rows) + 1
	}

	return file.Write(w)
}

func recordRows(records []model.ShipmentRecord) [][]string {
	rows := make([][]string, len(records))
	for i, record := range records {
		rows[i] = recordRow(record)
	}
	return rows
}

func writeRows(file *excelize.File, sheet string, startRow int, rows [][]string) error {
	for r, row := range rows {
		for c, value := range row {
			if err := setCell(file, sheet, c+1, startRow+r, value); err != nil {
				return err
			}
		}
	}
	return nil
}

func setCell(file *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return fmt.Errorf("export: cell (%d,%d): %w", col, row, err)
	}
	return file.SetCellValue(sheet, cell, value)
}
