package export

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/iliyamo/attendance-ledger/internal/report"
)

const sheetName = "Report"

// WriteXLSX writes the same content as WriteCSV into a single worksheet.
// Numeric columns are stored as numbers.
func WriteXLSX(out io.Writer, w report.Window, loc *time.Location) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	row := 1
	for _, kv := range header(w) {
		if err := setRow(f, row, kv); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheetName, cell(1, row), cell(1, row), bold); err != nil {
			return err
		}
		row++
	}
	row++ // blank separator

	tbl := table(w, loc)
	for i, r := range tbl {
		if err := setRow(f, row, r); err != nil {
			return err
		}
		if i == 0 {
			if err := f.SetCellStyle(sheetName, cell(1, row), cell(len(r), row), bold); err != nil {
				return err
			}
		}
		row++
	}
	if err := f.SetColWidth(sheetName, "A", "E", 18); err != nil {
		return err
	}
	_, err = f.WriteTo(out)
	return err
}

func cell(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

// setRow writes values, turning numeric strings into numbers.
func setRow(f *excelize.File, row int, values []string) error {
	vals := make([]interface{}, len(values))
	for i, v := range values {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			vals[i] = n
		} else {
			vals[i] = v
		}
	}
	if err := f.SetSheetRow(sheetName, cell(1, row), &vals); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
