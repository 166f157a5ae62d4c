package extractor

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// ExtractXLS returns the rows of the first sheet of a legacy BIFF workbook.
// The underlying reader panics on malformed input; that is reported as an error.
func ExtractXLS(data []byte) (rows [][]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rows = nil
			err = fmt.Errorf("malformed xls workbook: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if wb == nil || wb.NumSheets() == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		rows = append(rows, readXLSRow(sheet, i))
	}

	return dropBlankRows(rows), nil
}

// readXLSRow reads one row; rows absent from the sheet come back empty.
func readXLSRow(sheet *xls.WorkSheet, i int) (cells []string) {
	defer func() {
		if recover() != nil {
			cells = nil
		}
	}()

	row := sheet.Row(i)
	if row == nil {
		return nil
	}
	last := row.LastCol()
	cells = make([]string, 0, last)
	for c := 0; c < last; c++ {
		cells = append(cells, row.Col(c))
	}
	return cells
}
