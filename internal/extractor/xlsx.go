package extractor

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExtractXLSX returns the rows of the first sheet of an Office Open XML workbook.
func ExtractXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}

	return dropBlankRows(rows), nil
}
