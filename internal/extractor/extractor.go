package extractor

import "fmt"

// Extract parses data according to ext (lower-case, no dot) and returns the
// first sheet as a row-major table. Fully blank rows are dropped.
func Extract(ext string, data []byte) ([][]string, error) {
	switch ext {
	case "csv":
		return ExtractCSV(data)
	case "xlsx":
		return ExtractXLSX(data)
	case "xls":
		return ExtractXLS(data)
	default:
		return nil, fmt.Errorf("no extractor for %q", ext)
	}
}
