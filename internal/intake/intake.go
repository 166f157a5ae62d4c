// Package intake validates user-selected dataset files and prepares the
// bounded preview shown before submission.
package intake

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/extractor"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
)

// PreviewLimit is the number of data rows shown under the header.
const PreviewLimit = 5

// MoreRowsText labels the single row standing in for everything past PreviewLimit.
const MoreRowsText = "...and more rows"

var (
	ErrUnsupportedFormat  = errors.New("unsupported file format")
	ErrEmptyOrCorruptFile = errors.New("empty or corrupt file")
	ErrEmptyFile          = fmt.Errorf("%w: no rows", ErrEmptyOrCorruptFile)
)

var supported = map[string]bool{
	"xlsx": true,
	"xls":  true,
	"csv":  true,
}

// Extension returns the lower-cased extension of name without the dot.
func Extension(name string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
}

// Supported reports whether name carries an accepted dataset extension.
// Only the filename is inspected.
func Supported(name string) bool {
	return supported[Extension(name)]
}

// Accept validates name, parses data and returns the stored file and its rows.
// Errors wrap ErrUnsupportedFormat or ErrEmptyOrCorruptFile.
func Accept(name string, data []byte) (*models.UploadedFile, models.PreviewRows, error) {
	ext := Extension(name)
	if !supported[ext] {
		return nil, nil, ErrUnsupportedFormat
	}

	if len(data) == 0 {
		return nil, nil, ErrEmptyFile
	}

	rows, err := extractor.Extract(ext, data)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrEmptyOrCorruptFile, err)
	}
	if len(rows) == 0 {
		return nil, nil, ErrEmptyFile
	}

	file := &models.UploadedFile{
		Name:      filepath.Base(name),
		Extension: ext,
		Size:      int64(len(data)),
		Data:      data,
	}

	return file, models.PreviewRows(rows), nil
}

// Message returns the user-facing text for an intake error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return "Invalid file format. Please upload an Excel or CSV file."
	case errors.Is(err, ErrEmptyFile):
		return "The uploaded file is empty."
	case errors.Is(err, ErrEmptyOrCorruptFile):
		return "Error reading the file. Please ensure it is a valid Excel or CSV file."
	default:
		return err.Error()
	}
}

// BuildPreview copies at most the header and PreviewLimit data rows out of rows.
func BuildPreview(rows models.PreviewRows) models.Preview {
	if len(rows) == 0 {
		return models.Preview{}
	}

	data := rows[1:]
	more := len(data) > PreviewLimit
	if more {
		data = data[:PreviewLimit]
	}

	preview := models.Preview{
		Header: append([]string(nil), rows[0]...),
		Rows:   make([][]string, len(data)),
		More:   more,
	}
	for i, row := range data {
		preview.Rows[i] = append([]string(nil), row...)
	}

	return preview
}
