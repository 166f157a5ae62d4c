package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/analyzer"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/intake"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

type responder struct {
	logger *utils.Logger
}

func (h responder) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", "error", err)
	}
}

func (h responder) respondError(w http.ResponseWriter, err error) {
	appErr := toAppError(err)

	if appErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("Request error", "status", appErr.StatusCode, "error", err)
	} else {
		h.logger.Warn("Request error", "status", appErr.StatusCode, "error", appErr.Message)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": appErr.Message})
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *utils.AppError {
	if appErr := utils.AsAppError(err); appErr != nil {
		return appErr
	}

	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr):
		return utils.NewBadRequestError(vErr.Message).Wrap(err)
	case errors.Is(err, services.ErrRequestInFlight):
		return utils.NewConflictError("An analysis is already in progress").Wrap(err)
	case errors.Is(err, services.ErrViewNotFound), errors.Is(err, services.ErrViewClosed):
		return utils.NewNotFoundError("View not found").Wrap(err)
	case errors.Is(err, intake.ErrUnsupportedFormat), errors.Is(err, intake.ErrEmptyOrCorruptFile):
		return utils.NewBadRequestError(intake.Message(err)).Wrap(err)
	case errors.Is(err, charts.ErrNoData):
		return utils.NewNotFoundError("No chart data").Wrap(err)
	}

	if reqErr, ok := analyzer.AsRequestError(err); ok {
		return utils.NewBadGatewayError(services.AnalysisErrorPrefix + reqErr.Message).Wrap(err)
	}

	return utils.NewInternalError("Internal server error").Wrap(err)
}

// readUpload reads the multipart "file" part, bounded by maxSize.
func readUpload(w http.ResponseWriter, r *http.Request, maxSize int64) (string, []byte, error) {
	tooLarge := utils.NewBadRequestError(fmt.Sprintf("File size exceeds %dMB limit", maxSize>>20))

	// Reject oversized requests before reading the body.
	if r.ContentLength > maxSize {
		return "", nil, tooLarge
	}

	// Multipart framing adds a little on top of the file itself.
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+1<<20)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return "", nil, tooLarge
		}
		return "", nil, utils.NewBadRequestError("Invalid form data").Wrap(err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", nil, utils.NewBadRequestError("No file provided").Wrap(err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return "", nil, utils.NewInternalError("Failed to read file").Wrap(err)
	}
	if int64(len(data)) > maxSize {
		return "", nil, tooLarge
	}

	return header.Filename, data, nil
}

// writeChart renders kind ("pie" or "bar") of result as SVG.
func writeChart(w http.ResponseWriter, kind string, result *charts.Result) error {
	if result == nil {
		return charts.ErrNoData
	}

	render := charts.RenderPie
	switch kind {
	case "pie":
	case "bar":
		render = charts.RenderBar
	default:
		return utils.NewNotFoundError(fmt.Sprintf("Unknown chart %q", kind))
	}

	var buf bytes.Buffer
	if err := render(&buf, result); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "image/svg+xml")
	w.Header().Set("Cache-Control", "no-store")
	_, err := w.Write(buf.Bytes())
	return err
}
