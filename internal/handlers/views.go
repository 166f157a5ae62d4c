package handlers

import (
	"context"
	"encoding/json"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/charts"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/models"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
)

type ViewHandler struct {
	responder
	views       *services.ViewService
	maxFileSize int64
	now         func() time.Time
}

func NewViewHandler(views *services.ViewService, maxFileSize int64, logger *utils.Logger) *ViewHandler {
	return &ViewHandler{
		responder:   responder{logger: logger},
		views:       views,
		maxFileSize: maxFileSize,
		now:         time.Now,
	}
}

type uploadResponse struct {
	File    *models.UploadedFile `json:"file"`
	Preview models.Preview       `json:"preview"`
}

type analyzeResponse struct {
	Result      *charts.Result `json:"result"`
	HighestText string         `json:"highest_text,omitempty"`
}

// mountAndWait mounts a view and waits for its option fetch, or for ctx.
func mountAndWait(ctx context.Context, views *services.ViewService) *services.View {
	v := views.Mount()
	select {
	case <-v.OptionsReady():
	case <-ctx.Done():
	}
	return v
}

func (h *ViewHandler) view(r *http.Request) (*services.View, error) {
	id := mux.Vars(r)["id"]
	if id == "" {
		return nil, utils.NewBadRequestError("View ID is required")
	}
	return h.views.Get(id)
}

func (h *ViewHandler) Years(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string][]string{"years": models.YearOptions(h.now())})
}

func (h *ViewHandler) CreateView(w http.ResponseWriter, r *http.Request) {
	v := mountAndWait(r.Context(), h.views)
	h.respondJSON(w, http.StatusCreated, v.Snapshot())
}

func (h *ViewHandler) GetView(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, v.Snapshot())
}

func (h *ViewHandler) DeleteView(w http.ResponseWriter, r *http.Request) {
	if err := h.views.Unmount(mux.Vars(r)["id"]); err != nil {
		h.respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ViewHandler) UploadFile(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	name, data, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		h.respondError(w, err)
		return
	}

	preview, err := v.AcceptFile(name, data)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, uploadResponse{File: v.Snapshot().File, Preview: preview})
}

func (h *ViewHandler) PutSelection(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	var sel models.AnalysisSelection
	if err := json.NewDecoder(r.Body).Decode(&sel); err != nil {
		h.respondError(w, utils.NewBadRequestError("Invalid JSON body").Wrap(err))
		return
	}

	if err := v.Select(sel.State, sel.Year); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v.Snapshot())
}

func (h *ViewHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	result, err := v.Submit(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, analyzeResponse{Result: result, HighestText: result.HighestText()})
}

func (h *ViewHandler) Clear(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := v.Clear(); err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, v.Snapshot())
}

func (h *ViewHandler) Chart(w http.ResponseWriter, r *http.Request) {
	v, err := h.view(r)
	if err != nil {
		h.respondError(w, err)
		return
	}

	if err := writeChart(w, mux.Vars(r)["kind"], v.Result()); err != nil {
		h.respondError(w, err)
	}
}

func (h *ViewHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			h.respondError(w, utils.NewBadRequestError("limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	runs, err := h.views.Runs(r.Context(), limit)
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (h *ViewHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, err := h.views.Run(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	h.respondJSON(w, http.StatusOK, run)
}

// RunDataset streams the archived dataset back as a download.
func (h *ViewHandler) RunDataset(w http.ResponseWriter, r *http.Request) {
	obj, err := h.views.RunDataset(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.respondError(w, err)
		return
	}

	contentType := obj.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": obj.Filename()}))
	w.Header().Set("Content-Length", strconv.Itoa(len(obj.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(obj.Data); err != nil {
		h.logger.Warn("Failed to write dataset", "error", err, "run_id", mux.Vars(r)["id"])
	}
}
