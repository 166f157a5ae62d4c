package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/web"
)

// ViewCookie binds a browser to its view.
const ViewCookie = "crimedash_view"

const analysisPath = "/analysis"

// PageHandler serves the server-rendered dashboard. Form posts redirect back
// to the analysis page, which renders whatever state the view is in.
type PageHandler struct {
	views       *services.ViewService
	pages       *web.Renderer
	maxFileSize int64
	logger      *utils.Logger
}

func NewPageHandler(views *services.ViewService, pages *web.Renderer, maxFileSize int64, logger *utils.Logger) *PageHandler {
	return &PageHandler{
		views:       views,
		pages:       pages,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *PageHandler) Landing(w http.ResponseWriter, r *http.Request) {
	h.render(w, web.PageLanding, nil)
}

func (h *PageHandler) Analysis(w http.ResponseWriter, r *http.Request) {
	v, ok := h.current(r)
	if !ok {
		v = mountAndWait(r.Context(), h.views)
		http.SetCookie(w, &http.Cookie{
			Name:     ViewCookie,
			Value:    v.ID(),
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	h.render(w, web.PageAnalysis, v.Snapshot())
}

func (h *PageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	v, ok := h.current(r)
	if !ok {
		h.backToAnalysis(w, r)
		return
	}

	// Rejections are kept on the view and shown on the next render.
	name, data, err := readUpload(w, r, h.maxFileSize)
	if err != nil {
		appErr := toAppError(err)
		if appErr.StatusCode >= http.StatusInternalServerError {
			h.logger.Error("Failed to read upload", "view_id", v.ID(), "error", err)
		}
		_ = v.RejectFile(appErr.Message)
		h.backToAnalysis(w, r)
		return
	}

	_, _ = v.AcceptFile(name, data)
	h.backToAnalysis(w, r)
}

func (h *PageHandler) Select(w http.ResponseWriter, r *http.Request) {
	v, ok := h.current(r)
	if !ok {
		h.backToAnalysis(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.fail(w, utils.NewBadRequestError("Invalid form data").Wrap(err))
		return
	}

	_ = v.Select(r.PostFormValue("state"), r.PostFormValue("year"))
	h.backToAnalysis(w, r)
}

func (h *PageHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	v, ok := h.current(r)
	if !ok {
		h.backToAnalysis(w, r)
		return
	}

	if _, err := v.Submit(r.Context()); err != nil {
		h.logger.Debug("Analysis submission did not succeed", "view_id", v.ID(), "error", err)
	}
	h.backToAnalysis(w, r)
}

func (h *PageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	if v, ok := h.current(r); ok {
		_ = v.Clear()
	}
	h.backToAnalysis(w, r)
}

func (h *PageHandler) Chart(w http.ResponseWriter, r *http.Request) {
	v, ok := h.current(r)
	if !ok {
		h.fail(w, services.ErrViewNotFound)
		return
	}

	if err := writeChart(w, mux.Vars(r)["kind"], v.Result()); err != nil {
		h.fail(w, err)
	}
}

func (h *PageHandler) current(r *http.Request) (*services.View, bool) {
	c, err := r.Cookie(ViewCookie)
	if err != nil {
		return nil, false
	}
	v, err := h.views.Get(c.Value)
	if err != nil {
		return nil, false
	}
	return v, true
}

func (h *PageHandler) backToAnalysis(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, analysisPath, http.StatusSeeOther)
}

func (h *PageHandler) render(w http.ResponseWriter, page string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages.Render(w, page, data); err != nil {
		h.logger.Error("Failed to render page", "page", page, "error", err)
	}
}

func (h *PageHandler) fail(w http.ResponseWriter, err error) {
	appErr := toAppError(err)
	if appErr.StatusCode >= http.StatusInternalServerError {
		h.logger.Error("Page request failed", "error", err)
	}
	http.Error(w, appErr.Message, appErr.StatusCode)
}
