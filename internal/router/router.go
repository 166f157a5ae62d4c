package router

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/handlers"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/metrics"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/middleware"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/services"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/utils"
	"github.com/BerylCAtieno/crime-analysis-dashboard/internal/web"
)

type Options struct {
	MaxFileSize   int64
	AllowedOrigin string
}

func NewRouter(views *services.ViewService, pages *web.Renderer, opts Options, logger *utils.Logger) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recovery(logger))

	viewHandler := handlers.NewViewHandler(views, opts.MaxFileSize, logger)
	pageHandler := handlers.NewPageHandler(views, pages, opts.MaxFileSize, logger)

	// Pages
	r.HandleFunc("/", pageHandler.Landing).Methods(http.MethodGet)
	r.HandleFunc("/analysis", pageHandler.Analysis).Methods(http.MethodGet)
	r.HandleFunc("/analysis/upload", pageHandler.Upload).Methods(http.MethodPost)
	r.HandleFunc("/analysis/select", pageHandler.Select).Methods(http.MethodPost)
	r.HandleFunc("/analysis/analyze", pageHandler.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/analysis/clear", pageHandler.Clear).Methods(http.MethodPost)
	r.HandleFunc("/analysis/charts/{kind:pie|bar}.svg", pageHandler.Chart).Methods(http.MethodGet)

	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()

	// Health check
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy"}`))
	}).Methods(http.MethodGet)

	api.HandleFunc("/years", viewHandler.Years).Methods(http.MethodGet)
	api.HandleFunc("/runs", viewHandler.ListRuns).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}", viewHandler.GetRun).Methods(http.MethodGet)
	api.HandleFunc("/runs/{id}/dataset", viewHandler.RunDataset).Methods(http.MethodGet)

	// View endpoints
	api.HandleFunc("/views", viewHandler.CreateView).Methods(http.MethodPost)
	api.HandleFunc("/views/{id}", viewHandler.GetView).Methods(http.MethodGet)
	api.HandleFunc("/views/{id}", viewHandler.DeleteView).Methods(http.MethodDelete)
	api.HandleFunc("/views/{id}/file", viewHandler.UploadFile).Methods(http.MethodPost)
	api.HandleFunc("/views/{id}/selection", viewHandler.PutSelection).Methods(http.MethodPut)
	api.HandleFunc("/views/{id}/analyze", viewHandler.Analyze).Methods(http.MethodPost)
	api.HandleFunc("/views/{id}/clear", viewHandler.Clear).Methods(http.MethodPost)
	api.HandleFunc("/views/{id}/charts/{kind:pie|bar}.svg", viewHandler.Chart).Methods(http.MethodGet)

	// CORS wraps the router so preflight requests never hit method matching.
	return middleware.CORS(opts.AllowedOrigin)(r)
}
