package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "crimedash"

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "http", "requests_total"),
		Help: "Total HTTP requests by method and status code",
	}, []string{"method", "code"})
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(namespace, "http", "request_duration_seconds"),
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
	}, []string{"method"})

	UploadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "intake", "uploads_total"),
		Help: "Uploaded files by outcome (accepted, unsupported, corrupt, rejected)",
	}, []string{"outcome"})

	UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: prometheus.BuildFQName(namespace, "upstream", "requests_total"),
		Help: "Calls to the analysis service by operation and result",
	}, []string{"op", "result"})
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    prometheus.BuildFQName(namespace, "upstream", "duration_seconds"),
		Help:    "Analysis service call duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
	}, []string{"op"})

	ActiveViews = promauto.NewGauge(prometheus.GaugeOpts{
		Name: prometheus.BuildFQName(namespace, "views", "active"),
		Help: "Currently mounted dashboard views",
	})
)

// Handler exposes the default registry for scraping.
func Handler() http.Handler { return promhttp.Handler() }
