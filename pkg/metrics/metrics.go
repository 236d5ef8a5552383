package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_http_requests_total",
		Help: "Total number of HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	HTTPLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "wellness_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route", "method"})

	DashboardCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_dashboard_cache_total",
		Help: "Dashboard cache lookups by result",
	}, []string{"result"}) // result: "hit" or "miss"

	RecordsWritten = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "wellness_records_written_total",
		Help: "Records created, updated or deleted by kind",
	}, []string{"kind", "op"})
)

func RecordRequest(route, method string, status int, elapsed time.Duration) {
	HTTPRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	HTTPLatency.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

func RecordCacheHit() {
	DashboardCache.WithLabelValues("hit").Inc()
}

func RecordCacheMiss() {
	DashboardCache.WithLabelValues("miss").Inc()
}

func RecordWrite(kind, op string) {
	RecordsWritten.WithLabelValues(kind, op).Inc()
}

func Handler() http.Handler {
	return promhttp.Handler()
}
