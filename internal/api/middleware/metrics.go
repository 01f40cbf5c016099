// metrics.go — Prometheus HTTP метрики Analysis Module.
// Регистрирует метрики: an_http_requests_total, an_http_request_duration_seconds.
// Нормализация путей предотвращает взрывной рост кардинальности.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "an_http_requests_total",
			Help: "Общее количество HTTP-запросов к Analysis Module",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "an_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к Analysis Module в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)

// MetricsMiddleware возвращает HTTP middleware для сбора Prometheus метрик.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			httpRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.statusCode)).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		})
	}
}

// idPrefixes — маршруты вида <prefix>{id}.
var idPrefixes = []string{
	"/v1/upload/",
	"/v1/analysis/",
	"/v1/results/",
	"/v1/files/",
}

// normalizePath заменяет идентификатор в пути на {id}.
// /v1/results/d7073ab3-... → /v1/results/{id}
// Неизвестные пути сворачиваются в "other".
func normalizePath(path string) string {
	switch path {
	case "/health/live", "/health/ready", "/metrics",
		"/v1/path", "/v1/openapi.yaml":
		return path
	}

	for _, prefix := range idPrefixes {
		if rest, ok := strings.CutPrefix(path, prefix); ok && rest != "" && !strings.Contains(rest, "/") {
			return prefix + "{id}"
		}
	}

	return "other"
}
