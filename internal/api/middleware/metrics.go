// metrics.go — Prometheus HTTP метрики клиентского портала.
// Регистрирует метрики: cp_http_requests_total, cp_http_request_duration_seconds.
package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP метрики
var (
	// httpRequestsTotal — общее количество HTTP-запросов.
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cp_http_requests_total",
			Help: "Общее количество HTTP-запросов к клиентскому порталу",
		},
		[]string{"method", "path", "status"},
	)

	// httpRequestDuration — гистограмма длительности HTTP-запросов.
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cp_http_request_duration_seconds",
			Help:    "Длительность HTTP-запросов к клиентскому порталу в секундах",
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

			normalizedPath := normalizePath(r.URL.Path)

			wrapped := newResponseWriter(w)
			next.ServeHTTP(wrapped, r)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(wrapped.statusCode)

			httpRequestsTotal.WithLabelValues(r.Method, normalizedPath, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, normalizedPath).Observe(duration)
		})
	}
}

// normalizePath заменяет числовые и UUID-сегменты пути на {id}, чтобы
// кардинальность лейблов не росла с числом записей.
// /api/v1/projects/42/todos → /api/v1/projects/{id}/todos
func normalizePath(path string) string {
	if !strings.HasPrefix(path, "/api/") {
		return path
	}
	segments := strings.Split(path, "/")
	for i, s := range segments {
		if isIDSegment(s) {
			segments[i] = "{id}"
		}
	}
	return strings.Join(segments, "/")
}

// isIDSegment — сегмент пути является идентификатором записи.
func isIDSegment(s string) bool {
	if s == "" {
		return false
	}
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return true
	}
	if len(s) == 36 {
		if _, err := uuid.Parse(s); err == nil {
			return true
		}
	}
	return false
}
