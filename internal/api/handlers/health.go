// health.go — обработчики health endpoints Analysis Module.
// /health/live — liveness probe (процесс жив)
// /health/ready — readiness probe (хранилище доступно)
// /metrics — Prometheus метрики
package handlers

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bigkaa/goartstore/analysis-module/internal/config"
)

const serviceName = "analysis-module"

// Статусы health check.
const (
	statusOK   = "ok"
	statusFail = "fail"
)

// ReadinessChecker — интерфейс проверки готовности зависимости.
type ReadinessChecker interface {
	// CheckReady возвращает статус ("ok", "fail") и сообщение.
	CheckReady() (status, message string)
}

// HealthHandler — обработчик health endpoints.
type HealthHandler struct {
	storeChecker ReadinessChecker
	backend      string
	promHandler  http.Handler
}

// NewHealthHandler создаёт обработчик health endpoints.
// storeChecker — проверка хранилища (может быть nil — readiness вернёт "fail").
func NewHealthHandler(storeChecker ReadinessChecker, backend string) *HealthHandler {
	return &HealthHandler{
		storeChecker: storeChecker,
		backend:      backend,
		promHandler:  promhttp.Handler(),
	}
}

type healthCheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type healthLiveResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
}

type healthReadyResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
	Service   string `json:"service"`
	Backend   string `json:"backend"`
	Checks    struct {
		Store healthCheckResult `json:"store"`
	} `json:"checks"`
}

// HealthLive — liveness probe. Возвращает 200 если процесс жив.
func (h *HealthHandler) HealthLive(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthLiveResponse{
		Status:    statusOK,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
	})
}

// HealthReady — readiness probe. Проверяет хранилище.
// Возвращает 200 (ok) или 503 (fail).
func (h *HealthHandler) HealthReady(w http.ResponseWriter, _ *http.Request) {
	resp := healthReadyResponse{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   config.Version,
		Service:   serviceName,
		Backend:   h.backend,
	}

	if h.storeChecker != nil {
		st, msg := h.storeChecker.CheckReady()
		resp.Checks.Store = healthCheckResult{Status: st, Message: msg}
	} else {
		resp.Checks.Store = healthCheckResult{Status: statusFail, Message: "не инициализирован"}
	}
	resp.Status = resp.Checks.Store.Status

	status := http.StatusOK
	if resp.Status != statusOK {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}

// GetMetrics — Prometheus метрики.
func (h *HealthHandler) GetMetrics(w http.ResponseWriter, r *http.Request) {
	h.promHandler.ServeHTTP(w, r)
}
