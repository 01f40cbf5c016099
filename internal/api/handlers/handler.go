// handler.go — основной обработчик API Analysis Module.
// Объединяет health, OpenAPI-документ и бизнес-обработчики, регистрирует маршруты в chi.
// Параметры пути и query связываются через oapi-codegen runtime, как в сгенерированном сервере.
package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	apierrors "github.com/bigkaa/goartstore/analysis-module/internal/api/errors"
	"github.com/bigkaa/goartstore/analysis-module/internal/repository"
	"github.com/bigkaa/goartstore/analysis-module/internal/service"
)

// maxPerPage — верхняя граница per_page.
const maxPerPage = 1000

// APIHandler — основной обработчик API Analysis Module.
type APIHandler struct {
	analysis *service.AnalysisService
	health   *HealthHandler
	openapi  http.Handler
	logger   *slog.Logger
}

// NewAPIHandler создаёт основной обработчик API.
// openapi — обработчик GET /v1/openapi.yaml (может быть nil — маршрут не регистрируется).
func NewAPIHandler(
	analysis *service.AnalysisService,
	health *HealthHandler,
	openapi http.Handler,
	logger *slog.Logger,
) *APIHandler {
	return &APIHandler{
		analysis: analysis,
		health:   health,
		openapi:  openapi,
		logger:   logger.With(slog.String("component", "api_handler")),
	}
}

// Register регистрирует все маршруты API в роутере.
func (h *APIHandler) Register(r chi.Router) {
	r.Get("/health/live", h.health.HealthLive)
	r.Get("/health/ready", h.health.HealthReady)
	r.Get("/metrics", h.health.GetMetrics)

	r.Post("/v1/upload/{id}", h.UploadFile)
	r.Get("/v1/analysis/{id}", h.GetAnalysis)
	r.Get("/v1/results/{id}", h.GetResults)
	r.Get("/v1/files/{id}", h.ListFiles)
	r.Get("/v1/path", h.GetPath)

	if h.openapi != nil {
		r.Method(http.MethodGet, "/v1/openapi.yaml", h.openapi)
	}
}

// --- Вспомогательные функции ---

// writeJSON записывает JSON-ответ с указанным статусом.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// bindFileID связывает параметр пути {id} и возвращает UUID в каноническом виде.
func bindFileID(r *http.Request) (string, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{
			ParamLocation: runtime.ParamLocationPath,
			Explode:       false,
			Required:      true,
		})
	if err != nil {
		return "", fmt.Errorf("некорректный параметр id: %w", err)
	}
	return id.String(), nil
}

// bindQueryUUID связывает обязательный query-параметр с UUID.
func bindQueryUUID(r *http.Request, name string) (string, error) {
	var id uuid.UUID
	if err := runtime.BindQueryParameter("form", true, true, name, r.URL.Query(), &id); err != nil {
		return "", fmt.Errorf("некорректный параметр %s: %w", name, err)
	}
	return id.String(), nil
}

// bindNonNegative связывает обязательный целочисленный query-параметр >= 0.
func bindNonNegative(r *http.Request, name string) (int, error) {
	var v int
	if err := runtime.BindQueryParameter("form", true, true, name, r.URL.Query(), &v); err != nil {
		return 0, fmt.Errorf("некорректный параметр %s: %w", name, err)
	}
	if v < 0 {
		return 0, fmt.Errorf("некорректный параметр %s: значение должно быть >= 0", name)
	}
	return v, nil
}

// bindAfterDate связывает обязательный after_date в формате RFC 3339.
// Значение разбирается явно: runtime принимает и дату без времени.
func bindAfterDate(r *http.Request) (time.Time, error) {
	var raw string
	if err := runtime.BindQueryParameter("form", true, true, "after_date", r.URL.Query(), &raw); err != nil {
		return time.Time{}, fmt.Errorf("некорректный параметр after_date: %w", err)
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("некорректный параметр after_date: ожидается RFC 3339: %w", err)
	}
	return t, nil
}

// paginationParams связывает page и per_page.
// page проверяется, но не используется: выдача ограничивается только per_page.
func paginationParams(r *http.Request) (perPage int, err error) {
	if _, err = bindNonNegative(r, "page"); err != nil {
		return 0, err
	}
	perPage, err = bindNonNegative(r, "per_page")
	if err != nil {
		return 0, err
	}
	return min(perPage, maxPerPage), nil
}

// writeServiceError отвечает 500 на ошибку сервисного слоя.
// Ошибки хранилища передаются клиенту текстом.
func (h *APIHandler) writeServiceError(w http.ResponseWriter, op string, err error) {
	h.logger.Error("Ошибка обработки запроса",
		slog.String("operation", op),
		slog.String("error", err.Error()),
	)
	if errors.Is(err, repository.ErrStoreWrite) || errors.Is(err, repository.ErrStoreRead) {
		apierrors.StoreError(w, err)
		return
	}
	apierrors.InternalError(w, "Внутренняя ошибка")
}
