// Пакет service — бизнес-логика Analysis Module.
// AnalysisService переводит операции API в вызовы RecordRepository:
// не более одного обращения к хранилищу на запрос.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
	"github.com/bigkaa/goartstore/analysis-module/internal/repository"
)

// Статусы анализа. Реального анализа нет — статусы фиксированы.
const (
	StatusProcessing = "processing"
	StatusProcessed  = "processed"
)

// Prometheus-метрики обращений к хранилищу.
var (
	storeOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "an_store_operations_total",
		Help: "Общее количество обращений к хранилищу записей.",
	}, []string{"operation", "result"})
	storeOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "an_store_operation_duration_seconds",
		Help:    "Длительность обращений к хранилищу записей.",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation"})
)

// AnalysisStatus — ответ на запрос статуса анализа.
type AnalysisStatus struct {
	Status        string
	StatusMessage string
	ResultURL     string
}

// AnalysisResult — результат анализа со связанными файлами.
type AnalysisResult struct {
	Status         string
	StatusMessage  string
	RelatedFileIDs []string
}

// AnalysisService — операции загрузки, анализа, списка файлов и пути.
type AnalysisService struct {
	repo      repository.RecordRepository
	uploadURL string
	publicURL string
	logger    *slog.Logger
}

// NewAnalysisService создаёт сервис.
// uploadURL — заглушка для ответа на upload, publicURL — база для result_url.
func NewAnalysisService(
	repo repository.RecordRepository,
	uploadURL string,
	publicURL string,
	logger *slog.Logger,
) *AnalysisService {
	return &AnalysisService{
		repo:      repo,
		uploadURL: uploadURL,
		publicURL: publicURL,
		logger:    logger.With(slog.String("component", "analysis_service")),
	}
}

// Upload регистрирует файл и возвращает URL для загрузки.
// URL не зависит от результата записи.
func (s *AnalysisService) Upload(ctx context.Context, id, hash string) (string, error) {
	err := observe("insert", func() error {
		return s.repo.Insert(ctx, id, hash)
	})
	if err != nil {
		return "", fmt.Errorf("регистрация файла %s: %w", id, err)
	}

	s.logger.Debug("Файл зарегистрирован", slog.String("file_id", id))
	return s.uploadURL, nil
}

// Analysis возвращает статус анализа файла. Хранилище не опрашивается.
func (s *AnalysisService) Analysis(id string) *AnalysisStatus {
	return &AnalysisStatus{
		Status:        StatusProcessing,
		StatusMessage: "",
		ResultURL:     s.ResultURL(id),
	}
}

// ResultURL — адрес результатов анализа файла id.
func (s *AnalysisService) ResultURL(id string) string {
	return fmt.Sprintf("%s/v1/results/%s", s.publicURL, id)
}

// Results возвращает результат анализа: ID до perPage записей хранилища.
func (s *AnalysisService) Results(ctx context.Context, perPage int) (*AnalysisResult, error) {
	records, err := s.scan(ctx, perPage)
	if err != nil {
		return nil, fmt.Errorf("получение результатов анализа: %w", err)
	}

	ids := make([]string, 0, len(records))
	for _, rec := range records {
		ids = append(ids, rec.ID)
	}

	return &AnalysisResult{
		Status:         StatusProcessed,
		StatusMessage:  "",
		RelatedFileIDs: ids,
	}, nil
}

// Files возвращает до perPage записей хранилища.
func (s *AnalysisService) Files(ctx context.Context, perPage int) ([]*model.Record, error) {
	records, err := s.scan(ctx, perPage)
	if err != nil {
		return nil, fmt.Errorf("получение списка файлов: %w", err)
	}
	return records, nil
}

// Path возвращает те из src и dst, что присутствуют в хранилище.
// Граф не строится: проверяется только принадлежность.
func (s *AnalysisService) Path(ctx context.Context, src, dst string) ([]string, error) {
	ids := []string{src}
	if dst != src {
		ids = append(ids, dst)
	}

	var records []*model.Record
	err := observe("lookup", func() error {
		var err error
		records, err = s.repo.Lookup(ctx, ids)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("поиск пути: %w", err)
	}

	path := make([]string, 0, len(records))
	for _, rec := range records {
		path = append(path, rec.ID)
	}
	return path, nil
}

func (s *AnalysisService) scan(ctx context.Context, limit int) ([]*model.Record, error) {
	var records []*model.Record
	err := observe("scan", func() error {
		var err error
		records, err = s.repo.Scan(ctx, limit)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Scan выполнен",
		slog.Int("limit", limit),
		slog.Int("returned", len(records)),
	)
	return records, nil
}

// observe выполняет операцию хранилища и обновляет метрики.
func observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	storeOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	result := "ok"
	if err != nil {
		result = "error"
	}
	storeOperationsTotal.WithLabelValues(operation, result).Inc()
	return err
}
