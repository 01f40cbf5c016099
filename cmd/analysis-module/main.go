// Точка входа Analysis Module.
// Загружает конфигурацию (.env + переменные окружения), открывает хранилище
// выбранного движка (postgres, sqlite, leveldb, static), создаёт сервисный слой
// и API handlers, запускает HTTP-сервер с graceful shutdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/stdlib"

	"github.com/bigkaa/goartstore/analysis-module/internal/api/handlers"
	"github.com/bigkaa/goartstore/analysis-module/internal/api/openapi"
	"github.com/bigkaa/goartstore/analysis-module/internal/config"
	"github.com/bigkaa/goartstore/analysis-module/internal/database"
	"github.com/bigkaa/goartstore/analysis-module/internal/repository"
	"github.com/bigkaa/goartstore/analysis-module/internal/server"
	"github.com/bigkaa/goartstore/analysis-module/internal/service"
)

// recordStore — хранилище записей с проверкой доступности.
type recordStore interface {
	repository.RecordRepository
	repository.Pinger
}

func main() {
	// 1. .env и конфигурация из переменных окружения
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("Ошибка загрузки .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Ошибка загрузки конфигурации", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 2. Настройка логирования
	logger := config.SetupLogger(cfg)
	logger.Info("Analysis Module запускается",
		slog.String("version", config.Version),
		slog.Int("port", cfg.Port),
		slog.String("store_backend", cfg.StoreBackend),
	)

	if err := run(cfg, logger); err != nil {
		logger.Error("Analysis Module завершился с ошибкой", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("Analysis Module остановлен")
}

// run открывает хранилище и обслуживает HTTP до сигнала завершения.
// Хранилище закрывается при любом исходе.
func run(cfg *config.Config, logger *slog.Logger) error {
	// 3. Хранилище
	ctx := context.Background()
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("открытие хранилища %s: %w", cfg.StoreBackend, err)
	}
	defer closeStore()

	// 4. OpenAPI-контракт
	doc, err := openapi.Load(ctx)
	if err != nil {
		return err
	}

	// 5. Сервис, health и API handlers
	analysisSvc := service.NewAnalysisService(store, cfg.UploadURL, cfg.PublicURL, logger)
	healthHandler := handlers.NewHealthHandler(
		repository.NewReadinessChecker(store, cfg.StoreBackend),
		cfg.StoreBackend,
	)
	apiHandler := handlers.NewAPIHandler(analysisSvc, healthHandler, doc, logger)

	// 6. Запуск сервера (блокирующий вызов с graceful shutdown)
	return server.New(cfg, logger, apiHandler).Run()
}

// openStore открывает хранилище выбранного движка.
// Возвращаемая функция освобождает ресурсы и безопасна для повторного вызова.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (recordStore, func(), error) {
	switch cfg.StoreBackend {
	case config.BackendPostgres:
		return openPostgres(ctx, cfg, logger)

	case config.BackendSQLite:
		repo, err := repository.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("SQLite открыт", slog.String("path", cfg.SQLitePath))
		return repo, sync.OnceFunc(func() { closeWithLog(logger, "sqlite", repo.Close) }), nil

	case config.BackendLevelDB:
		repo, err := repository.OpenLevelDB(cfg.LevelDBPath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("LevelDB открыт", slog.String("path", cfg.LevelDBPath))
		return repo, sync.OnceFunc(func() { closeWithLog(logger, "leveldb", repo.Close) }), nil

	default:
		logger.Info("Используется статическое хранилище",
			slog.Int("seed_records", len(repository.StaticSeedIDs)),
		)
		return repository.NewStaticRepository(), func() {}, nil
	}
}

// openPostgres применяет миграции, открывает пул и запускает мониторинг PostgreSQL.
func openPostgres(ctx context.Context, cfg *config.Config, logger *slog.Logger) (recordStore, func(), error) {
	logger.Info("Применение миграций БД...")
	if err := database.Migrate(cfg, logger); err != nil {
		return nil, nil, err
	}

	pool, err := database.Connect(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}

	// Адаптер pgxpool → *sql.DB для topologymetrics (connection pool mode)
	pgDB := stdlib.OpenDBFromPool(pool)

	dephealthSvc, err := service.NewDephealthService(
		"analysis-module",
		cfg.DephealthGroup,
		pgDB,
		cfg.DatabaseURL(),
		cfg.DephealthCheckInterval,
		logger,
	)
	if err != nil {
		logger.Warn("topologymetrics недоступен, запуск без мониторинга зависимостей",
			slog.String("error", err.Error()),
		)
		dephealthSvc = nil
	} else if err := dephealthSvc.Start(ctx); err != nil {
		logger.Warn("Ошибка запуска topologymetrics", slog.String("error", err.Error()))
		dephealthSvc = nil
	} else {
		logger.Info("topologymetrics запущен",
			slog.String("group", cfg.DephealthGroup),
			slog.String("check_interval", cfg.DephealthCheckInterval.String()),
		)
	}

	cleanup := sync.OnceFunc(func() {
		if dephealthSvc != nil {
			dephealthSvc.Stop()
		}
		_ = pgDB.Close()
		pool.Close()
	})
	return repository.NewPostgresRepository(pool), cleanup, nil
}

func closeWithLog(logger *slog.Logger, name string, closeFn func() error) {
	if err := closeFn(); err != nil {
		logger.Warn("Ошибка закрытия хранилища",
			slog.String("backend", name),
			slog.String("error", err.Error()),
		)
	}
}
