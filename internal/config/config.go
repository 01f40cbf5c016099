// Пакет config — загрузка и валидация конфигурации Analysis Module
// из переменных окружения.
package config

import (
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Версия приложения, задаётся при сборке через -ldflags.
var Version = "dev"

// Поддерживаемые хранилища записей.
const (
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendLevelDB  = "leveldb"
	BackendStatic   = "static"
)

// Config содержит все параметры конфигурации Analysis Module.
type Config struct {
	// --- Сервер ---

	// Порт HTTP-сервера (диапазон 8040-8049)
	Port int
	// Уровень логирования (debug, info, warn, error)
	LogLevel slog.Level
	// Формат логов (json, text)
	LogFormat string

	// --- Файл логов (опционально) ---

	// Путь к файлу логов; пусто — только stdout
	LogFile string
	// Максимальный размер файла до ротации, МБ
	LogMaxSizeMB int
	// Количество хранимых ротированных файлов
	LogMaxBackups int
	// Срок хранения ротированных файлов, дни
	LogMaxAgeDays int
	// Сжимать ротированные файлы
	LogCompress bool

	// --- Хранилище ---

	// Бэкенд хранилища: postgres, sqlite, leveldb, static
	StoreBackend string

	// --- PostgreSQL (только для backend=postgres) ---

	DBHost     string
	DBPort     int
	DBName     string
	DBUser     string
	DBPassword string
	// Режим SSL: disable, require, verify-ca, verify-full
	DBSSLMode string

	// Путь к файлу SQLite (backend=sqlite)
	SQLitePath string
	// Директория LevelDB (backend=leveldb)
	LevelDBPath string

	// --- Ответы API ---

	// Публичный базовый URL сервиса, из него строится result_url
	PublicURL string
	// URL-заглушка, возвращаемая POST /v1/upload/{id}
	UploadURL string
	// Отражать Origin запроса в CORS-заголовках
	CORSEnabled bool

	// --- HTTP Server Timeouts ---

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration

	// --- topologymetrics ---

	// Группа сервиса в метриках зависимостей
	DephealthGroup string
	// Интервал проверки зависимостей
	DephealthCheckInterval time.Duration

	// --- Graceful shutdown ---

	// Таймаут graceful shutdown (по умолчанию 5s)
	ShutdownTimeout time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// Возвращает ошибку, если обязательные переменные не заданы
// или значения некорректны.
func Load() (*Config, error) {
	cfg := &Config{}
	var err error

	// --- Сервер ---

	// AN_PORT — порт HTTP-сервера (по умолчанию 8040)
	cfg.Port, err = getEnvInt("AN_PORT", 8040)
	if err != nil {
		return nil, fmt.Errorf("AN_PORT: %w", err)
	}
	if cfg.Port < 8040 || cfg.Port > 8049 {
		return nil, fmt.Errorf("AN_PORT: значение %d вне допустимого диапазона 8040-8049", cfg.Port)
	}

	cfg.LogLevel, err = parseLogLevel(getEnvDefault("AN_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("AN_LOG_LEVEL: %w", err)
	}

	cfg.LogFormat = getEnvDefault("AN_LOG_FORMAT", "json")
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("AN_LOG_FORMAT: недопустимый формат %q, допустимые: json, text", cfg.LogFormat)
	}

	// --- Файл логов ---

	cfg.LogFile = getEnvDefault("AN_LOG_FILE", "")
	cfg.LogMaxSizeMB, err = getEnvInt("AN_LOG_MAX_SIZE_MB", 100)
	if err != nil {
		return nil, fmt.Errorf("AN_LOG_MAX_SIZE_MB: %w", err)
	}
	cfg.LogMaxBackups, err = getEnvInt("AN_LOG_MAX_BACKUPS", 3)
	if err != nil {
		return nil, fmt.Errorf("AN_LOG_MAX_BACKUPS: %w", err)
	}
	cfg.LogMaxAgeDays, err = getEnvInt("AN_LOG_MAX_AGE_DAYS", 28)
	if err != nil {
		return nil, fmt.Errorf("AN_LOG_MAX_AGE_DAYS: %w", err)
	}
	cfg.LogCompress, err = getEnvBool("AN_LOG_COMPRESS", false)
	if err != nil {
		return nil, fmt.Errorf("AN_LOG_COMPRESS: %w", err)
	}

	// --- Хранилище ---

	cfg.StoreBackend = strings.ToLower(getEnvDefault("AN_STORE_BACKEND", BackendStatic))
	switch cfg.StoreBackend {
	case BackendPostgres:
		if err := loadPostgres(cfg); err != nil {
			return nil, err
		}
	case BackendSQLite, BackendLevelDB, BackendStatic:
	default:
		return nil, fmt.Errorf("AN_STORE_BACKEND: недопустимое значение %q, допустимые: postgres, sqlite, leveldb, static", cfg.StoreBackend)
	}

	cfg.SQLitePath = getEnvDefault("AN_SQLITE_PATH", "analysis.db")
	cfg.LevelDBPath = getEnvDefault("AN_LEVELDB_PATH", "data/leveldb")

	// --- Ответы API ---

	// AN_PUBLIC_URL — без trailing slash
	cfg.PublicURL = strings.TrimRight(
		getEnvDefault("AN_PUBLIC_URL", fmt.Sprintf("http://localhost:%d", cfg.Port)), "/")
	cfg.UploadURL = getEnvDefault("AN_UPLOAD_URL", "https://example.com/upload/42")

	// AN_CORS_ENABLED — по умолчанию включён только для static
	cfg.CORSEnabled, err = getEnvBool("AN_CORS_ENABLED", cfg.StoreBackend == BackendStatic)
	if err != nil {
		return nil, fmt.Errorf("AN_CORS_ENABLED: %w", err)
	}

	// --- HTTP Server Timeouts ---

	cfg.HTTPReadTimeout, err = getEnvDuration("AN_HTTP_READ_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AN_HTTP_READ_TIMEOUT: %w", err)
	}
	cfg.HTTPWriteTimeout, err = getEnvDuration("AN_HTTP_WRITE_TIMEOUT", 60*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AN_HTTP_WRITE_TIMEOUT: %w", err)
	}
	cfg.HTTPIdleTimeout, err = getEnvDuration("AN_HTTP_IDLE_TIMEOUT", 120*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AN_HTTP_IDLE_TIMEOUT: %w", err)
	}

	// --- topologymetrics ---

	cfg.DephealthGroup = getEnvDefault("AN_DEPHEALTH_GROUP", "analysis")
	cfg.DephealthCheckInterval, err = getEnvDuration("AN_DEPHEALTH_CHECK_INTERVAL", 15*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AN_DEPHEALTH_CHECK_INTERVAL: %w", err)
	}

	// --- Graceful shutdown ---

	cfg.ShutdownTimeout, err = getEnvDuration("AN_SHUTDOWN_TIMEOUT", 5*time.Second)
	if err != nil {
		return nil, fmt.Errorf("AN_SHUTDOWN_TIMEOUT: %w", err)
	}

	return cfg, nil
}

// loadPostgres читает параметры подключения к PostgreSQL.
// Вызывается только для backend=postgres — там они обязательны.
func loadPostgres(cfg *Config) error {
	var err error

	cfg.DBHost, err = getEnvRequired("AN_DB_HOST")
	if err != nil {
		return err
	}

	cfg.DBPort, err = getEnvInt("AN_DB_PORT", 5432)
	if err != nil {
		return fmt.Errorf("AN_DB_PORT: %w", err)
	}

	cfg.DBName, err = getEnvRequired("AN_DB_NAME")
	if err != nil {
		return err
	}

	cfg.DBUser, err = getEnvRequired("AN_DB_USER")
	if err != nil {
		return err
	}

	cfg.DBPassword, err = getEnvRequired("AN_DB_PASSWORD")
	if err != nil {
		return err
	}

	cfg.DBSSLMode = getEnvDefault("AN_DB_SSL_MODE", "disable")
	validSSLModes := map[string]bool{
		"disable": true, "require": true, "verify-ca": true, "verify-full": true,
	}
	if !validSSLModes[cfg.DBSSLMode] {
		return fmt.Errorf("AN_DB_SSL_MODE: недопустимое значение %q, допустимые: disable, require, verify-ca, verify-full", cfg.DBSSLMode)
	}

	return nil
}

// DatabaseDSN возвращает строку подключения к PostgreSQL.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d dbname=%s user=%s password=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBName, c.DBUser, c.DBPassword, c.DBSSLMode,
	)
}

// DatabaseURL возвращает URL PostgreSQL без пароля (для лейблов topologymetrics).
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s@%s:%d/%s", c.DBUser, c.DBHost, c.DBPort, c.DBName)
}

// MigrateURL возвращает URL для golang-migrate (драйвер pgx5).
// Учётные данные экранируются: пароль может содержать '@', '/' и ':'.
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: url.Values{"sslmode": {c.DBSSLMode}}.Encode(),
	}
	return u.String()
}

// SetupLogger настраивает глобальный slog-логгер на основе конфигурации.
// При заданном LogFile логи дублируются в файл с ротацией (lumberjack).
func SetupLogger(cfg *Config) *slog.Logger {
	return newLogger(cfg, os.Stdout)
}

func newLogger(cfg *Config, stdout io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}

	out := stdout
	if cfg.LogFile != "" {
		out = io.MultiWriter(stdout, &lumberjack.Logger{
			Filename:   cfg.LogFile,
			MaxSize:    cfg.LogMaxSizeMB,
			MaxBackups: cfg.LogMaxBackups,
			MaxAge:     cfg.LogMaxAgeDays,
			Compress:   cfg.LogCompress,
		})
	}

	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// --- Вспомогательные функции ---

// getEnvRequired возвращает значение переменной окружения или ошибку, если она не задана.
func getEnvRequired(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%s: обязательная переменная окружения не задана", key)
	}
	return val, nil
}

// getEnvDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvDefault(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvInt возвращает целочисленное значение переменной окружения или значение по умолчанию.
func getEnvInt(key string, defaultVal int) (int, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("некорректное целое число: %q", val)
	}
	return n, nil
}

// getEnvDuration возвращает time.Duration из переменной окружения или значение по умолчанию.
func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("некорректная длительность: %q (используйте формат Go: 30s, 1h, 15m)", val)
	}
	return d, nil
}

// getEnvBool возвращает булево значение переменной окружения или значение по умолчанию.
func getEnvBool(key string, defaultVal bool) (bool, error) {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, fmt.Errorf("некорректное булево значение: %q (допустимые: true, false, 1, 0)", val)
	}
	return b, nil
}

// parseLogLevel преобразует строку уровня логирования в slog.Level.
func parseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("недопустимый уровень %q, допустимые: debug, info, warn, error", level)
	}
}
