// Пакет repository — единственная граница между обработчиками и хранилищем записей.
// Один интерфейс RecordRepository, четыре реализации: PostgreSQL (pgx),
// SQLite (gorm), LevelDB (go-datastore) и статический in-memory список.
// Бэкенд выбирается при старте конфигурацией.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
)

// TableName — имя таблицы (коллекции) записей во всех бэкендах.
const TableName = "rust_test"

// Ошибки слоя репозиториев.
var (
	// ErrStoreWrite — ошибка записи в хранилище.
	ErrStoreWrite = errors.New("ошибка записи в хранилище")
	// ErrStoreRead — ошибка чтения из хранилища.
	ErrStoreRead = errors.New("ошибка чтения из хранилища")
	// ErrConflict — запись с таким ID уже существует. Всегда оборачивается в ErrStoreWrite.
	ErrConflict = errors.New("конфликт — запись уже существует")
)

// RecordRepository — контракт хранилища записей, не зависящий от движка.
// Реализации безопасны для конкурентного использования.
type RecordRepository interface {
	// Insert сохраняет одну запись; created_at назначает хранилище.
	// Дубликат ID отклоняется (ErrConflict).
	Insert(ctx context.Context, id, hash string) error
	// Scan возвращает не более limit записей в порядке хранилища.
	// limit <= 0 — пустой результат.
	Scan(ctx context.Context, limit int) ([]*model.Record, error)
	// Lookup возвращает подмножество ids, присутствующее в хранилище, без гарантии порядка.
	Lookup(ctx context.Context, ids []string) ([]*model.Record, error)
}

// Pinger — проверка доступности хранилища для readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBTX — интерфейс для выполнения SQL-запросов.
// Реализуется как *pgxpool.Pool, так и pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation проверяет, является ли ошибка нарушением уникальности PostgreSQL.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return false
}

// writeError оборачивает ошибку движка в ErrStoreWrite, сохраняя её текст.
func writeError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreWrite, err)
}

// readError оборачивает ошибку движка в ErrStoreRead, сохраняя её текст.
func readError(err error) error {
	return fmt.Errorf("%w: %w", ErrStoreRead, err)
}

// conflictError — отказ вставки дубликата.
func conflictError(id string) error {
	return fmt.Errorf("%w: %w: %s", ErrStoreWrite, ErrConflict, id)
}

// ReadinessChecker — проверка готовности хранилища для health endpoint.
// Реализует интерфейс handlers.ReadinessChecker.
type ReadinessChecker struct {
	store   Pinger
	backend string
}

// NewReadinessChecker создаёт проверку готовности хранилища.
func NewReadinessChecker(store Pinger, backend string) *ReadinessChecker {
	return &ReadinessChecker{store: store, backend: backend}
}

// CheckReady проверяет хранилище через Ping.
// Возвращает статус ("ok", "fail") и сообщение.
func (c *ReadinessChecker) CheckReady() (status, message string) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := c.store.Ping(ctx); err != nil {
		return "fail", fmt.Sprintf("%s недоступен: %v", c.backend, err)
	}
	return "ok", c.backend + ": подключение активно"
}
