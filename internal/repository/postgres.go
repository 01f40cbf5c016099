package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
)

// recordColumns — список столбцов таблицы rust_test для SELECT-запросов.
const recordColumns = `id, hash, created_at`

// PostgresRepository — реализация RecordRepository через pgx.
// Все запросы — чистый SQL, без ORM.
type PostgresRepository struct {
	db DBTX
}

// NewPostgresRepository создаёт репозиторий записей поверх pgx.
func NewPostgresRepository(db DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Insert вставляет запись; created_at — DEFAULT now() на стороне PostgreSQL.
func (r *PostgresRepository) Insert(ctx context.Context, id, hash string) error {
	query := fmt.Sprintf(`INSERT INTO %s (id, hash) VALUES ($1, $2)`, TableName)

	if _, err := r.db.Exec(ctx, query, id, hash); err != nil {
		if isUniqueViolation(err) {
			return conflictError(id)
		}
		return writeError(err)
	}
	return nil
}

// Scan возвращает до limit записей. ORDER BY намеренно отсутствует.
func (r *PostgresRepository) Scan(ctx context.Context, limit int) ([]*model.Record, error) {
	if limit <= 0 {
		return []*model.Record{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s LIMIT $1`, recordColumns, TableName)
	return r.queryRecords(ctx, query, limit)
}

// Lookup возвращает записи с id из ids.
func (r *PostgresRepository) Lookup(ctx context.Context, ids []string) ([]*model.Record, error) {
	if len(ids) == 0 {
		return []*model.Record{}, nil
	}

	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1::uuid[])`, recordColumns, TableName)
	return r.queryRecords(ctx, query, ids)
}

// Ping проверяет подключение, если db — пул соединений.
func (r *PostgresRepository) Ping(ctx context.Context) error {
	if pool, ok := r.db.(*pgxpool.Pool); ok {
		return pool.Ping(ctx)
	}
	_, err := r.db.Exec(ctx, `SELECT 1`)
	return err
}

func (r *PostgresRepository) queryRecords(ctx context.Context, query string, args ...any) ([]*model.Record, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, readError(err)
	}
	defer rows.Close()

	result := make([]*model.Record, 0)
	for rows.Next() {
		rec := &model.Record{}
		if err := rows.Scan(&rec.ID, &rec.Hash, &rec.CreatedAt); err != nil {
			return nil, readError(fmt.Errorf("ошибка сканирования записи: %w", err))
		}
		rec.CreatedAt = rec.CreatedAt.UTC()
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, readError(err)
	}
	return result, nil
}
