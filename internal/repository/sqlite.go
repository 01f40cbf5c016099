package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
)

// recordRow — строка таблицы rust_test в SQLite.
type recordRow struct {
	ID        string    `gorm:"column:id;primaryKey;type:text"`
	Hash      string    `gorm:"column:hash;type:text;not null"`
	CreatedAt time.Time `gorm:"column:created_at;not null"`
}

// TableName задаёт имя таблицы для gorm.
func (recordRow) TableName() string {
	return TableName
}

func (r recordRow) toModel() *model.Record {
	return &model.Record{ID: r.ID, Hash: r.Hash, CreatedAt: r.CreatedAt.UTC()}
}

// SQLiteRepository — реализация RecordRepository на SQLite через gorm.
type SQLiteRepository struct {
	db *gorm.DB
}

// OpenSQLite открывает (или создаёт) базу SQLite по пути path и
// приводит схему таблицы rust_test к актуальной через AutoMigrate.
func OpenSQLite(ctx context.Context, path string) (*SQLiteRepository, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия SQLite %s: %w", path, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("ошибка получения *sql.DB: %w", err)
	}
	// SQLite допускает одного писателя
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	if err := db.WithContext(ctx).AutoMigrate(&recordRow{}); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ошибка миграции SQLite: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

// Insert вставляет запись. ON CONFLICT DO NOTHING + RowsAffected == 0 означает дубликат.
func (r *SQLiteRepository) Insert(ctx context.Context, id, hash string) error {
	row := recordRow{ID: id, Hash: hash, CreatedAt: time.Now().UTC()}

	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row)
	if res.Error != nil {
		return writeError(res.Error)
	}
	if res.RowsAffected == 0 {
		return conflictError(id)
	}
	return nil
}

// Scan возвращает до limit записей в порядке rowid.
func (r *SQLiteRepository) Scan(ctx context.Context, limit int) ([]*model.Record, error) {
	if limit <= 0 {
		return []*model.Record{}, nil
	}

	var rows []recordRow
	if err := r.db.WithContext(ctx).Limit(limit).Find(&rows).Error; err != nil {
		return nil, readError(err)
	}
	return rowsToModels(rows), nil
}

// Lookup возвращает записи с id из ids.
func (r *SQLiteRepository) Lookup(ctx context.Context, ids []string) ([]*model.Record, error) {
	if len(ids) == 0 {
		return []*model.Record{}, nil
	}

	var rows []recordRow
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, readError(err)
	}
	return rowsToModels(rows), nil
}

// Ping проверяет соединение с базой.
func (r *SQLiteRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close закрывает соединение с базой.
func (r *SQLiteRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return fmt.Errorf("ошибка получения *sql.DB: %w", err)
	}
	return sqlDB.Close()
}

func rowsToModels(rows []recordRow) []*model.Record {
	out := make([]*model.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toModel())
	}
	return out
}
