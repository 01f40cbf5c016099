package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	ds "github.com/ipfs/go-datastore"
	dsq "github.com/ipfs/go-datastore/query"
	dslvl "github.com/ipfs/go-ds-leveldb"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
)

// recordsPrefix — префикс ключей коллекции: /rust_test/<id>.
var recordsPrefix = ds.NewKey(TableName)

// LevelDBRepository — реализация RecordRepository поверх key-value хранилища.
// Запись хранится JSON-документом под ключом /rust_test/<id>.
type LevelDBRepository struct {
	store *dslvl.Datastore
	// mu сериализует Has+Put, иначе дубликат мог бы перезаписать запись
	mu sync.Mutex
}

// OpenLevelDB открывает хранилище LevelDB в директории path.
// Пустой path — хранилище в памяти.
func OpenLevelDB(path string) (*LevelDBRepository, error) {
	store, err := dslvl.NewDatastore(path, nil)
	if err != nil {
		return nil, fmt.Errorf("ошибка открытия LevelDB %q: %w", path, err)
	}
	return &LevelDBRepository{store: store}, nil
}

func recordKey(id string) ds.Key {
	return recordsPrefix.ChildString(id)
}

// Insert сохраняет документ записи, отклоняя дубликат ID.
func (r *LevelDBRepository) Insert(ctx context.Context, id, hash string) error {
	b, err := json.Marshal(model.Record{ID: id, Hash: hash, CreatedAt: time.Now().UTC()})
	if err != nil {
		return writeError(err)
	}

	k := recordKey(id)

	r.mu.Lock()
	defer r.mu.Unlock()

	exists, err := r.store.Has(ctx, k)
	if err != nil {
		return writeError(err)
	}
	if exists {
		return conflictError(id)
	}
	if err := r.store.Put(ctx, k, b); err != nil {
		return writeError(err)
	}
	return nil
}

// Scan возвращает до limit документов в порядке ключей LevelDB.
func (r *LevelDBRepository) Scan(ctx context.Context, limit int) ([]*model.Record, error) {
	records := make([]*model.Record, 0)
	// Limit == 0 в dsq.Query означает «без ограничения»
	if limit <= 0 {
		return records, nil
	}

	res, err := r.store.Query(ctx, dsq.Query{Prefix: recordsPrefix.String(), Limit: limit})
	if err != nil {
		return nil, readError(err)
	}
	defer res.Close()

	for {
		entry, hasNext := res.NextSync()
		if !hasNext {
			break
		}
		if entry.Error != nil {
			return nil, readError(entry.Error)
		}

		rec, err := decodeRecord(entry.Value)
		if err != nil {
			return nil, readError(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Lookup читает документы по ключам; отсутствующие пропускаются.
func (r *LevelDBRepository) Lookup(ctx context.Context, ids []string) ([]*model.Record, error) {
	records := make([]*model.Record, 0, len(ids))
	for _, id := range ids {
		b, err := r.store.Get(ctx, recordKey(id))
		if err != nil {
			if errors.Is(err, ds.ErrNotFound) {
				continue
			}
			return nil, readError(err)
		}

		rec, err := decodeRecord(b)
		if err != nil {
			return nil, readError(err)
		}
		records = append(records, rec)
	}
	return records, nil
}

// Ping проверяет, что хранилище открыто и отвечает.
func (r *LevelDBRepository) Ping(ctx context.Context) error {
	_, err := r.store.Has(ctx, recordsPrefix)
	return err
}

// Close закрывает хранилище.
func (r *LevelDBRepository) Close() error {
	return r.store.Close()
}

func decodeRecord(b []byte) (*model.Record, error) {
	var rec model.Record
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("повреждённый документ записи: %w", err)
	}
	rec.CreatedAt = rec.CreatedAt.UTC()
	return &rec, nil
}
