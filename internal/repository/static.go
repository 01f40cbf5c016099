package repository

import (
	"context"
	"sync"
	"time"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
)

// StaticSeedIDs — фиксированные записи mock-варианта сервиса.
var StaticSeedIDs = []string{
	"d7073ab3-10a2-47c4-a321-b4258c91fdb3",
	"d7073ab3-10a2-47c4-a321-b4258c91fdb1",
	"d7073ab3-10a2-47c4-a321-b4258c91fdb2",
}

// StaticRepository — потокобезопасный in-memory список записей.
// Порядок Scan — порядок вставки. Не персистентный.
type StaticRepository struct {
	mu      sync.RWMutex
	records []*model.Record
	byID    map[string]*model.Record
	now     func() time.Time
}

// NewStaticRepository создаёт список, засеянный StaticSeedIDs.
func NewStaticRepository() *StaticRepository {
	r := NewEmptyStaticRepository()
	for _, id := range StaticSeedIDs {
		_ = r.Insert(context.Background(), id, "")
	}
	return r
}

// NewEmptyStaticRepository создаёт пустой список.
func NewEmptyStaticRepository() *StaticRepository {
	return &StaticRepository{
		byID: make(map[string]*model.Record),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Insert добавляет запись в конец списка.
func (r *StaticRepository) Insert(_ context.Context, id, hash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; ok {
		return conflictError(id)
	}

	rec := &model.Record{ID: id, Hash: hash, CreatedAt: r.now()}
	r.records = append(r.records, rec)
	r.byID[id] = rec
	return nil
}

// Scan возвращает копии первых limit записей.
func (r *StaticRepository) Scan(_ context.Context, limit int) ([]*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := min(max(limit, 0), len(r.records))
	out := make([]*model.Record, 0, n)
	for _, rec := range r.records[:n] {
		cp := *rec
		out = append(out, &cp)
	}
	return out, nil
}

// Lookup возвращает копии записей с id из ids.
func (r *StaticRepository) Lookup(_ context.Context, ids []string) ([]*model.Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*model.Record, 0, len(ids))
	for _, id := range ids {
		if rec, ok := r.byID[id]; ok {
			cp := *rec
			out = append(out, &cp)
		}
	}
	return out, nil
}

// Ping всегда успешен.
func (r *StaticRepository) Ping(context.Context) error {
	return nil
}
