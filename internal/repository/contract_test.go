package repository

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/google/uuid"
)

// runContract проверяет общий контракт RecordRepository.
// newRepo должен возвращать пустое хранилище.
func runContract(t *testing.T, newRepo func(t *testing.T) RecordRepository) {
	t.Helper()

	t.Run("Insert затем Scan", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := "d7073ab3-10a2-47c4-a321-b4258c91fdb3"

		if err := repo.Insert(ctx, id, "abc"); err != nil {
			t.Fatalf("Insert() ошибка: %v", err)
		}

		records, err := repo.Scan(ctx, 10)
		if err != nil {
			t.Fatalf("Scan() ошибка: %v", err)
		}
		if len(records) != 1 {
			t.Fatalf("Scan() вернул %d записей, ожидалась 1", len(records))
		}
		if records[0].ID != id || records[0].Hash != "abc" {
			t.Errorf("запись = %+v, ожидались id=%s hash=abc", records[0], id)
		}
		if records[0].CreatedAt.IsZero() {
			t.Error("CreatedAt не установлен")
		}
		if records[0].CreatedAt.Location().String() != "UTC" {
			t.Errorf("CreatedAt в зоне %s, ожидалась UTC", records[0].CreatedAt.Location())
		}
	})

	t.Run("Scan соблюдает limit", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		const n = 5
		for range n {
			if err := repo.Insert(ctx, uuid.NewString(), "h"); err != nil {
				t.Fatalf("Insert() ошибка: %v", err)
			}
		}

		for _, tc := range []struct {
			limit int
			want  int
		}{
			{0, 0},
			{-1, 0},
			{1, 1},
			{n, n},
			{n + 10, n},
		} {
			records, err := repo.Scan(ctx, tc.limit)
			if err != nil {
				t.Fatalf("Scan(%d) ошибка: %v", tc.limit, err)
			}
			if records == nil {
				t.Errorf("Scan(%d) вернул nil вместо пустого среза", tc.limit)
			}
			if len(records) != tc.want {
				t.Errorf("Scan(%d) вернул %d записей, ожидалось %d", tc.limit, len(records), tc.want)
			}
		}
	})

	t.Run("Lookup возвращает присутствующее подмножество", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		a := "d7073ab3-10a2-47c4-a321-b4258c91fdb3"
		b := "d7073ab3-10a2-47c4-a321-b4258c91fdb1"
		missing := "00000000-0000-0000-0000-000000000000"

		for _, id := range []string{a, b} {
			if err := repo.Insert(ctx, id, "abc"); err != nil {
				t.Fatalf("Insert() ошибка: %v", err)
			}
		}

		got, err := repo.Lookup(ctx, []string{a, missing})
		if err != nil {
			t.Fatalf("Lookup() ошибка: %v", err)
		}
		if len(got) != 1 || got[0].ID != a {
			t.Errorf("Lookup(a, missing) = %v, ожидалась одна запись %s", got, a)
		}

		got, err = repo.Lookup(ctx, []string{b, a})
		if err != nil {
			t.Fatalf("Lookup() ошибка: %v", err)
		}
		ids := make([]string, 0, len(got))
		for _, rec := range got {
			ids = append(ids, rec.ID)
		}
		sort.Strings(ids)
		if len(ids) != 2 || ids[0] != b || ids[1] != a {
			t.Errorf("Lookup(b, a) = %v, ожидались обе записи", ids)
		}

		got, err = repo.Lookup(ctx, []string{missing, uuid.NewString()})
		if err != nil {
			t.Fatalf("Lookup() ошибка: %v", err)
		}
		if got == nil || len(got) != 0 {
			t.Errorf("Lookup(отсутствующие) = %v, ожидался пустой срез", got)
		}
	})

	t.Run("дубликат отклоняется", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()
		id := uuid.NewString()

		if err := repo.Insert(ctx, id, "first"); err != nil {
			t.Fatalf("Insert() ошибка: %v", err)
		}

		err := repo.Insert(ctx, id, "second")
		if !errors.Is(err, ErrStoreWrite) {
			t.Fatalf("повторный Insert() = %v, ожидался ErrStoreWrite", err)
		}
		if !errors.Is(err, ErrConflict) {
			t.Errorf("повторный Insert() = %v, ожидался ErrConflict", err)
		}

		got, err := repo.Lookup(ctx, []string{id})
		if err != nil {
			t.Fatalf("Lookup() ошибка: %v", err)
		}
		if len(got) != 1 || got[0].Hash != "first" {
			t.Errorf("после дубликата запись = %v, ожидался hash=first", got)
		}
	})
}
