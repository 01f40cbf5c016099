package main

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/bigkaa/goartstore/analysis-module/internal/config"
	"github.com/bigkaa/goartstore/analysis-module/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TestOpenStore_LevelDBReleased — после cleanup каталог LevelDB снова можно открыть.
func TestOpenStore_LevelDBReleased(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendLevelDB,
		LevelDBPath:  filepath.Join(t.TempDir(), "leveldb"),
	}
	ctx := context.Background()

	store, cleanup, err := openStore(ctx, cfg, testLogger())
	if err != nil {
		t.Fatalf("openStore() вернул ошибку: %v", err)
	}
	if err := store.Insert(ctx, repository.StaticSeedIDs[0], "abc"); err != nil {
		t.Fatalf("Insert ошибка: %v", err)
	}

	cleanup()
	cleanup() // повторный вызов ничего не делает

	reopened, err := repository.OpenLevelDB(cfg.LevelDBPath)
	if err != nil {
		t.Fatalf("каталог LevelDB не освобождён: %v", err)
	}
	defer reopened.Close()

	records, err := reopened.Lookup(ctx, []string{repository.StaticSeedIDs[0]})
	if err != nil {
		t.Fatalf("Lookup ошибка: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("len(records) = %d, ожидалась 1", len(records))
	}
}

func TestOpenStore_SQLite(t *testing.T) {
	cfg := &config.Config{
		StoreBackend: config.BackendSQLite,
		SQLitePath:   filepath.Join(t.TempDir(), "analysis.db"),
	}

	store, cleanup, err := openStore(context.Background(), cfg, testLogger())
	if err != nil {
		t.Fatalf("openStore() вернул ошибку: %v", err)
	}
	defer cleanup()

	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping ошибка: %v", err)
	}
}

func TestOpenStore_StaticDefault(t *testing.T) {
	store, cleanup, err := openStore(context.Background(), &config.Config{StoreBackend: config.BackendStatic}, testLogger())
	if err != nil {
		t.Fatalf("openStore() вернул ошибку: %v", err)
	}
	defer cleanup()

	records, err := store.Scan(context.Background(), 10)
	if err != nil {
		t.Fatalf("Scan ошибка: %v", err)
	}
	if len(records) != len(repository.StaticSeedIDs) {
		t.Errorf("len(records) = %d, ожидалось %d", len(records), len(repository.StaticSeedIDs))
	}
}
