package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/bigkaa/goartstore/analysis-module/internal/domain/model"
	"github.com/bigkaa/goartstore/analysis-module/internal/repository"
)

// --- Mock repository ---

// mockRecordRepo — мок RecordRepository для unit-тестов.
type mockRecordRepo struct {
	insertFn func(ctx context.Context, id, hash string) error
	scanFn   func(ctx context.Context, limit int) ([]*model.Record, error)
	lookupFn func(ctx context.Context, ids []string) ([]*model.Record, error)
}

func (m *mockRecordRepo) Insert(ctx context.Context, id, hash string) error {
	if m.insertFn != nil {
		return m.insertFn(ctx, id, hash)
	}
	return nil
}

func (m *mockRecordRepo) Scan(ctx context.Context, limit int) ([]*model.Record, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, limit)
	}
	return []*model.Record{}, nil
}

func (m *mockRecordRepo) Lookup(ctx context.Context, ids []string) ([]*model.Record, error) {
	if m.lookupFn != nil {
		return m.lookupFn(ctx, ids)
	}
	return []*model.Record{}, nil
}

const (
	testUploadURL = "https://example.com/upload/42"
	testPublicURL = "https://analysis.example.com"
	fileA         = "d7073ab3-10a2-47c4-a321-b4258c91fdb3"
	fileB         = "d7073ab3-10a2-47c4-a321-b4258c91fdb1"
)

func newTestService(repo repository.RecordRepository) *AnalysisService {
	return NewAnalysisService(repo, testUploadURL, testPublicURL, slog.Default())
}

// --- Тесты AnalysisService ---

func TestAnalysisService_Upload(t *testing.T) {
	var gotID, gotHash string
	repo := &mockRecordRepo{
		insertFn: func(_ context.Context, id, hash string) error {
			gotID, gotHash = id, hash
			return nil
		},
	}

	url, err := newTestService(repo).Upload(context.Background(), fileA, "abc")
	if err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}
	if url != testUploadURL {
		t.Errorf("url = %q, ожидался %q", url, testUploadURL)
	}
	if gotID != fileA || gotHash != "abc" {
		t.Errorf("Insert(%q, %q), ожидался Insert(%q, abc)", gotID, gotHash, fileA)
	}
}

func TestAnalysisService_UploadStoreError(t *testing.T) {
	repo := &mockRecordRepo{
		insertFn: func(context.Context, string, string) error {
			return errors.Join(repository.ErrStoreWrite, errors.New("connection refused"))
		},
	}

	_, err := newTestService(repo).Upload(context.Background(), fileA, "abc")
	if !errors.Is(err, repository.ErrStoreWrite) {
		t.Fatalf("err = %v, ожидался ErrStoreWrite", err)
	}
	if !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("err = %q, ожидался текст ошибки движка", err)
	}
}

// TestAnalysisService_Analysis проверяет идемпотентность статуса и result_url.
func TestAnalysisService_Analysis(t *testing.T) {
	repo := &mockRecordRepo{
		scanFn: func(context.Context, int) ([]*model.Record, error) {
			t.Error("Analysis не должен обращаться к хранилищу")
			return nil, nil
		},
	}
	svc := newTestService(repo)

	first := svc.Analysis(fileA)
	second := svc.Analysis(fileA)

	if first.Status != StatusProcessing || first.StatusMessage != "" {
		t.Errorf("статус = %+v, ожидался processing", first)
	}
	if *first != *second {
		t.Errorf("повторный запрос вернул %+v, ожидался %+v", second, first)
	}
	want := testPublicURL + "/v1/results/" + fileA
	if first.ResultURL != want {
		t.Errorf("ResultURL = %q, ожидался %q", first.ResultURL, want)
	}
}

func TestAnalysisService_Results(t *testing.T) {
	repo := &mockRecordRepo{
		scanFn: func(_ context.Context, limit int) ([]*model.Record, error) {
			if limit != 2 {
				t.Errorf("limit = %d, ожидался 2", limit)
			}
			return []*model.Record{{ID: fileA}, {ID: fileB}}, nil
		},
	}

	res, err := newTestService(repo).Results(context.Background(), 2)
	if err != nil {
		t.Fatalf("Results ошибка: %v", err)
	}
	if res.Status != StatusProcessed {
		t.Errorf("Status = %q, ожидался processed", res.Status)
	}
	if len(res.RelatedFileIDs) != 2 || res.RelatedFileIDs[0] != fileA || res.RelatedFileIDs[1] != fileB {
		t.Errorf("RelatedFileIDs = %v", res.RelatedFileIDs)
	}
}

func TestAnalysisService_ResultsEmpty(t *testing.T) {
	res, err := newTestService(&mockRecordRepo{}).Results(context.Background(), 10)
	if err != nil {
		t.Fatalf("Results ошибка: %v", err)
	}
	if res.RelatedFileIDs == nil {
		t.Error("RelatedFileIDs = nil, ожидался пустой срез")
	}
}

func TestAnalysisService_Files(t *testing.T) {
	now := time.Now().UTC()
	repo := &mockRecordRepo{
		scanFn: func(context.Context, int) ([]*model.Record, error) {
			return []*model.Record{{ID: fileA, Hash: "abc", CreatedAt: now}}, nil
		},
	}

	files, err := newTestService(repo).Files(context.Background(), 10)
	if err != nil {
		t.Fatalf("Files ошибка: %v", err)
	}
	if len(files) != 1 || files[0].Hash != "abc" || !files[0].CreatedAt.Equal(now) {
		t.Errorf("files = %v", files)
	}
}

func TestAnalysisService_FilesStoreError(t *testing.T) {
	repo := &mockRecordRepo{
		scanFn: func(context.Context, int) ([]*model.Record, error) {
			return nil, repository.ErrStoreRead
		},
	}

	if _, err := newTestService(repo).Files(context.Background(), 10); !errors.Is(err, repository.ErrStoreRead) {
		t.Errorf("err = %v, ожидался ErrStoreRead", err)
	}
}

func TestAnalysisService_Path(t *testing.T) {
	tests := []struct {
		name      string
		src, dst  string
		wantIDs   []string
		wantCalls []string
	}{
		{
			name:      "оба идентификатора передаются в Lookup",
			src:       fileA,
			dst:       fileB,
			wantIDs:   []string{fileA, fileB},
			wantCalls: []string{fileA, fileB},
		},
		{
			name:      "src == dst — один идентификатор",
			src:       fileA,
			dst:       fileA,
			wantIDs:   []string{fileA},
			wantCalls: []string{fileA},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls []string
			repo := &mockRecordRepo{
				lookupFn: func(_ context.Context, ids []string) ([]*model.Record, error) {
					calls = ids
					out := make([]*model.Record, 0, len(ids))
					for _, id := range ids {
						out = append(out, &model.Record{ID: id})
					}
					return out, nil
				},
			}

			path, err := newTestService(repo).Path(context.Background(), tt.src, tt.dst)
			if err != nil {
				t.Fatalf("Path ошибка: %v", err)
			}
			if strings.Join(calls, ",") != strings.Join(tt.wantCalls, ",") {
				t.Errorf("Lookup(%v), ожидался Lookup(%v)", calls, tt.wantCalls)
			}
			if strings.Join(path, ",") != strings.Join(tt.wantIDs, ",") {
				t.Errorf("path = %v, ожидался %v", path, tt.wantIDs)
			}
		})
	}
}

// TestAnalysisService_UploadThenResults проверяет сценарий на реальном in-memory хранилище.
func TestAnalysisService_UploadThenResults(t *testing.T) {
	svc := newTestService(repository.NewEmptyStaticRepository())
	ctx := context.Background()

	if _, err := svc.Upload(ctx, fileA, "abc"); err != nil {
		t.Fatalf("Upload ошибка: %v", err)
	}

	res, err := svc.Results(ctx, 10)
	if err != nil {
		t.Fatalf("Results ошибка: %v", err)
	}
	if len(res.RelatedFileIDs) != 1 || res.RelatedFileIDs[0] != fileA {
		t.Errorf("RelatedFileIDs = %v, ожидался [%s]", res.RelatedFileIDs, fileA)
	}

	path, err := svc.Path(ctx, fileA, "00000000-0000-0000-0000-000000000000")
	if err != nil {
		t.Fatalf("Path ошибка: %v", err)
	}
	if len(path) != 1 || path[0] != fileA {
		t.Errorf("path = %v, ожидался [%s]", path, fileA)
	}
}
