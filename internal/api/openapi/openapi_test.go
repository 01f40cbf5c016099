package openapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"
)

func TestLoad(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	paths := doc.Paths()
	for _, want := range []string{
		"/v1/upload/{id}",
		"/v1/analysis/{id}",
		"/v1/results/{id}",
		"/v1/files/{id}",
		"/v1/path",
	} {
		if !slices.Contains(paths, want) {
			t.Errorf("путь %s отсутствует в документе: %v", want, paths)
		}
	}
	if len(paths) != 5 {
		t.Errorf("len(paths) = %d, ожидалось 5", len(paths))
	}
	if doc.Version() != "1.0.0" {
		t.Errorf("Version() = %q", doc.Version())
	}
}

func TestDocument_ServeHTTP(t *testing.T) {
	doc, err := Load(context.Background())
	if err != nil {
		t.Fatalf("Load() вернул ошибку: %v", err)
	}

	rec := httptest.NewRecorder()
	doc.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/openapi.yaml", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("статус = %d, ожидался 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/yaml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Body.Len() != len(rawDocument) {
		t.Errorf("размер тела = %d, ожидался %d", rec.Body.Len(), len(rawDocument))
	}
}
