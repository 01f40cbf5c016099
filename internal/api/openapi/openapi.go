// Пакет openapi — OpenAPI-контракт Analysis Module.
// Документ встроен в бинарник, проверяется kin-openapi при старте
// и отдаётся клиентам на GET /v1/openapi.yaml.
package openapi

import (
	"context"
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

//go:embed openapi.yaml
var rawDocument []byte

// Document — загруженный и проверенный OpenAPI-документ.
type Document struct {
	doc *openapi3.T
	raw []byte
}

// Load разбирает встроенный документ и проверяет его корректность.
func Load(ctx context.Context) (*Document, error) {
	loader := openapi3.NewLoader()
	doc, err := loader.LoadFromData(rawDocument)
	if err != nil {
		return nil, fmt.Errorf("ошибка разбора OpenAPI: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("некорректный OpenAPI: %w", err)
	}
	return &Document{doc: doc, raw: rawDocument}, nil
}

// Paths возвращает шаблоны путей документа.
func (d *Document) Paths() []string {
	return d.doc.Paths.InMatchingOrder()
}

// Version — версия контракта из info.version.
func (d *Document) Version() string {
	return d.doc.Info.Version
}

// ServeHTTP отдаёт документ в исходном YAML.
func (d *Document) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/yaml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(d.raw)
}
