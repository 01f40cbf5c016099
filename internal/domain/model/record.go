// Пакет model — доменные модели Analysis Module.
// Record — маппинг таблицы rust_test.
package model

import "time"

// Record — зарегистрированный файл.
// Создаётся при запросе загрузки, не обновляется и не удаляется.
type Record struct {
	// ID — UUID файла в каноническом виде (задаётся клиентом)
	ID string `json:"id"`
	// Hash — непрозрачная строка от клиента
	Hash string `json:"hash"`
	// CreatedAt — время вставки, назначается хранилищем (UTC)
	CreatedAt time.Time `json:"created_at"`
}
