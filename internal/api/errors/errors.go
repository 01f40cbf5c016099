// Пакет errors — ответы с ошибками Analysis Module.
// Клиенты ожидают текстовое тело: 400 при разборе запроса, 500 при ошибке хранилища.
package errors //nolint:revive // TODO: переименовать пакет errors, конфликт со stdlib

import (
	"net/http"
)

// WriteError записывает текстовый ответ ошибки с указанным статусом.
func WriteError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(statusCode)
	_, _ = w.Write([]byte(message))
}

// ValidationError — 400 некорректный путь, query или тело запроса.
func ValidationError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, message)
}

// StoreError — 500 ошибка хранилища. Тело содержит описание ошибки движка.
func StoreError(w http.ResponseWriter, err error) {
	WriteError(w, http.StatusInternalServerError, err.Error())
}

// InternalError — 500 прочие внутренние ошибки.
func InternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, message)
}
