package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// defaultEnvFile читается, только если существует.
const defaultEnvFile = ".env"

// LoadDotEnv применяет .env-файлы к окружению процесса до вызова Load.
// AN_ENV_FILE — список файлов через запятую; каждый из них обязан существовать.
// Без AN_ENV_FILE читается ./.env, если он есть.
// Уже заданные переменные окружения не перезаписываются.
func LoadDotEnv() error {
	files := parseCSV(os.Getenv("AN_ENV_FILE"))
	if len(files) == 0 {
		if _, err := os.Stat(defaultEnvFile); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		files = []string{defaultEnvFile}
	}

	if err := godotenv.Load(files...); err != nil {
		return fmt.Errorf("AN_ENV_FILE: %w", err)
	}
	return nil
}

// parseCSV разбивает строку по запятым, убирая пробелы и пустые элементы.
func parseCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
