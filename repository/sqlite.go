package repository

import "strings"

// isUniqueViolation, SQLite UNIQUE constraint ihlalini hata mesajından tanır.
// modernc.org/sqlite exported bir hata tipi sunmuyor — mesaj string'i
// SQLite'ın kendi formatıdır ve stabil kabul edilebilir.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
