package pgerr

import (
	"errors"

	"github.com/lib/pq"
)

// Коды ошибок PostgreSQL, которые обрабатываются репозиториями
const (
	UniqueViolation     = "23505"
	ForeignKeyViolation = "23503"
)

// Code возвращает SQLSTATE ошибки PostgreSQL или пустую строку
func Code(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// IsUniqueViolation true для нарушения уникальности.
// Если constraint не пустой, дополнительно сверяется имя ограничения
func IsUniqueViolation(err error, constraint string) bool {
	return is(err, UniqueViolation, constraint)
}

// IsForeignKeyViolation true для нарушения внешнего ключа
func IsForeignKeyViolation(err error, constraint string) bool {
	return is(err, ForeignKeyViolation, constraint)
}

func is(err error, code, constraint string) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) || string(pqErr.Code) != code {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}
