package persistence

import (
	"errors"
	"strings"

	"github.com/velux/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// translateError maps driver errors to domain sentinels. Duplicate keys are
// translated by GORM (TranslateError) on real connections; the string
// checks cover connections opened without it, such as sqlmock tests.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return shared.ErrNotFound
	case isUniqueViolation(err):
		return shared.WrapDomainError(shared.ErrAlreadyExists.Code, shared.ErrAlreadyExists.Message, err)
	default:
		return err
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
