package repositories

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFoundError reports whether err is a record-not-found failure from the
// storage layer.
func IsNotFoundError(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

// IsDuplicateError reports whether err is a unique-constraint violation.
// Requires the gorm connection to be opened with TranslateError.
func IsDuplicateError(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
