package db

import (
	"errors"

	"gorm.io/gorm"
)

// IsNotFound reports whether the error is a missing-record lookup.
func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
