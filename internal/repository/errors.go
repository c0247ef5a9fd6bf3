package repository

import (
	"errors"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a row does not exist or belongs to another user.
var ErrNotFound = errors.New("record not found")

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// IsNotFound reports whether err means the row is missing or not owned.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
