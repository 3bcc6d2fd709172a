package repositories

import "errors"

var (
	// ErrNotFound is returned when a record does not exist or is soft-deleted.
	ErrNotFound = errors.New("record not found")

	// ErrRestricted is returned when a delete is rejected because dependent
	// records still reference the target.
	ErrRestricted = errors.New("record has dependent records")
)
