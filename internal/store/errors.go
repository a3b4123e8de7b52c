package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrStatusConflict is returned by the compare-and-set transition
	// helpers when the connection was no longer in the expected status
	// (0 rows updated). Concurrent requests racing on the same token or
	// connection id produce exactly one winner; every loser sees this.
	ErrStatusConflict = errors.New("connection already processed")
)
