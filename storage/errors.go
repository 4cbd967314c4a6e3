package storage

import (
	"errors"
	"fmt"
)

// Storage error constants
var (
	// ErrNotFound is a generic "not found" error. Every entity-specific
	// not-found error wraps it, so callers can test with errors.Is(err, ErrNotFound).
	ErrNotFound = errors.New("not found")

	// ErrCaseNotFound is returned when a case is not found
	ErrCaseNotFound = fmt.Errorf("case %w", ErrNotFound)

	// ErrSignalNotFound is returned when a signal is not found
	ErrSignalNotFound = fmt.Errorf("signal %w", ErrNotFound)

	// ErrThreatNotFound is returned when a threat is not found
	ErrThreatNotFound = fmt.Errorf("threat %w", ErrNotFound)

	// ErrRecommendationNotFound is returned when a recommendation is not found
	ErrRecommendationNotFound = fmt.Errorf("recommendation %w", ErrNotFound)

	// ErrDuplicateID is returned when a record with the same ID already exists
	ErrDuplicateID = errors.New("record already exists")

	// ErrDatabaseClosed is returned when attempting to use a closed store
	ErrDatabaseClosed = errors.New("database is closed")
)
