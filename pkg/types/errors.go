package types

import (
	"errors"
	"fmt"
	"strings"
)

// Repository and codec errors.
var (
	ErrNotFound       = errors.New("entity not found")
	ErrInvalidID      = errors.New("invalid entity ID")
	ErrInvalidStatus  = errors.New("invalid status value")
	ErrInvalidMood    = errors.New("invalid mood value")
	ErrInvalidCadence = errors.New("invalid cadence value")
	ErrEmptyTitle     = errors.New("title must not be empty")
	ErrSchemaTooNew   = errors.New("backup schema version is newer than this release supports")
)

// ValidationError reports every document in a backup envelope that failed
// structural validation. An import that produces one is aborted with no
// side effects; nothing is partially accepted.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if len(e.Problems) == 1 {
		return "invalid backup: " + e.Problems[0]
	}
	return fmt.Sprintf("invalid backup: %d documents rejected: %s",
		len(e.Problems), strings.Join(e.Problems, "; "))
}

// MigrationError reports that a single document could not be migrated.
// The migration pass logs it and continues with the rest of the collection.
type MigrationError struct {
	Collection string
	DocID      string
	Err        error
}

func (e *MigrationError) Error() string {
	return fmt.Sprintf("migrating document %q in collection %q: %v", e.DocID, e.Collection, e.Err)
}

func (e *MigrationError) Unwrap() error { return e.Err }
