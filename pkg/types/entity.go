package types

import "time"

// Entity is implemented by every domain document type. Entities are value
// types with copy-with mutation semantics: methods return a modified copy
// and never mutate the receiver in place. The type parameter is the
// implementing type itself, so repositories stay fully typed.
type Entity[T any] interface {
	// EntityID returns the document's stable id, or "" before Add.
	EntityID() string

	// Identified returns a copy with the given id and creation time set.
	// Called once by the owning repository's Add.
	Identified(id string, now time.Time) T

	// Touched returns a copy with its last-modified time advanced to now.
	// Types without a modification timestamp return themselves unchanged.
	Touched(now time.Time) T
}
