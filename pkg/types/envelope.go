package types

import "time"

// Envelope is the unit of export and import: a versioned snapshot of every
// domain collection plus metadata. Collection documents are kept as
// duck-typed maps so an envelope written by an older release can be decoded
// first and migrated second; strict typed decoding would throw on shapes it
// predates.
type Envelope struct {
	SchemaVersion int                         `json:"schemaVersion"`
	ExportedAt    time.Time                   `json:"exportedAt"`
	Collections   map[string][]map[string]any `json:"collections"`
}

// DocID returns the "id" field of a duck-typed document, or "" when the
// field is missing or not a string.
func DocID(doc map[string]any) string {
	id, _ := doc["id"].(string)
	return id
}
