package migrate

import (
	"encoding/json"
	"fmt"

	"github.com/halcyon-health/halcyon/pkg/types"
)

// versionMarker is the persisted schema version document.
type versionMarker struct {
	Version int `json:"version"`
}

// ReadVersion returns the persisted schema version. An absent marker means
// version 1, the oldest supported. A corrupted marker surfaces as a
// *types.CorruptionError for the caller to decide on.
func ReadVersion(store types.DocumentStore) (int, error) {
	raw, err := store.Get(types.SchemaVersionKey)
	if err == types.ErrKeyNotFound {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	var marker versionMarker
	if err := json.Unmarshal(raw, &marker); err != nil {
		return 0, &types.CorruptionError{Key: types.SchemaVersionKey, Err: err}
	}
	if marker.Version < 1 {
		return 1, nil
	}
	return marker.Version, nil
}

// WriteVersion persists the schema version marker.
func WriteVersion(store types.DocumentStore, version int) error {
	raw, err := json.Marshal(versionMarker{Version: version})
	if err != nil {
		return fmt.Errorf("encoding version marker: %w", err)
	}
	return store.Put(types.SchemaVersionKey, raw)
}
