package types

import (
	"errors"
	"fmt"
)

// DocumentStore is raw key-to-text persistence. It interprets nothing about
// the values beyond requiring them to be valid JSON; one Put commits one key
// and is durable before it returns. There is no multi-key transaction.
type DocumentStore interface {
	// Get returns the value stored under key.
	// Returns ErrKeyNotFound if the key is absent and a *CorruptionError
	// if the stored value is not valid JSON. Corruption is scoped to the
	// one key; other keys remain retrievable.
	Get(key string) ([]byte, error)

	// Put durably stores value under key, replacing any previous value.
	Put(key string, value []byte) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(key string) error

	// Keys returns every key currently present in the store.
	Keys() ([]string, error)

	// Close releases backend resources. After Close, operations return
	// ErrStoreClosed. Close is idempotent.
	Close() error
}

// Document store errors.
var (
	ErrKeyNotFound = errors.New("key not found")
	ErrStoreClosed = errors.New("document store is closed")
	ErrInvalidKey  = errors.New("invalid store key")
)

// CorruptionError reports that the value under a single key could not be
// interpreted. It never applies to more than that one key.
type CorruptionError struct {
	Key string
	Err error
}

func (e *CorruptionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupted value under key %q: %v", e.Key, e.Err)
	}
	return fmt.Sprintf("corrupted value under key %q", e.Key)
}

func (e *CorruptionError) Unwrap() error { return e.Err }

// IsCorruption reports whether err is (or wraps) a CorruptionError.
func IsCorruption(err error) bool {
	var ce *CorruptionError
	return errors.As(err, &ce)
}
