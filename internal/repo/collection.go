// Package repo implements the domain repository contract: one typed
// repository per entity type, owning that type's collection key
// exclusively. The document store is the sole source of truth; the
// in-memory list is a read-through cache that is never trusted across a
// mutation boundary. Every mutating operation re-reads the persisted
// collection, applies its single change, and persists the result — so a
// write issued against stale in-memory state can never resurrect documents
// a restore has replaced, and Reload is a cache refresh rather than a
// correctness requirement.
package repo

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/internal/bus"
	"github.com/halcyon-health/halcyon/pkg/types"
)

// Collection is the repository for one entity type.
type Collection[T types.Entity[T]] struct {
	name  string
	store types.DocumentStore
	bus   *bus.Bus
	log   *zap.Logger

	mu     sync.Mutex
	cache  []T
	loaded bool
}

// New returns the repository owning the named collection key.
func New[T types.Entity[T]](name string, store types.DocumentStore, b *bus.Bus, log *zap.Logger) *Collection[T] {
	if log == nil {
		log = zap.NewNop()
	}
	return &Collection[T]{name: name, store: store, bus: b, log: log}
}

// Name returns the collection name this repository owns.
func (c *Collection[T]) Name() string { return c.name }

// Add assigns an id and creation timestamp when the entity has none,
// appends it to the persisted collection, and publishes the change.
func (c *Collection[T]) Add(e T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entities, err := c.readPersisted()
	if err != nil {
		var zero T
		return zero, err
	}

	if e.EntityID() == "" {
		e = e.Identified(newID(), time.Now().UTC())
	}
	for _, existing := range entities {
		if existing.EntityID() == e.EntityID() {
			var zero T
			return zero, fmt.Errorf("adding to %s: id %q: %w", c.name, e.EntityID(), types.ErrInvalidID)
		}
	}

	entities = append(entities, e)
	if err := c.persist(entities); err != nil {
		var zero T
		return zero, err
	}
	c.publish(bus.OpWrite)
	return e, nil
}

// Update replaces the entity with the same id. It never inserts: updating
// an id that is not persisted returns ErrNotFound and changes nothing.
func (c *Collection[T]) Update(e T) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if e.EntityID() == "" {
		return zero, types.ErrInvalidID
	}

	entities, err := c.readPersisted()
	if err != nil {
		return zero, err
	}

	idx := -1
	for i, existing := range entities {
		if existing.EntityID() == e.EntityID() {
			idx = i
			break
		}
	}
	if idx < 0 {
		return zero, types.ErrNotFound
	}

	e = e.Touched(time.Now().UTC())
	entities[idx] = e
	if err := c.persist(entities); err != nil {
		return zero, err
	}
	c.publish(bus.OpWrite)
	return e, nil
}

// Delete removes the entity with the given id.
func (c *Collection[T]) Delete(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if id == "" {
		return types.ErrInvalidID
	}

	entities, err := c.readPersisted()
	if err != nil {
		return err
	}

	kept := entities[:0]
	found := false
	for _, existing := range entities {
		if existing.EntityID() == id {
			found = true
			continue
		}
		kept = append(kept, existing)
	}
	if !found {
		return types.ErrNotFound
	}

	if err := c.persist(kept); err != nil {
		return err
	}
	c.publish(bus.OpDelete)
	return nil
}

// GetByID returns the entity with the given id, or ErrNotFound.
func (c *Collection[T]) GetByID(id string) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	if id == "" {
		return zero, types.ErrInvalidID
	}
	for _, e := range c.cached() {
		if e.EntityID() == id {
			return e, nil
		}
	}
	return zero, types.ErrNotFound
}

// List returns every entity in insertion order.
func (c *Collection[T]) List() ([]T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entities := c.cached()
	out := make([]T, len(entities))
	copy(out, entities)
	return out, nil
}

// Reload discards the in-memory cache and re-reads from the store. No
// further migration is applied; post-boot the store is already current.
func (c *Collection[T]) Reload() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loaded = false
	c.cache = nil
	c.cached()
	return nil
}

// ReadRaw returns the persisted collection as duck-typed documents, for
// the backup codec. It bypasses the cache so an export always captures
// committed state.
func (c *Collection[T]) ReadRaw() ([]map[string]any, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entities, err := c.readPersisted()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(entities)
	if err != nil {
		return nil, fmt.Errorf("encoding %s for export: %w", c.name, err)
	}
	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("decoding %s for export: %w", c.name, err)
	}
	if docs == nil {
		docs = []map[string]any{}
	}
	return docs, nil
}

// readPersisted loads the collection from the store for a mutation. An
// absent key is an empty collection; a corrupted key degrades to empty
// (logged) so one bad key cannot wedge its collection forever; any other
// failure aborts the mutation so a transient read error cannot clobber
// persisted data with a partial list.
func (c *Collection[T]) readPersisted() ([]T, error) {
	raw, err := c.store.Get(c.name)
	if err != nil {
		switch {
		case err == types.ErrKeyNotFound:
			return nil, nil
		case types.IsCorruption(err):
			c.log.Warn("collection corrupted, treating as empty",
				zap.String("collection", c.name), zap.Error(err))
			return nil, nil
		default:
			return nil, fmt.Errorf("loading %s: %w", c.name, err)
		}
	}
	var entities []T
	if err := json.Unmarshal(raw, &entities); err != nil {
		c.log.Warn("collection undecodable, treating as empty",
			zap.String("collection", c.name), zap.Error(err))
		return nil, nil
	}
	return entities, nil
}

// persist writes the full collection and refreshes the cache. Write
// failures surface to the caller; the cache is invalidated so the next
// read goes back to the store.
func (c *Collection[T]) persist(entities []T) error {
	if entities == nil {
		entities = []T{}
	}
	raw, err := json.Marshal(entities)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", c.name, err)
	}
	if err := c.store.Put(c.name, raw); err != nil {
		c.loaded = false
		c.cache = nil
		return fmt.Errorf("persisting %s: %w", c.name, err)
	}
	c.cache = entities
	c.loaded = true
	return nil
}

// cached returns the read-through cache, loading it on first use. Load
// failures degrade to an empty collection so the app can still start.
func (c *Collection[T]) cached() []T {
	if c.loaded {
		return c.cache
	}
	entities, err := c.readPersisted()
	if err != nil {
		c.log.Warn("collection load failed, serving empty",
			zap.String("collection", c.name), zap.Error(err))
		entities = nil
	}
	c.cache = entities
	c.loaded = true
	return c.cache
}

func (c *Collection[T]) publish(op bus.Op) {
	if c.bus == nil {
		return
	}
	c.bus.Publish(bus.Event{Collection: c.name, Op: op})
}

// newID generates a UUID v7, falling back to v4 if v7 generation fails.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
