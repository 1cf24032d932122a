package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/internal/bus"
	"github.com/halcyon-health/halcyon/internal/migrate"
	"github.com/halcyon-health/halcyon/pkg/types"
)

// memStore is an in-memory types.DocumentStore. Writes to failPutKey fail,
// for exercising the staging unwind.
type memStore struct {
	data       map[string][]byte
	failPutKey string
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, error) {
	value, ok := m.data[key]
	if !ok {
		return nil, types.ErrKeyNotFound
	}
	return value, nil
}

func (m *memStore) Put(key string, value []byte) error {
	if key == m.failPutKey {
		return fmt.Errorf("disk full")
	}
	m.data[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	delete(m.data, key)
	return nil
}

func (m *memStore) Keys() ([]string, error) {
	keys := make([]string, 0, len(m.data))
	for key := range m.data {
		keys = append(keys, key)
	}
	return keys, nil
}

func (m *memStore) Close() error { return nil }

func (m *memStore) docs(t *testing.T, key string) []map[string]any {
	t.Helper()
	var docs []map[string]any
	require.NoError(t, json.Unmarshal(m.data[key], &docs))
	return docs
}

func newRestorer(store types.DocumentStore, b *bus.Bus) *Restorer {
	codec := NewCodec(migrate.NewEngine(zap.NewNop()), zap.NewNop())
	return NewRestorer(store, codec, b, zap.NewNop())
}

func currentEnvelope(collections map[string][]map[string]any) *types.Envelope {
	return &types.Envelope{
		SchemaVersion: migrate.CurrentSchemaVersion,
		Collections:   collections,
	}
}

func TestRestoreReplacesNamedCollections(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(types.CollectionGoals, []byte(`[{"id":"old"}]`)))

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {validGoalDoc("g1")},
	})

	require.NoError(t, newRestorer(store, nil).Restore(env))

	goals := store.docs(t, types.CollectionGoals)
	require.Len(t, goals, 1)
	assert.Equal(t, "g1", goals[0]["id"], "pre-restore contents fully replaced")
}

func TestRestoreLeavesAbsentCollectionsUntouched(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(types.CollectionHabits, []byte(`[{"id":"h1"}]`)))

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {validGoalDoc("g1")},
	})

	require.NoError(t, newRestorer(store, nil).Restore(env))

	habits := store.docs(t, types.CollectionHabits)
	require.Len(t, habits, 1)
	assert.Equal(t, "h1", habits[0]["id"])
}

func TestRestoreEmptyCollectionIsNotAMerge(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(types.CollectionGoals, []byte(`[{"id":"old"}]`)))

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {},
	})

	require.NoError(t, newRestorer(store, nil).Restore(env))

	assert.Empty(t, store.docs(t, types.CollectionGoals), "an empty backup collection empties the store")
}

func TestRestoreWritesVersionMarker(t *testing.T) {
	store := newMemStore()
	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {validGoalDoc("g1")},
	})

	require.NoError(t, newRestorer(store, nil).Restore(env))

	version, err := migrate.ReadVersion(store)
	require.NoError(t, err)
	assert.Equal(t, migrate.CurrentSchemaVersion, version)
}

func TestRestoreCleansStagingKeys(t *testing.T) {
	store := newMemStore()
	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals:  {validGoalDoc("g1")},
		types.CollectionHabits: {},
	})

	require.NoError(t, newRestorer(store, nil).Restore(env))

	keys, err := store.Keys()
	require.NoError(t, err)
	for _, key := range keys {
		assert.NotContains(t, key, stagingSuffix)
	}
}

func TestRestorePublishesPerCollection(t *testing.T) {
	store := newMemStore()
	b := bus.New(zap.NewNop())

	var events []bus.Event
	b.Subscribe(func(ev bus.Event) { events = append(events, ev) })

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals:  {validGoalDoc("g1")},
		types.CollectionHabits: {},
	})

	require.NoError(t, newRestorer(store, b).Restore(env))

	require.Len(t, events, 2)
	for _, ev := range events {
		assert.Equal(t, bus.OpRestore, ev.Op)
	}
	assert.Equal(t, types.CollectionGoals, events[0].Collection)
	assert.Equal(t, types.CollectionHabits, events[1].Collection)
}

func TestRestoreValidationFailureChangesNothing(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(types.CollectionGoals, []byte(`[{"id":"old"}]`)))

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {{"id": "g1"}}, // missing required fields
	})

	err := newRestorer(store, nil).Restore(env)

	var verr *types.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)

	goals := store.docs(t, types.CollectionGoals)
	require.Len(t, goals, 1)
	assert.Equal(t, "old", goals[0]["id"])
}

func TestRestoreStagingFailureUnwinds(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.Put(types.CollectionGoals, []byte(`[{"id":"old"}]`)))
	require.NoError(t, store.Put(types.CollectionHabits, []byte(`[{"id":"h-old"}]`)))
	store.failPutKey = types.CollectionHabits + stagingSuffix

	b := bus.New(zap.NewNop())
	var published int
	b.Subscribe(func(bus.Event) { published++ })

	env := currentEnvelope(map[string][]map[string]any{
		types.CollectionGoals: {validGoalDoc("g1")},
		types.CollectionHabits: {{
			"id": "h1", "title": "Stretch", "cadence": types.CadenceDaily,
			"createdAt": "2024-01-01T00:00:00Z",
		}},
	})

	err := newRestorer(store, b).Restore(env)
	require.Error(t, err)
	assert.Equal(t, 0, published, "a failed restore must not publish")

	// Both collections exactly as they were, no staged leftovers.
	goals := store.docs(t, types.CollectionGoals)
	assert.Equal(t, "old", goals[0]["id"])
	habits := store.docs(t, types.CollectionHabits)
	assert.Equal(t, "h-old", habits[0]["id"])

	keys, err := store.Keys()
	require.NoError(t, err)
	for _, key := range keys {
		assert.NotContains(t, key, stagingSuffix)
	}
}

func TestRestoreMigratesOlderEnvelope(t *testing.T) {
	store := newMemStore()
	env := &types.Envelope{
		SchemaVersion: 1,
		Collections: map[string][]map[string]any{
			types.CollectionGoals: {{
				"id": "g1", "title": "Run a 10k", "createdAt": "2024-01-01T00:00:00Z",
			}},
		},
	}

	require.NoError(t, newRestorer(store, nil).Restore(env))

	goals := store.docs(t, types.CollectionGoals)
	assert.Equal(t, types.GoalStatusActive, goals[0]["status"])
}
