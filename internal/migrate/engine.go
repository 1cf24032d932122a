// Package migrate brings persisted documents forward to the current schema
// version. The engine holds an ordered chain of version-to-version
// transforms; each runs over every document of the collections it declares,
// is idempotent, and depends only on its immediate predecessor's output
// shape. The same chain runs in-memory against a decoded backup envelope
// during import.
package migrate

import (
	"encoding/json"
	"fmt"
	"maps"

	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/pkg/types"
)

// CurrentSchemaVersion is the document shape contract this release writes.
// Once boot completes, the persisted marker equals this value.
const CurrentSchemaVersion = 4

// Migration transforms documents from one schema version to the next.
type Migration struct {
	From        int
	To          int
	Collections []string
	// Apply migrates a single document. It receives a copy it may mutate
	// freely; returning an error leaves the original document in place.
	Apply func(doc map[string]any) (map[string]any, error)
}

// Engine runs a migration chain against a document store or an envelope.
type Engine struct {
	migrations []Migration
	target     int
	log        *zap.Logger
}

// NewEngine returns an engine holding the built-in chain up to
// CurrentSchemaVersion.
func NewEngine(log *zap.Logger) *Engine {
	return newEngine(Chain(), CurrentSchemaVersion, log)
}

func newEngine(migrations []Migration, target int, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{migrations: migrations, target: target, log: log}
}

// Run normalizes the on-disk schema. It reads the persisted version marker
// (absent means version 1), applies each pending migration to every
// affected collection, and writes the marker once the chain completes.
// Repositories must not load before Run returns.
func (e *Engine) Run(store types.DocumentStore) error {
	version, err := ReadVersion(store)
	if err != nil {
		if !types.IsCorruption(err) {
			return err
		}
		// A corrupted marker is treated as the oldest supported version;
		// every migration is idempotent, so re-running the chain is safe.
		e.log.Warn("schema version marker corrupted, assuming oldest version", zap.Error(err))
		version = 1
	}
	if version > e.target {
		return fmt.Errorf("stored schema version %d: %w", version, types.ErrSchemaTooNew)
	}
	if version == e.target {
		return nil
	}

	for _, m := range e.migrations {
		if m.From < version {
			continue
		}
		for _, name := range m.Collections {
			if err := e.migrateStored(store, m, name); err != nil {
				return err
			}
		}
		e.log.Info("schema migration applied",
			zap.Int("from", m.From), zap.Int("to", m.To))
	}

	return WriteVersion(store, e.target)
}

// migrateStored rewrites one collection key under one migration. An absent
// or corrupted collection is skipped; corruption stays scoped to its key
// and never aborts the pass.
func (e *Engine) migrateStored(store types.DocumentStore, m Migration, name string) error {
	raw, err := store.Get(name)
	if err != nil {
		if err == types.ErrKeyNotFound {
			return nil
		}
		if types.IsCorruption(err) {
			e.log.Warn("skipping corrupted collection during migration",
				zap.String("collection", name), zap.Error(err))
			return nil
		}
		return err
	}

	var docs []map[string]any
	if err := json.Unmarshal(raw, &docs); err != nil {
		e.log.Warn("skipping unparseable collection during migration",
			zap.String("collection", name), zap.Error(err))
		return nil
	}

	docs = e.applyToDocs(m, name, docs)

	out, err := json.Marshal(docs)
	if err != nil {
		return fmt.Errorf("encoding migrated collection %s: %w", name, err)
	}
	return store.Put(name, out)
}

// RunEnvelope migrates a decoded backup envelope in-memory so an export
// from an older release is brought current before validation. An envelope
// newer than this release is rejected outright.
func (e *Engine) RunEnvelope(env *types.Envelope) error {
	if env.SchemaVersion > e.target {
		return fmt.Errorf("backup schema version %d: %w", env.SchemaVersion, types.ErrSchemaTooNew)
	}
	if env.SchemaVersion == e.target {
		return nil
	}

	for _, m := range e.migrations {
		if m.From < env.SchemaVersion {
			continue
		}
		for _, name := range m.Collections {
			docs, ok := env.Collections[name]
			if !ok {
				continue
			}
			env.Collections[name] = e.applyToDocs(m, name, docs)
		}
	}

	env.SchemaVersion = e.target
	return nil
}

// applyToDocs runs one migration over one collection's documents. A
// document that fails to migrate is logged and carried through unchanged;
// it does not abort the pass for the rest of the collection.
func (e *Engine) applyToDocs(m Migration, name string, docs []map[string]any) []map[string]any {
	out := make([]map[string]any, 0, len(docs))
	for _, doc := range docs {
		migrated, err := m.Apply(maps.Clone(doc))
		if err != nil {
			merr := &types.MigrationError{Collection: name, DocID: types.DocID(doc), Err: err}
			e.log.Warn("document skipped during migration",
				zap.Int("from", m.From), zap.Int("to", m.To), zap.Error(merr))
			out = append(out, doc)
			continue
		}
		out = append(out, migrated)
	}
	return out
}
