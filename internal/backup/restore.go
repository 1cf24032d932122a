package backup

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/internal/bus"
	"github.com/halcyon-health/halcyon/internal/migrate"
	"github.com/halcyon-health/halcyon/pkg/types"
)

// stagingSuffix marks temporary keys holding staged restore writes.
const stagingSuffix = "~restore"

// Restorer atomically replaces persisted collections from a validated
// envelope.
type Restorer struct {
	store types.DocumentStore
	codec *Codec
	bus   *bus.Bus
	log   *zap.Logger
}

// NewRestorer returns a restore coordinator over the given store.
func NewRestorer(store types.DocumentStore, codec *Codec, b *bus.Bus, log *zap.Logger) *Restorer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Restorer{store: store, codec: codec, bus: b, log: log}
}

// Restore validates the envelope and commits it. Every collection named in
// the envelope is replaced; collections absent from the envelope are left
// untouched — import never deletes collections it wasn't given. A failed
// validation or a failed staging write leaves every collection exactly as
// it was. On commit, one restore event per collection is published.
func (r *Restorer) Restore(env *types.Envelope) error {
	if err := r.codec.Validate(env); err != nil {
		return err
	}

	// Stage every collection write to a temporary key first. Until every
	// staged write is confirmed, nothing user-visible has changed.
	names := restoredNames(env)
	staged := make([]string, 0, len(names))
	for _, name := range names {
		docs := env.Collections[name]
		if docs == nil {
			docs = []map[string]any{}
		}
		raw, err := json.Marshal(docs)
		if err != nil {
			r.unwind(staged)
			return fmt.Errorf("encoding %s for restore: %w", name, err)
		}
		if err := r.store.Put(name+stagingSuffix, raw); err != nil {
			r.unwind(staged)
			return fmt.Errorf("staging %s: %w", name, err)
		}
		staged = append(staged, name)
	}

	// Swap. Commit is short and runs to completion.
	for _, name := range names {
		raw, err := r.store.Get(name + stagingSuffix)
		if err != nil {
			return fmt.Errorf("reading staged %s: %w", name, err)
		}
		if err := r.store.Put(name, raw); err != nil {
			return fmt.Errorf("committing %s: %w", name, err)
		}
	}
	if err := migrate.WriteVersion(r.store, migrate.CurrentSchemaVersion); err != nil {
		return fmt.Errorf("writing schema version after restore: %w", err)
	}
	r.unwind(staged)

	for _, name := range names {
		if r.bus != nil {
			r.bus.Publish(bus.Event{Collection: name, Op: bus.OpRestore})
		}
	}
	r.log.Info("restore committed", zap.Int("collections", len(names)))
	return nil
}

// restoredNames returns the known collections named in the envelope, in
// the canonical stable order.
func restoredNames(env *types.Envelope) []string {
	var names []string
	for _, name := range types.Collections() {
		if _, ok := env.Collections[name]; ok {
			names = append(names, name)
		}
	}
	return names
}

// unwind removes staged keys, best-effort.
func (r *Restorer) unwind(staged []string) {
	for _, name := range staged {
		if err := r.store.Delete(name + stagingSuffix); err != nil {
			r.log.Warn("removing staged restore key failed",
				zap.String("collection", name), zap.Error(err))
		}
	}
}
