// Package app is the composition root the hosting UI layer holds: it opens
// the configured store backend, runs the migration engine before any
// repository loads, and wires the repositories, change bus, backup codec,
// restore coordinator, and optional auto-backup scheduler together.
package app

import (
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/internal/backup"
	"github.com/halcyon-health/halcyon/internal/bus"
	"github.com/halcyon-health/halcyon/internal/filestore"
	"github.com/halcyon-health/halcyon/internal/migrate"
	"github.com/halcyon-health/halcyon/internal/repo"
	"github.com/halcyon-health/halcyon/internal/sqlitestore"
	"github.com/halcyon-health/halcyon/pkg/types"
)

// App owns the persistence core for one data directory.
type App struct {
	cfg   types.Config
	store types.DocumentStore
	bus   *bus.Bus
	log   *zap.Logger

	Goals       *repo.Collection[types.Goal]
	Milestones  *repo.Collection[types.Milestone]
	Habits      *repo.Collection[types.Habit]
	Journal     *repo.Collection[types.JournalEntry]
	Assessments *repo.Collection[types.Assessment]
	Pulses      *repo.Collection[types.PulseCheckIn]

	codec     *backup.Codec
	restorer  *backup.Restorer
	scheduler *bus.Scheduler
}

// Open validates the config, opens the store backend, migrates the on-disk
// schema, and constructs the repositories. Repositories load lazily after
// Open returns.
func Open(cfg types.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	engine := migrate.NewEngine(log)
	if err := engine.Run(store); err != nil {
		store.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	b := bus.New(log)
	a := &App{
		cfg:   cfg,
		store: store,
		bus:   b,
		log:   log,

		Goals:       repo.New[types.Goal](types.CollectionGoals, store, b, log),
		Milestones:  repo.New[types.Milestone](types.CollectionMilestones, store, b, log),
		Habits:      repo.New[types.Habit](types.CollectionHabits, store, b, log),
		Journal:     repo.New[types.JournalEntry](types.CollectionJournal, store, b, log),
		Assessments: repo.New[types.Assessment](types.CollectionAssessments, store, b, log),
		Pulses:      repo.New[types.PulseCheckIn](types.CollectionPulseCheckIns, store, b, log),
	}
	a.codec = backup.NewCodec(engine, log)
	a.restorer = backup.NewRestorer(store, a.codec, b, log)

	if cfg.AutoBackupPath != "" {
		debounce := time.Duration(cfg.AutoBackupDebounceSeconds) * time.Second
		a.scheduler = bus.NewScheduler(b, debounce, func() error {
			return a.ExportTo(cfg.AutoBackupPath)
		}, log)
	}

	return a, nil
}

func openStore(cfg types.Config) (types.DocumentStore, error) {
	switch cfg.Backend {
	case types.BackendFile:
		return filestore.Open(cfg.DataDir)
	case types.BackendSQLite:
		return sqlitestore.Open(cfg.DataDir)
	default:
		return nil, types.ErrBackendUnknown
	}
}

// Bus returns the persistence change bus for subscribers such as the UI.
func (a *App) Bus() *bus.Bus { return a.bus }

// SchemaVersion returns the persisted schema version marker.
func (a *App) SchemaVersion() (int, error) {
	return migrate.ReadVersion(a.store)
}

// Export snapshots every collection into a new envelope.
func (a *App) Export() (*types.Envelope, error) {
	return a.codec.Export(a)
}

// ExportTo writes an encoded export to the given file path.
func (a *App) ExportTo(path string) error {
	env, err := a.Export()
	if err != nil {
		return err
	}
	raw, err := a.codec.Encode(env)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("writing backup file: %w", err)
	}
	return nil
}

// Import decodes, validates, and restores a backup, then reloads every
// repository cache.
func (a *App) Import(raw []byte) error {
	env, err := a.codec.Decode(raw)
	if err != nil {
		return err
	}
	if err := a.restorer.Restore(env); err != nil {
		return err
	}
	for _, r := range a.reloaders() {
		if err := r(); err != nil {
			return err
		}
	}
	return nil
}

// Collections implements backup.Source.
func (a *App) Collections() []string { return types.Collections() }

// ReadCollection implements backup.Source by dispatching to the owning
// repository's raw accessor.
func (a *App) ReadCollection(name string) ([]map[string]any, error) {
	switch name {
	case types.CollectionGoals:
		return a.Goals.ReadRaw()
	case types.CollectionMilestones:
		return a.Milestones.ReadRaw()
	case types.CollectionHabits:
		return a.Habits.ReadRaw()
	case types.CollectionJournal:
		return a.Journal.ReadRaw()
	case types.CollectionAssessments:
		return a.Assessments.ReadRaw()
	case types.CollectionPulseCheckIns:
		return a.Pulses.ReadRaw()
	default:
		return nil, fmt.Errorf("collection %q: %w", name, types.ErrNotFound)
	}
}

func (a *App) reloaders() []func() error {
	return []func() error{
		a.Goals.Reload,
		a.Milestones.Reload,
		a.Habits.Reload,
		a.Journal.Reload,
		a.Assessments.Reload,
		a.Pulses.Reload,
	}
}

// Close stops the auto-backup scheduler and closes the store. Idempotent.
func (a *App) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	return a.store.Close()
}
