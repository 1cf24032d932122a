package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/halcyon-health/halcyon/internal/bus"
	"github.com/halcyon-health/halcyon/internal/migrate"
	"github.com/halcyon-health/halcyon/pkg/types"
)

func openApp(t *testing.T, cfg types.Config) *App {
	t.Helper()
	a, err := Open(cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

func fileConfig(t *testing.T) types.Config {
	t.Helper()
	return types.Config{Backend: types.BackendFile, DataDir: t.TempDir()}
}

func TestOpenMigratesAndServes(t *testing.T) {
	cfg := fileConfig(t)
	a := openApp(t, cfg)

	version, err := a.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, migrate.CurrentSchemaVersion, version)

	added, err := a.Goals.Add(types.Goal{Title: "Sleep more"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened := openApp(t, cfg)
	list, err := reopened.Goals.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, added.ID, list[0].ID)
}

func TestOpenRejectsBadConfig(t *testing.T) {
	_, err := Open(types.Config{Backend: "bogus", DataDir: t.TempDir()}, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrBackendUnknown)

	_, err = Open(types.Config{Backend: types.BackendFile}, zap.NewNop())
	assert.ErrorIs(t, err, types.ErrDataDirEmpty)
}

func TestSQLiteBackendRoundTrip(t *testing.T) {
	cfg := types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()}
	a := openApp(t, cfg)

	added, err := a.Habits.Add(types.Habit{Title: "Stretch"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	reopened := openApp(t, cfg)
	got, err := reopened.Habits.GetByID(added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Stretch", got.Title)
	assert.Equal(t, types.CadenceDaily, got.Cadence)
}

// A restored backup defines the world: documents added after the export are
// gone, and documents added after the import build on the restored state.
func TestRestorePrecedence(t *testing.T) {
	a := openApp(t, fileConfig(t))

	g1, err := a.Goals.Add(types.Goal{Title: "g1"})
	require.NoError(t, err)

	env, err := a.Export()
	require.NoError(t, err)
	raw, err := a.codec.Encode(env)
	require.NoError(t, err)

	_, err = a.Goals.Add(types.Goal{Title: "g2"})
	require.NoError(t, err)

	require.NoError(t, a.Import(raw))

	list, err := a.Goals.List()
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, g1.ID, list[0].ID)

	g3, err := a.Goals.Add(types.Goal{Title: "g3"})
	require.NoError(t, err)

	list, err = a.Goals.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, g1.ID, list[0].ID)
	assert.Equal(t, g3.ID, list[1].ID)
}

func TestImportEmptyBackupIsNotAMerge(t *testing.T) {
	a := openApp(t, fileConfig(t))

	env, err := a.Export()
	require.NoError(t, err)
	raw, err := a.codec.Encode(env)
	require.NoError(t, err)

	_, err = a.Goals.Add(types.Goal{Title: "Added after export"})
	require.NoError(t, err)

	require.NoError(t, a.Import(raw))

	list, err := a.Goals.List()
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestImportRejectsNewerBackup(t *testing.T) {
	a := openApp(t, fileConfig(t))

	_, err := a.Goals.Add(types.Goal{Title: "Keep me"})
	require.NoError(t, err)

	raw := []byte(`{"schemaVersion":99,"exportedAt":"2026-01-01T00:00:00Z","collections":{"goals":[]}}`)
	err = a.Import(raw)
	assert.ErrorIs(t, err, types.ErrSchemaTooNew)

	list, err := a.Goals.List()
	require.NoError(t, err)
	assert.Len(t, list, 1, "a rejected import changes nothing")
}

func TestImportMigratesOlderBackup(t *testing.T) {
	a := openApp(t, fileConfig(t))

	raw := []byte(`{
		"schemaVersion": 1,
		"exportedAt": "2024-01-01T00:00:00Z",
		"collections": {
			"goals": [{"id":"g1","title":"Run a 10k","createdAt":"2024-01-01T00:00:00Z"}],
			"habits": [{"id":"h1","name":"Walk","createdAt":"2024-01-01T00:00:00Z"}]
		}
	}`)
	require.NoError(t, a.Import(raw))

	goal, err := a.Goals.GetByID("g1")
	require.NoError(t, err)
	assert.Equal(t, types.GoalStatusActive, goal.Status)

	habit, err := a.Habits.GetByID("h1")
	require.NoError(t, err)
	assert.Equal(t, "Walk", habit.Title)
	assert.Equal(t, types.CadenceDaily, habit.Cadence)
}

func TestCorruptionIsolatedToOneCollection(t *testing.T) {
	cfg := fileConfig(t)
	require.NoError(t, os.WriteFile(
		filepath.Join(cfg.DataDir, types.CollectionHabits+".json"), []byte(`{not json`), 0o644))

	a := openApp(t, cfg)

	_, err := a.Goals.Add(types.Goal{Title: "Unaffected"})
	require.NoError(t, err)

	habits, err := a.Habits.List()
	require.NoError(t, err)
	assert.Empty(t, habits, "corrupted collection degrades to empty")

	goals, err := a.Goals.List()
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}

// The bus is synchronous, so a restore event handler runs after the commit.
// A write to an independent collection from inside the handler lands on the
// post-restore store without interleaving with the swap.
func TestWriteToIndependentCollectionDuringRestoreEvents(t *testing.T) {
	a := openApp(t, fileConfig(t))

	_, err := a.Goals.Add(types.Goal{Title: "g1"})
	require.NoError(t, err)
	env, err := a.Export()
	require.NoError(t, err)
	raw, err := a.codec.Encode(env)
	require.NoError(t, err)

	wrote := false
	a.Bus().Subscribe(func(ev bus.Event) {
		if ev.Op == bus.OpRestore && !wrote {
			wrote = true
			_, err := a.Habits.Add(types.Habit{Title: "Mid-restore habit"})
			assert.NoError(t, err)
		}
	})

	require.NoError(t, a.Import(raw))

	habits, err := a.Habits.List()
	require.NoError(t, err)
	require.Len(t, habits, 1)
	assert.Equal(t, "Mid-restore habit", habits[0].Title)

	goals, err := a.Goals.List()
	require.NoError(t, err)
	assert.Len(t, goals, 1)
}

func TestExportToWritesFile(t *testing.T) {
	a := openApp(t, fileConfig(t))

	_, err := a.Goals.Add(types.Goal{Title: "g1"})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, a.ExportTo(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	env, err := a.codec.Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, migrate.CurrentSchemaVersion, env.SchemaVersion)
	assert.Len(t, env.Collections[types.CollectionGoals], 1)
}

func TestAutoBackup(t *testing.T) {
	backupPath := filepath.Join(t.TempDir(), "auto.json")
	cfg := fileConfig(t)
	cfg.AutoBackupPath = backupPath
	cfg.AutoBackupDebounceSeconds = 1

	a := openApp(t, cfg)

	_, err := a.Goals.Add(types.Goal{Title: "g1"})
	require.NoError(t, err)

	deadline := time.After(5 * time.Second)
	for {
		if _, err := os.Stat(backupPath); err == nil {
			break
		}
		select {
		case <-deadline:
			t.Fatal("auto-backup file never appeared")
		case <-time.After(20 * time.Millisecond):
		}
	}

	raw, err := os.ReadFile(backupPath)
	require.NoError(t, err)
	env, err := a.codec.Decode(raw)
	require.NoError(t, err)
	assert.Len(t, env.Collections[types.CollectionGoals], 1)
}
