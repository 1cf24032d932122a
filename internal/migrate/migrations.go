package migrate

import (
	"fmt"

	"github.com/halcyon-health/halcyon/pkg/types"
)

// Chain returns the built-in migration chain, ordered. Each transform is
// idempotent: re-applying it to an already-migrated document is a no-op.
func Chain() []Migration {
	return []Migration{
		{
			From:        1,
			To:          2,
			Collections: []string{types.CollectionGoals},
			Apply:       addGoalStatus,
		},
		{
			From:        2,
			To:          3,
			Collections: []string{types.CollectionJournal, types.CollectionPulseCheckIns},
			Apply:       moodScaleToEnum,
		},
		{
			From:        3,
			To:          4,
			Collections: []string{types.CollectionHabits},
			Apply:       renameHabitTitle,
		},
	}
}

// addGoalStatus backfills the status field introduced in version 2.
// Goals written before it are considered active.
func addGoalStatus(doc map[string]any) (map[string]any, error) {
	if _, ok := doc["status"]; !ok {
		doc["status"] = types.GoalStatusActive
	}
	return doc, nil
}

// moodScaleToEnum maps the legacy 1-5 numeric mood onto the string enum.
// Already-migrated string moods pass through untouched.
func moodScaleToEnum(doc map[string]any) (map[string]any, error) {
	switch mood := doc["mood"].(type) {
	case float64:
		doc["mood"] = types.MoodFromScale(int(mood))
		return doc, nil
	case string:
		return doc, nil
	case nil:
		return nil, fmt.Errorf("mood field missing")
	default:
		return nil, fmt.Errorf("mood field has unexpected type %T", mood)
	}
}

// renameHabitTitle renames the legacy "name" field to "title" and backfills
// the cadence introduced in version 4.
func renameHabitTitle(doc map[string]any) (map[string]any, error) {
	if name, ok := doc["name"].(string); ok {
		if _, hasTitle := doc["title"]; !hasTitle {
			doc["title"] = name
		}
		delete(doc, "name")
	}
	if _, ok := doc["cadence"]; !ok {
		doc["cadence"] = types.CadenceDaily
	}
	return doc, nil
}
