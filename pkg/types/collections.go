package types

// Collection names. Each entity type lives under exactly one document store
// key and each key has exactly one repository writer.
const (
	CollectionGoals         = "goals"
	CollectionMilestones    = "milestones"
	CollectionHabits        = "habits"
	CollectionJournal       = "journal_entries"
	CollectionAssessments   = "assessments"
	CollectionPulseCheckIns = "pulse_checkins"
)

// SchemaVersionKey is the store key holding the persisted schema version
// marker. It is not a collection and never appears in a backup envelope's
// collections map.
const SchemaVersionKey = "schema_version"

// Collections returns every collection name in a stable order.
func Collections() []string {
	return []string{
		CollectionGoals,
		CollectionMilestones,
		CollectionHabits,
		CollectionJournal,
		CollectionAssessments,
		CollectionPulseCheckIns,
	}
}

// KnownCollection reports whether name is a recognized collection.
func KnownCollection(name string) bool {
	for _, c := range Collections() {
		if c == name {
			return true
		}
	}
	return false
}
