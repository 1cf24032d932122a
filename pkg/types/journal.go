package types

import "time"

// Mood values, shared by journal entries and pulse check-ins. Older
// releases recorded mood as a 1-5 number; the schema migration maps those
// onto this enum.
const (
	MoodLow     = "low"
	MoodDown    = "down"
	MoodNeutral = "neutral"
	MoodGood    = "good"
	MoodGreat   = "great"
)

// Moods lists the recognized mood values in ascending order. The index of
// a mood plus one is the numeric value older releases stored.
var Moods = []string{MoodLow, MoodDown, MoodNeutral, MoodGood, MoodGreat}

// ValidMood reports whether m is a recognized mood value.
func ValidMood(m string) bool {
	for _, v := range Moods {
		if v == m {
			return true
		}
	}
	return false
}

// MoodFromScale maps the legacy 1-5 numeric mood onto the enum.
// Out-of-range values are clamped.
func MoodFromScale(n int) string {
	if n < 1 {
		n = 1
	}
	if n > len(Moods) {
		n = len(Moods)
	}
	return Moods[n-1]
}

// JournalEntry is one dated free-text entry. Journal recency matters:
// the collection preserves insertion order.
type JournalEntry struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Mood      string    `json:"mood"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (j JournalEntry) EntityID() string { return j.ID }

func (j JournalEntry) Identified(id string, now time.Time) JournalEntry {
	j.ID = id
	j.CreatedAt = now
	if j.Mood == "" {
		j.Mood = MoodNeutral
	}
	return j
}

// Touched is a no-op: journal entries carry no modification timestamp.
func (j JournalEntry) Touched(time.Time) JournalEntry { return j }
