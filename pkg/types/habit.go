package types

import "time"

// Habit cadences.
const (
	CadenceDaily  = "daily"
	CadenceWeekly = "weekly"
)

// Cadences lists the recognized habit cadence values.
var Cadences = []string{CadenceDaily, CadenceWeekly}

// Habit is a recurring practice, optionally attached to a goal by id.
type Habit struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	GoalID    string    `json:"goalId,omitempty"`
	Cadence   string    `json:"cadence"`
	Streak    int       `json:"streak"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (h Habit) EntityID() string { return h.ID }

func (h Habit) Identified(id string, now time.Time) Habit {
	h.ID = id
	h.CreatedAt = now
	h.UpdatedAt = now
	if h.Cadence == "" {
		h.Cadence = CadenceDaily
	}
	return h
}

func (h Habit) Touched(now time.Time) Habit {
	h.UpdatedAt = now
	return h
}

// WithCadence returns a copy with the cadence changed.
// Returns ErrInvalidCadence for unrecognized values.
func (h Habit) WithCadence(cadence string) (Habit, error) {
	if !validCadence(cadence) {
		return h, ErrInvalidCadence
	}
	h.Cadence = cadence
	return h, nil
}

// Advanced returns a copy with the streak counter incremented.
func (h Habit) Advanced() Habit {
	h.Streak++
	return h
}

// Broken returns a copy with the streak counter reset to zero.
func (h Habit) Broken() Habit {
	h.Streak = 0
	return h
}

func validCadence(c string) bool {
	for _, v := range Cadences {
		if v == c {
			return true
		}
	}
	return false
}
