package types

import "time"

// Assessment is a completed self-assessment: a named instrument, the
// per-question answers, and the computed score.
type Assessment struct {
	ID      string         `json:"id"`
	Kind    string         `json:"kind"`
	Score   int            `json:"score"`
	Answers map[string]int `json:"answers,omitempty"`
	TakenAt time.Time      `json:"takenAt"`
}

func (a Assessment) EntityID() string { return a.ID }

func (a Assessment) Identified(id string, now time.Time) Assessment {
	a.ID = id
	if a.TakenAt.IsZero() {
		a.TakenAt = now
	}
	return a
}

// Touched is a no-op: assessments are immutable once taken.
func (a Assessment) Touched(time.Time) Assessment { return a }
