package types

import "time"

// PulseCheckIn is a lightweight mood/energy sample, cheaper than a full
// journal entry.
type PulseCheckIn struct {
	ID         string    `json:"id"`
	Mood       string    `json:"mood"`
	Energy     int       `json:"energy"`
	Note       string    `json:"note,omitempty"`
	RecordedAt time.Time `json:"recordedAt"`
}

func (p PulseCheckIn) EntityID() string { return p.ID }

func (p PulseCheckIn) Identified(id string, now time.Time) PulseCheckIn {
	p.ID = id
	if p.RecordedAt.IsZero() {
		p.RecordedAt = now
	}
	if p.Mood == "" {
		p.Mood = MoodNeutral
	}
	return p
}

// Touched is a no-op: check-ins are point-in-time samples.
func (p PulseCheckIn) Touched(time.Time) PulseCheckIn { return p }
