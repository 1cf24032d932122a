package types

import "time"

// Milestone is a checkpoint on the way to a goal. GoalID is a plain id
// string resolved through the goal repository; deleting a goal does not
// cascade here — orphan handling belongs to higher-level orchestration.
type Milestone struct {
	ID          string     `json:"id"`
	GoalID      string     `json:"goalId"`
	Title       string     `json:"title"`
	Completed   bool       `json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (m Milestone) EntityID() string { return m.ID }

func (m Milestone) Identified(id string, now time.Time) Milestone {
	m.ID = id
	m.CreatedAt = now
	m.UpdatedAt = now
	return m
}

func (m Milestone) Touched(now time.Time) Milestone {
	m.UpdatedAt = now
	return m
}

// Complete returns a copy marked completed at the given time. Idempotent:
// completing an already-completed milestone keeps the original time.
func (m Milestone) Complete(now time.Time) Milestone {
	if m.Completed {
		return m
	}
	m.Completed = true
	m.CompletedAt = &now
	return m
}
