package types

import "time"

// Goal statuses.
const (
	GoalStatusActive   = "active"
	GoalStatusPaused   = "paused"
	GoalStatusAchieved = "achieved"
	GoalStatusArchived = "archived"
)

// GoalStatuses lists the recognized goal status values.
var GoalStatuses = []string{GoalStatusActive, GoalStatusPaused, GoalStatusAchieved, GoalStatusArchived}

// Goal is a long-running intention the user is working toward. Milestones
// and habits reference a goal by plain id string only.
type Goal struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func (g Goal) EntityID() string { return g.ID }

func (g Goal) Identified(id string, now time.Time) Goal {
	g.ID = id
	g.CreatedAt = now
	g.UpdatedAt = now
	if g.Status == "" {
		g.Status = GoalStatusActive
	}
	return g
}

func (g Goal) Touched(now time.Time) Goal {
	g.UpdatedAt = now
	return g
}

// WithStatus returns a copy with the status changed.
// Returns ErrInvalidStatus for unrecognized values.
func (g Goal) WithStatus(status string) (Goal, error) {
	if !validGoalStatus(status) {
		return g, ErrInvalidStatus
	}
	g.Status = status
	return g, nil
}

// WithTitle returns a copy with the title changed.
// Returns ErrEmptyTitle for an empty title.
func (g Goal) WithTitle(title string) (Goal, error) {
	if title == "" {
		return g, ErrEmptyTitle
	}
	g.Title = title
	return g, nil
}

func validGoalStatus(s string) bool {
	for _, v := range GoalStatuses {
		if v == s {
			return true
		}
	}
	return false
}
