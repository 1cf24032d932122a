package migrate

import (
	"fmt"

	"github.com/halcyon-health/halcyon/pkg/types"
)

// collectionRule is the minimal structural contract a document must meet
// after migration: required fields present, enum fields recognized.
type collectionRule struct {
	required []string
	enums    map[string][]string
}

var rules = map[string]collectionRule{
	types.CollectionGoals: {
		required: []string{"title", "status", "createdAt"},
		enums:    map[string][]string{"status": types.GoalStatuses},
	},
	types.CollectionMilestones: {
		required: []string{"goalId", "title", "createdAt"},
	},
	types.CollectionHabits: {
		required: []string{"title", "cadence", "createdAt"},
		enums:    map[string][]string{"cadence": types.Cadences},
	},
	types.CollectionJournal: {
		required: []string{"body", "mood", "createdAt"},
		enums:    map[string][]string{"mood": types.Moods},
	},
	types.CollectionAssessments: {
		required: []string{"kind", "takenAt"},
	},
	types.CollectionPulseCheckIns: {
		required: []string{"mood", "recordedAt"},
		enums:    map[string][]string{"mood": types.Moods},
	},
}

// ValidateCollections checks every document of every named collection
// against the structural rules. Violations collect into one
// *types.ValidationError naming each offending document; nothing is
// partially accepted.
func ValidateCollections(collections map[string][]map[string]any) error {
	var problems []string
	for _, name := range types.Collections() {
		docs, ok := collections[name]
		if !ok {
			continue
		}
		problems = append(problems, validateCollection(name, docs)...)
	}
	for name := range collections {
		if !types.KnownCollection(name) {
			problems = append(problems, fmt.Sprintf("unknown collection %q", name))
		}
	}
	if len(problems) > 0 {
		return &types.ValidationError{Problems: problems}
	}
	return nil
}

func validateCollection(name string, docs []map[string]any) []string {
	rule := rules[name]
	var problems []string
	seen := make(map[string]bool, len(docs))

	for i, doc := range docs {
		id := types.DocID(doc)
		label := fmt.Sprintf("%s[%d]", name, i)
		if id != "" {
			label = fmt.Sprintf("%s[%d] (id %s)", name, i, id)
		}

		if id == "" {
			problems = append(problems, label+": missing or empty id")
		} else if seen[id] {
			problems = append(problems, label+": duplicate id")
		}
		seen[id] = true

		for _, field := range rule.required {
			if v, ok := doc[field]; !ok || v == nil || v == "" {
				problems = append(problems, fmt.Sprintf("%s: missing required field %q", label, field))
			}
		}
		for field, allowed := range rule.enums {
			v, ok := doc[field].(string)
			if !ok {
				continue // missing already reported by required check
			}
			if !contains(allowed, v) {
				problems = append(problems, fmt.Sprintf("%s: field %q has unrecognized value %q", label, field, v))
			}
		}
	}
	return problems
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
