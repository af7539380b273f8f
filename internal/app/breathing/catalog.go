// Package breathing holds the fixed catalog of guided breathing exercises.
package breathing

import (
	"time"

	"github.com/felix-companion/felix-agent/internal/domain"
)

// Pattern names the phase timing scheme of an exercise. Phase timing itself
// is a presentation concern; the backend only labels it.
type Pattern string

const (
	PatternBox            Pattern = "box"
	PatternFourSevenEight Pattern = "4-7-8"
	PatternEqual          Pattern = "4-4-4-4"
)

// Exercise is one guided breathing exercise.
type Exercise struct {
	ID          domain.ExerciseID
	Name        string
	Description string
	Duration    time.Duration
	Pattern     Pattern
}

// catalog is fixed at process start and never mutated.
var catalog = []Exercise{
	{
		ID:          "1",
		Name:        "Box Breathing",
		Description: "Inhale for 4, hold for 4, exhale for 4, hold for 4",
		Duration:    120 * time.Second,
		Pattern:     PatternBox,
	},
	{
		ID:          "2",
		Name:        "4-7-8 Technique",
		Description: "Inhale for 4, hold for 7, exhale for 8",
		Duration:    90 * time.Second,
		Pattern:     PatternFourSevenEight,
	},
	{
		ID:          "3",
		Name:        "Equal Breathing",
		Description: "Equal inhale and exhale for 4 counts each",
		Duration:    60 * time.Second,
		Pattern:     PatternEqual,
	},
}

// List returns the catalog in its fixed order. The result is a copy; callers
// may not mutate the catalog through it.
func List() []Exercise {
	out := make([]Exercise, len(catalog))
	copy(out, catalog)
	return out
}

// Find resolves an exercise by id. Returns domain.ErrNotFound for unknown ids.
func Find(id domain.ExerciseID) (Exercise, error) {
	for _, ex := range catalog {
		if ex.ID == id {
			return ex, nil
		}
	}
	return Exercise{}, domain.ErrNotFound
}
