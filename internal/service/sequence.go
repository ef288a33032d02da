package service

import (
	"cmp"
	"math"
	"slices"

	"github.com/stemsi/ascent-backend/internal/model"
)

// OrderQuestions sorts questions into waypoint order: OrderIndex, then ID.
func OrderQuestions(questions []model.Question) {
	slices.SortStableFunc(questions, func(a, b model.Question) int {
		if c := cmp.Compare(a.OrderIndex, b.OrderIndex); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}

// QuestionAt returns the question for a 1-based step of an ordered sequence.
// A step past the end yields ErrJourneyExhausted.
func QuestionAt(ordered []model.Question, step int) (*model.Question, error) {
	if step < 1 {
		return nil, ErrNotFound
	}
	if step > len(ordered) {
		return nil, ErrJourneyExhausted
	}
	q := ordered[step-1]
	return &q, nil
}

// ProgressPercent is round(min(step/total, 1) * 100). Journeys without
// questions report 0.
func ProgressPercent(step, total int) int {
	if total <= 0 {
		return 0
	}
	ratio := math.Min(float64(step)/float64(total), 1)
	return int(math.Round(ratio * 100))
}
