// Package sm2 implements the SuperMemo-2 spaced-repetition scheduling
// algorithm over quiz item memory state.
//
// The visible product schema only carries the SM-2 storage columns
// (easiness_factor, interval_days, repetitions, next_review_date); the update
// rule itself is the standard SM-2 formulation, reconstructed here rather
// than ported from a reference implementation.
package sm2

import (
	"fmt"
	"math"
	"time"
)

// Rating is the user's self-assessed recall difficulty for one review.
type Rating string

const (
	RatingForgot Rating = "forgot"
	RatingHard   Rating = "hard"
	RatingGood   Rating = "good"
	RatingEasy   Rating = "easy"
)

// MinEasinessFactor is the floor below which the easiness factor never drops.
// Without it, repeated failures spiral an item into ever-shrinking intervals.
const MinEasinessFactor = 1.3

// InitialEasinessFactor is the easiness assigned to freshly created items.
const InitialEasinessFactor = 2.5

// Quality maps a difficulty rating to the SM-2 quality score (0-5).
//
// The mapping is forgot=2, hard=3, good=4, easy=5. Treating "forgot" as 2
// rather than 0 reads a lapse as "completely forgot but not a blackout":
// anything below 3 resets repetitions and interval identically, so the only
// effect of 2 over 0 is a gentler easiness penalty.
func Quality(r Rating) (int, error) {
	switch r {
	case RatingForgot:
		return 2, nil
	case RatingHard:
		return 3, nil
	case RatingGood:
		return 4, nil
	case RatingEasy:
		return 5, nil
	default:
		return 0, fmt.Errorf("invalid difficulty rating: %q", r)
	}
}

// IsCorrect reports whether a rating counts as a successful recall.
func IsCorrect(r Rating) bool {
	return r != RatingForgot
}

// State is the memory state of one quiz item.
type State struct {
	EasinessFactor float64
	IntervalDays   int
	Repetitions    int
}

// Result is the scheduling output of one review.
type Result struct {
	State
	NextReviewDate time.Time
}

// Compute applies one review to the item state and returns the new state and
// next review date. It is a pure function: identical inputs always produce
// identical outputs, and it never yields an easiness factor below
// MinEasinessFactor or an interval below one day.
func Compute(state State, rating Rating, today time.Time) (Result, error) {
	q, err := Quality(rating)
	if err != nil {
		return Result{}, err
	}

	// EF' = EF + (0.1 - (5-q) * (0.08 + (5-q) * 0.02)), clamped at the floor.
	qf := float64(q)
	ef := state.EasinessFactor + (0.1 - (5-qf)*(0.08+(5-qf)*0.02))
	if ef < MinEasinessFactor {
		ef = MinEasinessFactor
	}

	var repetitions, interval int
	if q < 3 {
		// Failed recall starts the item over.
		repetitions = 0
		interval = 1
	} else {
		repetitions = state.Repetitions + 1
		switch repetitions {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(state.IntervalDays) * ef))
		}
		if interval < 1 {
			interval = 1
		}
	}

	next := today.AddDate(0, 0, interval)
	return Result{
		State: State{
			EasinessFactor: ef,
			IntervalDays:   interval,
			Repetitions:    repetitions,
		},
		NextReviewDate: next,
	}, nil
}
