package store

import (
	"context"
)

// DifficultyRating is the user's self-rated recall difficulty.
type DifficultyRating string

const (
	RatingForgot DifficultyRating = "forgot"
	RatingHard   DifficultyRating = "hard"
	RatingGood   DifficultyRating = "good"
	RatingEasy   DifficultyRating = "easy"
)

// ReviewResponse is the immutable record of one review event. It captures
// both the before and after scheduling snapshots of the item so the item's
// current state can always be re-derived from the response log.
type ReviewResponse struct {
	ID         string
	QuizItemID string
	SessionID  string
	UserID     string

	Rating              DifficultyRating
	UserAnswer          *string
	ResponseTimeSeconds *int
	IsCorrect           bool

	PreviousEasinessFactor float64
	PreviousIntervalDays   int
	PreviousRepetitions    int

	NewEasinessFactor float64
	NewIntervalDays   int
	NewRepetitions    int
	NewNextReviewDate string

	RespondedTs int64
}

// FindReviewResponse is the find condition for review responses.
type FindReviewResponse struct {
	SessionID  *string
	QuizItemID *string
	UserID     *string

	Limit *int
}

// RecordReview is the atomic write set for one recorded response: the item's
// new scheduling state, the immutable response row, and the owning session's
// counter bump. Either all three writes commit or none do.
type RecordReview struct {
	Response   *ReviewResponse
	ItemUpdate *UpdateQuizItem
	SessionID  string
	Correct    bool
}

// RecordReview persists one review atomically.
func (s *Store) RecordReview(ctx context.Context, record *RecordReview) (*ReviewResponse, error) {
	return s.driver.RecordReview(ctx, record)
}

// ListReviewResponses lists review responses with filter.
func (s *Store) ListReviewResponses(ctx context.Context, find *FindReviewResponse) ([]*ReviewResponse, error) {
	return s.driver.ListReviewResponses(ctx, find)
}
