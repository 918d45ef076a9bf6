package store

import (
	"context"
)

// QuizItemType is the kind of testable fact a quiz item holds.
type QuizItemType string

const (
	QuizItemTypeFlashcard      QuizItemType = "flashcard"
	QuizItemTypeMultipleChoice QuizItemType = "multiple_choice"
)

// QuizItem is a single testable fact owned by a quiz.
//
// The scheduling columns (easiness factor, interval, repetitions, next review
// date) are mutated exclusively through RecordReview; the item itself is
// never deleted by the scheduler.
type QuizItem struct {
	ID           string
	QuizID       string
	UserID       string
	QuestionText string
	AnswerText   string
	ItemType     QuizItemType

	// MCQOptions is a JSON array of options, present only for multiple choice.
	MCQOptions          *string
	MCQCorrectOptionKey *string

	// Spaced-repetition state. EasinessFactor never drops below 1.3.
	EasinessFactor float64
	IntervalDays   int
	Repetitions    int
	LastReviewedTs *int64
	// NextReviewDate is a date string in YYYY-MM-DD form.
	NextReviewDate *string

	CreatedTs int64
	UpdatedTs int64
}

// FindQuizItem is the find condition for quiz items.
type FindQuizItem struct {
	ID     *string
	QuizID *string
	UserID *string

	// DueBefore selects items whose next_review_date is on or before the
	// given YYYY-MM-DD date (or has never been reviewed).
	DueBefore *string

	Limit  *int
	Offset *int
}

// UpdateQuizItem is the update request for a quiz item's scheduling state.
type UpdateQuizItem struct {
	ID             string
	EasinessFactor *float64
	IntervalDays   *int
	Repetitions    *int
	LastReviewedTs *int64
	NextReviewDate *string
}

// CreateQuizItem creates a new quiz item.
func (s *Store) CreateQuizItem(ctx context.Context, create *QuizItem) (*QuizItem, error) {
	return s.driver.CreateQuizItem(ctx, create)
}

// ListQuizItems lists quiz items with filter.
func (s *Store) ListQuizItems(ctx context.Context, find *FindQuizItem) ([]*QuizItem, error) {
	return s.driver.ListQuizItems(ctx, find)
}

// GetQuizItem gets a single quiz item, or nil when absent.
func (s *Store) GetQuizItem(ctx context.Context, find *FindQuizItem) (*QuizItem, error) {
	list, err := s.driver.ListQuizItems(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateQuizItem updates a quiz item's scheduling state.
func (s *Store) UpdateQuizItem(ctx context.Context, update *UpdateQuizItem) error {
	return s.driver.UpdateQuizItem(ctx, update)
}
