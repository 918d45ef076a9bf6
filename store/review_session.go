package store

import (
	"context"
)

// ReviewSessionType selects which items a session draws from.
type ReviewSessionType string

const (
	ReviewSessionTypeMixed   ReviewSessionType = "mixed"
	ReviewSessionTypeDueOnly ReviewSessionType = "due_only"
	ReviewSessionTypeNewOnly ReviewSessionType = "new_only"
)

// ReviewSessionStatus is the lifecycle state of a review session.
// Transitions are active -> completed or active -> abandoned; both terminal.
type ReviewSessionStatus string

const (
	ReviewSessionStatusActive    ReviewSessionStatus = "active"
	ReviewSessionStatusCompleted ReviewSessionStatus = "completed"
	ReviewSessionStatusAbandoned ReviewSessionStatus = "abandoned"
)

// ReviewSession is a bounded sequence of review responses.
// Invariants: CompletedItems <= TotalItems, CorrectResponses <= CompletedItems.
type ReviewSession struct {
	ID     string
	UserID string
	QuizID *string

	SessionType ReviewSessionType
	Status      ReviewSessionStatus

	TotalItems       int
	CompletedItems   int
	CorrectResponses int

	StartedTs   int64
	CompletedTs *int64
}

// FindReviewSession is the find condition for review sessions.
type FindReviewSession struct {
	ID     *string
	UserID *string
	Status *ReviewSessionStatus

	Limit *int
}

// UpdateReviewSession is the update request for a review session.
// Counter bumps happen inside RecordReview, not here.
type UpdateReviewSession struct {
	ID          string
	Status      *ReviewSessionStatus
	CompletedTs *int64
}

// CreateReviewSession creates a new review session.
func (s *Store) CreateReviewSession(ctx context.Context, create *ReviewSession) (*ReviewSession, error) {
	return s.driver.CreateReviewSession(ctx, create)
}

// ListReviewSessions lists review sessions with filter.
func (s *Store) ListReviewSessions(ctx context.Context, find *FindReviewSession) ([]*ReviewSession, error) {
	return s.driver.ListReviewSessions(ctx, find)
}

// GetReviewSession gets a single review session, or nil when absent.
func (s *Store) GetReviewSession(ctx context.Context, find *FindReviewSession) (*ReviewSession, error) {
	list, err := s.driver.ListReviewSessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateReviewSession updates a review session.
func (s *Store) UpdateReviewSession(ctx context.Context, update *UpdateReviewSession) error {
	return s.driver.UpdateReviewSession(ctx, update)
}
