// Package review records review responses and advances each item's
// spaced-repetition state through the SM-2 scheduler.
package review

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/athenastudy/athena/internal/errors"
	"github.com/athenastudy/athena/server/scheduler/sm2"
	"github.com/athenastudy/athena/store"
)

// Store is the persistence surface the service needs. *store.Store satisfies
// it; tests substitute a memory fake.
type Store interface {
	GetReviewSession(ctx context.Context, find *store.FindReviewSession) (*store.ReviewSession, error)
	GetQuizItem(ctx context.Context, find *store.FindQuizItem) (*store.QuizItem, error)
	RecordReview(ctx context.Context, record *store.RecordReview) (*store.ReviewResponse, error)
}

// Service records review responses.
type Service struct {
	store  Store
	logger *slog.Logger
	nowFn  func() time.Time
}

// NewService creates a review service.
func NewService(s Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:  s,
		logger: logger,
		nowFn:  time.Now,
	}
}

// RecordResponseRequest is one submitted review answer.
type RecordResponseRequest struct {
	SessionID string
	ItemID    string

	Rating              store.DifficultyRating
	UserAnswer          *string
	ResponseTimeSeconds *int
}

// RecordResponse validates the request, computes the item's next scheduling
// state and persists the full write set atomically. On success the returned
// response carries both the previous and new scheduling snapshots.
func (s *Service) RecordResponse(ctx context.Context, req *RecordResponseRequest) (*store.ReviewResponse, error) {
	if req.SessionID == "" {
		return nil, apperrors.InvalidArgument("sessionId is required")
	}
	if req.ItemID == "" {
		return nil, apperrors.InvalidArgument("itemId is required")
	}

	rating := sm2.Rating(req.Rating)
	if _, err := sm2.Quality(rating); err != nil {
		return nil, apperrors.InvalidArgument("invalid rating: %q", req.Rating)
	}

	session, err := s.store.GetReviewSession(ctx, &store.FindReviewSession{ID: &req.SessionID})
	if err != nil {
		return nil, apperrors.Unavailable("failed to load review session", err)
	}
	if session == nil {
		return nil, apperrors.NotFound("review session not found: %s", req.SessionID)
	}
	if session.Status != store.ReviewSessionStatusActive {
		return nil, apperrors.InvalidArgument("review session %s is %s, not active", session.ID, session.Status)
	}

	item, err := s.store.GetQuizItem(ctx, &store.FindQuizItem{ID: &req.ItemID})
	if err != nil {
		return nil, apperrors.Unavailable("failed to load quiz item", err)
	}
	if item == nil || item.UserID != session.UserID {
		return nil, apperrors.NotFound("quiz item not found: %s", req.ItemID)
	}
	if session.QuizID != nil && item.QuizID != *session.QuizID {
		return nil, apperrors.InvalidArgument("quiz item %s does not belong to the session's quiz", item.ID)
	}

	now := s.nowFn().UTC()
	result, err := sm2.Compute(sm2.State{
		EasinessFactor: item.EasinessFactor,
		IntervalDays:   item.IntervalDays,
		Repetitions:    item.Repetitions,
	}, rating, now)
	if err != nil {
		return nil, apperrors.InvalidArgument("invalid rating: %q", req.Rating)
	}

	correct := sm2.IsCorrect(rating)
	nextReviewDate := result.NextReviewDate.Format("2006-01-02")
	reviewedTs := now.Unix()

	record := &store.RecordReview{
		Response: &store.ReviewResponse{
			ID:         uuid.NewString(),
			QuizItemID: item.ID,
			SessionID:  session.ID,
			UserID:     session.UserID,

			Rating:              req.Rating,
			UserAnswer:          req.UserAnswer,
			ResponseTimeSeconds: req.ResponseTimeSeconds,
			IsCorrect:           correct,

			PreviousEasinessFactor: item.EasinessFactor,
			PreviousIntervalDays:   item.IntervalDays,
			PreviousRepetitions:    item.Repetitions,

			NewEasinessFactor: result.EasinessFactor,
			NewIntervalDays:   result.IntervalDays,
			NewRepetitions:    result.Repetitions,
			NewNextReviewDate: nextReviewDate,
		},
		ItemUpdate: &store.UpdateQuizItem{
			ID:             item.ID,
			EasinessFactor: &result.EasinessFactor,
			IntervalDays:   &result.IntervalDays,
			Repetitions:    &result.Repetitions,
			LastReviewedTs: &reviewedTs,
			NextReviewDate: &nextReviewDate,
		},
		SessionID: session.ID,
		Correct:   correct,
	}

	response, err := s.store.RecordReview(ctx, record)
	if err != nil {
		return nil, apperrors.TransactionFailed("failed to record review", err)
	}

	s.logger.Info("recorded review response",
		"session", session.ID,
		"item", item.ID,
		"rating", req.Rating,
		"interval_days", result.IntervalDays,
		"next_review_date", nextReviewDate)

	return response, nil
}
