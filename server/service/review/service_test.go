package review

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/athenastudy/athena/internal/errors"
	"github.com/athenastudy/athena/store"
)

// fakeStore is an in-memory Store that applies RecordReview all-or-nothing,
// mirroring the driver transaction.
type fakeStore struct {
	sessions  map[string]*store.ReviewSession
	items     map[string]*store.QuizItem
	responses []*store.ReviewResponse

	recordErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions: map[string]*store.ReviewSession{},
		items:    map[string]*store.QuizItem{},
	}
}

func (f *fakeStore) GetReviewSession(_ context.Context, find *store.FindReviewSession) (*store.ReviewSession, error) {
	if find.ID == nil {
		return nil, nil
	}
	return f.sessions[*find.ID], nil
}

func (f *fakeStore) GetQuizItem(_ context.Context, find *store.FindQuizItem) (*store.QuizItem, error) {
	if find.ID == nil {
		return nil, nil
	}
	return f.items[*find.ID], nil
}

func (f *fakeStore) RecordReview(_ context.Context, record *store.RecordReview) (*store.ReviewResponse, error) {
	if f.recordErr != nil {
		return nil, f.recordErr
	}

	item, ok := f.items[record.ItemUpdate.ID]
	if !ok {
		return nil, errors.Errorf("quiz item not found: %s", record.ItemUpdate.ID)
	}
	session, ok := f.sessions[record.SessionID]
	if !ok {
		return nil, errors.Errorf("review session not found: %s", record.SessionID)
	}

	item.EasinessFactor = *record.ItemUpdate.EasinessFactor
	item.IntervalDays = *record.ItemUpdate.IntervalDays
	item.Repetitions = *record.ItemUpdate.Repetitions
	item.LastReviewedTs = record.ItemUpdate.LastReviewedTs
	item.NextReviewDate = record.ItemUpdate.NextReviewDate

	session.CompletedItems++
	if record.Correct {
		session.CorrectResponses++
	}

	response := record.Response
	response.RespondedTs = time.Now().Unix()
	f.responses = append(f.responses, response)
	return response, nil
}

func seedService(t *testing.T) (*Service, *fakeStore) {
	t.Helper()

	fs := newFakeStore()
	quizID := "quiz-1"
	fs.sessions["session-1"] = &store.ReviewSession{
		ID:          "session-1",
		UserID:      "user-1",
		QuizID:      &quizID,
		SessionType: store.ReviewSessionTypeMixed,
		Status:      store.ReviewSessionStatusActive,
		TotalItems:  10,
	}
	fs.items["item-1"] = &store.QuizItem{
		ID:             "item-1",
		QuizID:         quizID,
		UserID:         "user-1",
		QuestionText:   "What is the capital of Malaysia?",
		AnswerText:     "Kuala Lumpur",
		ItemType:       store.QuizItemTypeFlashcard,
		EasinessFactor: 2.5,
	}

	svc := NewService(fs, nil)
	svc.nowFn = func() time.Time {
		return time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	}
	return svc, fs
}

func TestRecordResponseFirstReview(t *testing.T) {
	svc, fs := seedService(t)

	response, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "item-1",
		Rating:    store.RatingGood,
	})
	require.NoError(t, err)

	assert.True(t, response.IsCorrect)
	assert.Equal(t, 2.5, response.PreviousEasinessFactor)
	assert.Equal(t, 0, response.PreviousRepetitions)
	assert.Equal(t, 1, response.NewRepetitions)
	assert.Equal(t, 1, response.NewIntervalDays)
	assert.Equal(t, "2025-03-11", response.NewNextReviewDate)

	item := fs.items["item-1"]
	assert.Equal(t, 1, item.Repetitions)
	require.NotNil(t, item.NextReviewDate)
	assert.Equal(t, "2025-03-11", *item.NextReviewDate)
	require.NotNil(t, item.LastReviewedTs)

	session := fs.sessions["session-1"]
	assert.Equal(t, 1, session.CompletedItems)
	assert.Equal(t, 1, session.CorrectResponses)
}

func TestRecordResponseForgotNotCounted(t *testing.T) {
	svc, fs := seedService(t)
	fs.items["item-1"].Repetitions = 3
	fs.items["item-1"].IntervalDays = 15

	response, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "item-1",
		Rating:    store.RatingForgot,
	})
	require.NoError(t, err)

	assert.False(t, response.IsCorrect)
	assert.Equal(t, 0, response.NewRepetitions)
	assert.Equal(t, 1, response.NewIntervalDays)

	session := fs.sessions["session-1"]
	assert.Equal(t, 1, session.CompletedItems)
	assert.Equal(t, 0, session.CorrectResponses)
}

func TestRecordResponseValidation(t *testing.T) {
	svc, _ := seedService(t)
	ctx := context.Background()

	_, err := svc.RecordResponse(ctx, &RecordResponseRequest{ItemID: "item-1", Rating: store.RatingGood})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = svc.RecordResponse(ctx, &RecordResponseRequest{SessionID: "session-1", Rating: store.RatingGood})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))

	_, err = svc.RecordResponse(ctx, &RecordResponseRequest{SessionID: "session-1", ItemID: "item-1", Rating: "breezy"})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestRecordResponseSessionNotFound(t *testing.T) {
	svc, _ := seedService(t)

	_, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "missing",
		ItemID:    "item-1",
		Rating:    store.RatingGood,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestRecordResponseSessionNotActive(t *testing.T) {
	svc, fs := seedService(t)
	fs.sessions["session-1"].Status = store.ReviewSessionStatusCompleted

	_, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "item-1",
		Rating:    store.RatingGood,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestRecordResponseItemNotFound(t *testing.T) {
	svc, _ := seedService(t)

	_, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "missing",
		Rating:    store.RatingGood,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestRecordResponseItemOutsideSessionQuiz(t *testing.T) {
	svc, fs := seedService(t)
	fs.items["item-2"] = &store.QuizItem{
		ID:             "item-2",
		QuizID:         "quiz-other",
		UserID:         "user-1",
		EasinessFactor: 2.5,
	}

	_, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "item-2",
		Rating:    store.RatingGood,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestRecordResponseAtomicOnTransactionFailure(t *testing.T) {
	svc, fs := seedService(t)
	fs.recordErr = errors.New("disk full")

	_, err := svc.RecordResponse(context.Background(), &RecordResponseRequest{
		SessionID: "session-1",
		ItemID:    "item-1",
		Rating:    store.RatingGood,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeTransactionFailed))

	// Nothing may have moved: no response row, untouched item and counters.
	assert.Empty(t, fs.responses)
	assert.Equal(t, 0, fs.items["item-1"].Repetitions)
	assert.Nil(t, fs.items["item-1"].NextReviewDate)
	assert.Equal(t, 0, fs.sessions["session-1"].CompletedItems)
}
