package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenastudy/athena/internal/profile"
	"github.com/athenastudy/athena/plugin/reminder"
	"github.com/athenastudy/athena/server/service/review"
	"github.com/athenastudy/athena/store"
)

// reviewStore is a minimal in-memory review.Store for handler tests.
type reviewStore struct {
	sessions map[string]*store.ReviewSession
	items    map[string]*store.QuizItem
}

func (f *reviewStore) GetReviewSession(_ context.Context, find *store.FindReviewSession) (*store.ReviewSession, error) {
	if find.ID == nil {
		return nil, nil
	}
	return f.sessions[*find.ID], nil
}

func (f *reviewStore) GetQuizItem(_ context.Context, find *store.FindQuizItem) (*store.QuizItem, error) {
	if find.ID == nil {
		return nil, nil
	}
	return f.items[*find.ID], nil
}

func (f *reviewStore) RecordReview(_ context.Context, record *store.RecordReview) (*store.ReviewResponse, error) {
	response := record.Response
	response.RespondedTs = time.Now().Unix()
	return response, nil
}

func newTestAPI(t *testing.T) (*echo.Echo, *reminder.MemoryStore) {
	t.Helper()

	rs := &reviewStore{
		sessions: map[string]*store.ReviewSession{
			"session-1": {
				ID:     "session-1",
				UserID: "user-1",
				Status: store.ReviewSessionStatusActive,
			},
		},
		items: map[string]*store.QuizItem{
			"item-1": {
				ID:             "item-1",
				QuizID:         "quiz-1",
				UserID:         "user-1",
				EasinessFactor: 2.5,
			},
		},
	}

	ms := reminder.NewMemoryStore()
	ms.PutStudySession(&store.StudySession{
		ID:      "study-1",
		UserID:  "user-1",
		Title:   "Physics",
		StartTs: time.Now().Add(2 * time.Hour).Unix(),
		EndTs:   time.Now().Add(3 * time.Hour).Unix(),
		Status:  store.StudySessionStatusScheduled,
	})
	ms.PutDeviceToken("user-1", "token-1")

	reminderService := reminder.NewService(ms, reminder.NewNoopNotifier(nil), reminder.Config{}, nil)
	scheduler := reminder.NewScheduler(reminderService, time.Hour, nil)

	api := &APIV1Service{
		Profile:           &profile.Profile{Mode: "dev"},
		ReviewService:     review.NewService(rs, nil),
		ReminderService:   reminderService,
		ReminderScheduler: scheduler,
	}

	e := echo.New()
	api.Register(e)
	return e, ms
}

func doJSON(e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestRecordReviewHandler(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"sessionId":"session-1","itemId":"item-1","rating":"good"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body RecordReviewResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.IsCorrect)
	assert.Equal(t, 1, body.Repetitions)
	assert.Equal(t, 1, body.IntervalDays)
	assert.NotEmpty(t, body.NextReviewDate)
}

func TestRecordReviewHandlerErrors(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"sessionId":"session-1","itemId":"item-1","rating":"breezy"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"sessionId":"missing","itemId":"item-1","rating":"good"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = doJSON(e, http.MethodPost, "/api/v1/reviews",
		`{"sessionId":"session-1","itemId":"missing","rating":"good"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRunRemindersHandler(t *testing.T) {
	e, ms := newTestAPI(t)
	_, err := ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-1",
		SessionID:     "study-1",
		UserID:        "user-1",
		OffsetMinutes: 120,
		ScheduledTs:   time.Now().Add(-time.Minute).Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})
	require.NoError(t, err)

	rec := doJSON(e, http.MethodPost, "/api/v1/reminders/run", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body RunRemindersResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	assert.Equal(t, 1, body.Stats.Processed)
	assert.Equal(t, 1, body.Stats.Sent)
	assert.Contains(t, body.Message, "1 sent")
	assert.NotEmpty(t, body.Timestamp)
}

func TestCreateAndCancelReminderHandlers(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions/study-1/reminders",
		`{"offsetMinutes":30}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var created SessionReminderResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, "study-1", created.SessionID)
	assert.Equal(t, "pending", created.Status)

	rec = doJSON(e, http.MethodDelete, "/api/v1/reminders/"+created.ID, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	// Second cancel fails: the reminder is no longer pending.
	rec = doJSON(e, http.MethodDelete, "/api/v1/reminders/"+created.ID, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateReminderUnknownSession(t *testing.T) {
	e, _ := newTestAPI(t)

	rec := doJSON(e, http.MethodPost, "/api/v1/sessions/missing/reminders",
		`{"offsetMinutes":30}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
