package reminder

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/athenastudy/athena/internal/errors"
	"github.com/athenastudy/athena/store"
)

// fakeNotifier records deliveries and optionally fails specific tokens.
type fakeNotifier struct {
	mu        sync.Mutex
	sent      []Message
	failToken string
}

func (f *fakeNotifier) Send(_ context.Context, deviceToken string, message Message, _ map[string]string) error {
	if f.failToken != "" && deviceToken == f.failToken {
		return errors.New("connection reset")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, message)
	return nil
}

func (f *fakeNotifier) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

var dispatchNow = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

func seedDispatch(t *testing.T) (*Service, *MemoryStore, *fakeNotifier) {
	t.Helper()

	ms := NewMemoryStore()
	ms.PutStudySession(&store.StudySession{
		ID:      "session-1",
		UserID:  "user-1",
		Title:   "Physics",
		StartTs: dispatchNow.Add(time.Hour).Unix(),
		EndTs:   dispatchNow.Add(2 * time.Hour).Unix(),
		Status:  store.StudySessionStatusScheduled,
	})
	ms.PutPreference(&store.ReminderPreference{
		UserID:                  "user-1",
		NotificationsEnabled:    true,
		SessionRemindersEnabled: true,
		GoalRemindersEnabled:    true,
		StreakRemindersEnabled:  true,
		DailyCheckinsEnabled:    true,
		Timezone:                "UTC",
	})
	ms.PutDeviceToken("user-1", "token-1")

	notifier := &fakeNotifier{}
	svc := NewService(ms, notifier, Config{}, nil)
	return svc, ms, notifier
}

func seedReminder(ms *MemoryStore, id string, offsetMinutes int) {
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            id,
		SessionID:     "session-1",
		UserID:        "user-1",
		OffsetMinutes: offsetMinutes,
		ScheduledTs:   dispatchNow.Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})
}

func TestProcessDueRemindersEndToEnd(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Sent: 1}, summary)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, "🕐 1 Hour Until Study Session", notifier.sent[0].Title)
	assert.Equal(t, `"Physics" starts in 1 hour. Set your goals!`, notifier.sent[0].Body)

	r, err := ms.GetSessionReminder(context.Background(), &store.FindSessionReminder{ID: strPtr("rem-1")})
	require.NoError(t, err)
	assert.Equal(t, store.ReminderStatusSent, r.Status)
	require.NotNil(t, r.SentTs)
	assert.Equal(t, dispatchNow.Unix(), *r.SentTs)
}

func TestProcessDueRemindersIdempotent(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)
	ctx := context.Background()

	first, err := svc.ProcessDueReminders(ctx, dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Sent)

	// A second cycle at the same instant selects nothing.
	second, err := svc.ProcessDueReminders(ctx, dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, second)
	assert.Equal(t, 1, notifier.sentCount())
}

func TestProcessDueRemindersPolicyRejectionCountsSkipped(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)
	ms.PutPreference(&store.ReminderPreference{
		UserID:   "user-1",
		Timezone: "UTC",
		// Master toggle off.
	})

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Skipped: 1}, summary)
	assert.Zero(t, notifier.sentCount())

	// The row is stored as failed with the rejection reason.
	r, err := ms.GetSessionReminder(context.Background(), &store.FindSessionReminder{ID: strPtr("rem-1")})
	require.NoError(t, err)
	assert.Equal(t, store.ReminderStatusFailed, r.Status)
	require.NotNil(t, r.ErrorMessage)
	assert.Equal(t, ReasonNotificationsDisabled, *r.ErrorMessage)
	assert.Nil(t, r.SentTs)
}

func TestProcessDueRemindersDeliveryFailure(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)
	notifier.failToken = "token-1"

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 1, Failed: 1}, summary)

	r, err := ms.GetSessionReminder(context.Background(), &store.FindSessionReminder{ID: strPtr("rem-1")})
	require.NoError(t, err)
	assert.Equal(t, store.ReminderStatusFailed, r.Status)
	require.NotNil(t, r.ErrorMessage)
	assert.Equal(t, "FCM delivery failed", *r.ErrorMessage)
}

func TestProcessDueRemindersRowFailureDoesNotAbortBatch(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)
	seedReminder(ms, "rem-2", 60)

	// Second user with no token: rejected by policy, first still delivers.
	ms.PutStudySession(&store.StudySession{
		ID:      "session-2",
		UserID:  "user-2",
		Title:   "History",
		StartTs: dispatchNow.Add(time.Hour).Unix(),
		EndTs:   dispatchNow.Add(2 * time.Hour).Unix(),
		Status:  store.StudySessionStatusScheduled,
	})
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-3",
		SessionID:     "session-2",
		UserID:        "user-2",
		OffsetMinutes: 60,
		ScheduledTs:   dispatchNow.Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 3, Sent: 2, Skipped: 1}, summary)
	assert.Equal(t, 2, notifier.sentCount())
}

func TestProcessDueRemindersSkipsNotYetDue(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-future",
		SessionID:     "session-1",
		UserID:        "user-1",
		OffsetMinutes: 15,
		ScheduledTs:   dispatchNow.Add(30 * time.Minute).Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Zero(t, notifier.sentCount())
}

func TestProcessDueRemindersCustomMessage(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	custom := "Bring the lab workbook"
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-1",
		SessionID:     "session-1",
		UserID:        "user-1",
		OffsetMinutes: 60,
		CustomMessage: &custom,
		ScheduledTs:   dispatchNow.Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})

	_, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	require.Len(t, notifier.sent, 1)
	assert.Equal(t, custom, notifier.sent[0].Body)
}

func TestProcessDueRemindersParallel(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	svc.parallelism = 4
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		seedReminder(ms, "rem-"+id, 60)
	}

	summary, err := svc.ProcessDueReminders(context.Background(), dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{Processed: 6, Sent: 6}, summary)
	assert.Equal(t, 6, notifier.sentCount())
}

func TestCreateForSession(t *testing.T) {
	svc, ms, _ := seedDispatch(t)
	svc.nowFn = func() time.Time { return dispatchNow }

	created, err := svc.CreateForSession(context.Background(), &CreateRequest{
		SessionID:     "session-1",
		OffsetMinutes: 15,
	})
	require.NoError(t, err)
	assert.Equal(t, store.ReminderStatusPending, created.Status)
	assert.True(t, created.Enabled)
	assert.Equal(t, dispatchNow.Add(45*time.Minute).Unix(), created.ScheduledTs)

	stored, err := ms.GetSessionReminder(context.Background(), &store.FindSessionReminder{ID: &created.ID})
	require.NoError(t, err)
	require.NotNil(t, stored)
}

func TestCreateForSessionPastTrigger(t *testing.T) {
	svc, _, _ := seedDispatch(t)
	svc.nowFn = func() time.Time { return dispatchNow }

	// Session starts in 60 minutes; a 90 minute offset is already past.
	_, err := svc.CreateForSession(context.Background(), &CreateRequest{
		SessionID:     "session-1",
		OffsetMinutes: 90,
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}

func TestCreateForSessionUnknownSession(t *testing.T) {
	svc, _, _ := seedDispatch(t)

	_, err := svc.CreateForSession(context.Background(), &CreateRequest{
		SessionID:     "missing",
		OffsetMinutes: 15,
	})
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeNotFound))
}

func TestCancelReminder(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	seedReminder(ms, "rem-1", 60)
	ctx := context.Background()

	require.NoError(t, svc.Cancel(ctx, "rem-1"))

	r, err := ms.GetSessionReminder(ctx, &store.FindSessionReminder{ID: strPtr("rem-1")})
	require.NoError(t, err)
	assert.Equal(t, store.ReminderStatusCancelled, r.Status)

	// Cancelled reminders are never selected.
	summary, err := svc.ProcessDueReminders(ctx, dispatchNow)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, summary)
	assert.Zero(t, notifier.sentCount())

	// Cancelling again is rejected: the row is no longer pending.
	err = svc.Cancel(ctx, "rem-1")
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeInvalidArgument))
}
