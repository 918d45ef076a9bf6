package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/athenastudy/athena/store"
)

func TestSchedulerStartStop(t *testing.T) {
	svc, _, _ := seedDispatch(t)
	scheduler := NewScheduler(svc, time.Hour, nil)

	scheduler.Start(context.Background())
	assert.True(t, scheduler.IsRunning())

	// Starting twice is a no-op.
	scheduler.Start(context.Background())
	assert.True(t, scheduler.IsRunning())

	scheduler.Stop()
	assert.False(t, scheduler.IsRunning())

	// Stopping twice is a no-op.
	scheduler.Stop()
}

func TestSchedulerRunOnce(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-1",
		SessionID:     "session-1",
		UserID:        "user-1",
		OffsetMinutes: 60,
		ScheduledTs:   time.Now().Add(-time.Minute).Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})
	ms.PutStudySession(&store.StudySession{
		ID:      "session-1",
		UserID:  "user-1",
		Title:   "Physics",
		StartTs: time.Now().Add(59 * time.Minute).Unix(),
		EndTs:   time.Now().Add(2 * time.Hour).Unix(),
		Status:  store.StudySessionStatusScheduled,
	})

	scheduler := NewScheduler(svc, time.Hour, nil)
	summary, err := scheduler.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Sent)
	assert.Equal(t, 1, notifier.sentCount())

	stats := scheduler.Metrics().GetStats()
	assert.Equal(t, int64(1), stats.TotalProcessed)
	assert.Equal(t, int64(1), stats.TotalSent)
	assert.False(t, stats.LastRunAt.IsZero())
}

func TestSchedulerImmediateCycleOnStart(t *testing.T) {
	svc, ms, notifier := seedDispatch(t)
	_, _ = ms.CreateSessionReminder(context.Background(), &store.SessionReminder{
		ID:            "rem-1",
		SessionID:     "session-1",
		UserID:        "user-1",
		OffsetMinutes: 60,
		ScheduledTs:   time.Now().Add(-time.Minute).Unix(),
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	})

	scheduler := NewScheduler(svc, time.Hour, nil)
	scheduler.Start(context.Background())
	defer scheduler.Stop()

	require.Eventually(t, func() bool {
		return notifier.sentCount() == 1
	}, 2*time.Second, 10*time.Millisecond)
}
