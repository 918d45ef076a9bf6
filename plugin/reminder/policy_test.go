package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/athenastudy/athena/store"
)

func strPtr(s string) *string { return &s }

func basePreference() *store.ReminderPreference {
	return &store.ReminderPreference{
		UserID:                  "user-1",
		NotificationsEnabled:    true,
		SessionRemindersEnabled: true,
		GoalRemindersEnabled:    true,
		StreakRemindersEnabled:  true,
		DailyCheckinsEnabled:    true,
		Timezone:                "UTC",
	}
}

func TestEvaluatePolicyDeliver(t *testing.T) {
	verdict := EvaluatePolicy(basePreference(), CategorySession, "token-1", time.Now().UTC())
	assert.True(t, verdict.Deliver)
	assert.Empty(t, verdict.Reason)
}

func TestEvaluatePolicyNilPreferenceDefaultsToEnabled(t *testing.T) {
	verdict := EvaluatePolicy(nil, CategorySession, "token-1", time.Now().UTC())
	assert.True(t, verdict.Deliver)

	verdict = EvaluatePolicy(nil, CategorySession, "", time.Now().UTC())
	assert.False(t, verdict.Deliver)
	assert.Equal(t, ReasonNoDeviceToken, verdict.Reason)
}

func TestEvaluatePolicyMasterToggle(t *testing.T) {
	pref := basePreference()
	pref.NotificationsEnabled = false

	verdict := EvaluatePolicy(pref, CategorySession, "token-1", time.Now().UTC())
	assert.False(t, verdict.Deliver)
	assert.Equal(t, ReasonNotificationsDisabled, verdict.Reason)
}

func TestEvaluatePolicyCategoryToggles(t *testing.T) {
	cases := []struct {
		category Category
		disable  func(*store.ReminderPreference)
		reason   string
	}{
		{CategorySession, func(p *store.ReminderPreference) { p.SessionRemindersEnabled = false }, ReasonSessionCategoryDisabled},
		{CategoryGoal, func(p *store.ReminderPreference) { p.GoalRemindersEnabled = false }, ReasonGoalCategoryDisabled},
		{CategoryStreak, func(p *store.ReminderPreference) { p.StreakRemindersEnabled = false }, ReasonStreakCategoryDisabled},
		{CategoryDailyCheckin, func(p *store.ReminderPreference) { p.DailyCheckinsEnabled = false }, ReasonCheckinCategoryDisabled},
	}

	for _, tc := range cases {
		pref := basePreference()
		tc.disable(pref)

		verdict := EvaluatePolicy(pref, tc.category, "token-1", time.Now().UTC())
		assert.False(t, verdict.Deliver, "category %s", tc.category)
		assert.Equal(t, tc.reason, verdict.Reason)

		// A disabled toggle only gates its own category.
		other := CategorySession
		if tc.category == CategorySession {
			other = CategoryGoal
		}
		verdict = EvaluatePolicy(pref, other, "token-1", time.Now().UTC())
		assert.True(t, verdict.Deliver, "category %s should not gate %s", tc.category, other)
	}
}

func TestEvaluatePolicyQuietHours(t *testing.T) {
	pref := basePreference()
	pref.QuietHoursStart = strPtr("22:00")
	pref.QuietHoursEnd = strPtr("07:00")

	// The window wraps midnight: 23:30 and 06:30 are quiet, 12:00 is not.
	quietEvening := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)
	verdict := EvaluatePolicy(pref, CategorySession, "token-1", quietEvening)
	assert.False(t, verdict.Deliver)
	assert.Equal(t, ReasonQuietHours, verdict.Reason)

	quietMorning := time.Date(2025, 3, 10, 6, 30, 0, 0, time.UTC)
	verdict = EvaluatePolicy(pref, CategorySession, "token-1", quietMorning)
	assert.False(t, verdict.Deliver)

	noon := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	verdict = EvaluatePolicy(pref, CategorySession, "token-1", noon)
	assert.True(t, verdict.Deliver)
}

func TestEvaluatePolicyQuietHoursBoundsInclusive(t *testing.T) {
	pref := basePreference()
	pref.QuietHoursStart = strPtr("22:00")
	pref.QuietHoursEnd = strPtr("07:00")

	atStart := time.Date(2025, 3, 10, 22, 0, 0, 0, time.UTC)
	assert.False(t, EvaluatePolicy(pref, CategorySession, "token-1", atStart).Deliver)

	atEnd := time.Date(2025, 3, 10, 7, 0, 0, 0, time.UTC)
	assert.False(t, EvaluatePolicy(pref, CategorySession, "token-1", atEnd).Deliver)

	justAfter := time.Date(2025, 3, 10, 7, 1, 0, 0, time.UTC)
	assert.True(t, EvaluatePolicy(pref, CategorySession, "token-1", justAfter).Deliver)
}

func TestEvaluatePolicyQuietHoursNonWrapping(t *testing.T) {
	pref := basePreference()
	pref.QuietHoursStart = strPtr("13:00")
	pref.QuietHoursEnd = strPtr("15:00")

	inside := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	assert.False(t, EvaluatePolicy(pref, CategorySession, "token-1", inside).Deliver)

	outside := time.Date(2025, 3, 10, 16, 0, 0, 0, time.UTC)
	assert.True(t, EvaluatePolicy(pref, CategorySession, "token-1", outside).Deliver)
}

func TestEvaluatePolicyQuietHoursTimezone(t *testing.T) {
	pref := basePreference()
	pref.Timezone = "Asia/Kuala_Lumpur" // UTC+8
	pref.QuietHoursStart = strPtr("22:00")
	pref.QuietHoursEnd = strPtr("07:00")

	// 15:00 UTC is 23:00 local, inside the quiet window.
	verdict := EvaluatePolicy(pref, CategorySession, "token-1", time.Date(2025, 3, 10, 15, 0, 0, 0, time.UTC))
	assert.False(t, verdict.Deliver)

	// 04:00 UTC is 12:00 local, outside.
	verdict = EvaluatePolicy(pref, CategorySession, "token-1", time.Date(2025, 3, 10, 4, 0, 0, 0, time.UTC))
	assert.True(t, verdict.Deliver)
}

func TestEvaluatePolicyQuietHoursMisconfigured(t *testing.T) {
	now := time.Date(2025, 3, 10, 23, 30, 0, 0, time.UTC)

	// Partial configuration never counts as quiet.
	pref := basePreference()
	pref.QuietHoursStart = strPtr("22:00")
	assert.True(t, EvaluatePolicy(pref, CategorySession, "token-1", now).Deliver)

	// Unparseable clocks never count as quiet.
	pref = basePreference()
	pref.QuietHoursStart = strPtr("late")
	pref.QuietHoursEnd = strPtr("07:00")
	assert.True(t, EvaluatePolicy(pref, CategorySession, "token-1", now).Deliver)

	// An invalid timezone falls back to UTC rather than erroring out.
	pref = basePreference()
	pref.Timezone = "Mars/Olympus_Mons"
	pref.QuietHoursStart = strPtr("22:00")
	pref.QuietHoursEnd = strPtr("07:00")
	assert.False(t, EvaluatePolicy(pref, CategorySession, "token-1", now).Deliver)
}
