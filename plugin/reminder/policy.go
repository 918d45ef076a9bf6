package reminder

import (
	"time"

	"github.com/athenastudy/athena/server/timezone"
	"github.com/athenastudy/athena/store"
)

// Category is the kind of reminder a preference toggle gates.
type Category string

const (
	CategorySession      Category = "session"
	CategoryGoal         Category = "goal"
	CategoryStreak       Category = "streak"
	CategoryDailyCheckin Category = "daily_checkin"
)

// Rejection reasons stored verbatim to the reminder's error_message.
const (
	ReasonNotificationsDisabled   = "User notifications disabled"
	ReasonSessionCategoryDisabled = "Session reminders disabled"
	ReasonGoalCategoryDisabled    = "Goal reminders disabled"
	ReasonStreakCategoryDisabled  = "Streak reminders disabled"
	ReasonCheckinCategoryDisabled = "Daily check-ins disabled"
	ReasonNoDeviceToken           = "No FCM token found"
	ReasonQuietHours              = "Quiet hours active"
)

// Verdict is the outcome of evaluating a user's delivery policy.
type Verdict struct {
	Deliver bool
	Reason  string
}

func deliver() Verdict        { return Verdict{Deliver: true} }
func reject(r string) Verdict { return Verdict{Reason: r} }

// EvaluatePolicy decides whether a reminder may be delivered right now. It is
// a pure function of the preference row, the device token and the instant.
//
// A nil preference means the user never configured anything; every toggle
// defaults to enabled and no quiet hours apply.
func EvaluatePolicy(pref *store.ReminderPreference, category Category, deviceToken string, nowUTC time.Time) Verdict {
	if pref != nil {
		if !pref.NotificationsEnabled {
			return reject(ReasonNotificationsDisabled)
		}
		if v := categoryVerdict(pref, category); !v.Deliver {
			return v
		}
	}

	if deviceToken == "" {
		return reject(ReasonNoDeviceToken)
	}

	if pref != nil && inQuietHours(pref, nowUTC) {
		return reject(ReasonQuietHours)
	}

	return deliver()
}

func categoryVerdict(pref *store.ReminderPreference, category Category) Verdict {
	switch category {
	case CategorySession:
		if !pref.SessionRemindersEnabled {
			return reject(ReasonSessionCategoryDisabled)
		}
	case CategoryGoal:
		if !pref.GoalRemindersEnabled {
			return reject(ReasonGoalCategoryDisabled)
		}
	case CategoryStreak:
		if !pref.StreakRemindersEnabled {
			return reject(ReasonStreakCategoryDisabled)
		}
	case CategoryDailyCheckin:
		if !pref.DailyCheckinsEnabled {
			return reject(ReasonCheckinCategoryDisabled)
		}
	}
	return deliver()
}

// inQuietHours reports whether the instant falls inside the user's quiet
// window in their local timezone. Missing or malformed configuration never
// counts as quiet; a window whose end precedes its start wraps past midnight.
func inQuietHours(pref *store.ReminderPreference, nowUTC time.Time) bool {
	if pref.QuietHoursStart == nil || pref.QuietHoursEnd == nil {
		return false
	}

	start, err := timezone.ParseClock(*pref.QuietHoursStart)
	if err != nil {
		return false
	}
	end, err := timezone.ParseClock(*pref.QuietHoursEnd)
	if err != nil {
		return false
	}

	loc, _ := timezone.ParseTimezone(pref.Timezone)
	local := timezone.MinutesOfDay(timezone.NowInTimezone(nowUTC, loc))
	return timezone.InWindow(local, start, end)
}
