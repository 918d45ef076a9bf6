package store

import (
	"context"
	"fmt"
)

// ReminderPreference is a user's reminder delivery policy.
type ReminderPreference struct {
	UserID string

	NotificationsEnabled    bool
	SessionRemindersEnabled bool
	GoalRemindersEnabled    bool
	StreakRemindersEnabled  bool
	DailyCheckinsEnabled    bool

	// Quiet hours are local times of day ("HH:MM"); an end before the start
	// means the window wraps past midnight. Nil means no quiet hours.
	QuietHoursStart *string
	QuietHoursEnd   *string

	// Timezone is an IANA identifier, e.g. "Asia/Kuala_Lumpur".
	Timezone string

	CreatedTs int64
	UpdatedTs int64
}

// FindReminderPreference is the find condition for reminder preferences.
type FindReminderPreference struct {
	UserID *string
}

// UpsertReminderPreference is the upsert request for a user's preference row.
type UpsertReminderPreference struct {
	UserID string

	NotificationsEnabled    bool
	SessionRemindersEnabled bool
	GoalRemindersEnabled    bool
	StreakRemindersEnabled  bool
	DailyCheckinsEnabled    bool

	QuietHoursStart *string
	QuietHoursEnd   *string
	Timezone        string
}

// UpsertReminderPreference creates or replaces a user's preference row.
func (s *Store) UpsertReminderPreference(ctx context.Context, upsert *UpsertReminderPreference) (*ReminderPreference, error) {
	pref, err := s.driver.UpsertReminderPreference(ctx, upsert)
	if err != nil {
		return nil, err
	}
	s.preferenceCache.Delete(preferenceCacheKey(upsert.UserID))
	return pref, nil
}

// GetReminderPreference returns a user's preference row, or nil when the
// user has never configured one. Reads go through the store cache since the
// dispatcher hits this once per reminder per cycle.
func (s *Store) GetReminderPreference(ctx context.Context, find *FindReminderPreference) (*ReminderPreference, error) {
	if find.UserID != nil {
		if v, ok := s.preferenceCache.Get(preferenceCacheKey(*find.UserID)); ok {
			return v.(*ReminderPreference), nil
		}
	}

	pref, err := s.driver.GetReminderPreference(ctx, find)
	if err != nil {
		return nil, err
	}
	if pref != nil {
		s.preferenceCache.Set(preferenceCacheKey(pref.UserID), pref)
	}
	return pref, nil
}

func preferenceCacheKey(userID string) string {
	return fmt.Sprintf("preference:%s", userID)
}
