package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) UpsertReminderPreference(ctx context.Context, upsert *store.UpsertReminderPreference) (*store.ReminderPreference, error) {
	fields := []string{
		"user_id",
		"notifications_enabled", "session_reminders_enabled", "goal_reminders_enabled",
		"streak_reminders_enabled", "daily_checkins_enabled",
		"quiet_hours_start", "quiet_hours_end", "timezone",
	}
	args := []any{
		upsert.UserID,
		upsert.NotificationsEnabled, upsert.SessionRemindersEnabled, upsert.GoalRemindersEnabled,
		upsert.StreakRemindersEnabled, upsert.DailyCheckinsEnabled,
		upsert.QuietHoursStart, upsert.QuietHoursEnd, upsert.Timezone,
	}

	stmt := `INSERT INTO reminder_preference (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		ON CONFLICT(user_id) DO UPDATE SET
			notifications_enabled = EXCLUDED.notifications_enabled,
			session_reminders_enabled = EXCLUDED.session_reminders_enabled,
			goal_reminders_enabled = EXCLUDED.goal_reminders_enabled,
			streak_reminders_enabled = EXCLUDED.streak_reminders_enabled,
			daily_checkins_enabled = EXCLUDED.daily_checkins_enabled,
			quiet_hours_start = EXCLUDED.quiet_hours_start,
			quiet_hours_end = EXCLUDED.quiet_hours_end,
			timezone = EXCLUDED.timezone,
			updated_ts = (strftime('%s', 'now'))
		RETURNING created_ts, updated_ts`

	preference := &store.ReminderPreference{
		UserID:                  upsert.UserID,
		NotificationsEnabled:    upsert.NotificationsEnabled,
		SessionRemindersEnabled: upsert.SessionRemindersEnabled,
		GoalRemindersEnabled:    upsert.GoalRemindersEnabled,
		StreakRemindersEnabled:  upsert.StreakRemindersEnabled,
		DailyCheckinsEnabled:    upsert.DailyCheckinsEnabled,
		QuietHoursStart:         upsert.QuietHoursStart,
		QuietHoursEnd:           upsert.QuietHoursEnd,
		Timezone:                upsert.Timezone,
	}
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&preference.CreatedTs,
		&preference.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to upsert reminder preference: %w", err)
	}

	return preference, nil
}

func (d *DB) GetReminderPreference(ctx context.Context, find *store.FindReminderPreference) (*store.ReminderPreference, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.UserID; v != nil {
		where, args = append(where, "reminder_preference.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			user_id,
			notifications_enabled, session_reminders_enabled, goal_reminders_enabled,
			streak_reminders_enabled, daily_checkins_enabled,
			quiet_hours_start, quiet_hours_end, timezone,
			created_ts, updated_ts
		FROM reminder_preference
		WHERE ` + strings.Join(where, " AND ")

	var preference store.ReminderPreference
	var quietStart, quietEnd sql.NullString
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(
		&preference.UserID,
		&preference.NotificationsEnabled,
		&preference.SessionRemindersEnabled,
		&preference.GoalRemindersEnabled,
		&preference.StreakRemindersEnabled,
		&preference.DailyCheckinsEnabled,
		&quietStart,
		&quietEnd,
		&preference.Timezone,
		&preference.CreatedTs,
		&preference.UpdatedTs,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get reminder preference: %w", err)
	}

	if quietStart.Valid {
		preference.QuietHoursStart = &quietStart.String
	}
	if quietEnd.Valid {
		preference.QuietHoursEnd = &quietEnd.String
	}

	return &preference, nil
}
