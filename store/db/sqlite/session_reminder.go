package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateSessionReminder(ctx context.Context, create *store.SessionReminder) (*store.SessionReminder, error) {
	fields := []string{
		"id", "session_id", "user_id", "offset_minutes",
		"custom_message", "template_id", "scheduled_ts", "status", "enabled",
	}
	args := []any{
		create.ID, create.SessionID, create.UserID, create.OffsetMinutes,
		create.CustomMessage, create.TemplateID, create.ScheduledTs, create.Status, create.Enabled,
	}

	stmt := `INSERT INTO session_reminder (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create session reminder: %w", err)
	}

	return create, nil
}

func (d *DB) ListSessionReminders(ctx context.Context, find *store.FindSessionReminder) ([]*store.SessionReminder, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "session_reminder.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.SessionID; v != nil {
		where, args = append(where, "session_reminder.session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "session_reminder.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "session_reminder.status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, session_id, user_id, offset_minutes,
			custom_message, template_id, scheduled_ts,
			status, sent_ts, error_message, enabled,
			created_ts, updated_ts
		FROM session_reminder
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY session_reminder.scheduled_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query session reminders: %w", err)
	}
	defer rows.Close()

	list := make([]*store.SessionReminder, 0)
	for rows.Next() {
		reminder, err := scanSessionReminder(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, reminder)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate session reminders: %w", err)
	}

	return list, nil
}

func scanSessionReminder(rows *sql.Rows) (*store.SessionReminder, error) {
	var reminder store.SessionReminder
	var customMessage, templateID, errorMessage sql.NullString
	var sentTs sql.NullInt64

	if err := rows.Scan(
		&reminder.ID,
		&reminder.SessionID,
		&reminder.UserID,
		&reminder.OffsetMinutes,
		&customMessage,
		&templateID,
		&reminder.ScheduledTs,
		&reminder.Status,
		&sentTs,
		&errorMessage,
		&reminder.Enabled,
		&reminder.CreatedTs,
		&reminder.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to scan session reminder: %w", err)
	}

	if customMessage.Valid {
		reminder.CustomMessage = &customMessage.String
	}
	if templateID.Valid {
		reminder.TemplateID = &templateID.String
	}
	if sentTs.Valid {
		reminder.SentTs = &sentTs.Int64
	}
	if errorMessage.Valid {
		reminder.ErrorMessage = &errorMessage.String
	}

	return &reminder, nil
}

func (d *DB) UpdateSessionReminder(ctx context.Context, update *store.UpdateSessionReminder) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.SentTs; v != nil {
		set, args = append(set, "sent_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.ErrorMessage; v != nil {
		set, args = append(set, "error_message = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Enabled; v != nil {
		set, args = append(set, "enabled = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_ts = (strftime('%s', 'now'))")
	args = append(args, update.ID)

	stmt := `UPDATE session_reminder SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update session reminder: %w", err)
	}

	return nil
}

// ListDueSessionReminders joins each dispatchable reminder with its parent
// session and optional template so the dispatcher does not issue per-row
// lookups. The idx_session_reminder_due index covers the filter.
func (d *DB) ListDueSessionReminders(ctx context.Context, before int64, limit int) ([]*store.DueSessionReminder, error) {
	query := `
		SELECT
			session_reminder.id,
			session_reminder.session_id,
			session_reminder.user_id,
			session_reminder.offset_minutes,
			session_reminder.custom_message,
			session_reminder.template_id,
			session_reminder.scheduled_ts,
			session_reminder.status,
			session_reminder.sent_ts,
			session_reminder.error_message,
			session_reminder.enabled,
			session_reminder.created_ts,
			session_reminder.updated_ts,
			study_session.title,
			study_session.subject,
			study_session.start_ts,
			reminder_template.message_template
		FROM session_reminder
		INNER JOIN study_session ON study_session.id = session_reminder.session_id
		LEFT JOIN reminder_template ON reminder_template.id = session_reminder.template_id
		WHERE session_reminder.status = ` + placeholder(1) + `
			AND session_reminder.enabled = 1
			AND study_session.status = ` + placeholder(2) + `
			AND session_reminder.scheduled_ts <= ` + placeholder(3) + `
		ORDER BY session_reminder.scheduled_ts ASC`
	if limit > 0 {
		query = fmt.Sprintf("%s LIMIT %d", query, limit)
	}

	rows, err := d.db.QueryContext(ctx, query,
		store.ReminderStatusPending,
		store.StudySessionStatusScheduled,
		before,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query due session reminders: %w", err)
	}
	defer rows.Close()

	list := make([]*store.DueSessionReminder, 0)
	for rows.Next() {
		var due store.DueSessionReminder
		var customMessage, templateID, errorMessage sql.NullString
		var sentTs sql.NullInt64
		var sessionSubject, templateMessage sql.NullString

		if err := rows.Scan(
			&due.Reminder.ID,
			&due.Reminder.SessionID,
			&due.Reminder.UserID,
			&due.Reminder.OffsetMinutes,
			&customMessage,
			&templateID,
			&due.Reminder.ScheduledTs,
			&due.Reminder.Status,
			&sentTs,
			&errorMessage,
			&due.Reminder.Enabled,
			&due.Reminder.CreatedTs,
			&due.Reminder.UpdatedTs,
			&due.SessionTitle,
			&sessionSubject,
			&due.SessionStartTs,
			&templateMessage,
		); err != nil {
			return nil, fmt.Errorf("failed to scan due session reminder: %w", err)
		}

		if customMessage.Valid {
			due.Reminder.CustomMessage = &customMessage.String
		}
		if templateID.Valid {
			due.Reminder.TemplateID = &templateID.String
		}
		if sentTs.Valid {
			due.Reminder.SentTs = &sentTs.Int64
		}
		if errorMessage.Valid {
			due.Reminder.ErrorMessage = &errorMessage.String
		}
		if sessionSubject.Valid {
			due.SessionSubject = &sessionSubject.String
		}
		if templateMessage.Valid {
			due.TemplateMessage = &templateMessage.String
		}

		list = append(list, &due)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate due session reminders: %w", err)
	}

	return list, nil
}

// ClaimSessionReminder flips the status only when the row is still in the
// expected state, so two dispatchers never both claim the same reminder.
func (d *DB) ClaimSessionReminder(ctx context.Context, id string, from, to store.ReminderDeliveryStatus) (bool, error) {
	stmt := `UPDATE session_reminder
		SET status = ` + placeholder(1) + `, updated_ts = (strftime('%s', 'now'))
		WHERE id = ` + placeholder(2) + ` AND status = ` + placeholder(3)
	result, err := d.db.ExecContext(ctx, stmt, to, id, from)
	if err != nil {
		return false, fmt.Errorf("failed to claim session reminder: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return rowsAffected == 1, nil
}
