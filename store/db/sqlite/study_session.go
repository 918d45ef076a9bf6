package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateStudySession(ctx context.Context, create *store.StudySession) (*store.StudySession, error) {
	fields := []string{"id", "user_id", "title", "subject", "start_ts", "end_ts", "status", "reminder_offset_minutes"}
	args := []any{create.ID, create.UserID, create.Title, create.Subject, create.StartTs, create.EndTs, create.Status, create.ReminderOffsetMinutes}

	stmt := `INSERT INTO study_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create study session: %w", err)
	}

	return create, nil
}

func (d *DB) ListStudySessions(ctx context.Context, find *store.FindStudySession) ([]*store.StudySession, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "study_session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "study_session.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "study_session.status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartAfter; v != nil {
		where, args = append(where, "study_session.start_ts >= "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.StartBefore; v != nil {
		where, args = append(where, "study_session.start_ts < "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, user_id, title, subject, start_ts, end_ts, status,
			reminder_offset_minutes, created_ts, updated_ts
		FROM study_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY study_session.start_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query study sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.StudySession, 0)
	for rows.Next() {
		var session store.StudySession
		var subject sql.NullString
		var offset sql.NullInt64

		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&session.Title,
			&subject,
			&session.StartTs,
			&session.EndTs,
			&session.Status,
			&offset,
			&session.CreatedTs,
			&session.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan study session: %w", err)
		}

		if subject.Valid {
			session.Subject = &subject.String
		}
		if offset.Valid {
			v := int(offset.Int64)
			session.ReminderOffsetMinutes = &v
		}

		list = append(list, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate study sessions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateStudySession(ctx context.Context, update *store.UpdateStudySession) error {
	set, args := []string{}, []any{}

	if v := update.Title; v != nil {
		set, args = append(set, "title = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Subject; v != nil {
		set, args = append(set, "subject = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.StartTs; v != nil {
		set, args = append(set, "start_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.EndTs; v != nil {
		set, args = append(set, "end_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}
	set = append(set, "updated_ts = (strftime('%s', 'now'))")
	args = append(args, update.ID)

	stmt := `UPDATE study_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update study session: %w", err)
	}

	return nil
}
