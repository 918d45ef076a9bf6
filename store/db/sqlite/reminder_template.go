package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateReminderTemplate(ctx context.Context, create *store.ReminderTemplate) (*store.ReminderTemplate, error) {
	fields := []string{"id", "name", "message_template", "offset_minutes", "is_active", "is_default"}
	args := []any{create.ID, create.Name, create.MessageTemplate, create.OffsetMinutes, create.IsActive, create.IsDefault}

	stmt := `INSERT INTO reminder_template (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create reminder template: %w", err)
	}

	return create, nil
}

func (d *DB) ListReminderTemplates(ctx context.Context, find *store.FindReminderTemplate) ([]*store.ReminderTemplate, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "reminder_template.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.IsActive; v != nil {
		where, args = append(where, "reminder_template.is_active = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, name, message_template, offset_minutes, is_active, is_default,
			created_ts, updated_ts
		FROM reminder_template
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY reminder_template.name ASC`

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query reminder templates: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReminderTemplate, 0)
	for rows.Next() {
		var template store.ReminderTemplate
		if err := rows.Scan(
			&template.ID,
			&template.Name,
			&template.MessageTemplate,
			&template.OffsetMinutes,
			&template.IsActive,
			&template.IsDefault,
			&template.CreatedTs,
			&template.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reminder template: %w", err)
		}
		list = append(list, &template)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate reminder templates: %w", err)
	}

	return list, nil
}
