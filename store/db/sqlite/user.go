package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateUser(ctx context.Context, create *store.User) (*store.User, error) {
	fields := []string{"id", "email", "device_token", "timezone"}
	args := []any{create.ID, create.Email, create.DeviceToken, create.Timezone}

	stmt := `INSERT INTO user (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return create, nil
}

func (d *DB) ListUsers(ctx context.Context, find *store.FindUser) ([]*store.User, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "user.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Email; v != nil {
		where, args = append(where, "user.email = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.HasDeviceToken; v != nil {
		if *v {
			where = append(where, "user.device_token IS NOT NULL")
		} else {
			where = append(where, "user.device_token IS NULL")
		}
	}

	query := `
		SELECT
			id, email, device_token, timezone, created_ts, updated_ts
		FROM user
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY user.created_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query users: %w", err)
	}
	defer rows.Close()

	list := make([]*store.User, 0)
	for rows.Next() {
		var user store.User
		var deviceToken sql.NullString

		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&deviceToken,
			&user.Timezone,
			&user.CreatedTs,
			&user.UpdatedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}

		if deviceToken.Valid {
			user.DeviceToken = &deviceToken.String
		}

		list = append(list, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateUser(ctx context.Context, update *store.UpdateUser) (*store.User, error) {
	set, args := []string{}, []any{}

	if v := update.Email; v != nil {
		set, args = append(set, "email = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.DeviceToken; v != nil {
		set, args = append(set, "device_token = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Timezone; v != nil {
		set, args = append(set, "timezone = "+placeholder(len(args)+1)), append(args, *v)
	}
	set = append(set, "updated_ts = (strftime('%s', 'now'))")
	args = append(args, update.ID)

	stmt := `UPDATE user SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args)) + `
		RETURNING id, email, device_token, timezone, created_ts, updated_ts`

	var user store.User
	var deviceToken sql.NullString
	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&user.ID,
		&user.Email,
		&deviceToken,
		&user.Timezone,
		&user.CreatedTs,
		&user.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	if deviceToken.Valid {
		user.DeviceToken = &deviceToken.String
	}

	return &user, nil
}
