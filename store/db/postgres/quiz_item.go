package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateQuizItem(ctx context.Context, create *store.QuizItem) (*store.QuizItem, error) {
	fields := []string{
		"id", "quiz_id", "user_id", "question_text", "answer_text", "item_type",
		"mcq_options", "mcq_correct_option_key",
		"easiness_factor", "interval_days", "repetitions",
	}
	args := []any{
		create.ID, create.QuizID, create.UserID, create.QuestionText, create.AnswerText, create.ItemType,
		create.MCQOptions, create.MCQCorrectOptionKey,
		create.EasinessFactor, create.IntervalDays, create.Repetitions,
	}

	stmt := `INSERT INTO quiz_item (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING created_ts, updated_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(
		&create.CreatedTs,
		&create.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to create quiz item: %w", err)
	}

	return create, nil
}

func (d *DB) ListQuizItems(ctx context.Context, find *store.FindQuizItem) ([]*store.QuizItem, error) {
	where, args := []string{"TRUE"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "quiz_item.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.QuizID; v != nil {
		where, args = append(where, "quiz_item.quiz_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "quiz_item.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.DueBefore; v != nil {
		where, args = append(where, "(quiz_item.next_review_date IS NULL OR quiz_item.next_review_date <= "+placeholder(len(args)+1)+")"), append(args, *v)
	}

	query := `
		SELECT
			id, quiz_id, user_id, question_text, answer_text, item_type,
			mcq_options, mcq_correct_option_key,
			easiness_factor, interval_days, repetitions,
			last_reviewed_ts, next_review_date,
			created_ts, updated_ts
		FROM quiz_item
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY quiz_item.created_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
		if find.Offset != nil {
			query = fmt.Sprintf("%s OFFSET %d", query, *find.Offset)
		}
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query quiz items: %w", err)
	}
	defer rows.Close()

	list := make([]*store.QuizItem, 0)
	for rows.Next() {
		item, err := scanQuizItem(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate quiz items: %w", err)
	}

	return list, nil
}

func scanQuizItem(rows *sql.Rows) (*store.QuizItem, error) {
	var item store.QuizItem
	var mcqOptions, mcqCorrectOptionKey, nextReviewDate sql.NullString
	var lastReviewedTs sql.NullInt64

	if err := rows.Scan(
		&item.ID,
		&item.QuizID,
		&item.UserID,
		&item.QuestionText,
		&item.AnswerText,
		&item.ItemType,
		&mcqOptions,
		&mcqCorrectOptionKey,
		&item.EasinessFactor,
		&item.IntervalDays,
		&item.Repetitions,
		&lastReviewedTs,
		&nextReviewDate,
		&item.CreatedTs,
		&item.UpdatedTs,
	); err != nil {
		return nil, fmt.Errorf("failed to scan quiz item: %w", err)
	}

	if mcqOptions.Valid {
		item.MCQOptions = &mcqOptions.String
	}
	if mcqCorrectOptionKey.Valid {
		item.MCQCorrectOptionKey = &mcqCorrectOptionKey.String
	}
	if lastReviewedTs.Valid {
		item.LastReviewedTs = &lastReviewedTs.Int64
	}
	if nextReviewDate.Valid {
		item.NextReviewDate = &nextReviewDate.String
	}

	return &item, nil
}

func quizItemUpdateSet(update *store.UpdateQuizItem, args []any) ([]string, []any) {
	set := []string{}

	if v := update.EasinessFactor; v != nil {
		set, args = append(set, "easiness_factor = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.IntervalDays; v != nil {
		set, args = append(set, "interval_days = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.Repetitions; v != nil {
		set, args = append(set, "repetitions = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.LastReviewedTs; v != nil {
		set, args = append(set, "last_reviewed_ts = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.NextReviewDate; v != nil {
		set, args = append(set, "next_review_date = "+placeholder(len(args)+1)), append(args, *v)
	}
	set = append(set, "updated_ts = EXTRACT(EPOCH FROM NOW())")

	return set, args
}

func (d *DB) UpdateQuizItem(ctx context.Context, update *store.UpdateQuizItem) error {
	set, args := quizItemUpdateSet(update, []any{})
	args = append(args, update.ID)

	stmt := `UPDATE quiz_item SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update quiz item: %w", err)
	}

	return nil
}
