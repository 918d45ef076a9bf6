package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/athenastudy/athena/store"
)

func (d *DB) CreateReviewSession(ctx context.Context, create *store.ReviewSession) (*store.ReviewSession, error) {
	fields := []string{"id", "user_id", "quiz_id", "session_type", "status", "total_items"}
	args := []any{create.ID, create.UserID, create.QuizID, create.SessionType, create.Status, create.TotalItems}

	stmt := `INSERT INTO review_session (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(args)) + `)
		RETURNING started_ts`

	if err := d.db.QueryRowContext(ctx, stmt, args...).Scan(&create.StartedTs); err != nil {
		return nil, fmt.Errorf("failed to create review session: %w", err)
	}

	return create, nil
}

func (d *DB) ListReviewSessions(ctx context.Context, find *store.FindReviewSession) ([]*store.ReviewSession, error) {
	where, args := []string{"TRUE"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "review_session.id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "review_session.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.Status; v != nil {
		where, args = append(where, "review_session.status = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, user_id, quiz_id, session_type, status,
			total_items, completed_items, correct_responses,
			started_ts, completed_ts
		FROM review_session
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY review_session.started_ts DESC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review sessions: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewSession, 0)
	for rows.Next() {
		var session store.ReviewSession
		var quizID sql.NullString
		var completedTs sql.NullInt64

		if err := rows.Scan(
			&session.ID,
			&session.UserID,
			&quizID,
			&session.SessionType,
			&session.Status,
			&session.TotalItems,
			&session.CompletedItems,
			&session.CorrectResponses,
			&session.StartedTs,
			&completedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review session: %w", err)
		}

		if quizID.Valid {
			session.QuizID = &quizID.String
		}
		if completedTs.Valid {
			session.CompletedTs = &completedTs.Int64
		}

		list = append(list, &session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review sessions: %w", err)
	}

	return list, nil
}

func (d *DB) UpdateReviewSession(ctx context.Context, update *store.UpdateReviewSession) error {
	set, args := []string{}, []any{}

	if v := update.Status; v != nil {
		set, args = append(set, "status = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := update.CompletedTs; v != nil {
		set, args = append(set, "completed_ts = "+placeholder(len(args)+1)), append(args, *v)
	}

	if len(set) == 0 {
		return nil
	}

	args = append(args, update.ID)

	stmt := `UPDATE review_session SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("failed to update review session: %w", err)
	}

	return nil
}

// RecordReview commits the item's new scheduling state, the immutable
// response row and the session counter bump in one transaction.
func (d *DB) RecordReview(ctx context.Context, record *store.RecordReview) (*store.ReviewResponse, error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	set, args := quizItemUpdateSet(record.ItemUpdate, []any{})
	args = append(args, record.ItemUpdate.ID)
	stmt := `UPDATE quiz_item SET ` + strings.Join(set, ", ") + ` WHERE id = ` + placeholder(len(args))
	result, err := tx.ExecContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to update quiz item: %w", err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return nil, fmt.Errorf("quiz item not found: %s", record.ItemUpdate.ID)
	}

	response := record.Response
	fields := []string{
		"id", "quiz_item_id", "session_id", "user_id",
		"difficulty_rating", "user_answer", "response_time_seconds", "is_correct",
		"previous_easiness_factor", "previous_interval_days", "previous_repetitions",
		"new_easiness_factor", "new_interval_days", "new_repetitions", "new_next_review_date",
	}
	insertArgs := []any{
		response.ID, response.QuizItemID, response.SessionID, response.UserID,
		response.Rating, response.UserAnswer, response.ResponseTimeSeconds, response.IsCorrect,
		response.PreviousEasinessFactor, response.PreviousIntervalDays, response.PreviousRepetitions,
		response.NewEasinessFactor, response.NewIntervalDays, response.NewRepetitions, response.NewNextReviewDate,
	}
	stmt = `INSERT INTO review_response (` + strings.Join(fields, ", ") + `)
		VALUES (` + placeholders(len(insertArgs)) + `)
		RETURNING responded_ts`
	if err := tx.QueryRowContext(ctx, stmt, insertArgs...).Scan(&response.RespondedTs); err != nil {
		return nil, fmt.Errorf("failed to insert review response: %w", err)
	}

	stmt = `UPDATE review_session
		SET completed_items = completed_items + 1,
			correct_responses = correct_responses + CASE WHEN ` + placeholder(1) + ` THEN 1 ELSE 0 END
		WHERE id = ` + placeholder(2)
	result, err = tx.ExecContext(ctx, stmt, record.Correct, record.SessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to update review session counters: %w", err)
	}
	if rowsAffected, _ := result.RowsAffected(); rowsAffected == 0 {
		return nil, fmt.Errorf("review session not found: %s", record.SessionID)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit review transaction: %w", err)
	}

	return response, nil
}

func (d *DB) ListReviewResponses(ctx context.Context, find *store.FindReviewResponse) ([]*store.ReviewResponse, error) {
	where, args := []string{"TRUE"}, []any{}

	if v := find.SessionID; v != nil {
		where, args = append(where, "review_response.session_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.QuizItemID; v != nil {
		where, args = append(where, "review_response.quiz_item_id = "+placeholder(len(args)+1)), append(args, *v)
	}
	if v := find.UserID; v != nil {
		where, args = append(where, "review_response.user_id = "+placeholder(len(args)+1)), append(args, *v)
	}

	query := `
		SELECT
			id, quiz_item_id, session_id, user_id,
			difficulty_rating, user_answer, response_time_seconds, is_correct,
			previous_easiness_factor, previous_interval_days, previous_repetitions,
			new_easiness_factor, new_interval_days, new_repetitions, new_next_review_date,
			responded_ts
		FROM review_response
		WHERE ` + strings.Join(where, " AND ") + ` ORDER BY review_response.responded_ts ASC`

	if find.Limit != nil {
		query = fmt.Sprintf("%s LIMIT %d", query, *find.Limit)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query review responses: %w", err)
	}
	defer rows.Close()

	list := make([]*store.ReviewResponse, 0)
	for rows.Next() {
		var response store.ReviewResponse
		var userAnswer sql.NullString
		var responseTime sql.NullInt64

		if err := rows.Scan(
			&response.ID,
			&response.QuizItemID,
			&response.SessionID,
			&response.UserID,
			&response.Rating,
			&userAnswer,
			&responseTime,
			&response.IsCorrect,
			&response.PreviousEasinessFactor,
			&response.PreviousIntervalDays,
			&response.PreviousRepetitions,
			&response.NewEasinessFactor,
			&response.NewIntervalDays,
			&response.NewRepetitions,
			&response.NewNextReviewDate,
			&response.RespondedTs,
		); err != nil {
			return nil, fmt.Errorf("failed to scan review response: %w", err)
		}

		if userAnswer.Valid {
			response.UserAnswer = &userAnswer.String
		}
		if responseTime.Valid {
			v := int(responseTime.Int64)
			response.ResponseTimeSeconds = &v
		}

		list = append(list, &response)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate review responses: %w", err)
	}

	return list, nil
}
