package v1

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "github.com/athenastudy/athena/internal/errors"
	"github.com/athenastudy/athena/server/service/review"
	"github.com/athenastudy/athena/store"
)

// RecordReviewRequest is the body for POST /api/v1/reviews.
type RecordReviewRequest struct {
	SessionID           string  `json:"sessionId"`
	ItemID              string  `json:"itemId"`
	Rating              string  `json:"rating"`
	UserAnswer          *string `json:"userAnswer,omitempty"`
	ResponseTimeSeconds *int    `json:"responseTimeSeconds,omitempty"`
}

// RecordReviewResponse carries the item's new scheduling state back to the
// client.
type RecordReviewResponse struct {
	ID             string  `json:"id"`
	IsCorrect      bool    `json:"isCorrect"`
	EasinessFactor float64 `json:"easinessFactor"`
	IntervalDays   int     `json:"intervalDays"`
	Repetitions    int     `json:"repetitions"`
	NextReviewDate string  `json:"nextReviewDate"`
}

// RecordReview handles POST /api/v1/reviews.
func (s *APIV1Service) RecordReview(c echo.Context) error {
	var body RecordReviewRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}

	response, err := s.ReviewService.RecordResponse(c.Request().Context(), &review.RecordResponseRequest{
		SessionID:           body.SessionID,
		ItemID:              body.ItemID,
		Rating:              store.DifficultyRating(body.Rating),
		UserAnswer:          body.UserAnswer,
		ResponseTimeSeconds: body.ResponseTimeSeconds,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, RecordReviewResponse{
		ID:             response.ID,
		IsCorrect:      response.IsCorrect,
		EasinessFactor: response.NewEasinessFactor,
		IntervalDays:   response.NewIntervalDays,
		Repetitions:    response.NewRepetitions,
		NextReviewDate: response.NewNextReviewDate,
	})
}

func errorBody(message string) map[string]any {
	return map[string]any{"error": message}
}

// writeServiceError maps the coded error taxonomy to HTTP statuses.
func writeServiceError(c echo.Context, err error) error {
	code := apperrors.GetCodeFromError(err, apperrors.ErrCodeUnavailable)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeInvalidArgument:
		status = http.StatusBadRequest
	case apperrors.ErrCodeNotFound:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
		return c.JSON(status, errorBody("internal error"))
	}

	var message string
	if svcErr, ok := err.(*apperrors.ServiceError); ok {
		message = svcErr.Message
	} else {
		message = err.Error()
	}
	return c.JSON(status, errorBody(message))
}
