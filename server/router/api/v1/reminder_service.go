package v1

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/athenastudy/athena/plugin/reminder"
)

// RunRemindersResponse mirrors the dispatch cron's JSON envelope.
type RunRemindersResponse struct {
	Success   bool             `json:"success"`
	Message   string           `json:"message"`
	Stats     reminder.Summary `json:"stats"`
	Timestamp string           `json:"timestamp"`
}

// RunReminders handles POST /api/v1/reminders/run, running one dispatch
// cycle immediately.
func (s *APIV1Service) RunReminders(c echo.Context) error {
	summary, err := s.ReminderScheduler.RunOnce(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]any{
			"success":   false,
			"error":     "reminder dispatch failed",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}

	message := fmt.Sprintf("Session reminders processed: %d total, %d sent, %d skipped, %d failed",
		summary.Processed, summary.Sent, summary.Skipped, summary.Failed)
	return c.JSON(http.StatusOK, RunRemindersResponse{
		Success:   true,
		Message:   message,
		Stats:     summary,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// CreateSessionReminderRequest is the body for
// POST /api/v1/sessions/:id/reminders.
type CreateSessionReminderRequest struct {
	OffsetMinutes int     `json:"offsetMinutes"`
	CustomMessage *string `json:"customMessage,omitempty"`
	TemplateID    *string `json:"templateId,omitempty"`
}

// SessionReminderResponse is the JSON view of a session reminder.
type SessionReminderResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"sessionId"`
	OffsetMinutes int     `json:"offsetMinutes"`
	ScheduledTs   int64   `json:"scheduledTime"`
	Status        string  `json:"status"`
	CustomMessage *string `json:"customMessage,omitempty"`
}

// CreateSessionReminder handles POST /api/v1/sessions/:id/reminders.
func (s *APIV1Service) CreateSessionReminder(c echo.Context) error {
	var body CreateSessionReminderRequest
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody("malformed request body"))
	}

	created, err := s.ReminderService.CreateForSession(c.Request().Context(), &reminder.CreateRequest{
		SessionID:     c.Param("id"),
		OffsetMinutes: body.OffsetMinutes,
		CustomMessage: body.CustomMessage,
		TemplateID:    body.TemplateID,
	})
	if err != nil {
		return writeServiceError(c, err)
	}

	return c.JSON(http.StatusOK, SessionReminderResponse{
		ID:            created.ID,
		SessionID:     created.SessionID,
		OffsetMinutes: created.OffsetMinutes,
		ScheduledTs:   created.ScheduledTs,
		Status:        string(created.Status),
		CustomMessage: created.CustomMessage,
	})
}

// CancelReminder handles DELETE /api/v1/reminders/:id.
func (s *APIV1Service) CancelReminder(c echo.Context) error {
	if err := s.ReminderService.Cancel(c.Request().Context(), c.Param("id")); err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"cancelled": true})
}

// ReminderStats handles GET /api/v1/reminders/stats, exposing cumulative
// dispatch totals.
func (s *APIV1Service) ReminderStats(c echo.Context) error {
	return c.JSON(http.StatusOK, s.ReminderScheduler.Metrics().GetStats())
}
