// Package v1 exposes the JSON HTTP API.
package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/athenastudy/athena/internal/profile"
	"github.com/athenastudy/athena/plugin/reminder"
	"github.com/athenastudy/athena/server/service/review"
	"github.com/athenastudy/athena/store"
)

// APIV1Service wires the domain services into the HTTP surface.
type APIV1Service struct {
	Profile *profile.Profile
	Store   *store.Store

	ReviewService     *review.Service
	ReminderService   *reminder.Service
	ReminderScheduler *reminder.Scheduler
}

// NewAPIV1Service creates the v1 API service.
func NewAPIV1Service(profile *profile.Profile, store *store.Store, reviewService *review.Service, reminderService *reminder.Service, scheduler *reminder.Scheduler) *APIV1Service {
	return &APIV1Service{
		Profile:           profile,
		Store:             store,
		ReviewService:     reviewService,
		ReminderService:   reminderService,
		ReminderScheduler: scheduler,
	}
}

// Register attaches all v1 routes to the Echo instance.
func (s *APIV1Service) Register(echoServer *echo.Echo) {
	echoServer.GET("/healthz", s.Healthz)

	group := echoServer.Group("/api/v1")
	group.Use(middleware.CORS())

	group.POST("/reviews", s.RecordReview)
	group.POST("/reminders/run", s.RunReminders)
	group.POST("/sessions/:id/reminders", s.CreateSessionReminder)
	group.DELETE("/reminders/:id", s.CancelReminder)
	group.GET("/reminders/stats", s.ReminderStats)
}

// Healthz reports service liveness.
func (s *APIV1Service) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"mode":   s.Profile.Mode,
	})
}
