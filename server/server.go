// Package server assembles the HTTP server and background workers.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/athenastudy/athena/internal/profile"
	"github.com/athenastudy/athena/plugin/reminder"
	apiv1 "github.com/athenastudy/athena/server/router/api/v1"
	"github.com/athenastudy/athena/server/service/review"
	"github.com/athenastudy/athena/store"
)

// Server is the athena backend: the HTTP API plus the reminder dispatch
// scheduler.
type Server struct {
	Profile *profile.Profile
	Store   *store.Store

	echoServer        *echo.Echo
	reminderScheduler *reminder.Scheduler
}

// NewServer builds the server from a validated profile and a migrated store.
func NewServer(ctx context.Context, profile *profile.Profile, store *store.Store) (*Server, error) {
	echoServer := echo.New()
	echoServer.Debug = true
	echoServer.HideBanner = true
	echoServer.HidePort = true

	echoServer.Use(middleware.LoggerWithConfig(middleware.LoggerConfig{
		Format: `{"time":"${time_rfc3339}","latency":"${latency_human}",` +
			`"method":"${method}","uri":"${uri}","status":${status},"error":"${error}"}` + "\n",
	}))
	echoServer.Use(middleware.Recover())

	notifier, err := buildNotifier(ctx, profile)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build notifier")
	}

	reminderService := reminder.NewService(store, notifier, reminder.Config{
		BatchSize:   profile.ReminderBatchSize,
		Parallelism: profile.ReminderParallelism,
	}, slog.Default())
	reminderScheduler := reminder.NewScheduler(reminderService, profile.ReminderInterval, slog.Default())
	reviewService := review.NewService(store, slog.Default())

	apiV1Service := apiv1.NewAPIV1Service(profile, store, reviewService, reminderService, reminderScheduler)
	apiV1Service.Register(echoServer)

	return &Server{
		Profile:           profile,
		Store:             store,
		echoServer:        echoServer,
		reminderScheduler: reminderScheduler,
	}, nil
}

// buildNotifier selects the push backend. Without usable FCM configuration
// the server runs with a logging notifier so demo and dev modes work out of
// the box.
func buildNotifier(ctx context.Context, profile *profile.Profile) (reminder.Notifier, error) {
	if !profile.IsFCMEnabled() {
		slog.Info("fcm disabled, using noop notifier")
		return reminder.NewNoopNotifier(slog.Default()), nil
	}
	notifier, err := reminder.NewFCMNotifier(ctx, profile.FCMProjectID, profile.FCMCredentialsFile, slog.Default())
	if err != nil {
		return nil, err
	}
	slog.Info("fcm notifier configured", "project", profile.FCMProjectID)
	return notifier, nil
}

// Start launches the reminder scheduler and the HTTP listener. It blocks
// until the listener stops.
func (s *Server) Start(ctx context.Context) error {
	s.reminderScheduler.Start(ctx)

	address := fmt.Sprintf("%s:%d", s.Profile.Addr, s.Profile.Port)
	slog.Info("server started", "address", address, "version", s.Profile.Version)
	return s.echoServer.Start(address)
}

// Shutdown stops the scheduler, drains in-flight requests and closes the
// store.
func (s *Server) Shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	s.reminderScheduler.Stop()

	if err := s.echoServer.Shutdown(ctx); err != nil {
		slog.Error("failed to shutdown http server", "error", err)
	}
	if err := s.Store.Close(); err != nil {
		slog.Error("failed to close store", "error", err)
	}

	slog.Info("server shutdown complete")
}
