// Package reminder schedules and dispatches study session reminders.
//
// The dispatch pipeline selects due, pending reminders, claims each row,
// evaluates the owner's delivery policy, renders the notification and hands
// it to the push notifier. Every row is settled independently so one bad
// reminder never blocks the batch.
package reminder

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"

	apperrors "github.com/athenastudy/athena/internal/errors"
	"github.com/athenastudy/athena/store"
)

// sendTimeout bounds a single push delivery attempt.
const sendTimeout = 10 * time.Second

// Store is the persistence surface the dispatcher needs. *store.Store
// satisfies it; tests substitute MemoryStore.
type Store interface {
	ListDueSessionReminders(ctx context.Context, before int64, limit int) ([]*store.DueSessionReminder, error)
	ClaimSessionReminder(ctx context.Context, id string, from, to store.ReminderDeliveryStatus) (bool, error)
	UpdateSessionReminder(ctx context.Context, update *store.UpdateSessionReminder) error
	CreateSessionReminder(ctx context.Context, create *store.SessionReminder) (*store.SessionReminder, error)
	GetSessionReminder(ctx context.Context, find *store.FindSessionReminder) (*store.SessionReminder, error)
	ListSessionReminders(ctx context.Context, find *store.FindSessionReminder) ([]*store.SessionReminder, error)
	GetStudySession(ctx context.Context, find *store.FindStudySession) (*store.StudySession, error)
	GetReminderPreference(ctx context.Context, find *store.FindReminderPreference) (*store.ReminderPreference, error)
	GetDeviceToken(ctx context.Context, userID string) (string, error)
}

// Notifier delivers a rendered notification to a device token.
type Notifier interface {
	Send(ctx context.Context, deviceToken string, message Message, data map[string]string) error
}

// Summary is the outcome of one dispatch cycle.
//
// A policy rejection is written to the row as failed (with the reason) but
// counted as skipped: the system worked as intended and did not attempt
// delivery. Failed counts delivery attempts that errored.
type Summary struct {
	Processed int `json:"processed"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

// Config holds dispatcher tuning.
type Config struct {
	BatchSize   int
	Parallelism int
}

// Service dispatches due session reminders and manages their lifecycle.
type Service struct {
	store       Store
	notifier    Notifier
	batchSize   int
	parallelism int
	logger      *slog.Logger
	nowFn       func() time.Time
}

// NewService creates a reminder service.
func NewService(s Store, notifier Notifier, config Config, logger *slog.Logger) *Service {
	if config.BatchSize <= 0 {
		config.BatchSize = 100
	}
	if config.Parallelism <= 0 {
		config.Parallelism = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		store:       s,
		notifier:    notifier,
		batchSize:   config.BatchSize,
		parallelism: config.Parallelism,
		logger:      logger,
		nowFn:       time.Now,
	}
}

// ProcessDueReminders runs one dispatch cycle over reminders due at nowUTC.
// Re-running immediately selects nothing new: every examined row leaves the
// pending status before the cycle ends.
func (s *Service) ProcessDueReminders(ctx context.Context, nowUTC time.Time) (Summary, error) {
	due, err := s.store.ListDueSessionReminders(ctx, nowUTC.Unix(), s.batchSize)
	if err != nil {
		return Summary{}, errors.Wrap(err, "failed to list due reminders")
	}

	var summary Summary
	if s.parallelism <= 1 {
		for _, d := range due {
			s.settle(ctx, d, nowUTC, &summary, nil)
		}
		return summary, nil
	}

	// Claiming makes concurrent settlement safe: a row belongs to exactly
	// one goroutine once its pending->processing transition wins.
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := semaphore.NewWeighted(int64(s.parallelism))
	for _, d := range due {
		if err := sem.Acquire(ctx, 1); err != nil {
			break
		}
		wg.Add(1)
		go func(d *store.DueSessionReminder) {
			defer wg.Done()
			defer sem.Release(1)
			s.settle(ctx, d, nowUTC, &summary, &mu)
		}(d)
	}
	wg.Wait()
	return summary, nil
}

// settle drives one due reminder to a terminal status and updates the
// summary counters.
func (s *Service) settle(ctx context.Context, due *store.DueSessionReminder, nowUTC time.Time, summary *Summary, mu *sync.Mutex) {
	outcome := s.dispatch(ctx, due, nowUTC)

	if mu != nil {
		mu.Lock()
		defer mu.Unlock()
	}
	switch outcome {
	case outcomeLost:
		// Another dispatcher won the claim; not ours to count.
	case outcomeSent:
		summary.Processed++
		summary.Sent++
	case outcomeSkipped:
		summary.Processed++
		summary.Skipped++
	case outcomeFailed:
		summary.Processed++
		summary.Failed++
	}
}

type outcome int

const (
	outcomeLost outcome = iota
	outcomeSent
	outcomeSkipped
	outcomeFailed
)

func (s *Service) dispatch(ctx context.Context, due *store.DueSessionReminder, nowUTC time.Time) outcome {
	r := due.Reminder

	claimed, err := s.store.ClaimSessionReminder(ctx, r.ID, store.ReminderStatusPending, store.ReminderStatusProcessing)
	if err != nil {
		s.logger.Error("failed to claim reminder", "reminder", r.ID, "error", err)
		return outcomeLost
	}
	if !claimed {
		return outcomeLost
	}

	pref, err := s.store.GetReminderPreference(ctx, &store.FindReminderPreference{UserID: &r.UserID})
	if err != nil {
		s.markFailed(ctx, r.ID, "failed to load preferences")
		return outcomeFailed
	}
	token, err := s.store.GetDeviceToken(ctx, r.UserID)
	if err != nil {
		s.markFailed(ctx, r.ID, "failed to load device token")
		return outcomeFailed
	}

	verdict := EvaluatePolicy(pref, CategorySession, token, nowUTC)
	if !verdict.Deliver {
		s.logger.Info("skipping reminder per policy", "reminder", r.ID, "reason", verdict.Reason)
		s.markFailed(ctx, r.ID, verdict.Reason)
		return outcomeSkipped
	}

	message := RenderMessage(r.CustomMessage, due.TemplateMessage, due.SessionTitle, due.SessionSubject, r.OffsetMinutes)
	data := map[string]string{
		"sessionId":     r.SessionID,
		"reminderId":    r.ID,
		"offsetMinutes": strconv.Itoa(r.OffsetMinutes),
		"minutesUntil":  strconv.Itoa(r.OffsetMinutes),
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()
	if err := s.notifier.Send(sendCtx, token, message, data); err != nil {
		s.logger.Warn("reminder delivery failed", "reminder", r.ID, "error", err)
		s.markFailed(ctx, r.ID, "FCM delivery failed")
		return outcomeFailed
	}

	sentTs := nowUTC.Unix()
	status := store.ReminderStatusSent
	if err := s.store.UpdateSessionReminder(ctx, &store.UpdateSessionReminder{
		ID:     r.ID,
		Status: &status,
		SentTs: &sentTs,
	}); err != nil {
		s.logger.Error("failed to mark reminder sent", "reminder", r.ID, "error", err)
		return outcomeFailed
	}

	s.logger.Info("sent reminder", "reminder", r.ID, "session", r.SessionID, "title", message.Title)
	return outcomeSent
}

func (s *Service) markFailed(ctx context.Context, id, reason string) {
	status := store.ReminderStatusFailed
	if err := s.store.UpdateSessionReminder(ctx, &store.UpdateSessionReminder{
		ID:           id,
		Status:       &status,
		ErrorMessage: &reason,
	}); err != nil {
		s.logger.Error("failed to mark reminder failed", "reminder", id, "error", err)
	}
}

// CreateRequest asks for a new reminder attached to a study session.
type CreateRequest struct {
	SessionID     string
	UserID        string
	OffsetMinutes int
	CustomMessage *string
	TemplateID    *string
}

// CreateForSession creates a reminder offset before the session start. The
// trigger time must still be in the future and the session still scheduled.
func (s *Service) CreateForSession(ctx context.Context, req *CreateRequest) (*store.SessionReminder, error) {
	if req.SessionID == "" {
		return nil, apperrors.InvalidArgument("sessionId is required")
	}
	if req.OffsetMinutes < 0 {
		return nil, apperrors.InvalidArgument("offsetMinutes must not be negative")
	}

	session, err := s.store.GetStudySession(ctx, &store.FindStudySession{ID: &req.SessionID})
	if err != nil {
		return nil, apperrors.Unavailable("failed to load study session", err)
	}
	if session == nil || (req.UserID != "" && session.UserID != req.UserID) {
		return nil, apperrors.NotFound("study session not found: %s", req.SessionID)
	}
	if session.Status != store.StudySessionStatusScheduled {
		return nil, apperrors.InvalidArgument("study session %s is %s, not scheduled", session.ID, session.Status)
	}

	scheduledTs := session.StartTs - int64(req.OffsetMinutes)*60
	if scheduledTs <= s.nowFn().Unix() {
		return nil, apperrors.InvalidArgument("reminder trigger time is in the past")
	}

	reminder := &store.SessionReminder{
		ID:            shortuuid.New(),
		SessionID:     session.ID,
		UserID:        session.UserID,
		OffsetMinutes: req.OffsetMinutes,
		CustomMessage: req.CustomMessage,
		TemplateID:    req.TemplateID,
		ScheduledTs:   scheduledTs,
		Status:        store.ReminderStatusPending,
		Enabled:       true,
	}
	created, err := s.store.CreateSessionReminder(ctx, reminder)
	if err != nil {
		return nil, apperrors.Unavailable("failed to create reminder", err)
	}
	return created, nil
}

// Cancel cancels a pending reminder. Only pending reminders can be
// cancelled; the transition is atomic so a concurrent dispatch cycle cannot
// send a reminder that was just cancelled.
func (s *Service) Cancel(ctx context.Context, id string) error {
	reminder, err := s.store.GetSessionReminder(ctx, &store.FindSessionReminder{ID: &id})
	if err != nil {
		return apperrors.Unavailable("failed to load reminder", err)
	}
	if reminder == nil {
		return apperrors.NotFound("reminder not found: %s", id)
	}

	cancelled, err := s.store.ClaimSessionReminder(ctx, id, store.ReminderStatusPending, store.ReminderStatusCancelled)
	if err != nil {
		return apperrors.Unavailable("failed to cancel reminder", err)
	}
	if !cancelled {
		return apperrors.InvalidArgument("cannot cancel reminder in status %s", reminder.Status)
	}
	return nil
}

// ListByUser lists a user's reminders, optionally filtered by status.
func (s *Service) ListByUser(ctx context.Context, userID string, status *store.ReminderDeliveryStatus) ([]*store.SessionReminder, error) {
	return s.store.ListSessionReminders(ctx, &store.FindSessionReminder{UserID: &userID, Status: status})
}

// ListBySession lists all reminders attached to a study session.
func (s *Service) ListBySession(ctx context.Context, sessionID string) ([]*store.SessionReminder, error) {
	return s.store.ListSessionReminders(ctx, &store.FindSessionReminder{SessionID: &sessionID})
}
