package store

import (
	"context"
)

// ReminderDeliveryStatus is the delivery state of a session reminder.
//
// pending -> processing is the dispatcher's claim; processing -> sent/failed
// are terminal; pending -> cancelled is the only other legal transition. A
// crash mid-dispatch leaves the row in processing rather than double-sent.
type ReminderDeliveryStatus string

const (
	ReminderStatusPending    ReminderDeliveryStatus = "pending"
	ReminderStatusProcessing ReminderDeliveryStatus = "processing"
	ReminderStatusSent       ReminderDeliveryStatus = "sent"
	ReminderStatusFailed     ReminderDeliveryStatus = "failed"
	ReminderStatusCancelled  ReminderDeliveryStatus = "cancelled"
)

// SessionReminder is a scheduled notification tied to a study session.
// Invariant: ScheduledTs = session.StartTs - OffsetMinutes*60.
type SessionReminder struct {
	ID        string
	SessionID string
	UserID    string

	OffsetMinutes int
	CustomMessage *string
	TemplateID    *string
	ScheduledTs   int64

	Status       ReminderDeliveryStatus
	SentTs       *int64
	ErrorMessage *string
	Enabled      bool

	CreatedTs int64
	UpdatedTs int64
}

// DueSessionReminder is the dispatch view of a reminder: the reminder row
// joined with its parent session and optional template, mirroring the
// selection the dispatcher runs each cycle.
type DueSessionReminder struct {
	Reminder SessionReminder

	SessionTitle   string
	SessionSubject *string
	SessionStartTs int64

	TemplateMessage *string
}

// FindSessionReminder is the find condition for session reminders.
type FindSessionReminder struct {
	ID        *string
	SessionID *string
	UserID    *string
	Status    *ReminderDeliveryStatus

	Limit *int
}

// UpdateSessionReminder is the update request for a session reminder.
type UpdateSessionReminder struct {
	ID           string
	Status       *ReminderDeliveryStatus
	SentTs       *int64
	ErrorMessage *string
	Enabled      *bool
}

// CreateSessionReminder creates a new session reminder.
func (s *Store) CreateSessionReminder(ctx context.Context, create *SessionReminder) (*SessionReminder, error) {
	return s.driver.CreateSessionReminder(ctx, create)
}

// ListSessionReminders lists session reminders with filter.
func (s *Store) ListSessionReminders(ctx context.Context, find *FindSessionReminder) ([]*SessionReminder, error) {
	return s.driver.ListSessionReminders(ctx, find)
}

// GetSessionReminder gets a single session reminder, or nil when absent.
func (s *Store) GetSessionReminder(ctx context.Context, find *FindSessionReminder) (*SessionReminder, error) {
	list, err := s.driver.ListSessionReminders(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateSessionReminder updates a session reminder.
func (s *Store) UpdateSessionReminder(ctx context.Context, update *UpdateSessionReminder) error {
	return s.driver.UpdateSessionReminder(ctx, update)
}

// ListDueSessionReminders selects the dispatchable batch: pending, enabled,
// parent session still scheduled, and scheduled_time at or before the given
// timestamp.
func (s *Store) ListDueSessionReminders(ctx context.Context, before int64, limit int) ([]*DueSessionReminder, error) {
	return s.driver.ListDueSessionReminders(ctx, before, limit)
}

// ClaimSessionReminder atomically transitions a reminder between statuses,
// returning false when the row was no longer in the expected status.
func (s *Store) ClaimSessionReminder(ctx context.Context, id string, from, to ReminderDeliveryStatus) (bool, error) {
	return s.driver.ClaimSessionReminder(ctx, id, from, to)
}
