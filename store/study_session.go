package store

import (
	"context"
	"time"
)

// StudySessionStatus is the lifecycle state of a scheduled study session.
type StudySessionStatus string

const (
	StudySessionStatusScheduled  StudySessionStatus = "scheduled"
	StudySessionStatusInProgress StudySessionStatus = "in_progress"
	StudySessionStatusCompleted  StudySessionStatus = "completed"
	StudySessionStatusCancelled  StudySessionStatus = "cancelled"
	StudySessionStatusMissed     StudySessionStatus = "missed"
)

// StudySession is a planned study block that reminders attach to.
type StudySession struct {
	ID      string
	UserID  string
	Title   string
	Subject *string

	StartTs int64
	EndTs   int64
	Status  StudySessionStatus

	// ReminderOffsetMinutes is the default lead time for reminders created
	// alongside this session.
	ReminderOffsetMinutes *int

	CreatedTs int64
	UpdatedTs int64
}

// ParseStartTime parses the session start time to time.Time.
func (s *StudySession) ParseStartTime() time.Time {
	return time.Unix(s.StartTs, 0)
}

// FindStudySession is the find condition for study sessions.
type FindStudySession struct {
	ID     *string
	UserID *string
	Status *StudySessionStatus

	// Time range filters on start_ts.
	StartAfter  *int64
	StartBefore *int64

	Limit *int
}

// UpdateStudySession is the update request for a study session.
type UpdateStudySession struct {
	ID      string
	Title   *string
	Subject *string
	StartTs *int64
	EndTs   *int64
	Status  *StudySessionStatus
}

// CreateStudySession creates a new study session.
func (s *Store) CreateStudySession(ctx context.Context, create *StudySession) (*StudySession, error) {
	return s.driver.CreateStudySession(ctx, create)
}

// ListStudySessions lists study sessions with filter.
func (s *Store) ListStudySessions(ctx context.Context, find *FindStudySession) ([]*StudySession, error) {
	return s.driver.ListStudySessions(ctx, find)
}

// GetStudySession gets a single study session, or nil when absent.
func (s *Store) GetStudySession(ctx context.Context, find *FindStudySession) (*StudySession, error) {
	list, err := s.driver.ListStudySessions(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateStudySession updates a study session.
func (s *Store) UpdateStudySession(ctx context.Context, update *UpdateStudySession) error {
	return s.driver.UpdateStudySession(ctx, update)
}
