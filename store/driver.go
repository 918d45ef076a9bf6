package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store driver.
// It contains all methods that store database driver should implement.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	IsInitialized(ctx context.Context) (bool, error)

	// QuizItem model related methods.
	CreateQuizItem(ctx context.Context, create *QuizItem) (*QuizItem, error)
	ListQuizItems(ctx context.Context, find *FindQuizItem) ([]*QuizItem, error)
	UpdateQuizItem(ctx context.Context, update *UpdateQuizItem) error

	// ReviewSession model related methods.
	CreateReviewSession(ctx context.Context, create *ReviewSession) (*ReviewSession, error)
	ListReviewSessions(ctx context.Context, find *FindReviewSession) ([]*ReviewSession, error)
	UpdateReviewSession(ctx context.Context, update *UpdateReviewSession) error

	// ReviewResponse model related methods. RecordReview commits the item
	// update, response insert and session counter bump in one transaction.
	RecordReview(ctx context.Context, record *RecordReview) (*ReviewResponse, error)
	ListReviewResponses(ctx context.Context, find *FindReviewResponse) ([]*ReviewResponse, error)

	// StudySession model related methods.
	CreateStudySession(ctx context.Context, create *StudySession) (*StudySession, error)
	ListStudySessions(ctx context.Context, find *FindStudySession) ([]*StudySession, error)
	UpdateStudySession(ctx context.Context, update *UpdateStudySession) error

	// SessionReminder model related methods.
	CreateSessionReminder(ctx context.Context, create *SessionReminder) (*SessionReminder, error)
	ListSessionReminders(ctx context.Context, find *FindSessionReminder) ([]*SessionReminder, error)
	UpdateSessionReminder(ctx context.Context, update *UpdateSessionReminder) error
	ListDueSessionReminders(ctx context.Context, before int64, limit int) ([]*DueSessionReminder, error)
	ClaimSessionReminder(ctx context.Context, id string, from, to ReminderDeliveryStatus) (bool, error)

	// ReminderTemplate model related methods.
	CreateReminderTemplate(ctx context.Context, create *ReminderTemplate) (*ReminderTemplate, error)
	ListReminderTemplates(ctx context.Context, find *FindReminderTemplate) ([]*ReminderTemplate, error)

	// ReminderPreference model related methods.
	UpsertReminderPreference(ctx context.Context, upsert *UpsertReminderPreference) (*ReminderPreference, error)
	GetReminderPreference(ctx context.Context, find *FindReminderPreference) (*ReminderPreference, error)

	// User model related methods.
	CreateUser(ctx context.Context, create *User) (*User, error)
	ListUsers(ctx context.Context, find *FindUser) ([]*User, error)
	UpdateUser(ctx context.Context, update *UpdateUser) (*User, error)
}
