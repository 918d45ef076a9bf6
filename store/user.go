package store

import (
	"context"
	"fmt"
)

// User is an account that owns sessions, items and reminders.
type User struct {
	ID    string
	Email string

	// DeviceToken is the FCM registration token, nil when the user has no
	// registered device.
	DeviceToken *string

	// Timezone is the fallback IANA timezone when no preference row exists.
	Timezone string

	CreatedTs int64
	UpdatedTs int64
}

// FindUser is the find condition for users.
type FindUser struct {
	ID    *string
	Email *string

	// HasDeviceToken selects only users with a registered device.
	HasDeviceToken *bool

	Limit *int
}

// UpdateUser is the update request for a user.
type UpdateUser struct {
	ID          string
	Email       *string
	DeviceToken *string
	Timezone    *string
}

// CreateUser creates a new user.
func (s *Store) CreateUser(ctx context.Context, create *User) (*User, error) {
	return s.driver.CreateUser(ctx, create)
}

// ListUsers lists users with filter.
func (s *Store) ListUsers(ctx context.Context, find *FindUser) ([]*User, error) {
	return s.driver.ListUsers(ctx, find)
}

// GetUser gets a single user, or nil when absent.
func (s *Store) GetUser(ctx context.Context, find *FindUser) (*User, error) {
	list, err := s.driver.ListUsers(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// UpdateUser updates a user.
func (s *Store) UpdateUser(ctx context.Context, update *UpdateUser) (*User, error) {
	user, err := s.driver.UpdateUser(ctx, update)
	if err != nil {
		return nil, err
	}
	s.userCache.Delete(userCacheKey(update.ID))
	return user, nil
}

// GetDeviceToken returns the user's push token, or "" when none is
// registered. Cached, since the dispatcher reads it once per reminder.
func (s *Store) GetDeviceToken(ctx context.Context, userID string) (string, error) {
	key := userCacheKey(userID)
	if v, ok := s.userCache.Get(key); ok {
		user := v.(*User)
		if user.DeviceToken == nil {
			return "", nil
		}
		return *user.DeviceToken, nil
	}

	user, err := s.GetUser(ctx, &FindUser{ID: &userID})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", nil
	}
	s.userCache.Set(key, user)
	if user.DeviceToken == nil {
		return "", nil
	}
	return *user.DeviceToken, nil
}

func userCacheKey(userID string) string {
	return fmt.Sprintf("user:%s", userID)
}
