package store

import (
	"context"
	"fmt"
)

// ReminderTemplate is a reusable reminder message with placeholder
// substitution ({{sessionTitle}}, {{subject}}, {{minutesUntil}}).
type ReminderTemplate struct {
	ID              string
	Name            string
	MessageTemplate string
	OffsetMinutes   int
	IsActive        bool
	IsDefault       bool

	CreatedTs int64
	UpdatedTs int64
}

// FindReminderTemplate is the find condition for reminder templates.
type FindReminderTemplate struct {
	ID       *string
	IsActive *bool
}

// CreateReminderTemplate creates a new reminder template.
func (s *Store) CreateReminderTemplate(ctx context.Context, create *ReminderTemplate) (*ReminderTemplate, error) {
	return s.driver.CreateReminderTemplate(ctx, create)
}

// ListReminderTemplates lists reminder templates with filter.
func (s *Store) ListReminderTemplates(ctx context.Context, find *FindReminderTemplate) ([]*ReminderTemplate, error) {
	return s.driver.ListReminderTemplates(ctx, find)
}

// GetReminderTemplate gets a template by id, consulting the cache first.
func (s *Store) GetReminderTemplate(ctx context.Context, id string) (*ReminderTemplate, error) {
	key := fmt.Sprintf("template:%s", id)
	if v, ok := s.templateCache.Get(key); ok {
		return v.(*ReminderTemplate), nil
	}

	list, err := s.driver.ListReminderTemplates(ctx, &FindReminderTemplate{ID: &id})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	s.templateCache.Set(key, list[0])
	return list[0], nil
}
