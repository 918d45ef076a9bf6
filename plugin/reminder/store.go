package reminder

import (
	"context"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/athenastudy/athena/store"
)

// MemoryStore is an in-memory Store implementation used by tests and demos.
// Claim transitions are atomic under the store mutex, matching the SQL
// drivers' compare-and-set semantics.
type MemoryStore struct {
	mu sync.Mutex

	reminders   map[string]*store.SessionReminder
	sessions    map[string]*store.StudySession
	templates   map[string]*store.ReminderTemplate
	preferences map[string]*store.ReminderPreference
	tokens      map[string]string
}

// NewMemoryStore creates an empty memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		reminders:   map[string]*store.SessionReminder{},
		sessions:    map[string]*store.StudySession{},
		templates:   map[string]*store.ReminderTemplate{},
		preferences: map[string]*store.ReminderPreference{},
		tokens:      map[string]string{},
	}
}

// PutStudySession seeds a study session.
func (m *MemoryStore) PutStudySession(session *store.StudySession) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[session.ID] = session
}

// PutTemplate seeds a reminder template.
func (m *MemoryStore) PutTemplate(template *store.ReminderTemplate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = template
}

// PutPreference seeds a user's reminder preference.
func (m *MemoryStore) PutPreference(pref *store.ReminderPreference) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.preferences[pref.UserID] = pref
}

// PutDeviceToken seeds a user's device token.
func (m *MemoryStore) PutDeviceToken(userID, token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens[userID] = token
}

func (m *MemoryStore) CreateSessionReminder(_ context.Context, create *store.SessionReminder) (*store.SessionReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reminders[create.ID]; ok {
		return nil, errors.Errorf("reminder already exists: %s", create.ID)
	}
	clone := *create
	m.reminders[create.ID] = &clone
	return create, nil
}

func (m *MemoryStore) GetSessionReminder(_ context.Context, find *store.FindSessionReminder) (*store.SessionReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if find.ID == nil {
		return nil, nil
	}
	r, ok := m.reminders[*find.ID]
	if !ok {
		return nil, nil
	}
	clone := *r
	return &clone, nil
}

func (m *MemoryStore) ListSessionReminders(_ context.Context, find *store.FindSessionReminder) ([]*store.SessionReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*store.SessionReminder, 0)
	for _, r := range m.reminders {
		if find.ID != nil && r.ID != *find.ID {
			continue
		}
		if find.SessionID != nil && r.SessionID != *find.SessionID {
			continue
		}
		if find.UserID != nil && r.UserID != *find.UserID {
			continue
		}
		if find.Status != nil && r.Status != *find.Status {
			continue
		}
		clone := *r
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ScheduledTs < list[j].ScheduledTs })
	return list, nil
}

func (m *MemoryStore) UpdateSessionReminder(_ context.Context, update *store.UpdateSessionReminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[update.ID]
	if !ok {
		return errors.Errorf("reminder not found: %s", update.ID)
	}
	if update.Status != nil {
		r.Status = *update.Status
	}
	if update.SentTs != nil {
		r.SentTs = update.SentTs
	}
	if update.ErrorMessage != nil {
		r.ErrorMessage = update.ErrorMessage
	}
	if update.Enabled != nil {
		r.Enabled = *update.Enabled
	}
	return nil
}

func (m *MemoryStore) ListDueSessionReminders(_ context.Context, before int64, limit int) ([]*store.DueSessionReminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]*store.DueSessionReminder, 0)
	for _, r := range m.reminders {
		if r.Status != store.ReminderStatusPending || !r.Enabled || r.ScheduledTs > before {
			continue
		}
		session, ok := m.sessions[r.SessionID]
		if !ok || session.Status != store.StudySessionStatusScheduled {
			continue
		}

		due := &store.DueSessionReminder{
			Reminder:       *r,
			SessionTitle:   session.Title,
			SessionSubject: session.Subject,
			SessionStartTs: session.StartTs,
		}
		if r.TemplateID != nil {
			if template, ok := m.templates[*r.TemplateID]; ok {
				due.TemplateMessage = &template.MessageTemplate
			}
		}
		list = append(list, due)
	}

	sort.Slice(list, func(i, j int) bool { return list[i].Reminder.ScheduledTs < list[j].Reminder.ScheduledTs })
	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (m *MemoryStore) ClaimSessionReminder(_ context.Context, id string, from, to store.ReminderDeliveryStatus) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reminders[id]
	if !ok || r.Status != from {
		return false, nil
	}
	r.Status = to
	return true, nil
}

func (m *MemoryStore) GetStudySession(_ context.Context, find *store.FindStudySession) (*store.StudySession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if find.ID == nil {
		return nil, nil
	}
	s, ok := m.sessions[*find.ID]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (m *MemoryStore) GetReminderPreference(_ context.Context, find *store.FindReminderPreference) (*store.ReminderPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if find.UserID == nil {
		return nil, nil
	}
	p, ok := m.preferences[*find.UserID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

func (m *MemoryStore) GetDeviceToken(_ context.Context, userID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tokens[userID], nil
}
