package session

import (
	"context"
	"sync"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

// MemoryStore — для тестов и локального запуска без DATABASE_URL.
type MemoryStore struct {
	mu   sync.Mutex
	data map[int64]*Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: map[int64]*Session{}}
}

func (m *MemoryStore) Get(_ context.Context, chatID int64) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.data[chatID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[s.ChatID] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, chatID)
	return nil
}

func (m *MemoryStore) ListInstitutions(_ context.Context) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Session
	for _, s := range m.data {
		if s.IsInstitution() {
			out = append(out, clone(s))
		}
	}
	sortByChat(out)
	return out, nil
}

func clone(s *Session) *Session {
	c := *s
	c.Uploaded = make(map[models.Section]bool, len(s.Uploaded))
	for k, v := range s.Uploaded {
		c.Uploaded[k] = v
	}
	return &c
}
