package session

import (
	"context"
	"errors"
	"sort"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
)

var ErrNotFound = errors.New("session not found")

// Session — состояние одного чата. Живёт в Store, передаётся в воркфлоу явно.
type Session struct {
	ChatID        int64
	Role          models.Role
	InstitutionID int64
	Name          string
	Email         string
	Uploaded      map[models.Section]bool

	// Dashboard — последний снимок, только в памяти.
	Dashboard *models.Dashboard

	UploadSection models.Section
	ReviewID      int64
	LastUnread    int
}

func New(chatID int64) *Session {
	return &Session{ChatID: chatID, Uploaded: map[models.Section]bool{}}
}

func (s *Session) LoggedIn() bool { return s.Role != "" }

func (s *Session) IsInstitution() bool {
	return s.Role == models.Institution && s.InstitutionID > 0
}

func (s *Session) IsAuthority() bool { return s.Role == models.Authority }

// MarkUploaded идемпотентен: повторная загрузка раздела не дублирует запись.
func (s *Session) MarkUploaded(sec models.Section) {
	if s.Uploaded == nil {
		s.Uploaded = map[models.Section]bool{}
	}
	s.Uploaded[sec] = true
}

func (s *Session) IsUploaded(sec models.Section) bool { return s.Uploaded[sec] }

func (s *Session) UploadedCount() int {
	n := 0
	for _, sec := range models.AllSections {
		if s.Uploaded[sec] {
			n++
		}
	}
	return n
}

func (s *Session) AllUploaded() bool { return s.UploadedCount() == len(models.AllSections) }

// UploadedList — в фиксированном порядке разделов.
func (s *Session) UploadedList() []models.Section {
	out := make([]models.Section, 0, len(s.Uploaded))
	for _, sec := range models.AllSections {
		if s.Uploaded[sec] {
			out = append(out, sec)
		}
	}
	return out
}

// SetUploaded заменяет набор целиком (из снимка дашборда). Неизвестные разделы отбрасываются.
func (s *Session) SetUploaded(list []models.Section) {
	s.Uploaded = make(map[models.Section]bool, len(list))
	for _, sec := range list {
		if sec.Valid() {
			s.Uploaded[sec] = true
		}
	}
}

func (s *Session) LoginInstitution(id int64, name, email string) {
	s.reset()
	s.Role = models.Institution
	s.InstitutionID = id
	s.Name = name
	s.Email = email
}

func (s *Session) LoginAuthority(name, email string) {
	s.reset()
	s.Role = models.Authority
	s.Name = name
	s.Email = email
}

func (s *Session) Logout() { s.reset() }

func (s *Session) reset() {
	chatID := s.ChatID
	*s = Session{ChatID: chatID, Uploaded: map[models.Section]bool{}}
}

// Store — хранилище сессий по chat id.
type Store interface {
	Get(ctx context.Context, chatID int64) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, chatID int64) error
	// ListInstitutions — сессии вошедших учреждений (для поллера уведомлений).
	ListInstitutions(ctx context.Context) ([]*Session, error)
}

// Load возвращает сессию или новую пустую, если её ещё нет.
func Load(ctx context.Context, st Store, chatID int64) (*Session, error) {
	s, err := st.Get(ctx, chatID)
	if errors.Is(err, ErrNotFound) {
		return New(chatID), nil
	}
	return s, err
}

func sortByChat(list []*Session) {
	sort.Slice(list, func(i, j int) bool { return list[i].ChatID < list[j].ChatID })
}
