package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
)

// SessionStore — session.Store поверх Postgres. Снимок дашборда не сохраняется.
type SessionStore struct {
	db *sql.DB
}

var _ session.Store = (*SessionStore)(nil)

func NewSessionStore(db *sql.DB) *SessionStore { return &SessionStore{db: db} }

const sessionCols = `chat_id, role, institution_id, name, email, uploaded, upload_section, review_id, last_unread`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*session.Session, error) {
	var (
		s        session.Session
		role     string
		uploaded []byte
		section  string
	)
	if err := row.Scan(&s.ChatID, &role, &s.InstitutionID, &s.Name, &s.Email, &uploaded, &section, &s.ReviewID, &s.LastUnread); err != nil {
		return nil, err
	}
	s.Role = models.Role(role)
	s.UploadSection = models.Section(section)

	var list []models.Section
	if len(uploaded) > 0 {
		if err := json.Unmarshal(uploaded, &list); err != nil {
			return nil, fmt.Errorf("decode uploaded for chat %d: %w", s.ChatID, err)
		}
	}
	s.SetUploaded(list)
	return &s, nil
}

func (st *SessionStore) Get(ctx context.Context, chatID int64) (*session.Session, error) {
	row := st.db.QueryRowContext(ctx, `SELECT `+sessionCols+` FROM chat_sessions WHERE chat_id = $1`, chatID)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, session.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session %d: %w", chatID, err)
	}
	return s, nil
}

func (st *SessionStore) Save(ctx context.Context, s *session.Session) error {
	uploaded, err := json.Marshal(s.UploadedList())
	if err != nil {
		return err
	}
	_, err = st.db.ExecContext(ctx, `
		INSERT INTO chat_sessions (`+sessionCols+`, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (chat_id) DO UPDATE SET
			role = EXCLUDED.role,
			institution_id = EXCLUDED.institution_id,
			name = EXCLUDED.name,
			email = EXCLUDED.email,
			uploaded = EXCLUDED.uploaded,
			upload_section = EXCLUDED.upload_section,
			review_id = EXCLUDED.review_id,
			last_unread = EXCLUDED.last_unread,
			updated_at = now()
	`, s.ChatID, string(s.Role), s.InstitutionID, s.Name, s.Email, string(uploaded),
		string(s.UploadSection), s.ReviewID, s.LastUnread)
	if err != nil {
		return fmt.Errorf("save session %d: %w", s.ChatID, err)
	}
	return nil
}

func (st *SessionStore) Delete(ctx context.Context, chatID int64) error {
	if _, err := st.db.ExecContext(ctx, `DELETE FROM chat_sessions WHERE chat_id = $1`, chatID); err != nil {
		return fmt.Errorf("delete session %d: %w", chatID, err)
	}
	return nil
}

func (st *SessionStore) ListInstitutions(ctx context.Context) ([]*session.Session, error) {
	rows, err := st.db.QueryContext(ctx, `
		SELECT `+sessionCols+` FROM chat_sessions
		WHERE role = $1 AND institution_id > 0
		ORDER BY chat_id`, string(models.Institution))
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []*session.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
