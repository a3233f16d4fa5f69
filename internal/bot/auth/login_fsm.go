package auth

import (
	"context"
	"html"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Spok95/disclosure-portal-bot/internal/bot/menu"
	"github.com/Spok95/disclosure-portal-bot/internal/bot/shared/fsmutil"
	"github.com/Spok95/disclosure-portal-bot/internal/models"
	"github.com/Spok95/disclosure-portal-bot/internal/session"
	"github.com/Spok95/disclosure-portal-bot/internal/workflow"
)

type loginStep int

const (
	loginEmail loginStep = iota
	loginPassword
)

type loginState struct {
	role  models.Role
	email string
	step  loginStep
}

func (f *Flows) StartLogin(chatID int64, role models.Role) {
	f.Cancel(chatID)
	f.mu.Lock()
	f.login[chatID] = &loginState{role: role}
	f.mu.Unlock()

	title := "🏫 <b>Institution Login</b>"
	if role == models.Authority {
		title = "🏛 <b>AICTE Authority Login</b>"
	}
	f.send(chatID, title+"\nEnter your email:", menu.CancelOnly(menu.CbLoginCancel))
}

func (f *Flows) loginOf(chatID int64) *loginState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.login[chatID]
}

func (f *Flows) handleLoginText(ctx context.Context, s *session.Session, st *loginState, msg *tgbotapi.Message) Outcome {
	chatID := msg.Chat.ID
	text := strings.TrimSpace(msg.Text)
	if fsmutil.IsCancelText(text) {
		f.Cancel(chatID)
		f.send(chatID, "🚫 Login cancelled.", nil)
		return Handled
	}

	switch st.step {
	case loginEmail:
		if text == "" {
			f.send(chatID, workflow.ErrCredentialsRequired.Error(), nil)
			return Handled
		}
		st.email = text
		st.step = loginPassword
		f.send(chatID, "Email: <b>"+html.EscapeString(text)+"</b>\nNow enter your password:", menu.CancelOnly(menu.CbLoginCancel))
		return Handled

	case loginPassword:
		f.dropMessage(chatID, msg.MessageID)
		var err error
		if st.role == models.Authority {
			err = f.auth.AuthorityLogin(ctx, s, st.email, msg.Text)
		} else {
			err = f.auth.Login(ctx, s, st.email, msg.Text)
		}
		if err != nil {
			f.send(chatID, html.EscapeString(workflow.UserMessage(err))+"\nEnter your password again or /cancel.", menu.CancelOnly(menu.CbLoginCancel))
			return Handled
		}
		f.Cancel(chatID)
		f.send(chatID, "✅ Welcome, <b>"+html.EscapeString(s.Name)+"</b>!", menu.GetRoleMenu(s.Role))
		return LoggedIn
	}
	return Handled
}
